package formulas

import (
	"math"

	"github.com/markcheno/go-talib"
)

// RollingAnnualizedVolatility returns the annualized sample standard deviation
// over each trailing window. The result has len(returns)-window+1 points; the
// i-th point covers returns[i : i+window].
func RollingAnnualizedVolatility(returns []float64, window int) []float64 {
	if window < 2 || len(returns) < window {
		return []float64{}
	}

	// talib's StdDev is the population deviation; rescale to the n-1 estimator.
	population := talib.StdDev(returns, window, 1.0)
	correction := math.Sqrt(float64(window) / float64(window-1))

	out := make([]float64, 0, len(returns)-window+1)
	for i := window - 1; i < len(population); i++ {
		out = append(out, population[i]*correction*math.Sqrt(TradingDaysPerYear))
	}
	return out
}
