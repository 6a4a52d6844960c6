// Package formulas holds the statistical building blocks shared by the risk
// engine and the portfolio analytics.
package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear is the annualization constant used everywhere.
const TradingDaysPerYear = 252

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample standard deviation (n-1 denominator)
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// Variance calculates the sample variance (n-1 denominator)
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.Variance(data, nil)
}

// AnnualizedVolatility scales the daily standard deviation by sqrt(252).
func AnnualizedVolatility(dailyReturns []float64) float64 {
	return StdDev(dailyReturns) * math.Sqrt(TradingDaysPerYear)
}

// AnnualizedReturn is the arithmetic mean return scaled by 252.
func AnnualizedReturn(dailyReturns []float64) float64 {
	return Mean(dailyReturns) * TradingDaysPerYear
}

// TotalReturn compounds a return series: prod(1+r) - 1.
func TotalReturn(returns []float64) float64 {
	wealth := 1.0
	for _, r := range returns {
		wealth *= 1 + r
	}
	return wealth - 1
}

// Skewness returns the sample skewness, or 0 with fewer than 3 points.
func Skewness(data []float64) float64 {
	if len(data) < 3 {
		return 0
	}
	return stat.Skew(data, nil)
}

// ExcessKurtosis returns the sample excess kurtosis, or 0 with fewer than 4 points.
func ExcessKurtosis(data []float64) float64 {
	if len(data) < 4 {
		return 0
	}
	return stat.ExKurtosis(data, nil)
}

// LogReturns converts prices to log returns: ln(p[i]/p[i-1]).
// Non-positive or NaN prices yield NaN so callers can drop the row.
func LogReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		prev, cur := prices[i-1], prices[i]
		if prev <= 0 || cur <= 0 || math.IsNaN(prev) || math.IsNaN(cur) {
			returns[i-1] = math.NaN()
			continue
		}
		returns[i-1] = math.Log(cur / prev)
	}
	return returns
}

// SimpleReturns converts prices to percentage returns: (p[i]-p[i-1])/p[i-1].
func SimpleReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		prev := prices[i-1]
		if prev == 0 || math.IsNaN(prev) || math.IsNaN(prices[i]) {
			returns[i-1] = math.NaN()
			continue
		}
		returns[i-1] = (prices[i] - prev) / prev
	}
	return returns
}

// IsConstant reports whether every value equals the first one.
func IsConstant(data []float64) bool {
	for _, v := range data[min(1, len(data)):] {
		if v != data[0] {
			return false
		}
	}
	return true
}
