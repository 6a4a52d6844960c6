package risk

import (
	"github.com/aristath/varengine/pkg/formulas"
)

// Volatility is the annualized sample standard deviation of the portfolio returns.
func Volatility(portfolioReturns []float64) (float64, error) {
	if len(portfolioReturns) < 2 {
		return 0, insufficient("volatility", len(portfolioReturns), 2)
	}
	return formulas.AnnualizedVolatility(portfolioReturns), nil
}

// SharpeRatio is (annualized mean return - riskFreeRate) / annualized volatility.
func SharpeRatio(portfolioReturns []float64, riskFreeRate float64) (float64, error) {
	vol, err := Volatility(portfolioReturns)
	if err != nil {
		return 0, err
	}
	if vol <= dispersionTolerance {
		return 0, degenerate("sharpe ratio", "volatility is zero")
	}
	return (formulas.AnnualizedReturn(portfolioReturns) - riskFreeRate) / vol, nil
}

// MaxDrawdown walks the wealth curve prod(1+r) and returns the largest
// fractional fall below the running peak, as a positive number.
//
// The peak is the running maximum of the curve itself, starting at the first
// wealth point.
func MaxDrawdown(portfolioReturns []float64) (float64, error) {
	if len(portfolioReturns) == 0 {
		return 0, insufficient("max drawdown", 0, 1)
	}

	wealth := 1.0
	peak := 0.0
	worst := 0.0
	for i, r := range portfolioReturns {
		wealth *= 1 + r
		if i == 0 || wealth > peak {
			peak = wealth
		}
		if peak <= 0 {
			continue
		}
		if dd := (wealth - peak) / peak; dd < worst {
			worst = dd
		}
	}
	return -worst, nil
}
