package risk

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// dispersionTolerance is the smallest annualized volatility treated as non-zero.
const dispersionTolerance = 1e-12

// ParametricVaR is the closed-form normal VaR on the EWMA covariance:
//
//	vol = sqrt(wᵀ·Cov·w · horizon)
//	VaR = |Φ⁻¹(alpha) · vol · value|
func ParametricVaR(returns mat.Matrix, weights []float64, value float64, cfg Config) (float64, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	rows, cols := returns.Dims()
	if len(weights) != cols {
		return 0, fmt.Errorf("parametric var: %d weights for %d assets", len(weights), cols)
	}
	if rows < cfg.MinObservations {
		return 0, insufficient("parametric var", rows, cfg.MinObservations)
	}

	sample, err := SampleCovariance(returns)
	if err != nil {
		return 0, err
	}
	if portfolioVariance(sample, weights) <= dispersionTolerance*dispersionTolerance {
		return 0, degenerate("parametric var", "portfolio returns have zero variance")
	}

	cov, err := EWMACovariance(returns, cfg.EWMALambda)
	if err != nil {
		return 0, err
	}
	variance := portfolioVariance(cov, weights)
	if !(variance > 0) {
		return 0, degenerate("parametric var", fmt.Sprintf("non-positive portfolio variance %g", variance))
	}

	vol := math.Sqrt(variance * float64(cfg.TimeHorizon))
	z := distuv.UnitNormal.Quantile(cfg.Alpha())
	return math.Abs(z * vol * value), nil
}
