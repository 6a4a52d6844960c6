package risk

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/aristath/varengine/pkg/formulas"
)

// SampleCovariance returns the annualized (×252) sample covariance of the
// return columns.
func SampleCovariance(returns mat.Matrix) (*mat.SymDense, error) {
	rows, _ := returns.Dims()
	if rows < 2 {
		return nil, insufficient("covariance", rows, 2)
	}

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, returns, nil)
	cov.ScaleSym(formulas.TradingDaysPerYear, &cov)
	return &cov, nil
}

// EWMACovariance seeds the estimate with the annualized sample covariance and
// then folds in every later observation, oldest first:
//
//	Cov ← λ·Cov + (1−λ)·r·rᵀ
//
// r is the raw (not de-meaned) return row. Row order matters.
func EWMACovariance(returns mat.Matrix, lambda float64) (*mat.SymDense, error) {
	if !(lambda > 0 && lambda < 1) {
		return nil, invalidConfig("ewma_lambda", lambda, "must be in (0, 1)")
	}

	cov, err := SampleCovariance(returns)
	if err != nil {
		return nil, err
	}

	rows, cols := returns.Dims()
	r := mat.NewVecDense(cols, nil)
	for i := 1; i < rows; i++ {
		for j := 0; j < cols; j++ {
			r.SetVec(j, returns.At(i, j))
		}
		cov.ScaleSym(lambda, cov)
		cov.SymRankOne(cov, 1-lambda, r)
	}
	return cov, nil
}

// portfolioVariance is the quadratic form wᵀ·Cov·w.
func portfolioVariance(cov mat.Symmetric, weights []float64) float64 {
	w := mat.NewVecDense(len(weights), weights)
	return mat.Inner(w, cov, w)
}
