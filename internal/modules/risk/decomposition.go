package risk

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Breakdown is the Euler allocation of portfolio risk across assets.
type Breakdown struct {
	Components map[string]float64 `json:"components"` // w_i · marginal_i · value
	Marginal   map[string]float64 `json:"marginal"`   // (Cov·w)_i / vol
	Total      float64            `json:"total"`      // vol · value, equal to the sum of components
}

// ComponentVaR allocates annualized portfolio volatility (sample covariance)
// to each asset. Components sum to Total.
func ComponentVaR(assets []string, returns mat.Matrix, weights []float64, value float64) (*Breakdown, error) {
	_, cols := returns.Dims()
	if len(assets) != cols || len(weights) != cols {
		return nil, fmt.Errorf("component var: %d assets, %d weights, %d return columns", len(assets), len(weights), cols)
	}

	cov, err := SampleCovariance(returns)
	if err != nil {
		return nil, err
	}

	w := mat.NewVecDense(len(weights), weights)
	var covW mat.VecDense
	covW.MulVec(cov, w)

	vol := math.Sqrt(math.Max(mat.Dot(w, &covW), 0))
	if vol <= dispersionTolerance {
		return nil, degenerate("component var", "portfolio volatility is zero")
	}

	b := &Breakdown{
		Components: make(map[string]float64, len(assets)),
		Marginal:   make(map[string]float64, len(assets)),
		Total:      vol * value,
	}
	for i, asset := range assets {
		marginal := covW.AtVec(i) / vol
		b.Marginal[asset] = marginal
		b.Components[asset] = weights[i] * marginal * value
	}
	return b, nil
}
