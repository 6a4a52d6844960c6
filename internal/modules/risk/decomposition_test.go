package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/varengine/pkg/formulas"
)

func TestComponentVaR_SumsToTotal(t *testing.T) {
	assets := []string{"A", "B", "C"}
	p := newTestPortfolio(assets, gaussianReturns(5, 400, []float64{0.01, 0.02, 0.015}), []float64{0.5, 0.2, 0.3}, 100000)

	b, err := ComponentVaR(assets, p.Returns(), p.Weights(), p.Value())
	require.NoError(t, err)
	require.Len(t, b.Components, 3)

	sum := 0.0
	for _, asset := range assets {
		sum += b.Components[asset]
	}
	assert.InEpsilon(t, b.Total, sum, 1e-9)

	// wᵀΣw equals the sample variance of the weighted return series.
	expectedTotal := formulas.AnnualizedVolatility(p.PortfolioReturns()) * p.Value()
	assert.InEpsilon(t, expectedTotal, b.Total, 0.01)
}

func TestComponentVaR_MarginalTimesWeight(t *testing.T) {
	assets := []string{"A", "B"}
	p := newTestPortfolio(assets, gaussianReturns(9, 200, []float64{0.01, 0.03}), []float64{0.7, 0.3}, 1000)

	b, err := ComponentVaR(assets, p.Returns(), p.Weights(), p.Value())
	require.NoError(t, err)

	for i, asset := range assets {
		assert.InDelta(t, p.Weights()[i]*b.Marginal[asset]*p.Value(), b.Components[asset], 1e-9)
	}
	assert.Greater(t, b.Components["B"]/0.3, b.Components["A"]/0.7, "the riskier asset carries more risk per unit weight")
}

func TestComponentVaR_ZeroVolatility(t *testing.T) {
	rows := [][]float64{{0.01, 0.01}, {0.01, 0.01}, {0.01, 0.01}}
	p := newTestPortfolio([]string{"A", "B"}, rows, []float64{0.5, 0.5}, 1)

	_, err := ComponentVaR(p.Assets(), p.Returns(), p.Weights(), p.Value())

	var degErr *DegenerateInputError
	assert.ErrorAs(t, err, &degErr)
}

func TestComponentVaR_ShapeMismatch(t *testing.T) {
	p := newTestPortfolio([]string{"A", "B"}, orthogonalPattern(8, 0.01), []float64{0.5, 0.5}, 1)

	_, err := ComponentVaR([]string{"A"}, p.Returns(), p.Weights(), p.Value())
	assert.Error(t, err)
}
