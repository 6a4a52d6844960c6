package risk

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

func TestFitStudentT_RecoversParameters(t *testing.T) {
	dist := distuv.StudentsT{Mu: 0.001, Sigma: 0.01, Nu: 4, Src: rand.NewPCG(17, 18)}
	x := make([]float64, 5000)
	for i := range x {
		x[i] = dist.Rand()
	}

	params, err := FitStudentT(x)
	require.NoError(t, err)

	assert.InDelta(t, 4, params.Nu, 1.5)
	assert.InDelta(t, 0.001, params.Mu, 0.0007)
	assert.InEpsilon(t, 0.01, params.Sigma, 0.1)
}

func TestFitStudentT_GaussianInputHasLightTails(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	x := make([]float64, 5000)
	for i := range x {
		x[i] = rng.NormFloat64() * 0.02
	}

	params, err := FitStudentT(x)
	require.NoError(t, err)
	assert.Greater(t, params.Nu, 10.0)
	assert.InEpsilon(t, 0.02, params.Sigma, 0.1)
}

func TestFitStudentT_Degenerate(t *testing.T) {
	_, err := FitStudentT([]float64{0.01, 0.01, 0.01})
	var degErr *DegenerateInputError
	assert.ErrorAs(t, err, &degErr)

	_, err = FitStudentT([]float64{0.01})
	var dataErr *InsufficientDataError
	assert.ErrorAs(t, err, &dataErr)
}
