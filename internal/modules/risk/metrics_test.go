package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		name    string
		returns []float64
		want    float64
	}{
		{"documented scenario", []float64{0.10, -0.20, 0.05}, 0.20},
		{"monotone gains", []float64{0.01, 0.02, 0.03}, 0},
		{"running peak not global peak", []float64{-0.5, 1.0, -0.1}, 0.1},
		{"recovery then deeper fall", []float64{0.2, -0.1, 0.15, -0.3}, 1 - (1.2*0.9*1.15*0.7)/(1.2*0.9*1.15)},
		{"single return", []float64{-0.05}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MaxDrawdown(tt.returns)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestMaxDrawdown_Empty(t *testing.T) {
	_, err := MaxDrawdown(nil)
	var dataErr *InsufficientDataError
	assert.ErrorAs(t, err, &dataErr)
}

func TestVolatility(t *testing.T) {
	returns := []float64{0.01, -0.02, 0.015, 0.005}
	got, err := Volatility(returns)
	require.NoError(t, err)

	mean := (0.01 - 0.02 + 0.015 + 0.005) / 4
	ss := 0.0
	for _, r := range returns {
		ss += (r - mean) * (r - mean)
	}
	assert.InDelta(t, math.Sqrt(ss/3)*math.Sqrt(252), got, 1e-12)

	_, err = Volatility([]float64{0.01})
	var dataErr *InsufficientDataError
	assert.ErrorAs(t, err, &dataErr)
}

func TestSharpeRatio(t *testing.T) {
	returns := []float64{0.01, -0.005, 0.007, 0.002, -0.001}
	got, err := SharpeRatio(returns, 0.02)
	require.NoError(t, err)

	vol, _ := Volatility(returns)
	mean := (0.01 - 0.005 + 0.007 + 0.002 - 0.001) / 5
	assert.InDelta(t, (mean*252-0.02)/vol, got, 1e-12)
}

func TestSharpeRatio_ZeroVolatility(t *testing.T) {
	_, err := SharpeRatio([]float64{0, 0, 0, 0}, 0.02)

	var degErr *DegenerateInputError
	require.ErrorAs(t, err, &degErr)
	assert.Equal(t, "sharpe ratio", degErr.Operation)
}
