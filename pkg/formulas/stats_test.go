package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeanAndStdDev(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5}

	assert.InDelta(t, 3.0, Mean(data), 1e-12)
	assert.InDelta(t, math.Sqrt(2.5), StdDev(data), 1e-12, "sample std uses n-1")
	assert.InDelta(t, 2.5, Variance(data), 1e-12)

	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, StdDev([]float64{1}))
}

func TestAnnualizedVolatility(t *testing.T) {
	returns := []float64{0.01, -0.01, 0.01, -0.01}
	expected := StdDev(returns) * math.Sqrt(252)
	assert.InDelta(t, expected, AnnualizedVolatility(returns), 1e-12)
}

func TestTotalReturn(t *testing.T) {
	assert.InDelta(t, 1.1*0.8*1.05-1, TotalReturn([]float64{0.10, -0.20, 0.05}), 1e-12)
	assert.Equal(t, 0.0, TotalReturn(nil))
}

func TestLogReturns(t *testing.T) {
	returns := LogReturns([]float64{100, 110, 99})
	require.Len(t, returns, 2)
	assert.InDelta(t, math.Log(1.1), returns[0], 1e-12)
	assert.InDelta(t, math.Log(0.9), returns[1], 1e-12)

	withGap := LogReturns([]float64{100, math.NaN(), 99})
	assert.True(t, math.IsNaN(withGap[0]))
	assert.True(t, math.IsNaN(withGap[1]))

	assert.Empty(t, LogReturns([]float64{100}))
}

func TestSimpleReturns(t *testing.T) {
	returns := SimpleReturns([]float64{100, 110, 99})
	require.Len(t, returns, 2)
	assert.InDelta(t, 0.10, returns[0], 1e-12)
	assert.InDelta(t, -0.10, returns[1], 1e-12)
}

func TestIsConstant(t *testing.T) {
	assert.True(t, IsConstant([]float64{0.01, 0.01, 0.01}))
	assert.False(t, IsConstant([]float64{0.01, 0.02}))
	assert.True(t, IsConstant(nil))
}

func TestPercentile(t *testing.T) {
	tests := []struct {
		name string
		data []float64
		p    float64
		want float64
	}{
		{"median odd", []float64{3, 1, 2}, 50, 2},
		{"median even interpolates", []float64{1, 2, 3, 4}, 50, 2.5},
		{"5th percentile", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}, 5, 1.5},
		{"lower bound", []float64{5, 1, 9}, 0, 1},
		{"upper bound", []float64{5, 1, 9}, 100, 9},
		{"single value", []float64{-0.02}, 5, -0.02},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Percentile(tt.data, tt.p), 1e-12)
		})
	}

	assert.True(t, math.IsNaN(Percentile(nil, 5)))
}

func TestPercentile_DoesNotMutateInput(t *testing.T) {
	data := []float64{3, 1, 2}
	Percentile(data, 50)
	assert.Equal(t, []float64{3, 1, 2}, data)
}

func TestRollingAnnualizedVolatility(t *testing.T) {
	returns := []float64{0.01, -0.02, 0.015, 0.0, -0.01, 0.02, -0.005}
	window := 3

	rolling := RollingAnnualizedVolatility(returns, window)
	require.Len(t, rolling, len(returns)-window+1)

	for i, v := range rolling {
		expected := StdDev(returns[i:i+window]) * math.Sqrt(252)
		assert.InDelta(t, expected, v, 1e-9, "window %d", i)
	}

	assert.Empty(t, RollingAnnualizedVolatility(returns, 10))
	assert.Empty(t, RollingAnnualizedVolatility(returns, 1))
}
