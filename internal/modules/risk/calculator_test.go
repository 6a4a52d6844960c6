package risk

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculator_Calculate(t *testing.T) {
	assets := []string{"AAPL", "MSFT", "TLT"}
	p := newTestPortfolio(assets, gaussianReturns(31, 500, []float64{0.015, 0.012, 0.008}), []float64{0.4, 0.4, 0.2}, 100000)

	calc, err := NewCalculator(testConfig(), nopLogger())
	require.NoError(t, err)

	result, err := calc.Calculate(context.Background(), p)
	require.NoError(t, err)

	assert.Greater(t, result.Historical, 0.0)
	assert.Greater(t, result.Parametric, 0.0)
	assert.Greater(t, result.MonteCarlo, 0.0)
	assert.Greater(t, result.Volatility, 0.0)
	assert.Greater(t, result.MaxDrawdown, 0.0)
	assert.Equal(t, uint64(42), result.Seed)

	require.Len(t, result.VaRBreakdown, 3)
	for _, a := range assets {
		assert.Contains(t, result.VaRBreakdown, a)
	}

	m := result.ToMap()
	for _, key := range []string{"historical", "parametric", "monte_carlo", "volatility", "sharpe_ratio", "max_drawdown", "var_breakdown"} {
		assert.Contains(t, m, key)
	}
	assert.Len(t, m, 7)
}

func TestCalculator_ReproducibleWithSeed(t *testing.T) {
	p := newTestPortfolio([]string{"A", "B"}, gaussianReturns(2, 300, []float64{0.01, 0.02}), []float64{0.5, 0.5}, 50000)

	calc, err := NewCalculator(testConfig(), nopLogger())
	require.NoError(t, err)

	first, err := calc.Calculate(context.Background(), p)
	require.NoError(t, err)
	second, err := calc.Calculate(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCalculator_UnseededRecordsSeed(t *testing.T) {
	p := newTestPortfolio([]string{"A", "B"}, gaussianReturns(2, 300, []float64{0.01, 0.02}), []float64{0.5, 0.5}, 50000)

	cfg := testConfig()
	cfg.Seed = 0
	calc, err := NewCalculator(cfg, nopLogger())
	require.NoError(t, err)

	result, err := calc.Calculate(context.Background(), p)
	require.NoError(t, err)
	require.NotZero(t, result.Seed)

	// Replaying the recorded seed reproduces the stochastic estimates.
	cfg.Seed = result.Seed
	replay, err := calc.WithConfig(cfg)
	require.NoError(t, err)
	again, err := replay.Calculate(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, result.Historical, again.Historical)
	assert.Equal(t, result.MonteCarlo, again.MonteCarlo)
}

func TestCalculator_DegenerateInputAbortsWholeResult(t *testing.T) {
	rows := make([][]float64, 60)
	for i := range rows {
		rows[i] = []float64{0, 0}
	}
	p := newTestPortfolio([]string{"A", "B"}, rows, []float64{0.5, 0.5}, 100000)

	calc, err := NewCalculator(testConfig(), nopLogger())
	require.NoError(t, err)

	// Historical VaR on its own is well defined.
	h, err := HistoricalVaR(context.Background(), p.PortfolioReturns(), p.Value(), testConfig(), 1)
	require.NoError(t, err)
	assert.InDelta(t, 0, h, 1e-12)

	result, err := calc.Calculate(context.Background(), p)
	assert.Nil(t, result)

	var degErr *DegenerateInputError
	require.True(t, errors.As(err, &degErr), "got %v", err)
}

func TestCalculator_InsufficientData(t *testing.T) {
	p := newTestPortfolio([]string{"A"}, [][]float64{{0.01}}, []float64{1}, 1000)

	calc, err := NewCalculator(testConfig(), nopLogger())
	require.NoError(t, err)

	_, err = calc.Calculate(context.Background(), p)
	var dataErr *InsufficientDataError
	assert.ErrorAs(t, err, &dataErr)
}

func TestCalculator_RejectsMalformedPortfolio(t *testing.T) {
	calc, err := NewCalculator(testConfig(), nopLogger())
	require.NoError(t, err)

	tests := []struct {
		name string
		p    *testPortfolio
	}{
		{"weights mismatch", newTestPortfolio([]string{"A", "B"}, orthogonalPattern(8, 0.01), []float64{1}, 1)},
		{"non-positive value", newTestPortfolio([]string{"A", "B"}, orthogonalPattern(8, 0.01), []float64{0.5, 0.5}, 0)},
		{"duplicate asset", newTestPortfolio([]string{"A", "A"}, orthogonalPattern(8, 0.01), []float64{0.5, 0.5}, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calc.Calculate(context.Background(), tt.p)
			assert.Error(t, err)
		})
	}
}

func TestCalculator_DecompositionMatchesParametricStyleTotal(t *testing.T) {
	assets := []string{"A", "B", "C"}
	p := newTestPortfolio(assets, gaussianReturns(13, 400, []float64{0.01, 0.02, 0.015}), []float64{0.3, 0.3, 0.4}, 100000)

	calc, err := NewCalculator(testConfig(), nopLogger())
	require.NoError(t, err)
	result, err := calc.Calculate(context.Background(), p)
	require.NoError(t, err)

	sum := 0.0
	for _, v := range result.VaRBreakdown {
		sum += v
	}
	assert.InEpsilon(t, result.Volatility*p.Value(), sum, 0.01)
}

func TestResult_CheckFinite(t *testing.T) {
	ok := &Result{Historical: 1, Parametric: 2, MonteCarlo: 3, VaRBreakdown: map[string]float64{"A": 1}}
	assert.NoError(t, ok.checkFinite())

	tests := []struct {
		name   string
		result *Result
	}{
		{"infinite parametric", &Result{Parametric: math.Inf(1)}},
		{"nan sharpe", &Result{SharpeRatio: math.NaN()}},
		{"infinite component", &Result{VaRBreakdown: map[string]float64{"A": 1, "B": math.Inf(-1)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var degErr *DegenerateInputError
			assert.ErrorAs(t, tt.result.checkFinite(), &degErr)
		})
	}
}

func TestCalculator_LogsSummary(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	p := newTestPortfolio([]string{"A", "B"}, gaussianReturns(4, 200, []float64{0.01, 0.02}), []float64{0.5, 0.5}, 1000)
	calc, err := NewCalculator(testConfig(), log)
	require.NoError(t, err)

	_, err = calc.Calculate(context.Background(), p)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Risk calculation complete")
	assert.Contains(t, buf.String(), `"component":"risk_calculator"`)
}
