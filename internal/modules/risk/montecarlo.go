package risk

import (
	"context"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/aristath/varengine/pkg/formulas"
)

// monteCarloChunk is the number of scenarios generated per generator stream.
// It is fixed so results do not depend on the worker count.
const monteCarloChunk = 1024

// cancelCheckInterval is how many scenarios run between context checks
// inside a chunk.
const cancelCheckInterval = 64

// MonteCarloVaR fits a Student-t to the portfolio return series, simulates
// cfg.Simulations horizon returns (each the sum of TimeHorizon i.i.d. draws),
// converts them to P&L and returns |alpha×100 percentile|.
func MonteCarloVaR(ctx context.Context, portfolioReturns []float64, value float64, cfg Config, seed uint64) (float64, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	if n := len(portfolioReturns); n < cfg.MinObservations {
		return 0, insufficient("monte carlo var", n, cfg.MinObservations)
	}

	params, err := FitStudentT(portfolioReturns)
	if err != nil {
		return 0, err
	}

	scenarios, err := simulateScenarios(ctx, params, value, cfg, seed)
	if err != nil {
		return 0, err
	}

	slices.Sort(scenarios)
	q := formulas.PercentileSorted(scenarios, cfg.Alpha()*100)
	return math.Abs(q), nil
}

// simulateScenarios returns the unsorted scenario P&L set.
func simulateScenarios(ctx context.Context, params StudentTParams, value float64, cfg Config, seed uint64) ([]float64, error) {
	scenarios := make([]float64, cfg.Simulations)
	chunks := (cfg.Simulations + monteCarloChunk - 1) / monteCarloChunk

	err := runChunks(ctx, cfg.Workers, chunks, func(chunk int) error {
		dist := distuv.StudentsT{
			Mu:    params.Mu,
			Sigma: params.Sigma,
			Nu:    params.Nu,
			Src:   newStream(seed, streamMonteCarlo, uint64(chunk)),
		}

		start := chunk * monteCarloChunk
		end := min(start+monteCarloChunk, cfg.Simulations)
		for i := start; i < end; i++ {
			if (i-start)%cancelCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			horizonReturn := 0.0
			for d := 0; d < cfg.TimeHorizon; d++ {
				horizonReturn += dist.Rand()
			}
			scenarios[i] = horizonReturn * value
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return scenarios, nil
}
