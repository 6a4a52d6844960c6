package risk

import (
	"context"
	"math"
	"slices"

	"github.com/aristath/varengine/pkg/formulas"
)

// HistoricalVaR estimates the alpha-quantile loss by bootstrap resampling of
// the portfolio return series.
//
// Each return is scaled by sqrt(horizon). cfg.BootstrapDraws full-length
// resamples (with replacement) are pooled and the alpha×100 percentile of the
// pool, in absolute value and times the portfolio value, is the VaR.
//
// Draw b always uses the generator stream (seed, b), so a fixed seed gives the
// same answer for any worker count.
func HistoricalVaR(ctx context.Context, portfolioReturns []float64, value float64, cfg Config, seed uint64) (float64, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	n := len(portfolioReturns)
	if n < cfg.MinObservations {
		return 0, insufficient("historical var", n, cfg.MinObservations)
	}

	scale := math.Sqrt(float64(cfg.TimeHorizon))
	scaled := make([]float64, n)
	for i, r := range portfolioReturns {
		scaled[i] = r * scale
	}

	pooled := make([]float64, cfg.BootstrapDraws*n)
	err := runChunks(ctx, cfg.Workers, cfg.BootstrapDraws, func(draw int) error {
		rng := newStream(seed, streamBootstrap, uint64(draw))
		sample := pooled[draw*n : (draw+1)*n]
		for k := range sample {
			sample[k] = scaled[rng.IntN(n)]
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slices.Sort(pooled)
	q := formulas.PercentileSorted(pooled, cfg.Alpha()*100)
	return math.Abs(q * value), nil
}
