package risk

import (
	"context"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Stream domains keep the historical and Monte Carlo generators independent
// when both run under the same seed.
const (
	streamBootstrap  uint64 = 1
	streamMonteCarlo uint64 = 2
)

// NewSeed draws a fresh seed from the runtime-seeded global generator.
func NewSeed() uint64 {
	for {
		if s := rand.Uint64(); s != 0 {
			return s
		}
	}
}

// newStream returns the generator for one independent unit of work (a
// bootstrap draw or a Monte Carlo chunk). The same (seed, domain, index)
// always yields the same sequence.
func newStream(seed, domain, index uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, domain<<56^index))
}

// workerCount resolves the configured worker count.
func workerCount(configured int) int {
	if configured > 0 {
		return configured
	}
	return runtime.GOMAXPROCS(0)
}

// runChunks calls fn for every chunk index in [0, chunks) on at most workers
// goroutines. fn must only write to memory owned by its chunk.
func runChunks(ctx context.Context, workers, chunks int, fn func(chunk int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(workers))

	for c := 0; c < chunks; c++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(c)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
