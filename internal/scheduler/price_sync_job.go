package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/varengine/internal/modules/marketdata"
	"github.com/rs/zerolog"
)

// PriceFeed is a remote source of the full price table
type PriceFeed interface {
	Fetch(ctx context.Context) (*marketdata.PriceTable, error)
	Name() string
}

// PriceWriter persists a price table
type PriceWriter interface {
	SavePrices(ctx context.Context, table *marketdata.PriceTable, source string) (int, error)
}

// PriceSyncJob copies the remote price feed into the history store
type PriceSyncJob struct {
	feed    PriceFeed
	store   PriceWriter
	timeout time.Duration
	log     zerolog.Logger
}

// NewPriceSyncJob creates a new PriceSyncJob
func NewPriceSyncJob(feed PriceFeed, store PriceWriter, timeout time.Duration, log zerolog.Logger) *PriceSyncJob {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &PriceSyncJob{
		feed:    feed,
		store:   store,
		timeout: timeout,
		log:     log.With().Str("job", "price_sync").Logger(),
	}
}

// Name returns the job name
func (j *PriceSyncJob) Name() string {
	return "price_sync"
}

// Run executes the price sync
func (j *PriceSyncJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()

	table, err := j.feed.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch price feed: %w", err)
	}

	written, err := j.store.SavePrices(ctx, table, j.feed.Name())
	if err != nil {
		return fmt.Errorf("failed to save prices: %w", err)
	}

	j.log.Info().
		Str("feed", j.feed.Name()).
		Int("symbols", len(table.Symbols)).
		Int("days", table.Len()).
		Int("prices", written).
		Dur("duration", time.Since(start)).
		Msg("Price sync completed")

	return nil
}
