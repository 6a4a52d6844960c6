package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aristath/varengine/internal/modules/marketdata"
	"github.com/aristath/varengine/internal/modules/portfolio"
	"github.com/aristath/varengine/internal/modules/risk"
	"github.com/rs/zerolog"
)

// RiskReportConfig describes the watched portfolio
type RiskReportConfig struct {
	Symbols      []string
	Value        float64
	LookbackDays int
	Weighting    portfolio.WeightScheme
	Timeout      time.Duration
}

// RiskReportJob computes the risk of the watched portfolio from stored
// history and logs it. Results are kept only as the latest in-memory report.
type RiskReportJob struct {
	prices     marketdata.Source
	calculator *risk.Calculator
	cfg        RiskReportConfig
	log        zerolog.Logger

	mu     sync.RWMutex
	last   *risk.Result
	lastAt time.Time
}

// NewRiskReportJob creates a new RiskReportJob
func NewRiskReportJob(prices marketdata.Source, calculator *risk.Calculator, cfg RiskReportConfig, log zerolog.Logger) *RiskReportJob {
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 252
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	return &RiskReportJob{
		prices:     prices,
		calculator: calculator,
		cfg:        cfg,
		log:        log.With().Str("job", "risk_report").Logger(),
	}
}

// Name returns the job name
func (j *RiskReportJob) Name() string {
	return "risk_report"
}

// Run executes the risk report
func (j *RiskReportJob) Run() error {
	if len(j.cfg.Symbols) == 0 {
		j.log.Debug().Msg("No watched symbols, skipping risk report")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.cfg.Timeout)
	defer cancel()

	table, err := j.prices.LoadPrices(ctx, j.cfg.Symbols, time.Time{}, time.Time{})
	if err != nil {
		return fmt.Errorf("failed to load prices: %w", err)
	}

	table = marketdata.Clean(table.Tail(j.cfg.LookbackDays+1), marketdata.CleanForwardFill)
	if err := marketdata.Validate(table, j.calculator.Config().MinObservations+1); err != nil {
		return err
	}

	p, err := portfolio.New(table, j.cfg.Value, j.cfg.Weighting)
	if err != nil {
		return fmt.Errorf("failed to build portfolio: %w", err)
	}

	result, err := j.calculator.Calculate(ctx, p)
	if err != nil {
		return fmt.Errorf("risk calculation failed: %w", err)
	}

	j.mu.Lock()
	j.last, j.lastAt = result, time.Now()
	j.mu.Unlock()

	j.log.Info().
		Strs("symbols", p.Assets()).
		Float64("value", p.Value()).
		Float64("historical_var", result.Historical).
		Float64("parametric_var", result.Parametric).
		Float64("monte_carlo_var", result.MonteCarlo).
		Float64("volatility", result.Volatility).
		Float64("sharpe_ratio", result.SharpeRatio).
		Float64("max_drawdown", result.MaxDrawdown).
		Uint64("seed", result.Seed).
		Msg("Risk report")

	return nil
}

// Last returns the most recent report and when it was produced.
func (j *RiskReportJob) Last() (*risk.Result, time.Time) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.last, j.lastAt
}
