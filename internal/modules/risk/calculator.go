// Package risk is the portfolio Value-at-Risk engine: three VaR estimators
// (historical bootstrap, EWMA parametric, Student-t Monte Carlo), derived
// performance metrics and an Euler decomposition of risk across assets.
//
// Every estimator is a plain function of its inputs. The only implicit
// resource is randomness, which is always derived from an explicit seed.
package risk

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// Result is one risk calculation. It is created per call and never stored.
type Result struct {
	Historical   float64            `json:"historical" msgpack:"historical"`
	Parametric   float64            `json:"parametric" msgpack:"parametric"`
	MonteCarlo   float64            `json:"monte_carlo" msgpack:"monte_carlo"`
	Volatility   float64            `json:"volatility" msgpack:"volatility"`
	SharpeRatio  float64            `json:"sharpe_ratio" msgpack:"sharpe_ratio"`
	MaxDrawdown  float64            `json:"max_drawdown" msgpack:"max_drawdown"`
	VaRBreakdown map[string]float64 `json:"var_breakdown" msgpack:"var_breakdown"`
	Seed         uint64             `json:"seed" msgpack:"seed"` // seed the stochastic methods ran with
}

// ToMap returns the result as the metric-name mapping consumed by reporting.
func (r *Result) ToMap() map[string]any {
	return map[string]any{
		"historical":    r.Historical,
		"parametric":    r.Parametric,
		"monte_carlo":   r.MonteCarlo,
		"volatility":    r.Volatility,
		"sharpe_ratio":  r.SharpeRatio,
		"max_drawdown":  r.MaxDrawdown,
		"var_breakdown": r.VaRBreakdown,
	}
}

// Calculator runs every estimator against a portfolio with a fixed configuration.
type Calculator struct {
	cfg Config
	log zerolog.Logger
}

// NewCalculator validates cfg and returns a calculator bound to it.
func NewCalculator(cfg Config, log zerolog.Logger) (*Calculator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{
		cfg: cfg,
		log: log.With().Str("component", "risk_calculator").Logger(),
	}, nil
}

// Config returns a copy of the calculator configuration.
func (c *Calculator) Config() Config {
	return c.cfg
}

// WithConfig returns a new calculator sharing the logger but using cfg.
func (c *Calculator) WithConfig(cfg Config) (*Calculator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{cfg: cfg, log: c.log}, nil
}

// Calculate assembles the full result. The first failing estimator aborts the
// whole calculation; no partial result is returned.
func (c *Calculator) Calculate(ctx context.Context, p Portfolio) (*Result, error) {
	if err := ValidatePortfolio(p, c.cfg.MinObservations); err != nil {
		return nil, err
	}

	seed := c.cfg.Seed
	if seed == 0 {
		seed = NewSeed()
	}

	started := time.Now()
	assets := p.Assets()
	returns := p.Returns()
	weights := p.Weights()
	portfolioReturns := p.PortfolioReturns()
	value := p.Value()

	c.log.Debug().
		Int("assets", len(assets)).
		Int("observations", len(portfolioReturns)).
		Float64("confidence_level", c.cfg.ConfidenceLevel).
		Int("time_horizon", c.cfg.TimeHorizon).
		Int("simulations", c.cfg.Simulations).
		Uint64("seed", seed).
		Msg("Starting risk calculation")

	result := &Result{Seed: seed}
	var err error

	if result.Historical, err = c.timed("historical", func() (float64, error) {
		return HistoricalVaR(ctx, portfolioReturns, value, c.cfg, seed)
	}); err != nil {
		return nil, err
	}
	if result.Parametric, err = c.timed("parametric", func() (float64, error) {
		return ParametricVaR(returns, weights, value, c.cfg)
	}); err != nil {
		return nil, err
	}
	if result.MonteCarlo, err = c.timed("monte_carlo", func() (float64, error) {
		return MonteCarloVaR(ctx, portfolioReturns, value, c.cfg, seed)
	}); err != nil {
		return nil, err
	}
	if result.Volatility, err = Volatility(portfolioReturns); err != nil {
		return nil, fmt.Errorf("volatility: %w", err)
	}
	if result.SharpeRatio, err = SharpeRatio(portfolioReturns, c.cfg.RiskFreeRate); err != nil {
		return nil, fmt.Errorf("sharpe ratio: %w", err)
	}
	if result.MaxDrawdown, err = MaxDrawdown(portfolioReturns); err != nil {
		return nil, fmt.Errorf("max drawdown: %w", err)
	}

	breakdown, err := ComponentVaR(assets, returns, weights, value)
	if err != nil {
		return nil, fmt.Errorf("var breakdown: %w", err)
	}
	result.VaRBreakdown = breakdown.Components

	if err := result.checkFinite(); err != nil {
		return nil, err
	}

	c.log.Info().
		Float64("historical", result.Historical).
		Float64("parametric", result.Parametric).
		Float64("monte_carlo", result.MonteCarlo).
		Float64("volatility", result.Volatility).
		Float64("sharpe_ratio", result.SharpeRatio).
		Float64("max_drawdown", result.MaxDrawdown).
		Dur("elapsed", time.Since(started)).
		Msg("Risk calculation complete")

	return result, nil
}

// checkFinite rejects results that overflowed; extreme but finite inputs can
// push the annualized covariance to +Inf.
func (r *Result) checkFinite() error {
	metrics := r.ToMap()
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if v, ok := metrics[name].(float64); ok && !isFinite(v) {
			return degenerate("risk calculation", fmt.Sprintf("%s is not finite", name))
		}
	}
	assets := make([]string, 0, len(r.VaRBreakdown))
	for asset := range r.VaRBreakdown {
		assets = append(assets, asset)
	}
	sort.Strings(assets)
	for _, asset := range assets {
		if !isFinite(r.VaRBreakdown[asset]) {
			return degenerate("risk calculation", fmt.Sprintf("var_breakdown[%s] is not finite", asset))
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (c *Calculator) timed(method string, fn func() (float64, error)) (float64, error) {
	start := time.Now()
	v, err := fn()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", method, err)
	}
	c.log.Debug().
		Str("method", method).
		Float64("var", v).
		Dur("elapsed", time.Since(start)).
		Msg("VaR method finished")
	return v, nil
}
