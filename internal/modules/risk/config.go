package risk

import "math"

// Defaults
const (
	DefaultConfidenceLevel = 0.95
	DefaultTimeHorizon     = 1
	DefaultSimulations     = 10000
	DefaultBootstrapDraws  = 1000
	DefaultEWMALambda      = 0.94
	DefaultRiskFreeRate    = 0.02
	DefaultMinObservations = 2
)

// Config holds the risk calculator configuration. A Config is treated as a
// value: the calculator copies it at construction and never mutates it.
type Config struct {
	ConfidenceLevel float64 `json:"confidence_level"` // e.g. 0.95
	TimeHorizon     int     `json:"time_horizon"`     // periods over which risk is projected
	Simulations     int     `json:"simulations"`      // Monte Carlo scenarios
	BootstrapDraws  int     `json:"bootstrap_draws"`  // full-series resamples for historical VaR
	EWMALambda      float64 `json:"ewma_lambda"`      // decay factor for the EWMA covariance
	RiskFreeRate    float64 `json:"risk_free_rate"`   // annual, used by the Sharpe ratio
	MinObservations int     `json:"min_observations"` // at least 2
	Seed            uint64  `json:"seed"`             // 0 draws a fresh seed per calculation
	Workers         int     `json:"workers"`          // 0 uses GOMAXPROCS
}

// DefaultConfig returns the configuration used when callers do not override anything.
func DefaultConfig() Config {
	return Config{
		ConfidenceLevel: DefaultConfidenceLevel,
		TimeHorizon:     DefaultTimeHorizon,
		Simulations:     DefaultSimulations,
		BootstrapDraws:  DefaultBootstrapDraws,
		EWMALambda:      DefaultEWMALambda,
		RiskFreeRate:    DefaultRiskFreeRate,
		MinObservations: DefaultMinObservations,
	}
}

// Alpha is the tail probability used for every quantile lookup.
func (c Config) Alpha() float64 {
	return 1 - c.ConfidenceLevel
}

// Validate checks every field and returns an *InvalidConfigurationError for
// the first one out of range.
func (c Config) Validate() error {
	if math.IsNaN(c.ConfidenceLevel) || c.ConfidenceLevel <= 0 || c.ConfidenceLevel >= 1 {
		return invalidConfig("confidence_level", c.ConfidenceLevel, "must be in (0, 1)")
	}
	if c.TimeHorizon <= 0 {
		return invalidConfig("time_horizon", c.TimeHorizon, "must be positive")
	}
	if c.Simulations <= 0 {
		return invalidConfig("simulations", c.Simulations, "must be positive")
	}
	if c.BootstrapDraws <= 0 {
		return invalidConfig("bootstrap_draws", c.BootstrapDraws, "must be positive")
	}
	if math.IsNaN(c.EWMALambda) || c.EWMALambda <= 0 || c.EWMALambda >= 1 {
		return invalidConfig("ewma_lambda", c.EWMALambda, "must be in (0, 1)")
	}
	if math.IsNaN(c.RiskFreeRate) || math.IsInf(c.RiskFreeRate, 0) {
		return invalidConfig("risk_free_rate", c.RiskFreeRate, "must be finite")
	}
	if c.MinObservations < 2 {
		return invalidConfig("min_observations", c.MinObservations, "must be at least 2")
	}
	if c.Workers < 0 {
		return invalidConfig("workers", c.Workers, "must not be negative")
	}
	return nil
}
