// Package config provides configuration management functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aristath/varengine/internal/database"
	"github.com/aristath/varengine/internal/modules/marketdata"
	"github.com/aristath/varengine/internal/modules/risk"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Default schedules (cron with seconds)
const (
	DefaultPriceSyncSchedule  = "0 0 22 * * MON-FRI"
	DefaultRiskReportSchedule = "0 30 22 * * MON-FRI"
	DefaultWALCheckSchedule   = "0 0 * * * *"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for the history database (always absolute)
	LogLevel string

	// HistoryDBProfile is "standard" or "cache". The cache profile trades
	// durability for speed; the history can always be re-synced from the feed.
	HistoryDBProfile string

	Port    int
	DevMode bool

	Risk      risk.Config
	PriceFeed *marketdata.S3Config // nil when no feed bucket is configured

	PriceSyncSchedule  string
	RiskReportSchedule string
	WALCheckSchedule   string

	Watch WatchConfig
}

// WatchConfig is the portfolio reported on by the scheduled risk report
type WatchConfig struct {
	Symbols      []string
	Value        float64
	LookbackDays int
	Weighting    string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("VAR_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	env := &envReader{}

	riskCfg := risk.DefaultConfig()
	riskCfg.ConfidenceLevel = env.getEnvAsFloat("RISK_CONFIDENCE_LEVEL", riskCfg.ConfidenceLevel)
	riskCfg.TimeHorizon = env.getEnvAsInt("RISK_TIME_HORIZON", riskCfg.TimeHorizon)
	riskCfg.Simulations = env.getEnvAsInt("RISK_SIMULATIONS", riskCfg.Simulations)
	riskCfg.BootstrapDraws = env.getEnvAsInt("RISK_BOOTSTRAP_DRAWS", riskCfg.BootstrapDraws)
	riskCfg.EWMALambda = env.getEnvAsFloat("RISK_EWMA_LAMBDA", riskCfg.EWMALambda)
	riskCfg.RiskFreeRate = env.getEnvAsFloat("RISK_FREE_RATE", riskCfg.RiskFreeRate)
	riskCfg.Seed = env.getEnvAsUint64("RISK_SEED", 0)
	riskCfg.Workers = env.getEnvAsInt("RISK_WORKERS", 0)

	cfg := &Config{
		DataDir:  absDataDir,
		LogLevel: getEnv("LOG_LEVEL", "info"),

		HistoryDBProfile: getEnv("HISTORY_DB_PROFILE", string(database.ProfileStandard)),

		Port:     env.getEnvAsInt("PORT", 8080),
		DevMode:  env.getEnvAsBool("DEV_MODE", false),
		Risk:     riskCfg,

		PriceSyncSchedule:  getEnv("PRICE_SYNC_SCHEDULE", DefaultPriceSyncSchedule),
		RiskReportSchedule: getEnv("RISK_REPORT_SCHEDULE", DefaultRiskReportSchedule),
		WALCheckSchedule:   getEnv("WAL_CHECK_SCHEDULE", DefaultWALCheckSchedule),

		Watch: WatchConfig{
			Symbols:      splitList(getEnv("WATCH_SYMBOLS", "")),
			Value:        env.getEnvAsFloat("WATCH_VALUE", 0),
			LookbackDays: env.getEnvAsInt("WATCH_LOOKBACK_DAYS", 252),
			Weighting:    getEnv("WATCH_WEIGHTING", "equal"),
		},
	}

	if bucket := getEnv("PRICE_FEED_BUCKET", ""); bucket != "" {
		cfg.PriceFeed = &marketdata.S3Config{
			Bucket:    bucket,
			Key:       getEnv("PRICE_FEED_KEY", "prices.csv"),
			Endpoint:  getEnv("PRICE_FEED_ENDPOINT", ""),
			Region:    getEnv("PRICE_FEED_REGION", ""),
			AccessKey: getEnv("PRICE_FEED_ACCESS_KEY", ""),
			SecretKey: getEnv("PRICE_FEED_SECRET_KEY", ""),
		}
	}

	if err := env.err(); err != nil {
		return nil, err
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// HistoryDBPath returns the location of the price history database
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.DataDir, "history.db")
}

// Validate checks configuration consistency
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}

	switch database.DatabaseProfile(c.HistoryDBProfile) {
	case database.ProfileStandard, database.ProfileCache:
	default:
		return fmt.Errorf("invalid HISTORY_DB_PROFILE %q (want standard or cache)", c.HistoryDBProfile)
	}

	if err := c.Risk.Validate(); err != nil {
		return fmt.Errorf("invalid risk configuration: %w", err)
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	for name, schedule := range map[string]string{
		"PRICE_SYNC_SCHEDULE":  c.PriceSyncSchedule,
		"RISK_REPORT_SCHEDULE": c.RiskReportSchedule,
		"WAL_CHECK_SCHEDULE":   c.WALCheckSchedule,
	} {
		if _, err := parser.Parse(schedule); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, schedule, err)
		}
	}

	if len(c.Watch.Symbols) > 0 && !(c.Watch.Value > 0) {
		return fmt.Errorf("WATCH_VALUE must be positive when WATCH_SYMBOLS is set")
	}
	if c.Watch.LookbackDays < 1 {
		return fmt.Errorf("WATCH_LOOKBACK_DAYS must be positive")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// envReader parses typed variables and remembers malformed ones so that a
// typo fails startup instead of silently falling back to the default.
type envReader struct {
	errs []error
}

func (r *envReader) getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid integer %q", key, value))
		return defaultValue
	}
	return v
}

func (r *envReader) getEnvAsUint64(key string, defaultValue uint64) uint64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	v, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid unsigned integer %q", key, value))
		return defaultValue
	}
	return v
}

func (r *envReader) getEnvAsFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid number %q", key, value))
		return defaultValue
	}
	return v
}

func (r *envReader) getEnvAsBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(value)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid boolean %q", key, value))
		return defaultValue
	}
	return v
}

func (r *envReader) err() error {
	return errors.Join(r.errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
