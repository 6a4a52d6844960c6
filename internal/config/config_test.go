package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"VAR_DATA_DIR", "LOG_LEVEL", "PORT", "DEV_MODE", "HISTORY_DB_PROFILE",
	"RISK_CONFIDENCE_LEVEL", "RISK_TIME_HORIZON", "RISK_SIMULATIONS", "RISK_BOOTSTRAP_DRAWS",
	"RISK_EWMA_LAMBDA", "RISK_FREE_RATE", "RISK_SEED", "RISK_WORKERS",
	"PRICE_FEED_BUCKET", "PRICE_FEED_KEY", "PRICE_FEED_ENDPOINT", "PRICE_FEED_REGION",
	"PRICE_FEED_ACCESS_KEY", "PRICE_FEED_SECRET_KEY",
	"PRICE_SYNC_SCHEDULE", "RISK_REPORT_SCHEDULE", "WAL_CHECK_SCHEDULE",
	"WATCH_SYMBOLS", "WATCH_VALUE", "WATCH_LOOKBACK_DAYS", "WATCH_WEIGHTING",
}

// cleanEnv blanks every variable Load reads; t.Setenv restores them afterwards.
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
	t.Setenv("VAR_DATA_DIR", t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	cleanEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.DevMode)
	assert.Equal(t, 0.95, cfg.Risk.ConfidenceLevel)
	assert.Equal(t, 1, cfg.Risk.TimeHorizon)
	assert.Equal(t, 10000, cfg.Risk.Simulations)
	assert.Equal(t, uint64(0), cfg.Risk.Seed)
	assert.Equal(t, 0.02, cfg.Risk.RiskFreeRate)
	assert.Nil(t, cfg.PriceFeed)
	assert.Equal(t, DefaultPriceSyncSchedule, cfg.PriceSyncSchedule)
	assert.Empty(t, cfg.Watch.Symbols)
	assert.Equal(t, 252, cfg.Watch.LookbackDays)
	assert.Contains(t, cfg.HistoryDBPath(), "history.db")
	assert.Equal(t, "standard", cfg.HistoryDBProfile)
}

func TestLoad_Overrides(t *testing.T) {
	cleanEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("HISTORY_DB_PROFILE", "cache")
	t.Setenv("RISK_CONFIDENCE_LEVEL", "0.99")
	t.Setenv("RISK_TIME_HORIZON", "10")
	t.Setenv("RISK_SEED", "42")
	t.Setenv("PRICE_FEED_BUCKET", "prices")
	t.Setenv("PRICE_FEED_ENDPOINT", "https://example.r2.cloudflarestorage.com")
	t.Setenv("WATCH_SYMBOLS", "AAA, BBB,,CCC")
	t.Setenv("WATCH_VALUE", "250000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, "cache", cfg.HistoryDBProfile)
	assert.Equal(t, 0.99, cfg.Risk.ConfidenceLevel)
	assert.Equal(t, 10, cfg.Risk.TimeHorizon)
	assert.Equal(t, uint64(42), cfg.Risk.Seed)
	require.NotNil(t, cfg.PriceFeed)
	assert.Equal(t, "prices", cfg.PriceFeed.Bucket)
	assert.Equal(t, "prices.csv", cfg.PriceFeed.Key)
	assert.Equal(t, []string{"AAA", "BBB", "CCC"}, cfg.Watch.Symbols)
	assert.Equal(t, 250000.0, cfg.Watch.Value)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"malformed number", "RISK_CONFIDENCE_LEVEL", "high"},
		{"confidence out of range", "RISK_CONFIDENCE_LEVEL", "1.5"},
		{"zero horizon", "RISK_TIME_HORIZON", "0"},
		{"negative simulations", "RISK_SIMULATIONS", "-5"},
		{"bad port", "PORT", "70000"},
		{"bad bool", "DEV_MODE", "sometimes"},
		{"unknown db profile", "HISTORY_DB_PROFILE", "turbo"},
		{"bad schedule", "PRICE_SYNC_SCHEDULE", "whenever"},
		{"watch without value", "WATCH_SYMBOLS", "AAA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
