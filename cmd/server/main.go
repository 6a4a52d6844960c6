// Package main is the entry point for the portfolio Value-at-Risk service.
//
// Startup sequence:
//  1. Load configuration from the environment (.env supported)
//  2. Open and migrate the price history database
//  3. Build the risk calculator, optional S3 price feed and scheduler
//  4. Serve the HTTP API until SIGINT/SIGTERM
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/varengine/internal/config"
	"github.com/aristath/varengine/internal/database"
	"github.com/aristath/varengine/internal/modules/marketdata"
	"github.com/aristath/varengine/internal/modules/portfolio"
	"github.com/aristath/varengine/internal/modules/risk"
	"github.com/aristath/varengine/internal/scheduler"
	"github.com/aristath/varengine/internal/server"
	"github.com/aristath/varengine/pkg/logger"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	version := getEnv("VERSION", "dev")
	log.Info().Str("version", version).Msg("Starting VaR engine")

	historyDB, err := database.New(database.Config{
		Path:    cfg.HistoryDBPath(),
		Profile: database.DatabaseProfile(cfg.HistoryDBProfile),
		Name:    "history",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open history database")
	}
	defer historyDB.Close()

	if err := historyDB.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate history database")
	}

	store := marketdata.NewHistoryStore(historyDB, log)

	calculator, err := risk.NewCalculator(cfg.Risk, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid risk configuration")
	}

	sched := scheduler.New(log)

	if err := sched.AddJob(cfg.WALCheckSchedule, scheduler.NewCheckWALCheckpointsJob(historyDB, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule WAL check")
	}

	if cfg.PriceFeed != nil {
		feed, err := marketdata.NewS3Source(context.Background(), *cfg.PriceFeed, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to configure price feed")
		}
		if err := sched.AddJob(cfg.PriceSyncSchedule, scheduler.NewPriceSyncJob(feed, store, 0, log)); err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule price sync")
		}
	} else {
		log.Warn().Msg("PRICE_FEED_BUCKET not set - price history must be loaded externally")
	}

	var riskReport server.RiskReporter
	if len(cfg.Watch.Symbols) > 0 {
		report := scheduler.NewRiskReportJob(store, calculator, scheduler.RiskReportConfig{
			Symbols:      cfg.Watch.Symbols,
			Value:        cfg.Watch.Value,
			LookbackDays: cfg.Watch.LookbackDays,
			Weighting:    portfolio.WeightScheme(cfg.Watch.Weighting),
		}, log)
		if err := sched.AddJob(cfg.RiskReportSchedule, report); err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule risk report")
		}
		riskReport = report
	}

	sched.Start()

	srv := server.New(server.Config{
		Log:        log,
		HistoryDB:  historyDB,
		Store:      store,
		Calculator: calculator,
		Scheduler:  sched,
		RiskReport: riskReport,
		Port:       cfg.Port,
		DevMode:    cfg.DevMode,
		Version:    version,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	sched.Stop()

	if err := historyDB.WALCheckpoint(shutdownCtx, "TRUNCATE"); err != nil {
		log.Warn().Err(err).Msg("Final WAL checkpoint failed")
	}

	log.Info().Msg("Server stopped")
}
