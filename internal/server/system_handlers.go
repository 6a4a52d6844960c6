package server

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/varengine/internal/database"
	"github.com/aristath/varengine/internal/modules/marketdata"
	"github.com/aristath/varengine/internal/modules/risk"
	"github.com/aristath/varengine/internal/scheduler"
)

// RiskReporter exposes the latest scheduled risk report
type RiskReporter interface {
	Last() (*risk.Result, time.Time)
}

// SystemHandlers serves health, status and job endpoints
type SystemHandlers struct {
	log       zerolog.Logger
	historyDB *database.DB
	store     *marketdata.HistoryStore
	scheduler *scheduler.Scheduler
	report    RiskReporter
	version   string
	startedAt time.Time
}

// NewSystemHandlers creates system handlers. Every dependency is optional.
func NewSystemHandlers(
	log zerolog.Logger,
	historyDB *database.DB,
	store *marketdata.HistoryStore,
	sched *scheduler.Scheduler,
	report RiskReporter,
	version string,
) *SystemHandlers {
	if version == "" {
		version = "dev"
	}
	return &SystemHandlers{
		log:       log.With().Str("handler", "system").Logger(),
		historyDB: historyDB,
		store:     store,
		scheduler: sched,
		report:    report,
		version:   version,
		startedAt: time.Now(),
	}
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status     string  `json:"status"`
	Service    string  `json:"service"`
	Version    string  `json:"version"`
	Database   string  `json:"database"`
	CPUPercent float64 `json:"cpu_percent"`
	RAMPercent float64 `json:"ram_percent"`
	Timestamp  string  `json:"timestamp"`
}

// HandleHealth handles GET /health
// With ?detail=full the database check includes PRAGMA integrity_check.
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "healthy",
		Service:   "varengine",
		Version:   h.version,
		Database:  "not configured",
		Timestamp: time.Now().Format(time.RFC3339),
	}
	resp.CPUPercent, resp.RAMPercent = h.getSystemStats()

	status := http.StatusOK
	if h.historyDB != nil {
		check, timeout := h.historyDB.QuickCheck, 2*time.Second
		if r.URL.Query().Get("detail") == "full" {
			check, timeout = h.historyDB.HealthCheck, 30*time.Second
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		if err := check(ctx); err != nil {
			h.log.Warn().Err(err).Msg("History database health check failed")
			resp.Status = "degraded"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		} else {
			resp.Database = "ok"
		}
	}

	writeJSON(w, status, resp)
}

// SystemStatusResponse is returned by GET /api/system/status
type SystemStatusResponse struct {
	Version       string          `json:"version"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	GoRoutines    int             `json:"goroutines"`
	CPUPercent    float64         `json:"cpu_percent"`
	RAMPercent    float64         `json:"ram_percent"`
	Database      *database.Stats `json:"database,omitempty"`
	Symbols       int             `json:"symbols"`
	LastPriceSync string          `json:"last_price_sync,omitempty"`
	LastReport    *ReportStatus   `json:"last_risk_report,omitempty"`
	Jobs          []string        `json:"jobs"`
}

// ReportStatus is the latest scheduled risk report
type ReportStatus struct {
	At     string       `json:"at"`
	Result *risk.Result `json:"result"`
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	resp := SystemStatusResponse{
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		GoRoutines:    runtime.NumGoroutine(),
		Jobs:          []string{},
	}
	resp.CPUPercent, resp.RAMPercent = h.getSystemStats()

	if h.historyDB != nil {
		stats, err := h.historyDB.GetStats(r.Context())
		if err != nil {
			h.log.Warn().Err(err).Msg("Failed to get database stats")
		} else {
			resp.Database = stats
		}
	}

	if h.store != nil {
		if symbols, err := h.store.Symbols(r.Context()); err == nil {
			resp.Symbols = len(symbols)
		}
		if last, err := h.store.LastSync(r.Context()); err == nil && !last.IsZero() {
			resp.LastPriceSync = last.Format(time.RFC3339)
		}
	}

	if h.report != nil {
		if result, at := h.report.Last(); result != nil {
			resp.LastReport = &ReportStatus{At: at.Format(time.RFC3339), Result: result}
		}
	}

	if h.scheduler != nil {
		resp.Jobs = h.scheduler.JobNames()
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleListJobs handles GET /api/system/jobs
func (h *SystemHandlers) HandleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := []string{}
	if h.scheduler != nil {
		jobs = h.scheduler.JobNames()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"jobs": jobs})
}

// HandleTriggerJob runs a registered job immediately
// POST /api/system/jobs/{name}
func (h *SystemHandlers) HandleTriggerJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if h.scheduler == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "error",
			"message": "scheduler not running",
		})
		return
	}

	h.log.Info().Str("job", name).Msg("Manual job triggered")

	start := time.Now()
	if err := h.scheduler.RunByName(name); err != nil {
		status := http.StatusInternalServerError
		var unknown *scheduler.UnknownJobError
		if errors.As(err, &unknown) {
			status = http.StatusNotFound
		} else {
			h.log.Error().Err(err).Str("job", name).Msg("Manual job failed")
		}
		writeJSON(w, status, map[string]string{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "success",
		"job":         name,
		"duration_ms": time.Since(start).Milliseconds(),
	})
}

// getSystemStats returns CPU and RAM usage percentages.
// CPU is sampled over 100ms to keep health checks fast.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}
	return cpuAvg, memStat.UsedPercent
}
