// Package handlers provides HTTP handlers for risk calculations.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/varengine/internal/modules/marketdata"
	"github.com/aristath/varengine/internal/modules/portfolio"
	"github.com/aristath/varengine/internal/modules/risk"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultLookbackDays = 252
	maxRequestBytes     = 8 << 20

	// Upper bounds on per-request overrides; the Monte Carlo cost grows
	// with their product.
	maxSimulations = 1_000_000
	maxTimeHorizon = 252
)

// Handler handles risk HTTP requests
type Handler struct {
	calculator *risk.Calculator
	prices     marketdata.Source
	log        zerolog.Logger
}

// NewHandler creates a new risk handler. prices may be nil, in which case
// only POST /risk/calculate is usable.
func NewHandler(calculator *risk.Calculator, prices marketdata.Source, log zerolog.Logger) *Handler {
	return &Handler{
		calculator: calculator,
		prices:     prices,
		log:        log.With().Str("handler", "risk").Logger(),
	}
}

// CalculateRequest is the body of POST /api/risk/calculate. Exactly one of
// Returns or Prices must be set; rows are periods, columns follow Assets.
type CalculateRequest struct {
	Assets    []string    `json:"assets"`
	Returns   [][]float64 `json:"returns,omitempty"`
	Prices    [][]float64 `json:"prices,omitempty"`
	Dates     []string    `json:"dates,omitempty"` // YYYY-MM-DD, one per price row
	Weights   []float64   `json:"weights,omitempty"`
	Weighting string      `json:"weighting,omitempty"`
	Value     float64     `json:"value"`

	ConfidenceLevel *float64 `json:"confidence_level,omitempty"`
	TimeHorizon     *int     `json:"time_horizon,omitempty"`
	Simulations     *int     `json:"simulations,omitempty"`
	Seed            *uint64  `json:"seed,omitempty"`
}

// requestError marks client mistakes that are not risk-core errors.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{msg: fmt.Sprintf(format, args...)}
}

// HandleCalculate handles POST /api/risk/calculate
func (h *Handler) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req CalculateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		h.writeError(w, r, badRequest("invalid request body: %v", err))
		return
	}

	calc, err := h.calculatorFor(req.ConfidenceLevel, req.TimeHorizon, req.Simulations, req.Seed)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	p, err := buildPortfolio(req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.calculate(w, r, calc, p, start)
}

// HandleGetPortfolioVaR handles GET /api/risk/portfolio/var
func (h *Handler) HandleGetPortfolioVaR(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()

	confidence, err := optionalFloat(q.Get("confidence"), "confidence")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	horizon, err := optionalInt(q.Get("horizon"), "horizon")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	simulations, err := optionalInt(q.Get("simulations"), "simulations")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var seed *uint64
	if s := q.Get("seed"); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			h.writeError(w, r, badRequest("invalid seed %q", s))
			return
		}
		seed = &v
	}

	calc, err := h.calculatorFor(confidence, horizon, simulations, seed)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	p, err := h.loadPortfolio(r, calc.Config().MinObservations)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.calculate(w, r, calc, p, start)
}

// HandleGetPortfolioAnalytics handles GET /api/risk/portfolio/analytics
func (h *Handler) HandleGetPortfolioAnalytics(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	window, err := optionalInt(r.URL.Query().Get("window"), "window")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	p, err := h.loadPortfolio(r, h.calculator.Config().MinObservations)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	win := portfolio.DefaultRollingWindow
	if window != nil {
		win = *window
	}
	analytics := p.Analytics(win)

	h.respond(w, r, http.StatusOK, analytics, map[string]any{
		"run_id":      uuid.New().String(),
		"timestamp":   time.Now().Format(time.RFC3339),
		"assets":      p.Assets(),
		"periods":     p.Periods(),
		"weighting":   p.Scheme(),
		"duration_ms": time.Since(start).Milliseconds(),
	})
}

func (h *Handler) calculate(w http.ResponseWriter, r *http.Request, calc *risk.Calculator, p *portfolio.Portfolio, start time.Time) {
	runID := uuid.New().String()
	log := h.log.With().Str("run_id", runID).Logger()

	result, err := calc.Calculate(r.Context(), p)
	if err != nil {
		log.Debug().Err(err).Msg("Risk calculation failed")
		h.writeError(w, r, err)
		return
	}

	cfg := calc.Config()
	log.Info().
		Strs("assets", p.Assets()).
		Int("periods", p.Periods()).
		Dur("duration", time.Since(start)).
		Msg("Risk calculation served")

	h.respond(w, r, http.StatusOK, result, map[string]any{
		"run_id":           runID,
		"timestamp":        time.Now().Format(time.RFC3339),
		"confidence_level": cfg.ConfidenceLevel,
		"time_horizon":     cfg.TimeHorizon,
		"simulations":      cfg.Simulations,
		"portfolio_value":  p.Value(),
		"weights":          weightMap(p),
		"periods":          p.Periods(),
		"duration_ms":      time.Since(start).Milliseconds(),
	})
}

// calculatorFor applies per-request overrides to the base configuration.
func (h *Handler) calculatorFor(confidence *float64, horizon, simulations *int, seed *uint64) (*risk.Calculator, error) {
	if confidence == nil && horizon == nil && simulations == nil && seed == nil {
		return h.calculator, nil
	}

	if horizon != nil && *horizon > maxTimeHorizon {
		return nil, badRequest("time horizon %d exceeds the maximum of %d", *horizon, maxTimeHorizon)
	}
	if simulations != nil && *simulations > maxSimulations {
		return nil, badRequest("simulations %d exceeds the maximum of %d", *simulations, maxSimulations)
	}

	cfg := h.calculator.Config()
	if confidence != nil {
		cfg.ConfidenceLevel = *confidence
	}
	if horizon != nil {
		cfg.TimeHorizon = *horizon
	}
	if simulations != nil {
		cfg.Simulations = *simulations
	}
	if seed != nil {
		cfg.Seed = *seed
	}
	return h.calculator.WithConfig(cfg)
}

func buildPortfolio(req CalculateRequest) (*portfolio.Portfolio, error) {
	value := req.Value

	switch {
	case len(req.Returns) > 0 && len(req.Prices) > 0:
		return nil, badRequest("set either returns or prices, not both")

	case len(req.Returns) > 0:
		weights := req.Weights
		if weights == nil {
			weights = equalWeights(len(req.Assets))
		}
		p, err := portfolio.NewFromReturns(req.Assets, req.Returns, weights, value)
		if err != nil {
			return nil, wrapBuildError(err)
		}
		if req.Weights == nil && req.Weighting != "" {
			if err := p.Rebalance(portfolio.WeightScheme(req.Weighting)); err != nil {
				return nil, badRequest("%v", err)
			}
		}
		return p, nil

	case len(req.Prices) > 0:
		table, err := priceTable(req)
		if err != nil {
			return nil, err
		}
		p, err := portfolio.New(table, value, portfolio.WeightScheme(req.Weighting))
		if err != nil {
			return nil, wrapBuildError(err)
		}
		if req.Weights != nil {
			if err := p.SetWeights(req.Weights); err != nil {
				return nil, badRequest("%v", err)
			}
		}
		return p, nil

	default:
		return nil, badRequest("returns or prices are required")
	}
}

func priceTable(req CalculateRequest) (*marketdata.PriceTable, error) {
	if len(req.Dates) > 0 && len(req.Dates) != len(req.Prices) {
		return nil, badRequest("got %d dates for %d price rows", len(req.Dates), len(req.Prices))
	}

	table := &marketdata.PriceTable{
		Symbols: req.Assets,
		Dates:   make([]time.Time, len(req.Prices)),
		Rows:    req.Prices,
	}
	base := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -len(req.Prices))
	for i := range req.Prices {
		if len(req.Prices[i]) != len(req.Assets) {
			return nil, badRequest("price row %d has %d values for %d assets", i, len(req.Prices[i]), len(req.Assets))
		}
		if len(req.Dates) == 0 {
			table.Dates[i] = base.AddDate(0, 0, i)
			continue
		}
		d, err := time.Parse("2006-01-02", req.Dates[i])
		if err != nil {
			return nil, badRequest("invalid date %q", req.Dates[i])
		}
		table.Dates[i] = d
	}
	return table, nil
}

// loadPortfolio builds a portfolio from stored history using the symbols,
// days, value and weighting query parameters.
func (h *Handler) loadPortfolio(r *http.Request, minObservations int) (*portfolio.Portfolio, error) {
	if h.prices == nil {
		return nil, errNoPriceSource
	}

	q := r.URL.Query()
	symbols := splitSymbols(q.Get("symbols"))
	if len(symbols) == 0 {
		return nil, badRequest("symbols is required")
	}

	days := defaultLookbackDays
	if d, err := optionalInt(q.Get("days"), "days"); err != nil {
		return nil, err
	} else if d != nil {
		if *d < 1 {
			return nil, badRequest("days must be positive")
		}
		days = *d
	}

	value, err := optionalFloat(q.Get("value"), "value")
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, badRequest("value is required")
	}

	table, err := h.prices.LoadPrices(r.Context(), symbols, time.Time{}, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("failed to load prices: %w", err)
	}
	// days returns need days+1 prices
	table = marketdata.Clean(table.Tail(days+1), marketdata.CleanForwardFill)
	if err := marketdata.Validate(table, minObservations+1); err != nil {
		return nil, err
	}

	p, err := portfolio.New(table, *value, portfolio.WeightScheme(q.Get("weighting")))
	if err != nil {
		return nil, wrapBuildError(err)
	}
	return p, nil
}

var errNoPriceSource = errors.New("no price history configured")

// wrapBuildError keeps risk-core errors intact and marks the rest as client errors.
func wrapBuildError(err error) error {
	var insufficient *risk.InsufficientDataError
	if errors.As(err, &insufficient) {
		return err
	}
	return badRequest("%v", err)
}

func splitSymbols(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func optionalFloat(s, name string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, badRequest("invalid %s %q", name, s)
	}
	return &v, nil
}

func optionalInt(s, name string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, badRequest("invalid %s %q", name, s)
	}
	return &v, nil
}

func equalWeights(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1 / float64(n)
	}
	return w
}

func weightMap(p *portfolio.Portfolio) map[string]float64 {
	weights := p.Weights()
	out := make(map[string]float64, len(weights))
	for i, a := range p.Assets() {
		out[a] = weights[i]
	}
	return out
}

// statusFor maps an error to an HTTP status code.
func statusFor(err error) int {
	var (
		reqErr       *requestError
		invalidCfg   *risk.InvalidConfigurationError
		insufficient *risk.InsufficientDataError
		degenerate   *risk.DegenerateInputError
		validation   *marketdata.ValidationError
	)
	switch {
	case errors.As(err, &reqErr), errors.As(err, &invalidCfg):
		return http.StatusBadRequest
	case errors.As(err, &insufficient), errors.As(err, &degenerate), errors.As(err, &validation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errNoPriceSource):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", r.URL.Path).Msg("Risk request failed")
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	h.respond(w, r, status, nil, map[string]any{
		"timestamp": time.Now().Format(time.RFC3339),
		"error":     msg,
	})
}
