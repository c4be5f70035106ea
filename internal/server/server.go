package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/iwvelando/finance-schedule/internal/config"
	"github.com/iwvelando/finance-schedule/internal/projection"
	"github.com/iwvelando/finance-schedule/pkg/constants"
	"github.com/iwvelando/finance-schedule/pkg/currency"
	"github.com/iwvelando/finance-schedule/pkg/datetime"
	"github.com/iwvelando/finance-schedule/pkg/metrics"
	"github.com/iwvelando/finance-schedule/pkg/schedule"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RateSource is the live rate table and the sequence number it was applied under.
type RateSource interface {
	Table() currency.Table
	Sequence() uint64
}

// Dependencies are the domain collaborators served over HTTP.
type Dependencies struct {
	Rates    RateSource
	Payments []schedule.Schedule
	Display  string
}

type handler struct {
	logger         *zap.Logger
	maxRequestSize int64
	version        string
	rates          RateSource
	converter      *currency.Converter
	payments       []schedule.Schedule
	display        string
}

// NewHandler constructs the HTTP handler that serves the schedule API.
func NewHandler(logger *zap.Logger, maxRequestSize int64, version string, deps Dependencies) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxRequestSize <= 0 {
		maxRequestSize = constants.DefaultMaxRequestSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	display := currency.Normalize(deps.Display)
	if display == "" {
		display = constants.DefaultBaseCurrency
	}

	h := &handler{
		logger:         logger,
		maxRequestSize: maxRequestSize,
		version:        trimmedVersion,
		rates:          deps.Rates,
		payments:       deps.Payments,
		display:        display,
	}
	var source currency.TableSource
	if deps.Rates != nil {
		source = deps.Rates
	}
	h.converter = currency.NewConverter(source, logger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(countRequests)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", h.handleVersion)
		r.Get("/rates", h.handleRates)
		r.Post("/convert", h.handleConvert)
		r.Post("/preview", h.handlePreview)
		r.Post("/impact", h.handleImpact)
		r.Get("/month/{month}", h.handleMonth)
		r.Post("/month/{month}", h.handleMonthPayments)
	})

	return r
}

// countRequests records every request by route pattern and status code.
func countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

type ratesResponse struct {
	Base     string                     `json:"base"`
	Rates    map[string]decimal.Decimal `json:"rates"`
	Sequence uint64                     `json:"sequence"`
}

func (h *handler) handleRates(w http.ResponseWriter, r *http.Request) {
	resp := ratesResponse{Rates: map[string]decimal.Decimal{}}
	if h.rates != nil {
		table := h.rates.Table()
		resp.Base = table.Base
		if table.Rates != nil {
			resp.Rates = table.Rates
		}
		resp.Sequence = h.rates.Sequence()
	}
	h.writeJSON(w, http.StatusOK, resp)
}

type convertRequest struct {
	Amount decimal.Decimal `json:"amount"`
	From   string          `json:"from"`
	To     string          `json:"to"`
	Strict bool            `json:"strict"`
}

type convertResponse struct {
	Amount  decimal.Decimal `json:"amount"`
	From    string          `json:"from"`
	To      string          `json:"to"`
	Result  decimal.Decimal `json:"result"`
	Rate    decimal.Decimal `json:"rate"`
	Outcome string          `json:"outcome"`
}

func (h *handler) handleConvert(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleConvert"

	var req convertRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}

	from := currency.Normalize(req.From)
	to := currency.Normalize(req.To)
	resp := convertResponse{
		Amount: req.Amount,
		From:   from,
		To:     to,
		Rate:   h.converter.ExchangeRate(from, to),
	}

	if req.Strict {
		result, err := h.converter.ConvertStrict(req.Amount, from, to)
		if err != nil {
			status := http.StatusUnprocessableEntity
			if errors.Is(err, currency.ErrCurrencyNotSpecified) {
				status = http.StatusBadRequest
			}
			h.respondError(w, status, err.Error(), op)
			return
		}
		resp.Result = result
		resp.Outcome = currency.Converted.String()
		if from == to {
			resp.Outcome = currency.Identity.String()
		}
	} else {
		result, outcome := h.converter.Convert(req.Amount, from, to)
		resp.Result = result
		resp.Outcome = outcome.String()
	}

	h.writeJSON(w, http.StatusOK, resp)
}

type previewRequest struct {
	StartDate string `json:"startDate"`
	Frequency string `json:"frequency"`
	Count     *int   `json:"count"`
}

type previewResponse struct {
	Frequency schedule.Frequency `json:"frequency"`
	AnchorDay int                `json:"anchorDay,omitempty"`
	Dates     []string           `json:"dates"`
}

func (h *handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePreview"

	var req previewRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}

	start, err := datetime.ParseDate(req.StartDate)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	frequency, err := schedule.ParseFrequency(req.Frequency)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	count := constants.DefaultPreviewCount
	if req.Count != nil {
		count = *req.Count
	}
	if count > constants.MaxPreviewCount {
		h.respondError(w, http.StatusBadRequest,
			fmt.Sprintf("count %d exceeds the maximum of %d", count, constants.MaxPreviewCount), op)
		return
	}

	resp := previewResponse{Frequency: frequency, Dates: []string{}}
	if frequency.MonthBased() {
		resp.AnchorDay = start.Day()
	}
	for _, d := range schedule.NextOccurrences(start, frequency, count) {
		resp.Dates = append(resp.Dates, d.Format(datetime.DateLayout))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

type impactRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Frequency string          `json:"frequency"`
}

type impactResponse struct {
	Amount     decimal.Decimal    `json:"amount"`
	Frequency  schedule.Frequency `json:"frequency"`
	Multiplier string             `json:"multiplier"`
	Monthly    decimal.Decimal    `json:"monthly"`
}

func (h *handler) handleImpact(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleImpact"

	var req impactRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}

	frequency, err := schedule.ParseFrequency(req.Frequency)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	m := schedule.MonthlyMultiplier(frequency)
	h.writeJSON(w, http.StatusOK, impactResponse{
		Amount:     req.Amount,
		Frequency:  frequency,
		Multiplier: fmt.Sprintf("%d/%d", m.Num, m.Den),
		Monthly:    schedule.MonthlyImpact(req.Amount, frequency),
	})
}

func (h *handler) handleMonth(w http.ResponseWriter, r *http.Request) {
	h.projectMonth(w, r, h.payments, r.URL.Query().Get("currency"), "server.handleMonth")
}

type paymentRequest struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Frequency     string          `json:"frequency"`
	StartDate     string          `json:"startDate"`
	NextExecution string          `json:"nextExecution"`
	Active        *bool           `json:"active"`
}

type monthRequest struct {
	Currency string           `json:"currency"`
	Payments []paymentRequest `json:"payments"`
}

func (h *handler) handleMonthPayments(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleMonthPayments"

	var req monthRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}

	payments := make([]schedule.Schedule, 0, len(req.Payments))
	for i, p := range req.Payments {
		s, err := config.Payment{
			ID:            p.ID,
			Name:          p.Name,
			Amount:        p.Amount.String(),
			Currency:      p.Currency,
			Frequency:     p.Frequency,
			StartDate:     p.StartDate,
			NextExecution: p.NextExecution,
			Active:        p.Active,
		}.ToSchedule()
		if err != nil {
			h.respondError(w, http.StatusBadRequest, fmt.Sprintf("payment %d (%s): %v", i+1, p.Name, err), op)
			return
		}
		payments = append(payments, s)
	}

	h.projectMonth(w, r, payments, req.Currency, op)
}

func (h *handler) projectMonth(w http.ResponseWriter, r *http.Request, payments []schedule.Schedule, display, op string) {
	start := time.Now()

	window, err := datetime.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	display = currency.Normalize(display)
	if display == "" {
		display = h.display
	}

	result := projection.Month(h.logger, payments, window, h.converter, display)

	h.logger.Info("month projection computed",
		zap.String("op", op),
		zap.String("month", result.Month),
		zap.Int("payments", len(payments)),
		zap.Int("days", len(result.Days)),
		zap.Duration("duration", time.Since(start)),
	)

	h.writeJSON(w, http.StatusOK, result)
}

// decodeJSON reads a size-limited JSON body into dst, answering the request
// itself and returning false on failure.
func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestSize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxRequestSize), op)
			return false
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
	}
}
