package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/iwvelando/finance-schedule/internal/projection"
	"github.com/iwvelando/finance-schedule/pkg/currency"
	"github.com/iwvelando/finance-schedule/pkg/datetime"
	"github.com/iwvelando/finance-schedule/pkg/metrics"
	"github.com/iwvelando/finance-schedule/pkg/rates"
	"github.com/iwvelando/finance-schedule/pkg/schedule"
	"github.com/iwvelando/finance-schedule/pkg/testutil"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newStore(t *testing.T) *rates.Store {
	t.Helper()
	store := rates.NewStore()
	table := currency.NewTable("RON", map[string]decimal.Decimal{"EUR": decimal.NewFromInt(5)})
	require.True(t, store.Apply(store.Begin(), table))
	return store
}

func configuredPayments() []schedule.Schedule {
	return []schedule.Schedule{
		{
			Name:      "Rent",
			Amount:    decimal.NewFromInt(2500),
			Currency:  "RON",
			Frequency: schedule.Monthly,
			StartDate: datetime.MustParseTime(datetime.DateLayout, "2024-01-31"),
			Active:    true,
		},
		{
			Name:      "Streaming",
			Amount:    decimal.NewFromInt(10),
			Currency:  "EUR",
			Frequency: schedule.Monthly,
			StartDate: datetime.MustParseTime(datetime.DateLayout, "2024-05-10"),
			Active:    true,
		},
	}
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	return NewHandler(zap.NewNop(), 1024, "1.2.3", Dependencies{
		Rates:    newStore(t),
		Payments: configuredPayments(),
		Display:  "ron",
	})
}

func perform(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), dst), rr.Body.String())
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func TestHealthAndVersion(t *testing.T) {
	h := newTestHandler(t)

	rr := perform(t, h, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	rr = perform(t, h, http.MethodGet, "/api/version", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"version":"1.2.3"}`, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

func TestVersionDefaultsToDev(t *testing.T) {
	h := NewHandler(nil, 0, "  ", Dependencies{})

	rr := perform(t, h, http.MethodGet, "/api/version", nil)
	assert.JSONEq(t, `{"version":"dev"}`, rr.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	rr := perform(t, newTestHandler(t), http.MethodGet, "/api/convert", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestRates(t *testing.T) {
	rr := perform(t, newTestHandler(t), http.MethodGet, "/api/rates", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp ratesResponse
	decode(t, rr, &resp)
	assert.Equal(t, "RON", resp.Base)
	assert.Equal(t, uint64(1), resp.Sequence)
	assertDecimal(t, "5", resp.Rates["EUR"])
	assertDecimal(t, "1", resp.Rates["RON"])
}

func TestRatesWithoutSource(t *testing.T) {
	rr := perform(t, NewHandler(nil, 0, "", Dependencies{}), http.MethodGet, "/api/rates", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"base":"","rates":{},"sequence":0}`, rr.Body.String())
}

func TestConvert(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantResult string
		outcome    string
	}{
		{"EUR to base", `{"amount":100,"from":"EUR","to":"RON"}`, http.StatusOK, "500", "converted"},
		{"base to EUR", `{"amount":"500","from":"ron","to":"eur"}`, http.StatusOK, "100", "converted"},
		{"identity", `{"amount":42,"from":"GBP","to":"GBP"}`, http.StatusOK, "42", "identity"},
		{"lenient unsupported", `{"amount":42,"from":"GBP","to":"RON"}`, http.StatusOK, "42", "fallback"},
		{"strict unsupported", `{"amount":42,"from":"GBP","to":"RON","strict":true}`, http.StatusUnprocessableEntity, "", ""},
		{"strict unspecified", `{"amount":42,"from":"","to":"RON","strict":true}`, http.StatusBadRequest, "", ""},
		{"strict supported", `{"amount":100,"from":"EUR","to":"RON","strict":true}`, http.StatusOK, "500", "converted"},
		{"malformed", `{"amount":`, http.StatusBadRequest, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := perform(t, h, http.MethodPost, "/api/convert", tt.body)
			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			if tt.wantStatus != http.StatusOK {
				assert.Contains(t, rr.Body.String(), `"error"`)
				return
			}

			var resp convertResponse
			decode(t, rr, &resp)
			assertDecimal(t, tt.wantResult, resp.Result)
			assert.Equal(t, tt.outcome, resp.Outcome)
		})
	}
}

func TestConvertRate(t *testing.T) {
	rr := perform(t, newTestHandler(t), http.MethodPost, "/api/convert", `{"amount":1,"from":"EUR","to":"RON"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp convertResponse
	decode(t, rr, &resp)
	assertDecimal(t, "5", resp.Rate)
}

func TestRequestTooLarge(t *testing.T) {
	body := `{"amount":1,"from":"EUR","to":"RON","pad":"` + strings.Repeat("x", 2048) + `"}`

	rr := perform(t, newTestHandler(t), http.MethodPost, "/api/convert", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestPreview(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantDates  []string
		wantAnchor int
	}{
		{
			name:       "monthly from the 31st",
			body:       `{"startDate":"2024-01-31","frequency":"monthly"}`,
			wantStatus: http.StatusOK,
			wantDates:  []string{"2024-01-31", "2024-02-29", "2024-03-31"},
			wantAnchor: 31,
		},
		{
			name:       "weekly with count",
			body:       `{"startDate":"2025-01-01","frequency":"WEEKLY","count":2}`,
			wantStatus: http.StatusOK,
			wantDates:  []string{"2025-01-01", "2025-01-08"},
		},
		{
			name:       "once",
			body:       `{"startDate":"2025-03-01","frequency":"ONCE","count":5}`,
			wantStatus: http.StatusOK,
			wantDates:  []string{"2025-03-01"},
		},
		{
			name:       "zero count",
			body:       `{"startDate":"2025-03-01","frequency":"DAILY","count":0}`,
			wantStatus: http.StatusOK,
			wantDates:  []string{},
		},
		{
			name:       "count too large",
			body:       `{"startDate":"2025-03-01","frequency":"DAILY","count":100000}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown frequency",
			body:       `{"startDate":"2025-03-01","frequency":"FORTNIGHTLY"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad date",
			body:       `{"startDate":"03/01/2025","frequency":"DAILY"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := perform(t, h, http.MethodPost, "/api/preview", tt.body)
			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp previewResponse
			decode(t, rr, &resp)
			assert.Equal(t, tt.wantDates, resp.Dates)
			assert.Equal(t, tt.wantAnchor, resp.AnchorDay)
		})
	}
}

func TestImpact(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		body       string
		monthly    string
		multiplier string
	}{
		{`{"amount":100,"frequency":"WEEKLY"}`, "433", "433/100"},
		{`{"amount":1200,"frequency":"yearly"}`, "100", "1/12"},
		{`{"amount":10,"frequency":"DAILY"}`, "300", "30/1"},
		{`{"amount":500,"frequency":"ONCE"}`, "0", "0/1"},
	}

	for _, tt := range tests {
		t.Run(tt.multiplier, func(t *testing.T) {
			rr := perform(t, h, http.MethodPost, "/api/impact", tt.body)
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

			var resp impactResponse
			decode(t, rr, &resp)
			assertDecimal(t, tt.monthly, resp.Monthly)
			assert.Equal(t, tt.multiplier, resp.Multiplier)
		})
	}

	rr := perform(t, h, http.MethodPost, "/api/impact", `{"amount":1,"frequency":"SOMETIMES"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMonthConfiguredPayments(t *testing.T) {
	rr := perform(t, newTestHandler(t), http.MethodGet, "/api/month/2025-02", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp projection.Projection
	decode(t, rr, &resp)
	assert.Equal(t, "2025-02", resp.Month)
	assert.Equal(t, "RON", resp.Currency)
	assertDecimal(t, "2550", resp.Total)

	rent := testutil.FindDay(resp, 28)
	require.NotNil(t, rent)
	assert.Equal(t, []string{"Rent"}, rent.Payments)

	streaming := testutil.FindDay(resp, 10)
	require.NotNil(t, streaming)
	assertDecimal(t, "50", streaming.Amount)
}

func TestMonthDisplayOverride(t *testing.T) {
	rr := perform(t, newTestHandler(t), http.MethodGet, "/api/month/2025-03?currency=EUR", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp projection.Projection
	decode(t, rr, &resp)
	assert.Equal(t, "EUR", resp.Currency)
	assertDecimal(t, "510", resp.Total)
}

func TestMonthInvalid(t *testing.T) {
	rr := perform(t, newTestHandler(t), http.MethodGet, "/api/month/2025-13", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMonthPostedPayments(t *testing.T) {
	body := map[string]interface{}{
		"payments": []map[string]interface{}{
			{"name": "Rent", "amount": 2500, "currency": "RON", "frequency": "MONTHLY", "startDate": "2024-01-31"},
			{"name": "Hosting", "amount": 120, "currency": "USD", "frequency": "YEARLY", "startDate": "2024-02-29"},
			{"name": "Gym", "amount": 150, "currency": "RON", "frequency": "MONTHLY", "startDate": "2024-02-15", "active": false},
		},
	}

	rr := perform(t, newTestHandler(t), http.MethodPost, "/api/month/2025-02", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp projection.Projection
	decode(t, rr, &resp)
	assertDecimal(t, "2620", resp.Total)
	assert.Equal(t, 1, resp.Fallbacks)
	require.Len(t, resp.Days, 1)
	assert.Equal(t, 28, resp.Days[0].Day)
}

func TestMonthPostedInvalidPayment(t *testing.T) {
	body := `{"payments":[{"name":"Rent","amount":2500,"currency":"RON","frequency":"SOMETIMES","startDate":"2024-01-31"}]}`

	rr := perform(t, newTestHandler(t), http.MethodPost, "/api/month/2025-02", body)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "payment 1 (Rent)")
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestHandler(t)

	before := promtestutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("/api/version", "200"))
	perform(t, h, http.MethodGet, "/api/version", nil)
	after := promtestutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("/api/version", "200"))
	assert.Equal(t, before+1, after)

	rr := perform(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "finance_schedule_http_requests_total")
}
