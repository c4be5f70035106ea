// Package metrics holds the Prometheus collectors exported by finance-schedule.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registry every collector below is registered on.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// ConversionFallbacks counts conversions that returned the amount unconverted.
var ConversionFallbacks = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "finance_schedule",
	Name:      "conversion_fallbacks_total",
	Help:      "Currency conversions that fell back to the unconverted amount",
}, []string{"reason"})

// RateRefreshes counts rate table fetches by result (applied, stale, error).
var RateRefreshes = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "finance_schedule",
	Name:      "rate_refresh_total",
	Help:      "Rate table refresh attempts by result",
}, []string{"result"})

// RateTableSequence is the sequence number of the rate table currently served.
var RateTableSequence = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "finance_schedule",
	Name:      "rate_table_sequence",
	Help:      "Sequence number of the applied rate table",
})

// HTTPRequests counts API requests by route pattern and status code.
var HTTPRequests = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "finance_schedule",
	Name:      "http_requests_total",
	Help:      "HTTP requests by route and status",
}, []string{"route", "status"})

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
