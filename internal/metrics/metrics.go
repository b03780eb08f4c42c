// Package metrics provides Prometheus instrumentation for the SmartBee API.
// All metric collectors are registered via the Init function and exposed
// through the Handler for scraping.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Scenario lookup outcomes.
const (
	OutcomeHit      = "hit"
	OutcomeFallback = "fallback"
)

var (
	// RequestsTotal counts total requests by endpoint, method, and HTTP status code.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartbee_requests_total",
			Help: "Total HTTP requests processed",
		},
		[]string{"endpoint", "method", "status"},
	)

	// RequestDuration observes request latency in seconds by endpoint and method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "smartbee_request_duration_seconds",
			Help:    "Request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)

	// InFlight tracks the number of requests currently being processed.
	InFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "smartbee_in_flight_requests",
			Help: "Number of in-flight requests currently being processed",
		},
	)

	// ScenarioLookups counts catalog lookups by table and whether the
	// requested key was present or the default scenario was served.
	ScenarioLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartbee_scenario_lookups_total",
			Help: "Scenario catalog lookups by table and outcome",
		},
		[]string{"table", "outcome"},
	)

	// RateLimitHits counts rate limit rejections by endpoint.
	RateLimitHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartbee_rate_limit_hits_total",
			Help: "Total rate limit rejections",
		},
		[]string{"endpoint"},
	)
)

var initOnce sync.Once

// Init registers all metric collectors with the default Prometheus registry.
// Repeated calls are no-ops.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestsTotal,
			RequestDuration,
			InFlight,
			ScenarioLookups,
			RateLimitHits,
		)
	})
}

// Handler returns an http.Handler that serves the Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Outcome maps a catalog lookup result onto its label value.
func Outcome(found bool) string {
	if found {
		return OutcomeHit
	}
	return OutcomeFallback
}
