// Package metrics exposes Prometheus metrics for the bridge:
//
//   - bridge_requests_total{outcome}          – decision requests by outcome (ok|fallback|unauthorized)
//   - bridge_decisions_total{decision}        – decisions returned, by kind
//   - bridge_upstream_failures_total{class}   – pipeline failures by error class
//   - bridge_auth_rejects_total               – rejected shared secret checks
//   - bridge_request_duration_seconds         – decision latency histogram
//
// All metrics are registered in init() and served at /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_requests_total",
			Help: "Decision requests by outcome",
		},
		[]string{"outcome"},
	)

	decisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_decisions_total",
			Help: "Decisions returned, by kind",
		},
		[]string{"decision"},
	)

	upstreamFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_upstream_failures_total",
			Help: "Pipeline failures by error class",
		},
		[]string{"class"},
	)

	authRejects = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bridge_auth_rejects_total",
			Help: "Rejected shared secret checks",
		},
	)

	requestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bridge_request_duration_seconds",
			Help:    "Decision request latency",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		},
	)
)

func init() {
	prometheus.MustRegister(requests, decisions, upstreamFailures)
	prometheus.MustRegister(authRejects, requestDuration)
}

// Handler returns the /metrics endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRequest records one finished decision request.
func ObserveRequest(outcome string, d time.Duration) {
	requests.WithLabelValues(outcome).Inc()
	requestDuration.Observe(d.Seconds())
}

func IncDecision(kind string)         { decisions.WithLabelValues(kind).Inc() }
func IncUpstreamFailure(class string) { upstreamFailures.WithLabelValues(class).Inc() }
func IncAuthReject()                  { authRejects.Inc() }
