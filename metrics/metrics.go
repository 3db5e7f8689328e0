// Package metrics provides Prometheus metrics for the HTTP server and the
// order workflow:
//   - http_request_total, http_request_duration_seconds, http_request_in_flight
//   - commandes_created_total
//   - commande_transitions_total{from,to,result}
//   - reconciliation_blocks_total{reason}
//   - journal_recovered_total
//
// All metrics are registered with the Prometheus default registry during
// package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Transition results
const (
	ResultApplied  = "applied"
	ResultBlocked  = "blocked"
	ResultRejected = "rejected"
)

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Clients currently holding a rate limiter bucket",
		},
	)

	CommandesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "commandes_created_total",
			Help: "Orders created from a prescription",
		},
	)

	CommandeTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commande_transitions_total",
			Help: "Order status change attempts by outcome",
		},
		[]string{"from", "to", "result"},
	)

	ReconciliationBlocks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconciliation_blocks_total",
			Help: "Order lines that blocked a preparation, by reason",
		},
		[]string{"reason"},
	)

	JournalRecovered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "journal_recovered_total",
			Help: "Conversion journal entries replayed by recovery",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(CommandesCreated)
	prometheus.MustRegister(CommandeTransitions)
	prometheus.MustRegister(ReconciliationBlocks)
	prometheus.MustRegister(JournalRecovered)
}
