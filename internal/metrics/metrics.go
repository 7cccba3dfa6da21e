// Package metrics exposes Prometheus collectors for the sync pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	urlsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipesync_urls_total",
			Help: "URLs processed, labeled by outcome (succeeded, failed, skipped).",
		},
		[]string{"outcome"},
	)

	fetchDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipesync_fetch_duration_seconds",
			Help:    "Page fetch latency, labeled by tier.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"tier"},
	)

	headlessEscalationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipesync_headless_escalations_total",
			Help: "Static fetches that escalated to the headless renderer.",
		},
	)

	storeCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipesync_store_calls_total",
			Help: "Remote store operations, labeled by operation and result.",
		},
		[]string{"op", "result"},
	)

	candidatesPerPage = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recipesync_schema_candidates_per_page",
			Help:    "Qualifying recipe schema candidates found per page.",
			Buckets: []float64{0, 1, 2, 3, 5, 10},
		},
	)
)

// ObserveOutcome counts a finished URL by its tri-state outcome.
func ObserveOutcome(outcome string) {
	urlsTotal.WithLabelValues(outcome).Inc()
}

// ObserveFetch records fetch latency for a tier ("static" or "headless").
func ObserveFetch(tier string, seconds float64) {
	fetchDurationSeconds.WithLabelValues(tier).Observe(seconds)
}

// ObserveEscalation counts one headless escalation.
func ObserveEscalation() {
	headlessEscalationsTotal.Inc()
}

// ObserveStoreCall counts one remote store operation.
func ObserveStoreCall(op, result string) {
	storeCallsTotal.WithLabelValues(op, result).Inc()
}

// ObserveCandidates records how many candidates a page yielded.
func ObserveCandidates(n int) {
	candidatesPerPage.Observe(float64(n))
}
