// Package metrics provides Prometheus metrics for the protocol engine:
// per-transport turn duration, REST hop counts, and retry outcomes.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "directline"

var (
	// turnDuration is a histogram of total turn duration in seconds, from
	// dispatch to the turn stream closing.
	turnDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_duration_seconds",
			Help:      "Histogram of turn duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"transport", "status"}, // status: success, error
	)

	// restHopsTotal counts REST polling hops, one per iteration of the turn
	// loop regardless of outcome.
	restHopsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rest_hops_total",
			Help:      "Total number of REST polling hops",
		},
		[]string{"operation"},
	)

	// retryAttemptsTotal counts attempts spent inside withRetry, labeled by
	// whether the call eventually succeeded or exhausted its retries.
	retryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retry_attempts_total",
			Help:      "Total number of request attempts made under the retry policy",
		},
		[]string{"operation", "outcome"}, // outcome: succeeded, exhausted
	)

	// allMetrics lists every collector for registration with an Exporter.
	allMetrics = []prometheus.Collector{
		turnDuration,
		restHopsTotal,
		retryAttemptsTotal,
	}
)

// RecordTurnDuration records the total duration of a turn.
func RecordTurnDuration(transport, status string, durationSeconds float64) {
	turnDuration.WithLabelValues(transport, status).Observe(durationSeconds)
}

// RecordRESTHop records a single REST polling iteration.
func RecordRESTHop(operation string) {
	restHopsTotal.WithLabelValues(operation).Inc()
}

// RecordRetryAttempts records how many attempts a retried call took and
// whether it ultimately succeeded or exhausted the retry policy.
func RecordRetryAttempts(operation, outcome string, attempts int) {
	retryAttemptsTotal.WithLabelValues(operation, outcome).Add(float64(attempts))
}
