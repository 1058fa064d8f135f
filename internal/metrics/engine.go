package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	engineExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "txengine",
			Subsystem: "engine",
			Name:      "executions_total",
			Help:      "Total number of transaction executions",
		},
		[]string{"action", "status"},
	)

	engineExecutionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "txengine",
			Subsystem: "engine",
			Name:      "execution_duration_seconds",
			Help:      "Time taken to execute a transaction",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"action"},
	)

	engineValidationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "txengine",
			Subsystem: "engine",
			Name:      "validation_failures_total",
			Help:      "Total number of amount validation failures",
		},
		[]string{"action", "code"},
	)

	coinSelectionInputs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "txengine",
			Subsystem: "coinselect",
			Name:      "inputs",
			Help:      "Number of inputs chosen per coin selection",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 34, 55},
		},
	)

	coinSelectionFeeSats = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "txengine",
			Subsystem: "coinselect",
			Name:      "fee_sats",
			Help:      "Absolute fee in sats per coin selection",
			Buckets:   prometheus.ExponentialBuckets(100, 4, 8),
		},
	)
)

// RecordExecution records the outcome and duration of an engine
// execution.
func RecordExecution(action, status string, duration time.Duration) {
	engineExecutionsTotal.WithLabelValues(action, status).Inc()
	engineExecutionDuration.WithLabelValues(action).Observe(duration.Seconds())
}

// RecordValidationFailure counts an amount validation failure by code.
func RecordValidationFailure(action, code string) {
	engineValidationFailuresTotal.WithLabelValues(action, code).Inc()
}

// RecordCoinSelection records the shape of a completed coin selection.
func RecordCoinSelection(inputs int, feeSats uint64) {
	coinSelectionInputs.Observe(float64(inputs))
	coinSelectionFeeSats.Observe(float64(feeSats))
}
