package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	trackerConfirmationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "txengine",
			Subsystem: "tracker",
			Name:      "confirmations_total",
			Help:      "Total number of tracked transactions reaching a terminal state",
		},
		[]string{"chain", "status"},
	)

	trackerConfirmationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "txengine",
			Subsystem: "tracker",
			Name:      "confirmation_duration_seconds",
			Help:      "Time from broadcast to confirmation",
			Buckets:   prometheus.ExponentialBuckets(30, 2, 10),
		},
		[]string{"chain"},
	)
)

// RecordConfirmation records a tracked transaction reaching a terminal
// state.
func RecordConfirmation(chain, status string, sinceBroadcast time.Duration) {
	trackerConfirmationsTotal.WithLabelValues(chain, status).Inc()
	trackerConfirmationDuration.WithLabelValues(chain).Observe(sinceBroadcast.Seconds())
}
