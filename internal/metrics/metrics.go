// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EntriesCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logbook_entries_created_total",
			Help: "Total number of logbook entries created",
		},
		[]string{"course"},
	)

	EntriesGradedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "logbook_entries_graded_total",
			Help: "Total number of grading operations",
		},
	)

	MoodleLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodle_course_lookups_total",
			Help: "Course directory lookups on local cache miss",
		},
		[]string{"result"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)
