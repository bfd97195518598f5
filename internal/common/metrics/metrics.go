// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_requests_total",
			Help: "Product searches by input mode and outcome",
		},
		[]string{"mode", "status"},
	)

	SearchMatchesReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "search_matches_returned",
			Help:    "Number of matches returned per search",
			Buckets: []float64{0, 1, 5, 10, 20, 40, 80},
		},
	)

	SearchMatchesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_matches_rejected_total",
			Help: "Provider records dropped during normalization",
		},
		[]string{"reason"},
	)

	TransientCleanupFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "transient_cleanup_failures_total",
			Help: "Transient uploads that could not be removed",
		},
	)

	PageExtractions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "page_extractions_total",
			Help: "Page image extractions by outcome",
		},
		[]string{"outcome"},
	)

	DealsRefreshed = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "daily_deals_stored",
			Help: "Deals stored by the last successful refresh",
		},
	)
)
