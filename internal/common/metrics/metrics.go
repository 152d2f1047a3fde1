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

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	EmailRendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_renders_total",
			Help: "Total number of template renders by outcome",
		},
		[]string{"status"},
	)

	EmailRenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "email_render_duration_seconds",
			Help:    "Duration of a full template render including store reads",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	EmailDispatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_dispatches_total",
			Help: "Total number of send attempts by transport and outcome",
		},
		[]string{"transport", "status"},
	)

	EmailCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_cache_lookups_total",
			Help: "Read-through cache lookups by key kind and result",
		},
		[]string{"kind", "result"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)
)

// Recorder is what the render service reports into.
type Recorder interface {
	RenderCompleted(status string, seconds float64)
}

// PromRecorder forwards to the package-level collectors.
type PromRecorder struct{}

func (PromRecorder) RenderCompleted(status string, seconds float64) {
	EmailRendersTotal.WithLabelValues(status).Inc()
	EmailRenderDuration.Observe(seconds)
}
