// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	PresentationsRendered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "presentations_rendered_total",
			Help: "Total number of presentation renders by outcome",
		},
		[]string{"status"},
	)

	PresentationRenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "presentation_render_duration_seconds",
			Help:    "Duration of presentation renders in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
	)

	RenderCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "render_cache_lookups_total",
			Help: "Render cache lookups by result",
		},
		[]string{"result"},
	)

	ContentGenerations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_generation_total",
			Help: "Slide content generations by provider and outcome",
		},
		[]string{"provider", "status"},
	)

	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_rejections_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"scope"},
	)

	PresentationsStored = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "presentations_stored",
			Help: "Number of presentations held by the store",
		},
	)

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
)
