package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nexusatelier/atelier-backend/internal/domain"
)

// Metrics collects generation-queue metrics on its own registry, so
// tests can build collectors without tripping duplicate registration.
type Metrics struct {
	registry *prometheus.Registry

	jobsEnqueued  *prometheus.CounterVec
	jobsCompleted *prometheus.CounterVec
	jobsRetried   *prometheus.CounterVec
	jobsFailed    *prometheus.CounterVec

	jobLatency *prometheus.HistogramVec

	jobsWaiting *prometheus.GaugeVec
	jobsActive  *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		jobsEnqueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "generation_jobs_enqueued_total",
			Help: "Total number of generation jobs admitted to the queue",
		}, []string{"type"}),
		jobsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "generation_jobs_completed_total",
			Help: "Total number of generation jobs completed successfully",
		}, []string{"type"}),
		jobsRetried: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "generation_jobs_retried_total",
			Help: "Total number of retry attempts scheduled after a failed attempt",
		}, []string{"type"}),
		jobsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "generation_jobs_failed_total",
			Help: "Total number of generation jobs failed after their final attempt",
		}, []string{"type"}),
		jobLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "generation_job_latency_seconds",
			Help:    "Wall-clock duration of successful generation attempts",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"type"}),
		jobsWaiting: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "generation_jobs_waiting",
			Help: "Current number of jobs waiting in the queue",
		}, []string{"type"}),
		jobsActive: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "generation_jobs_active",
			Help: "Current number of jobs being executed",
		}, []string{"type"}),
	}

	m.registry.MustRegister(
		m.jobsEnqueued,
		m.jobsCompleted,
		m.jobsRetried,
		m.jobsFailed,
		m.jobLatency,
		m.jobsWaiting,
		m.jobsActive,
	)
	return m
}

func (m *Metrics) JobEnqueued(jt domain.JobType) {
	m.jobsEnqueued.WithLabelValues(string(jt)).Inc()
}

func (m *Metrics) JobCompleted(jt domain.JobType, duration time.Duration) {
	m.jobsCompleted.WithLabelValues(string(jt)).Inc()
	m.jobLatency.WithLabelValues(string(jt)).Observe(duration.Seconds())
}

func (m *Metrics) JobRetried(jt domain.JobType) {
	m.jobsRetried.WithLabelValues(string(jt)).Inc()
}

func (m *Metrics) JobFailed(jt domain.JobType) {
	m.jobsFailed.WithLabelValues(string(jt)).Inc()
}

func (m *Metrics) QueueDepth(jt domain.JobType, waiting, active int) {
	m.jobsWaiting.WithLabelValues(string(jt)).Set(float64(waiting))
	m.jobsActive.WithLabelValues(string(jt)).Set(float64(active))
}

// Handler serves this collector's registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
