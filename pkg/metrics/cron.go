package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CronJobMetrics records runs of the cart maintenance jobs.
type CronJobMetrics struct {
	duration  *prometheus.HistogramVec
	runs      *prometheus.CounterVec
	processed *prometheus.CounterVec
}

// NewCronJobMetrics registers the maintenance job metrics on reg. A nil
// registerer yields a no-op recorder.
func NewCronJobMetrics(reg prometheus.Registerer) *CronJobMetrics {
	if reg == nil {
		return &CronJobMetrics{}
	}
	m := &CronJobMetrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cart_job_duration_seconds",
			Help:    "Duration of cart maintenance job runs.",
			Buckets: []float64{.005, .01, .05, .1, .5, 1, 5, 15},
		}, []string{"job"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_job_runs_total",
			Help: "Cart maintenance job runs by outcome.",
		}, []string{"job", "outcome"}),
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_job_processed_total",
			Help: "Carts or sessions handled by maintenance jobs.",
		}, []string{"job"}),
	}
	reg.MustRegister(m.duration, m.runs, m.processed)
	return m
}

// ObserveRun records one job run and its outcome.
func (c *CronJobMetrics) ObserveRun(job string, took time.Duration, err error) {
	if c == nil || c.runs == nil {
		return
	}
	job = normalizeLabel(job)
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	c.duration.WithLabelValues(job).Observe(took.Seconds())
	c.runs.WithLabelValues(job, outcome).Inc()
}

// AddProcessed adds n handled items for job.
func (c *CronJobMetrics) AddProcessed(job string, n int) {
	if c == nil || c.processed == nil || n <= 0 {
		return
	}
	c.processed.WithLabelValues(normalizeLabel(job)).Add(float64(n))
}

// normalizeLabel keeps empty label values out of the exported series.
func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
