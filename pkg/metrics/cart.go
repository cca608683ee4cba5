package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics counts cart mutations, persistence failures and merge adjustments.
type CartMetrics struct {
	operations  *prometheus.CounterVec
	persistFail *prometheus.CounterVec
	mergeCaps   prometheus.Counter
	undoDepth   *prometheus.GaugeVec
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_operations_total",
		Help: "Cart operations by name and outcome.",
	}, []string{"operation", "outcome"})
	persistFail := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_persistence_failures_total",
		Help: "Failed cart persistence writes by backend.",
	}, []string{"backend"})
	mergeCaps := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_merge_capped_total",
		Help: "Line items whose merged quantity was capped at the per-item maximum.",
	})
	undoDepth := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "cart_history_depth",
		Help: "Undo history depth observed after the most recent commit.",
	}, []string{"stack"})
	reg.MustRegister(operations, persistFail, mergeCaps, undoDepth)
	return &CartMetrics{
		operations:  operations,
		persistFail: persistFail,
		mergeCaps:   mergeCaps,
		undoDepth:   undoDepth,
	}
}

// ObserveOperation counts a finished cart operation.
func (c *CartMetrics) ObserveOperation(operation string, err error) {
	if c == nil || c.operations == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	c.operations.WithLabelValues(normalizeLabel(operation), outcome).Inc()
}

// IncPersistenceFailure counts a failed write against a backend.
func (c *CartMetrics) IncPersistenceFailure(backend string) {
	if c == nil || c.persistFail == nil {
		return
	}
	c.persistFail.WithLabelValues(normalizeLabel(backend)).Inc()
}

// AddMergeCaps adds n capped merge lines.
func (c *CartMetrics) AddMergeCaps(n int) {
	if c == nil || c.mergeCaps == nil || n <= 0 {
		return
	}
	c.mergeCaps.Add(float64(n))
}

// SetHistoryDepth records the depth of the named undo stack.
func (c *CartMetrics) SetHistoryDepth(stack string, depth int) {
	if c == nil || c.undoDepth == nil {
		return
	}
	c.undoDepth.WithLabelValues(normalizeLabel(stack)).Set(float64(depth))
}
