package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestCartMetricsCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCartMetrics(reg)
	m.ObserveOperation("add_item", nil)
	m.ObserveOperation("add_item", nil)
	m.ObserveOperation("add_item", errors.New("boom"))
	m.IncPersistenceFailure("redis")
	m.AddMergeCaps(2)
	m.AddMergeCaps(0)
	m.SetHistoryDepth("cart", 4)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	mf := findMetricFamily(mfs, "cart_operations_total")
	if mf == nil {
		t.Fatal("cart_operations_total not exported")
	}
	var success, failure float64
	for _, metric := range mf.GetMetric() {
		switch {
		case hasLabels(metric.GetLabel(), map[string]string{"outcome": "success"}):
			success = metric.GetCounter().GetValue()
		case hasLabels(metric.GetLabel(), map[string]string{"outcome": "failure"}):
			failure = metric.GetCounter().GetValue()
		}
	}
	if success != 2 || failure != 1 {
		t.Fatalf("unexpected outcomes success=%f failure=%f", success, failure)
	}

	if got, err := counterValue(mfs, "cart_persistence_failures_total", map[string]string{"backend": "redis"}); err != nil {
		t.Fatalf("fetch persistence failures: %v", err)
	} else if got != 1 {
		t.Fatalf("expected 1 persistence failure, got %f", got)
	}

	caps := findMetricFamily(mfs, "cart_merge_capped_total")
	if caps == nil || caps.GetMetric()[0].GetCounter().GetValue() != 2 {
		t.Fatal("expected merge caps counter to be 2")
	}

	depth := findMetricFamily(mfs, "cart_history_depth")
	if depth == nil || depth.GetMetric()[0].GetGauge().GetValue() != 4 {
		t.Fatal("expected history depth gauge to be 4")
	}
}

func TestCartMetricsNilSafe(t *testing.T) {
	var m *CartMetrics
	m.ObserveOperation("add_item", nil)
	m.IncPersistenceFailure("redis")
	m.AddMergeCaps(1)
	m.SetHistoryDepth("cart", 1)

	unregistered := NewCartMetrics(nil)
	unregistered.ObserveOperation("add_item", nil)
}

func TestEmptyLabelsAreNormalized(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCartMetrics(reg)
	m.ObserveOperation("", nil)
	m.IncPersistenceFailure("")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := counterValue(mfs, "cart_operations_total", map[string]string{"operation": "unknown", "outcome": "success"}); err != nil || got != 1 {
		t.Fatalf("expected unknown operation series, got %f err=%v", got, err)
	}
	if got, err := counterValue(mfs, "cart_persistence_failures_total", map[string]string{"backend": "unknown"}); err != nil || got != 1 {
		t.Fatalf("expected unknown backend series, got %f err=%v", got, err)
	}
}
