package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorRecordsLatencyAndErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.RecordStepLatency("run-1", "node-a", 12*time.Millisecond, "success")
	c.IncrementErrors("run-1", "node-a", "ProcessError")
	c.IncrementErrors("run-1", "node-a", "ProcessError")

	if got := testutil.ToFloat64(c.errors.WithLabelValues("run-1", "node-a", "ProcessError")); got != 2 {
		t.Fatalf("errors_total = %v, want 2", got)
	}
}

func TestCollectorDisableSuppressesUpdates(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)
	c.Disable()

	c.UpdateInflightNodes(5)
	if got := testutil.ToFloat64(c.inflightNodes); got != 0 {
		t.Fatalf("inflight_nodes = %v, want 0 while disabled", got)
	}

	c.Enable()
	c.UpdateInflightNodes(5)
	if got := testutil.ToFloat64(c.inflightNodes); got != 5 {
		t.Fatalf("inflight_nodes = %v, want 5 after enable", got)
	}
}
