// Package metrics exposes Prometheus instrumentation for a running workflow,
// adapted from graph/metrics.go. The label set is reworked around this
// engine's unit of concurrency (a node's worker pool draining a bounded edge
// channel) rather than the teacher's single-state graph step.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector records execution metrics under the "flow_" namespace:
//
//   - inflight_nodes (gauge): nodes with at least one worker goroutine running.
//   - edge_queue_depth (gauge): buffered features waiting on an edge, per edge.
//   - step_latency_ms (histogram): per-feature process() duration, per node.
//   - errors_total (counter): processed errors, per node and error class.
//   - backpressure_events_total (counter): edge publishes that had to wait
//     because the bounded channel was full.
//   - dropped_events_total (counter): event-hub publishes dropped because the
//     hub's queue was full (mirrors emit.Hub.Dropped, exported for scraping).
type Collector struct {
	inflightNodes prometheus.Gauge
	edgeQueue     *prometheus.GaugeVec
	stepLatency   *prometheus.HistogramVec
	errors        *prometheus.CounterVec
	backpressure  *prometheus.CounterVec
	dropped       prometheus.Counter

	mu      sync.RWMutex
	enabled bool
}

// New registers all collector metrics against registry. Pass nil to use
// prometheus.DefaultRegisterer.
func New(registry prometheus.Registerer) *Collector {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	c := &Collector{enabled: true}

	c.inflightNodes = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "flow",
		Name:      "inflight_nodes",
		Help:      "Number of nodes with at least one worker goroutine currently executing",
	})

	c.edgeQueue = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "flow",
		Name:      "edge_queue_depth",
		Help:      "Number of features buffered on an edge channel awaiting the downstream node",
	}, []string{"run_id", "edge_id"})

	c.stepLatency = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "flow",
		Name:      "step_latency_ms",
		Help:      "Per-feature process() duration in milliseconds",
		Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000},
	}, []string{"run_id", "node_id", "status"})

	c.errors = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flow",
		Name:      "errors_total",
		Help:      "Cumulative count of processing errors, classified by taxonomy",
	}, []string{"run_id", "node_id", "class"})

	c.backpressure = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flow",
		Name:      "backpressure_events_total",
		Help:      "Edge publishes that blocked because the bounded channel was full",
	}, []string{"run_id", "edge_id"})

	c.dropped = factory.NewCounter(prometheus.CounterOpts{
		Namespace: "flow",
		Name:      "dropped_events_total",
		Help:      "Event-hub publishes dropped because the hub queue was full",
	})

	return c
}

func (c *Collector) RecordStepLatency(runID, nodeID string, latency time.Duration, status string) {
	if !c.isEnabled() {
		return
	}
	c.stepLatency.WithLabelValues(runID, nodeID, status).Observe(float64(latency.Milliseconds()))
}

func (c *Collector) IncrementErrors(runID, nodeID, class string) {
	if !c.isEnabled() {
		return
	}
	c.errors.WithLabelValues(runID, nodeID, class).Inc()
}

func (c *Collector) UpdateEdgeQueueDepth(runID, edgeID string, depth int) {
	if !c.isEnabled() {
		return
	}
	c.edgeQueue.WithLabelValues(runID, edgeID).Set(float64(depth))
}

func (c *Collector) UpdateInflightNodes(count int) {
	if !c.isEnabled() {
		return
	}
	c.inflightNodes.Set(float64(count))
}

func (c *Collector) IncrementBackpressure(runID, edgeID string) {
	if !c.isEnabled() {
		return
	}
	c.backpressure.WithLabelValues(runID, edgeID).Inc()
}

func (c *Collector) AddDropped(n int) {
	if !c.isEnabled() || n <= 0 {
		return
	}
	c.dropped.Add(float64(n))
}

func (c *Collector) isEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled
}

// Disable stops metric recording without unregistering collectors, useful in
// tests that exercise the hot path many times.
func (c *Collector) Disable() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = false
}

func (c *Collector) Enable() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = true
}
