package runtime

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/reearth/reearth-flow-go/flow/emit"
	"github.com/reearth/reearth-flow-go/flow/metrics"
)

// Executor owns a DagSchema plus ExecutorOptions and drives every node's
// worker pool to completion. Grounded on graph/scheduler.go (frontier
// bookkeeping repurposed as each node's merged inbound queue) and
// graph/engine.go (worker pool lifecycle, sync/atomic error counters,
// context-based cancellation propagation) — both rewritten from a
// single-state step-graph into this per-feature, multi-ported model.
type Executor struct {
	schema  *DagSchema
	opts    ExecutorOptions
	hub     *emit.Hub
	metrics *metrics.Collector
}

// NewExecutor builds an Executor over schema. hub and metrics may be nil,
// in which case a NullEmitter-equivalent / disabled collector is used.
func NewExecutor(schema *DagSchema, hub *emit.Hub, collector *metrics.Collector, opts ...Option) *Executor {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Executor{schema: schema, opts: o, hub: hub, metrics: collector}
}

// RunReport summarizes one execution: per-node error counts and whether the
// run was cancelled by the error threshold.
type RunReport struct {
	RunID       string
	ErrorCounts map[string]int
	Cancelled   bool
	NodeStates  map[string]NodeState
}

// nodeRuntime is the executor's private bookkeeping for one built node.
type nodeRuntime struct {
	id      string
	mu      sync.Mutex
	state   NodeState
	inbound chan Message
	fwd     *nodeForwarder
}

func (r *nodeRuntime) setState(s NodeState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state.terminal() {
		return
	}
	r.state = s
}

func (r *nodeRuntime) getState() NodeState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Run executes the schema to completion, driving features from sources
// through processors to sinks. ctx is the single cancellation token every
// worker observes (spec.md §5); Run returns promptly once cancelled, but
// only after every worker goroutine has unwound.
func (e *Executor) Run(ctx context.Context, runID string, nodeCtxFor func(nodeID string) NodeContext) (*RunReport, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	edgeChans := make(map[string]*edgeChannel, len(e.schema.edges))
	for _, edge := range e.schema.edges {
		edgeChans[edge.ID] = newEdgeChannel(edge, e.opts.ChannelBufferSize)
	}

	nodes := make(map[string]*nodeRuntime, len(e.schema.order))
	for _, id := range e.schema.order {
		byPort := make(map[Port][]*edgeChannel)
		for _, edge := range e.schema.outgoing(id) {
			byPort[edge.FromPort] = append(byPort[edge.FromPort], edgeChans[edge.ID])
		}
		nodes[id] = &nodeRuntime{
			id:      id,
			state:   NodeCreated,
			inbound: make(chan Message, e.opts.ChannelBufferSize),
			fwd: &nodeForwarder{
				nodeID:  id,
				byPort:  byPort,
				metrics: e.metrics,
				runID:   runID,
			},
		}
	}

	var errCount int64
	errCounts := make(map[string]*int64, len(e.schema.order))
	for _, id := range e.schema.order {
		var c int64
		errCounts[id] = &c
	}
	var cancelled atomic.Bool

	recordError := func(nodeID string, kind ErrorKind) {
		atomic.AddInt64(errCounts[nodeID], 1)
		total := atomic.AddInt64(&errCount, 1)
		if e.metrics != nil {
			e.metrics.IncrementErrors(runID, nodeID, string(kind))
		}
		e.emit(emit.Event{RunID: runID, NodeID: nodeID, Kind: emit.ErrorCount, Time: now(), Meta: map[string]any{"total": total}})
		if e.opts.ErrorThreshold != nil && total > int64(*e.opts.ErrorThreshold) {
			if cancelled.CompareAndSwap(false, true) {
				e.emit(emit.Event{RunID: runID, Kind: emit.RunCancelled, Time: now()})
				cancel()
			}
		}
	}

	// Fan in every inbound edge of each node into that node's single
	// merged channel, closing it once every feeding edge has closed
	// (spec.md §4.7: "a node observes end-of-input when all inbound edges
	// are closed").
	var fanInWG sync.WaitGroup
	for _, id := range e.schema.order {
		n := nodes[id]
		inEdges := e.schema.incoming(id)
		if len(inEdges) == 0 {
			close(n.inbound)
			continue
		}
		var perNodeWG sync.WaitGroup
		for _, edge := range inEdges {
			perNodeWG.Add(1)
			ec := edgeChans[edge.ID]
			toPort := edge.ToPort
			go func() {
				defer perNodeWG.Done()
				for feature := range ec.ch {
					select {
					case n.inbound <- Message{Feature: feature, Port: toPort}:
					case <-runCtx.Done():
						return
					}
				}
			}()
		}
		fanInWG.Add(1)
		go func(n *nodeRuntime) {
			defer fanInWG.Done()
			perNodeWG.Wait()
			close(n.inbound)
		}(n)
	}

	var wg sync.WaitGroup
	for _, id := range e.schema.order {
		built, _ := e.schema.node(id)
		n := nodes[id]
		nodeCtx := nodeCtxFor(id)

		switch built.kind {
		case NodeKindSource:
			wg.Add(1)
			go e.runSource(runCtx, &wg, runID, built, n, nodeCtx, recordError, &cancelled)
		case NodeKindProcessor:
			wg.Add(1)
			go e.runProcessor(runCtx, &wg, runID, built, n, nodeCtx, recordError, &cancelled)
		case NodeKindSink:
			wg.Add(1)
			go e.runSink(runCtx, &wg, runID, built, n, nodeCtx, recordError, &cancelled)
		}
	}

	wg.Wait()
	fanInWG.Wait()

	report := &RunReport{RunID: runID, ErrorCounts: map[string]int{}, Cancelled: cancelled.Load(), NodeStates: map[string]NodeState{}}
	for id, c := range errCounts {
		report.ErrorCounts[id] = int(atomic.LoadInt64(c))
	}
	for id, n := range nodes {
		report.NodeStates[id] = n.getState()
	}
	if report.Cancelled {
		return report, ExecutorError("", "run cancelled: error threshold exceeded", nil)
	}
	return report, nil
}

func (e *Executor) runSource(ctx context.Context, wg *sync.WaitGroup, runID string, built *builtNode, n *nodeRuntime, nodeCtx NodeContext, recordError func(string, ErrorKind), cancelled *atomic.Bool) {
	defer wg.Done()
	defer closeOutgoing(n)

	n.setState(NodeInitialized)
	if err := built.source.Initialize(ctx, nodeCtx); err != nil {
		n.setState(NodeErrored)
		recordError(n.id, KindSource)
		return
	}

	n.setState(NodeRunning)
	e.emit(emit.Event{RunID: runID, NodeID: n.id, Kind: emit.NodeStarted, Time: now()})

	err := built.source.Start(ctx, nodeCtx, n.fwd)
	switch {
	case err == nil:
		n.setState(NodeFinished)
		e.emit(emit.Event{RunID: runID, NodeID: n.id, Kind: emit.NodeFinished, Time: now()})
	case errors.Is(err, context.Canceled):
		n.setState(NodeCancelled)
	default:
		n.setState(NodeErrored)
		recordError(n.id, KindSource)
		e.emit(emit.Event{RunID: runID, NodeID: n.id, Kind: emit.NodeErrored, Time: now()})
	}
}

func (e *Executor) runProcessor(ctx context.Context, wg *sync.WaitGroup, runID string, built *builtNode, n *nodeRuntime, nodeCtx NodeContext, recordError func(string, ErrorKind), cancelled *atomic.Bool) {
	defer wg.Done()
	defer closeOutgoing(n)

	n.setState(NodeInitialized)
	if err := built.proc.Initialize(ctx, nodeCtx); err != nil {
		n.setState(NodeErrored)
		recordError(n.id, KindFactory)
		drain(n.inbound)
		return
	}

	n.setState(NodeRunning)
	e.emit(emit.Event{RunID: runID, NodeID: n.id, Kind: emit.NodeStarted, Time: now()})

	threads := built.def.NumThreadsOverride
	if threads <= 0 {
		threads = built.proc.NumThreads()
	}
	if threads < 1 {
		threads = 1
	}

	var workers sync.WaitGroup
	for i := 0; i < threads; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case msg, ok := <-n.inbound:
					if !ok {
						return
					}
					execCtx := ExecutorContext{NodeContext: nodeCtx, Feature: msg.Feature, Port: msg.Port}
					start := time.Now()
					err := built.proc.Process(ctx, execCtx, n.fwd)
					if e.metrics != nil {
						status := "success"
						if err != nil {
							status = "error"
						}
						e.metrics.RecordStepLatency(runID, n.id, time.Since(start), status)
					}
					if err != nil {
						recordError(n.id, KindProcess)
					}
				}
			}
		}()
	}
	workers.Wait()

	n.setState(NodeDraining)
	if cancelled.Load() {
		n.setState(NodeCancelled)
		return
	}
	if err := built.proc.Finish(ctx, nodeCtx, n.fwd); err != nil {
		n.setState(NodeErrored)
		recordError(n.id, KindProcess)
		e.emit(emit.Event{RunID: runID, NodeID: n.id, Kind: emit.NodeErrored, Time: now()})
		return
	}
	n.setState(NodeFinished)
	e.emit(emit.Event{RunID: runID, NodeID: n.id, Kind: emit.NodeFinished, Time: now()})
}

func (e *Executor) runSink(ctx context.Context, wg *sync.WaitGroup, runID string, built *builtNode, n *nodeRuntime, nodeCtx NodeContext, recordError func(string, ErrorKind), cancelled *atomic.Bool) {
	defer wg.Done()

	n.setState(NodeInitialized)
	if err := built.sink.Initialize(ctx, nodeCtx); err != nil {
		n.setState(NodeErrored)
		recordError(n.id, KindFactory)
		drain(n.inbound)
		return
	}

	n.setState(NodeRunning)
	e.emit(emit.Event{RunID: runID, NodeID: n.id, Kind: emit.NodeStarted, Time: now()})

	threads := built.def.NumThreadsOverride
	if threads <= 0 {
		threads = built.sink.NumThreads()
	}
	if threads < 1 {
		threads = 1
	}

	var workers sync.WaitGroup
	for i := 0; i < threads; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case msg, ok := <-n.inbound:
					if !ok {
						return
					}
					execCtx := ExecutorContext{NodeContext: nodeCtx, Feature: msg.Feature, Port: msg.Port}
					if err := built.sink.Write(ctx, execCtx); err != nil {
						recordError(n.id, KindSink)
					}
				}
			}
		}()
	}
	workers.Wait()

	n.setState(NodeDraining)
	if cancelled.Load() {
		n.setState(NodeCancelled)
		return
	}
	if err := built.sink.Finalize(ctx, nodeCtx); err != nil {
		n.setState(NodeErrored)
		recordError(n.id, KindSink)
		return
	}
	n.setState(NodeFinished)
	e.emit(emit.Event{RunID: runID, NodeID: n.id, Kind: emit.NodeFinished, Time: now()})
}

// closeOutgoing closes every edge channel leaving n, signaling end-of-input
// to each downstream node's fan-in goroutine.
func closeOutgoing(n *nodeRuntime) {
	seen := make(map[*edgeChannel]bool)
	for _, channels := range n.fwd.byPort {
		for _, c := range channels {
			if !seen[c] {
				seen[c] = true
				c.close()
			}
		}
	}
}

func drain(ch <-chan Message) {
	for range ch {
	}
}

// now is a seam so tests can avoid depending on wall-clock time directly if
// ever needed; production always uses time.Now().
func now() time.Time { return time.Now() }

// emit publishes to the executor's event hub, a no-op when none is
// configured (a bare Executor is still usable without observability wired
// up, matching flow/emit's NullEmitter default elsewhere in the stack).
func (e *Executor) emit(event emit.Event) {
	if e.hub == nil {
		return
	}
	e.hub.Publish(event)
}
