package runtime

import (
	"context"
	"sync"

	"github.com/reearth/reearth-flow-go/flow/types"
)

// fakeFactory is a single type implementing SourceFactory, ProcessorFactory
// and SinkFactory, configurable per test. It keeps the test fixtures small:
// one struct, three optional roles, rather than three near-identical types.
type fakeFactory struct {
	name    string
	in, out []Port

	buildSource    func(NodeContext, map[string]types.Value) (Source, error)
	buildProcessor func(NodeContext, map[string]types.Value) (Processor, error)
	buildSink      func(NodeContext, map[string]types.Value) (Sink, error)
}

func (f *fakeFactory) ActionName() string         { return f.name }
func (f *fakeFactory) Description() string        { return "fake action for tests" }
func (f *fakeFactory) Categories() []string        { return nil }
func (f *fakeFactory) ParameterSchema() ParamSchema { return ParamSchema{} }
func (f *fakeFactory) InputPorts() []Port          { return f.in }
func (f *fakeFactory) OutputPorts() []Port         { return f.out }

func (f *fakeFactory) BuildSource(nc NodeContext, with map[string]types.Value) (Source, error) {
	return f.buildSource(nc, with)
}

func (f *fakeFactory) BuildProcessor(nc NodeContext, with map[string]types.Value) (Processor, error) {
	return f.buildProcessor(nc, with)
}

func (f *fakeFactory) BuildSink(nc NodeContext, with map[string]types.Value) (Sink, error) {
	return f.buildSink(nc, with)
}

// fakeRegistry is a static name->(kind,factory) map, the test double for
// flow/registry.Registry.
type fakeRegistry struct {
	entries map[string]struct {
		kind    NodeKind
		factory any
	}
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{entries: make(map[string]struct {
		kind    NodeKind
		factory any
	})}
}

func (r *fakeRegistry) register(name string, kind NodeKind, factory any) {
	r.entries[name] = struct {
		kind    NodeKind
		factory any
	}{kind, factory}
}

func (r *fakeRegistry) Lookup(actionName string) (NodeKind, any, bool) {
	e, ok := r.entries[actionName]
	return e.kind, e.factory, ok
}

// emitSource emits a fixed number of blank features on PortDefault then
// returns.
type emitSource struct {
	count int
}

func (s *emitSource) Initialize(ctx context.Context, nodeCtx NodeContext) error { return nil }

func (s *emitSource) Start(ctx context.Context, nodeCtx NodeContext, fwd Forwarder) error {
	for i := 0; i < s.count; i++ {
		if err := fwd.Send(ctx, PortDefault, types.New()); err != nil {
			return err
		}
	}
	return nil
}

func (s *emitSource) SerializeState() ([]byte, error) { return nil, nil }

// passThroughProcessor forwards every input feature unchanged to
// PortDefault, and optionally reports how many features it saw.
type passThroughProcessor struct {
	seen *int
}

func (p *passThroughProcessor) Initialize(ctx context.Context, nodeCtx NodeContext) error {
	return nil
}
func (p *passThroughProcessor) NumThreads() int { return 1 }

func (p *passThroughProcessor) Process(ctx context.Context, execCtx ExecutorContext, fwd Forwarder) error {
	if p.seen != nil {
		*p.seen++
	}
	return fwd.Send(ctx, PortDefault, execCtx.Feature)
}

func (p *passThroughProcessor) Finish(ctx context.Context, nodeCtx NodeContext, fwd Forwarder) error {
	return nil
}
func (p *passThroughProcessor) Name() string { return "pass_through" }

// errorProcessor always fails Process, used to exercise error-threshold
// cancellation.
type errorProcessor struct{}

func (p *errorProcessor) Initialize(ctx context.Context, nodeCtx NodeContext) error { return nil }
func (p *errorProcessor) NumThreads() int                                          { return 1 }
func (p *errorProcessor) Process(ctx context.Context, execCtx ExecutorContext, fwd Forwarder) error {
	return ProcessError("", "intentional test failure", nil)
}
func (p *errorProcessor) Finish(ctx context.Context, nodeCtx NodeContext, fwd Forwarder) error {
	return nil
}
func (p *errorProcessor) Name() string { return "error_processor" }

// collectSink records every feature it receives, guarded by a mutex since
// the executor may run multiple sink workers concurrently.
type collectSink struct {
	mu       sync.Mutex
	received []types.Feature
}

func (s *collectSink) Initialize(ctx context.Context, nodeCtx NodeContext) error { return nil }
func (s *collectSink) NumThreads() int                                          { return 1 }

func (s *collectSink) Write(ctx context.Context, execCtx ExecutorContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received = append(s.received, execCtx.Feature)
	return nil
}

func (s *collectSink) Finalize(ctx context.Context, nodeCtx NodeContext) error { return nil }
func (s *collectSink) Name() string                                           { return "collect" }

func (s *collectSink) Received() []types.Feature {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Feature(nil), s.received...)
}
