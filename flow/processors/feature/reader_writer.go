// Package feature implements a pair of pass-through processors and a
// counting sink for composing test-style pipelines out of named actions
// (spec.md §8, scenarios S1 "pass-through" and S3 "aggregator"), grounded on
// original_source/worker/crates/action-processor's processor shape even
// though no single file in the original corresponds 1:1 (a bare
// forward-everything action is implicit scaffolding in every Rust
// integration test there, e.g. `NoopProcessor` in the workflow test
// harness).
package feature

import (
	"context"
	"sync/atomic"

	"github.com/reearth/reearth-flow-go/flow/registry"
	"github.com/reearth/reearth-flow-go/flow/runtime"
	"github.com/reearth/reearth-flow-go/flow/types"
)

func init() {
	registry.RegisterProcessor("FeatureReader", &ReaderFactory{})
	registry.RegisterProcessor("FeatureWriter", &WriterFactory{})
	registry.RegisterSink("FeatureCounter", &CounterFactory{})
}

// ReaderFactory builds a PassThrough, a processor that forwards every input
// feature unchanged — the identity processor used to compose multi-stage
// test pipelines without a real domain transform in the way.
type ReaderFactory struct{}

func (ReaderFactory) ActionName() string                      { return "FeatureReader" }
func (ReaderFactory) Description() string                     { return "Forwards features unchanged" }
func (ReaderFactory) Categories() []string                    { return []string{"Feature"} }
func (ReaderFactory) ParameterSchema() runtime.ParamSchema     { return runtime.ParamSchema{} }
func (ReaderFactory) InputPorts() []runtime.Port               { return []runtime.Port{runtime.PortDefault} }
func (ReaderFactory) OutputPorts() []runtime.Port              { return []runtime.Port{runtime.PortDefault} }
func (ReaderFactory) BuildProcessor(runtime.NodeContext, map[string]types.Value) (runtime.Processor, error) {
	return &PassThrough{}, nil
}

// WriterFactory builds the same PassThrough as ReaderFactory but is
// registered under its own action name so a workflow document can
// distinguish "read a feature in" from "write a feature out" stages that
// both happen to be no-ops in a given test pipeline.
type WriterFactory struct{}

func (WriterFactory) ActionName() string                  { return "FeatureWriter" }
func (WriterFactory) Description() string                 { return "Forwards features unchanged" }
func (WriterFactory) Categories() []string                 { return []string{"Feature"} }
func (WriterFactory) ParameterSchema() runtime.ParamSchema { return runtime.ParamSchema{} }
func (WriterFactory) InputPorts() []runtime.Port           { return []runtime.Port{runtime.PortDefault} }
func (WriterFactory) OutputPorts() []runtime.Port          { return []runtime.Port{runtime.PortDefault} }
func (WriterFactory) BuildProcessor(runtime.NodeContext, map[string]types.Value) (runtime.Processor, error) {
	return &PassThrough{}, nil
}

// PassThrough forwards every feature it receives unchanged to PortDefault.
type PassThrough struct{}

func (p *PassThrough) Initialize(ctx context.Context, nodeCtx runtime.NodeContext) error { return nil }
func (p *PassThrough) NumThreads() int                                                  { return 1 }
func (p *PassThrough) Name() string                                                     { return "PassThrough" }
func (p *PassThrough) Finish(ctx context.Context, nodeCtx runtime.NodeContext, fwd runtime.Forwarder) error {
	return nil
}

func (p *PassThrough) Process(ctx context.Context, execCtx runtime.ExecutorContext, fwd runtime.Forwarder) error {
	return fwd.Send(ctx, runtime.PortDefault, execCtx.Feature)
}

// CounterFactory builds a Counter sink.
type CounterFactory struct{}

func (CounterFactory) ActionName() string                  { return "FeatureCounter" }
func (CounterFactory) Description() string                 { return "Counts received features" }
func (CounterFactory) Categories() []string                 { return []string{"Feature"} }
func (CounterFactory) ParameterSchema() runtime.ParamSchema { return runtime.ParamSchema{} }
func (CounterFactory) InputPorts() []runtime.Port           { return []runtime.Port{runtime.PortDefault} }
func (CounterFactory) OutputPorts() []runtime.Port          { return nil }
func (CounterFactory) BuildSink(runtime.NodeContext, map[string]types.Value) (runtime.Sink, error) {
	return &Counter{}, nil
}

// Counter tallies every feature it receives; Count is safe to read
// concurrently with Write via atomic access.
type Counter struct {
	count atomic.Int64
}

func (c *Counter) Initialize(ctx context.Context, nodeCtx runtime.NodeContext) error { return nil }
func (c *Counter) NumThreads() int                                                  { return 1 }
func (c *Counter) Name() string                                                     { return "FeatureCounter" }
func (c *Counter) Finalize(ctx context.Context, nodeCtx runtime.NodeContext) error   { return nil }

func (c *Counter) Write(ctx context.Context, execCtx runtime.ExecutorContext) error {
	c.count.Add(1)
	return nil
}

// Count returns the number of features written so far.
func (c *Counter) Count() int64 { return c.count.Load() }
