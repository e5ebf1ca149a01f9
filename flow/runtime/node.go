// Package runtime is the dataflow engine: the DAG schema, the channel and
// forwarder abstraction, and the executor that drives features from
// sources through processors to sinks. Grounded throughout on
// dshills-langgraph-go's graph package, generalized from a single-state
// step-graph (Node[S]/Reducer[S]) to this engine's per-feature, multi-ported
// message-passing model.
package runtime

import (
	"context"

	"github.com/reearth/reearth-flow-go/flow/expr"
	"github.com/reearth/reearth-flow-go/flow/kvstore"
	"github.com/reearth/reearth-flow-go/flow/storage"
	"github.com/reearth/reearth-flow-go/flow/types"
)

// Port is a named output slot on a node. Three names are reserved with
// documented semantics; a factory may additionally declare dynamic ports.
type Port string

const (
	// PortDefault carries ordinary output.
	PortDefault Port = "default"
	// PortRejected carries inputs a node could not process.
	PortRejected Port = "rejected"
	// PortUnfiltered carries inputs that matched no filter branch.
	PortUnfiltered Port = "unfiltered"
)

// Message is one unit of work flowing along an edge: a feature plus the
// output port it was emitted on, grounded on original_source's
// OperationEvent carried across executor_operation.rs's ExecutorContext.
type Message struct {
	Feature types.Feature
	Port    Port
}

// NodeContext is handed to initialize/finish/finalize — the build-time and
// drain-time lifecycle hooks that don't need a forwarder. Mirrors
// executor_operation.rs's NodeContext, reduced to the shared handles every
// node needs.
type NodeContext struct {
	RunID   string
	NodeID  string
	Expr    *expr.Engine
	Storage *storage.Resolver
	KV      kvstore.Store
	Logger  ActionLogger
	With    map[string]types.Value
}

// ActionLogger is the narrow logging surface NodeContext exposes to built-in
// processors, satisfied by flow/logging.Root.ActionLogger's return value.
type ActionLogger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ExecutorContext is handed to process/write — the per-feature hot path.
// Mirrors executor_operation.rs's ExecutorContext: a NodeContext plus the
// feature currently being processed and the port it arrived on.
type ExecutorContext struct {
	NodeContext
	Feature types.Feature
	Port    Port
}

// WithFeature returns a copy of ctx addressing a different feature/port,
// used by processors that need to re-route or mutate before forwarding.
func (c ExecutorContext) WithFeature(f types.Feature, port Port) ExecutorContext {
	c.Feature = f
	c.Port = port
	return c
}

// Forwarder is the send-side handle passed to process/start. It hides
// downstream edge topology: Send delivers to every edge wired to the given
// port and is a silent no-op for a port with no downstream edges.
type Forwarder interface {
	Send(ctx context.Context, port Port, feature types.Feature) error
}

// Source drives an unbounded stream of features into the graph.
type Source interface {
	Initialize(ctx context.Context, nodeCtx NodeContext) error
	Start(ctx context.Context, nodeCtx NodeContext, fwd Forwarder) error
	SerializeState() ([]byte, error)
}

// Processor transforms features, possibly emitting zero or more downstream.
type Processor interface {
	Initialize(ctx context.Context, nodeCtx NodeContext) error
	NumThreads() int
	Process(ctx context.Context, execCtx ExecutorContext, fwd Forwarder) error
	Finish(ctx context.Context, nodeCtx NodeContext, fwd Forwarder) error
	Name() string
}

// Sink consumes features with no downstream forwarder.
type Sink interface {
	Initialize(ctx context.Context, nodeCtx NodeContext) error
	NumThreads() int
	Write(ctx context.Context, execCtx ExecutorContext) error
	Finalize(ctx context.Context, nodeCtx NodeContext) error
	Name() string
}

// ParamSchema is a JSON-schema-shaped description of a factory's `with`
// parameter object, synthesized by the factory itself (flow/registry
// dictates the shape; flow/processors/* instances populate it).
type ParamSchema map[string]any

// Factory is the common surface SourceFactory/ProcessorFactory/SinkFactory
// share: identity and declared ports, used by the DAG schema builder during
// validation (spec.md §4.5 step 4).
type Factory interface {
	ActionName() string
	Description() string
	Categories() []string
	ParameterSchema() ParamSchema
	InputPorts() []Port
	OutputPorts() []Port
}

// SourceFactory builds a Source from a node's declared `with` parameters.
type SourceFactory interface {
	Factory
	BuildSource(nodeCtx NodeContext, with map[string]types.Value) (Source, error)
}

// ProcessorFactory builds a Processor.
type ProcessorFactory interface {
	Factory
	BuildProcessor(nodeCtx NodeContext, with map[string]types.Value) (Processor, error)
}

// SinkFactory builds a Sink.
type SinkFactory interface {
	Factory
	BuildSink(nodeCtx NodeContext, with map[string]types.Value) (Sink, error)
}
