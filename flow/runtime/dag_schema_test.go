package runtime

import (
	"testing"

	"github.com/reearth/reearth-flow-go/flow/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNodeCtx(id string) NodeContext {
	return NodeContext{RunID: "run-1", NodeID: id}
}

func buildGraph(nodes []NodeDef, edges []EdgeDef) GraphDef {
	return GraphDef{ID: "g1", Name: "test graph", Nodes: nodes, Edges: edges}
}

func sourceFactory(name string) *fakeFactory {
	return &fakeFactory{
		name: name,
		out:  []Port{PortDefault},
		buildSource: func(NodeContext, map[string]types.Value) (Source, error) {
			return &emitSource{count: 3}, nil
		},
	}
}

func processorFactory(name string) *fakeFactory {
	return &fakeFactory{
		name: name,
		in:   []Port{PortDefault},
		out:  []Port{PortDefault, PortRejected},
		buildProcessor: func(NodeContext, map[string]types.Value) (Processor, error) {
			return &passThroughProcessor{}, nil
		},
	}
}

func sinkFactory(name string) *fakeFactory {
	return &fakeFactory{
		name: name,
		in:   []Port{PortDefault},
		buildSink: func(NodeContext, map[string]types.Value) (Sink, error) {
			return &collectSink{}, nil
		},
	}
}

// TestBuildDagSchemaAcceptsLinearPipeline covers invariant "Port integrity":
// a source -> processor -> sink chain wired entirely on declared ports
// builds with no warnings.
func TestBuildDagSchemaAcceptsLinearPipeline(t *testing.T) {
	reg := newFakeRegistry()
	reg.register("emit_source", NodeKindSource, sourceFactory("emit_source"))
	reg.register("pass_through", NodeKindProcessor, processorFactory("pass_through"))
	reg.register("collect", NodeKindSink, sinkFactory("collect"))

	g := buildGraph(
		[]NodeDef{
			{ID: "src", ActionName: "emit_source"},
			{ID: "proc", ActionName: "pass_through"},
			{ID: "snk", ActionName: "collect"},
		},
		[]EdgeDef{
			{ID: "e1", From: "src", To: "proc", FromPort: PortDefault, ToPort: PortDefault},
			{ID: "e2", From: "proc", To: "snk", FromPort: PortDefault, ToPort: PortDefault},
		},
	)

	schema, err := BuildDagSchema(g, testNodeCtx, reg)
	require.NoError(t, err)
	assert.Equal(t, []string{"src", "proc", "snk"}, schema.Nodes())
	assert.Empty(t, schema.Warnings())
}

// TestBuildDagSchemaRejectsUnknownOutputPort covers the edge-validation half
// of "Port integrity": an edge naming a port the factory never declared is
// a SchemaError, not a silent no-op.
func TestBuildDagSchemaRejectsUnknownOutputPort(t *testing.T) {
	reg := newFakeRegistry()
	reg.register("emit_source", NodeKindSource, sourceFactory("emit_source"))
	reg.register("collect", NodeKindSink, sinkFactory("collect"))

	g := buildGraph(
		[]NodeDef{
			{ID: "src", ActionName: "emit_source"},
			{ID: "snk", ActionName: "collect"},
		},
		[]EdgeDef{
			{ID: "e1", From: "src", To: "snk", FromPort: Port("nonexistent"), ToPort: PortDefault},
		},
	)

	_, err := BuildDagSchema(g, testNodeCtx, reg)
	require.Error(t, err)
	var flowErr *FlowError
	require.ErrorAs(t, err, &flowErr)
	assert.Equal(t, KindSchema, flowErr.Kind)
}

// TestBuildDagSchemaWarnsOnDanglingInputPort covers the non-fatal half of
// the same invariant: a non-source node with an input port that has no
// inbound edge is a warning, not a build failure.
func TestBuildDagSchemaWarnsOnDanglingInputPort(t *testing.T) {
	reg := newFakeRegistry()
	reg.register("emit_source", NodeKindSource, sourceFactory("emit_source"))
	reg.register("collect", NodeKindSink, sinkFactory("collect"))

	g := buildGraph(
		[]NodeDef{
			{ID: "src", ActionName: "emit_source"},
			{ID: "snk", ActionName: "collect"},
		},
		nil,
	)

	schema, err := BuildDagSchema(g, testNodeCtx, reg)
	require.NoError(t, err)
	require.Len(t, schema.Warnings(), 1)
	assert.Contains(t, schema.Warnings()[0], "snk")
}

// TestBuildDagSchemaRejectsCycle covers invariant "Graph acyclicity" and
// scenario S5 (cycle rejection): a processor feeding back into an upstream
// processor must fail at build time, never at run time.
func TestBuildDagSchemaRejectsCycle(t *testing.T) {
	reg := newFakeRegistry()
	reg.register("pass_through", NodeKindProcessor, processorFactory("pass_through"))

	g := buildGraph(
		[]NodeDef{
			{ID: "a", ActionName: "pass_through"},
			{ID: "b", ActionName: "pass_through"},
		},
		[]EdgeDef{
			{ID: "e1", From: "a", To: "b", FromPort: PortDefault, ToPort: PortDefault},
			{ID: "e2", From: "b", To: "a", FromPort: PortDefault, ToPort: PortDefault},
		},
	)

	_, err := BuildDagSchema(g, testNodeCtx, reg)
	require.Error(t, err)
	var flowErr *FlowError
	require.ErrorAs(t, err, &flowErr)
	assert.Equal(t, KindSchema, flowErr.Kind)
}

// TestBuildDagSchemaRejectsUnknownAction covers the unknown-action
// build-time failure, fatal per IsFatalAtBuild.
func TestBuildDagSchemaRejectsUnknownAction(t *testing.T) {
	reg := newFakeRegistry()
	g := buildGraph([]NodeDef{{ID: "src", ActionName: "does_not_exist"}}, nil)

	_, err := BuildDagSchema(g, testNodeCtx, reg)
	require.Error(t, err)
	var flowErr *FlowError
	require.ErrorAs(t, err, &flowErr)
	assert.True(t, flowErr.Kind.IsFatalAtBuild())
}

func TestBuildDagSchemaRejectsDuplicateNodeID(t *testing.T) {
	reg := newFakeRegistry()
	reg.register("emit_source", NodeKindSource, sourceFactory("emit_source"))

	g := buildGraph([]NodeDef{
		{ID: "src", ActionName: "emit_source"},
		{ID: "src", ActionName: "emit_source"},
	}, nil)

	_, err := BuildDagSchema(g, testNodeCtx, reg)
	require.Error(t, err)
}

func TestToDotRendersNodesAndEdges(t *testing.T) {
	reg := newFakeRegistry()
	reg.register("emit_source", NodeKindSource, sourceFactory("emit_source"))
	reg.register("collect", NodeKindSink, sinkFactory("collect"))

	g := buildGraph(
		[]NodeDef{
			{ID: "src", Name: "Source", ActionName: "emit_source"},
			{ID: "snk", Name: "Sink", ActionName: "collect"},
		},
		[]EdgeDef{{ID: "e1", From: "src", To: "snk", FromPort: PortDefault, ToPort: PortDefault}},
	)

	schema, err := BuildDagSchema(g, testNodeCtx, reg)
	require.NoError(t, err)

	dot := schema.ToDot()
	assert.Contains(t, dot, "digraph workflow")
	assert.Contains(t, dot, `"src"`)
	assert.Contains(t, dot, `"snk"`)
	assert.Contains(t, dot, `"src" -> "snk"`)
}
