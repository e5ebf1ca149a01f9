package runtime

import (
	"fmt"
	"sort"
	"strings"
)

// builtNode is a node after factory lookup and build: its kind, its
// instance, and its declared ports (cached from the factory so edge
// validation and the executor never need to re-query the factory).
type builtNode struct {
	def    NodeDef
	kind   NodeKind
	source Source
	proc   Processor
	sink   Sink
	inputs map[Port]bool
	output map[Port]bool
}

// DagSchema is the validated, executable form of a workflow: built
// processors plus wired edges, grounded on spec.md §4.5's six-step build
// algorithm. The teacher has no direct analog (LangGraph-Go's graph is a
// single-state step graph with Edge[S].When predicates, not a multi-ported
// feature DAG); the topological layering in step 6 repurposes the
// determinism/order-key bookkeeping pattern from graph/scheduler.go for a
// diagnostics-only DOT layering instead of execution ordering.
type DagSchema struct {
	nodes    map[string]*builtNode
	order    []string // node ids in declaration order, stable iteration
	edges    []EdgeDef
	outEdges map[string][]EdgeDef // node id -> edges leaving it
	inEdges  map[string][]EdgeDef // node id -> edges entering it
	layers   [][]string           // topological layers, diagnostics only
	warnings []string
}

// Warnings returns non-fatal diagnostics accumulated during build, such as
// an input port with zero inbound edges on a non-source node.
func (s *DagSchema) Warnings() []string { return append([]string(nil), s.warnings...) }

// BuildDagSchema runs the six-step algorithm from spec.md §4.5 against an
// already-flattened graph (subgraph inlining is flow/workflow's job, step 1
// of the spec; by the time a GraphDef reaches here it is already a single
// flat node/edge set, satisfying step 2).
func BuildDagSchema(g GraphDef, nodeCtxFor func(nodeID string) NodeContext, registry ActionRegistry) (*DagSchema, error) {
	schema := &DagSchema{
		nodes:    make(map[string]*builtNode, len(g.Nodes)),
		outEdges: make(map[string][]EdgeDef),
		inEdges:  make(map[string][]EdgeDef),
	}

	// Step 3: resolve each node's factory by action name and build it.
	for _, def := range g.Nodes {
		if _, exists := schema.nodes[def.ID]; exists {
			return nil, SchemaError(def.ID, "duplicate node id", nil)
		}
		kind, factory, ok := registry.Lookup(def.ActionName)
		if !ok {
			return nil, SchemaError(def.ID, fmt.Sprintf("unknown action %q", def.ActionName), nil)
		}
		nodeCtx := nodeCtxFor(def.ID)
		built, err := buildNode(def, kind, factory, nodeCtx)
		if err != nil {
			return nil, err
		}
		schema.nodes[def.ID] = built
		schema.order = append(schema.order, def.ID)
	}

	// Step 4: validate every edge endpoint against declared ports.
	for _, e := range g.Edges {
		from, ok := schema.nodes[e.From]
		if !ok {
			return nil, SchemaError(e.From, fmt.Sprintf("edge %q references unknown node", e.ID), nil)
		}
		to, ok := schema.nodes[e.To]
		if !ok {
			return nil, SchemaError(e.To, fmt.Sprintf("edge %q references unknown node", e.ID), nil)
		}
		if !from.output[e.FromPort] {
			return nil, SchemaError(e.From, fmt.Sprintf("edge %q: unknown output port %q", e.ID, e.FromPort), nil)
		}
		if !to.inputs[e.ToPort] {
			return nil, SchemaError(e.To, fmt.Sprintf("edge %q: unknown input port %q", e.ID, e.ToPort), nil)
		}
		schema.edges = append(schema.edges, e)
		schema.outEdges[e.From] = append(schema.outEdges[e.From], e)
		schema.inEdges[e.To] = append(schema.inEdges[e.To], e)
	}

	// Input ports with zero inbound edges are a warning, not fatal, unless
	// the node is a source (sources have no input ports to begin with).
	for _, id := range schema.order {
		n := schema.nodes[id]
		if n.kind == NodeKindSource {
			continue
		}
		for port := range n.inputs {
			if !hasEdgeToPort(schema.inEdges[id], port) {
				schema.warnings = append(schema.warnings,
					fmt.Sprintf("node %q: input port %q has no inbound edges", id, port))
			}
		}
	}
	sort.Strings(schema.warnings)

	// Step 5: the feature graph (nodes as vertices) must be acyclic.
	if cyc := detectCycle(schema.order, schema.outEdges); cyc != nil {
		return nil, SchemaError(strings.Join(cyc, "->"), "cycle detected among action nodes", nil)
	}

	// Step 6: topological layering, diagnostics only (to_dot).
	schema.layers = topologicalLayers(schema.order, schema.outEdges, schema.inEdges)

	return schema, nil
}

func hasEdgeToPort(edges []EdgeDef, port Port) bool {
	for _, e := range edges {
		if e.ToPort == port {
			return true
		}
	}
	return false
}

func buildNode(def NodeDef, kind NodeKind, factory any, nodeCtx NodeContext) (*builtNode, error) {
	n := &builtNode{def: def, kind: kind, inputs: map[Port]bool{}, output: map[Port]bool{}}

	switch kind {
	case NodeKindSource:
		f, ok := factory.(SourceFactory)
		if !ok {
			return nil, FactoryError(def.ID, "registry entry is not a SourceFactory", nil)
		}
		src, err := f.BuildSource(nodeCtx, def.With)
		if err != nil {
			return nil, FactoryError(def.ID, "building source", err)
		}
		n.source = src
		for _, p := range f.OutputPorts() {
			n.output[p] = true
		}
	case NodeKindProcessor:
		f, ok := factory.(ProcessorFactory)
		if !ok {
			return nil, FactoryError(def.ID, "registry entry is not a ProcessorFactory", nil)
		}
		proc, err := f.BuildProcessor(nodeCtx, def.With)
		if err != nil {
			return nil, FactoryError(def.ID, "building processor", err)
		}
		n.proc = proc
		for _, p := range f.InputPorts() {
			n.inputs[p] = true
		}
		for _, p := range f.OutputPorts() {
			n.output[p] = true
		}
	case NodeKindSink:
		f, ok := factory.(SinkFactory)
		if !ok {
			return nil, FactoryError(def.ID, "registry entry is not a SinkFactory", nil)
		}
		sink, err := f.BuildSink(nodeCtx, def.With)
		if err != nil {
			return nil, FactoryError(def.ID, "building sink", err)
		}
		n.sink = sink
		for _, p := range f.InputPorts() {
			n.inputs[p] = true
		}
	default:
		return nil, FactoryError(def.ID, "unknown node kind", nil)
	}
	return n, nil
}

// detectCycle runs a standard white/gray/black DFS and returns the cycle
// path if one exists, nil otherwise.
func detectCycle(order []string, outEdges map[string][]EdgeDef) []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(order))
	var path []string
	var cyc []string

	var visit func(id string) bool
	visit = func(id string) bool {
		color[id] = gray
		path = append(path, id)
		for _, e := range outEdges[id] {
			switch color[e.To] {
			case gray:
				cyc = append(append([]string{}, path...), e.To)
				return true
			case white:
				if visit(e.To) {
					return true
				}
			}
		}
		path = path[:len(path)-1]
		color[id] = black
		return false
	}

	for _, id := range order {
		if color[id] == white {
			if visit(id) {
				return cyc
			}
		}
	}
	return nil
}

// topologicalLayers groups nodes into Kahn's-algorithm layers, used only by
// ToDot for a readable left-to-right diagnostic rendering.
func topologicalLayers(order []string, outEdges, inEdges map[string][]EdgeDef) [][]string {
	indegree := make(map[string]int, len(order))
	for _, id := range order {
		indegree[id] = len(inEdges[id])
	}

	var layers [][]string
	remaining := make(map[string]bool, len(order))
	for _, id := range order {
		remaining[id] = true
	}

	for len(remaining) > 0 {
		var layer []string
		for _, id := range order {
			if remaining[id] && indegree[id] == 0 {
				layer = append(layer, id)
			}
		}
		if len(layer) == 0 {
			// Should be unreachable: detectCycle already rejected cycles.
			break
		}
		sort.Strings(layer)
		layers = append(layers, layer)
		for _, id := range layer {
			delete(remaining, id)
			for _, e := range outEdges[id] {
				indegree[e.To]--
			}
		}
	}
	return layers
}

// ToDot renders the schema as a Graphviz DOT document, grounded on
// original_source/worker/crates/cli/src/dot.rs's node/edge emission shape.
func (s *DagSchema) ToDot() string {
	var b strings.Builder
	b.WriteString("digraph workflow {\n")
	b.WriteString("  rankdir=LR;\n")
	for _, layer := range s.layers {
		for _, id := range layer {
			n := s.nodes[id]
			b.WriteString(fmt.Sprintf("  %q [label=%q];\n", id, fmt.Sprintf("%s\\n(%s)", n.def.Name, n.def.ActionName)))
		}
	}
	for _, e := range s.edges {
		b.WriteString(fmt.Sprintf("  %q -> %q [label=%q];\n", e.From, e.To, fmt.Sprintf("%s->%s", e.FromPort, e.ToPort)))
	}
	b.WriteString("}\n")
	return b.String()
}

// Nodes returns node ids in declaration order.
func (s *DagSchema) Nodes() []string { return append([]string(nil), s.order...) }

func (s *DagSchema) node(id string) (*builtNode, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

func (s *DagSchema) outgoing(id string) []EdgeDef { return s.outEdges[id] }
func (s *DagSchema) incoming(id string) []EdgeDef { return s.inEdges[id] }
