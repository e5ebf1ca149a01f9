package runtime

import "github.com/reearth/reearth-flow-go/flow/types"

// NodeKind distinguishes the three shapes a graph node can take once built.
type NodeKind int

const (
	NodeKindSource NodeKind = iota
	NodeKindProcessor
	NodeKindSink
)

// NodeDef is the declarative description of a node before it is built: an
// id, an action name (factory lookup key), and a parameter bag. Grounded on
// spec.md §3's Node record, it is the Go-side counterpart of a YAML
// document's `nodes[]` entry (flow/workflow owns the YAML shape itself).
type NodeDef struct {
	ID         string
	Name       string
	ActionName string
	With       map[string]types.Value
	// NumThreadsOverride, when > 0, overrides the factory's declared
	// default worker count for this node instance.
	NumThreadsOverride int
}

// EdgeDef is a directed (from_node, from_port) -> (to_node, to_port) wire.
type EdgeDef struct {
	ID       string
	From     string
	To       string
	FromPort Port
	ToPort   Port
}

// GraphDef is one `graphs[]` entry of a workflow document: a flat node/edge
// set, already resolved of any subgraph references by the time DagSchema
// sees it (flow/workflow performs the inlining described in spec.md §4.5
// step 1-2, qualifying inlined ids by the id of the subGraph node that
// inlines them).
type GraphDef struct {
	ID    string
	Name  string
	Nodes []NodeDef
	Edges []EdgeDef
}
