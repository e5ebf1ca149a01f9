package workflow

import (
	"context"
	"fmt"

	"github.com/reearth/reearth-flow-go/flow/runtime"
	"github.com/reearth/reearth-flow-go/flow/storage"
	"github.com/reearth/reearth-flow-go/flow/types"
)

// Load reads a workflow document from uri via resolver, parses it, and
// inlines subgraphs into a single flow/runtime.GraphDef rooted at
// entryGraphId. vars override (or add to) the document's top-level `with`
// bag before it is merged into every action node's params (spec.md §6's
// `--var key=value` CLI behavior, recovered from original_source's CLI
// per SPEC_FULL.md §6.2).
func Load(ctx context.Context, resolver *storage.Resolver, uri string, vars map[string]string) (*Document, runtime.GraphDef, error) {
	data, err := resolver.Read(ctx, uri)
	if err != nil {
		return nil, runtime.GraphDef{}, fmt.Errorf("workflow: reading %q: %w", uri, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, runtime.GraphDef{}, err
	}
	for k, v := range vars {
		if doc.With == nil {
			doc.With = make(map[string]any)
		}
		doc.With[k] = v
	}
	graph, err := Inline(doc)
	if err != nil {
		return nil, runtime.GraphDef{}, err
	}
	return doc, graph, nil
}

// Inline flattens doc's entry graph into a single GraphDef, recursively
// expanding subGraph nodes and qualifying every inlined node/edge id with
// the id of the subGraph node that inlines it (spec.md §4.5 step 1),
// grounded on the teacher's runID-qualified namespacing in
// graph/checkpoint.go. Each entry of the document's top-level `with` bag is
// added to every node's params unless the node sets the same key itself.
func Inline(doc *Document) (runtime.GraphDef, error) {
	graphs := make(map[string]Graph, len(doc.Graphs))
	for _, g := range doc.Graphs {
		graphs[g.ID] = g
	}
	entry, ok := graphs[doc.EntryGraphID]
	if !ok {
		return runtime.GraphDef{}, fmt.Errorf("workflow: entryGraphId %q not found among graphs", doc.EntryGraphID)
	}

	out := runtime.GraphDef{ID: doc.ID, Name: doc.Name}
	seen := map[string]bool{doc.EntryGraphID: true}
	if err := inlineGraph(entry, "", graphs, seen, &out); err != nil {
		return runtime.GraphDef{}, err
	}
	for i := range out.Nodes {
		for k, v := range doc.With {
			if _, ok := out.Nodes[i].With[k]; !ok {
				out.Nodes[i].With[k] = valueFromAny(v)
			}
		}
	}
	return out, nil
}

// inlineGraph appends g's nodes/edges (id-qualified by prefix) into out,
// recursing into any subGraph node. prefix is empty for the entry graph and
// "<parentNodeId>." for a subgraph inlined under a subGraph node.
func inlineGraph(g Graph, prefix string, graphs map[string]Graph, seen map[string]bool, out *runtime.GraphDef) error {
	for _, n := range g.Nodes {
		qualifiedID := prefix + n.ID
		switch n.Type {
		case NodeTypeSubGraph, "":
			if n.Type == "" {
				// A node with no declared type defaults to "action" per
				// spec.md §6's node shape; only explicit subGraph nodes
				// recurse.
				if n.Action == "" {
					return fmt.Errorf("workflow: node %q has neither action nor subGraphId", qualifiedID)
				}
				out.Nodes = append(out.Nodes, toNodeDef(qualifiedID, n))
				continue
			}
			if seen[n.SubGraphID] {
				return fmt.Errorf("workflow: subgraph %q is referenced cyclically", n.SubGraphID)
			}
			sub, ok := graphs[n.SubGraphID]
			if !ok {
				return fmt.Errorf("workflow: node %q references unknown subGraphId %q", qualifiedID, n.SubGraphID)
			}
			seen[n.SubGraphID] = true
			if err := inlineGraph(sub, qualifiedID+".", graphs, seen, out); err != nil {
				return err
			}
			delete(seen, n.SubGraphID)
		case NodeTypeAction:
			out.Nodes = append(out.Nodes, toNodeDef(qualifiedID, n))
		default:
			return fmt.Errorf("workflow: node %q has unknown type %q", qualifiedID, n.Type)
		}
	}
	for _, e := range g.Edges {
		out.Edges = append(out.Edges, runtime.EdgeDef{
			ID:       prefix + e.ID,
			From:     prefix + e.From,
			To:       prefix + e.To,
			FromPort: runtime.Port(e.FromPort),
			ToPort:   runtime.Port(e.ToPort),
		})
	}
	return nil
}

func toNodeDef(id string, n Node) runtime.NodeDef {
	with := make(map[string]types.Value, len(n.With))
	for k, v := range n.With {
		with[k] = valueFromAny(v)
	}
	return runtime.NodeDef{
		ID:         id,
		Name:       n.Name,
		ActionName: n.Action,
		With:       with,
	}
}
