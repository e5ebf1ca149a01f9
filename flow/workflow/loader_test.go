package workflow

import (
	"testing"

	"github.com/reearth/reearth-flow-go/flow/runtime"
	"github.com/stretchr/testify/require"
)

const flatDocument = `
id: doc-1
name: flat
entryGraphId: main
with:
  threshold: 3
graphs:
  - id: main
    name: main graph
    nodes:
      - id: src
        name: source
        type: action
        action: FeatureReader
      - id: snk
        name: sink
        type: action
        action: FeatureCounter
    edges:
      - id: e1
        from: src
        to: snk
        fromPort: default
        toPort: default
`

func TestParseDecodesDocumentShape(t *testing.T) {
	doc, err := Parse([]byte(flatDocument))
	require.NoError(t, err)
	require.Equal(t, "doc-1", doc.ID)
	require.Equal(t, "main", doc.EntryGraphID)
	require.Len(t, doc.Graphs, 1)
	require.Len(t, doc.Graphs[0].Nodes, 2)
}

func TestInlineFlattensFlatGraph(t *testing.T) {
	doc, err := Parse([]byte(flatDocument))
	require.NoError(t, err)

	graph, err := Inline(doc)
	require.NoError(t, err)
	require.Len(t, graph.Nodes, 2)
	require.Len(t, graph.Edges, 1)
	require.Equal(t, "src", graph.Edges[0].From)
	require.Equal(t, "snk", graph.Edges[0].To)
	require.Equal(t, runtime.Port("default"), graph.Edges[0].FromPort)
}

const subGraphDocument = `
id: doc-2
name: nested
entryGraphId: main
graphs:
  - id: main
    name: main
    nodes:
      - id: src
        type: action
        action: FeatureReader
      - id: inner
        type: subGraph
        subGraphId: sub
      - id: snk
        type: action
        action: FeatureCounter
    edges:
      - id: e1
        from: src
        to: inner.proc
        fromPort: default
        toPort: default
      - id: e2
        from: inner.proc
        to: snk
        fromPort: default
        toPort: default
  - id: sub
    name: sub
    nodes:
      - id: proc
        type: action
        action: FeatureWriter
    edges: []
`

func TestInlineQualifiesSubgraphNodeIDs(t *testing.T) {
	doc, err := Parse([]byte(subGraphDocument))
	require.NoError(t, err)

	graph, err := Inline(doc)
	require.NoError(t, err)

	ids := make(map[string]bool, len(graph.Nodes))
	for _, n := range graph.Nodes {
		ids[n.ID] = true
	}
	require.True(t, ids["src"])
	require.True(t, ids["inner.proc"])
	require.True(t, ids["snk"])
}

func TestInlineRejectsUnknownEntryGraph(t *testing.T) {
	doc := &Document{ID: "x", EntryGraphID: "missing"}
	_, err := Inline(doc)
	require.Error(t, err)
}
