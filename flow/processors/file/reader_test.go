package file

import (
	"context"
	"testing"

	"github.com/reearth/reearth-flow-go/flow/runtime"
	"github.com/reearth/reearth-flow-go/flow/storage"
	"github.com/reearth/reearth-flow-go/flow/types"
	"github.com/stretchr/testify/require"
)

type fakeForwarder struct {
	sent []types.Feature
}

func (f *fakeForwarder) Send(ctx context.Context, port runtime.Port, feature types.Feature) error {
	f.sent = append(f.sent, feature)
	return nil
}

func TestReaderParsesCSVHeaderAndRows(t *testing.T) {
	resolver := storage.New()
	ctx := context.Background()
	require.NoError(t, resolver.Write(ctx, "ram:///data.csv", []byte("name,age\nalice,30\nbob,40\n")))

	nodeCtx := runtime.NodeContext{NodeID: "read", Storage: resolver}
	proc, err := (ReaderFactory{}).BuildSource(nodeCtx, map[string]types.Value{
		"dataset": types.String("ram:///data.csv"),
		"format":  types.String(string(FormatCSV)),
	})
	require.NoError(t, err)

	fwd := &fakeForwarder{}
	require.NoError(t, proc.Start(ctx, nodeCtx, fwd))
	require.Len(t, fwd.sent, 2)

	name, ok := fwd.sent[0].CloneAttributes()[types.NewAttribute("name")].AsString()
	require.True(t, ok)
	require.Equal(t, "alice", name)
}

func TestReaderParsesJSONArray(t *testing.T) {
	resolver := storage.New()
	ctx := context.Background()
	require.NoError(t, resolver.Write(ctx, "ram:///data.json", []byte(`[{"name":"alice"},{"name":"bob"}]`)))

	nodeCtx := runtime.NodeContext{NodeID: "read", Storage: resolver}
	proc, err := (ReaderFactory{}).BuildSource(nodeCtx, map[string]types.Value{
		"dataset": types.String("ram:///data.json"),
		"format":  types.String(string(FormatJSON)),
	})
	require.NoError(t, err)

	fwd := &fakeForwarder{}
	require.NoError(t, proc.Start(ctx, nodeCtx, fwd))
	require.Len(t, fwd.sent, 2)
}

func TestReaderParsesNewlineDelimitedJSON(t *testing.T) {
	resolver := storage.New()
	ctx := context.Background()
	require.NoError(t, resolver.Write(ctx, "ram:///data.ndjson", []byte("{\"name\":\"alice\"}\n{\"name\":\"bob\"}\n")))

	nodeCtx := runtime.NodeContext{NodeID: "read", Storage: resolver}
	proc, err := (ReaderFactory{}).BuildSource(nodeCtx, map[string]types.Value{
		"dataset": types.String("ram:///data.ndjson"),
		"format":  types.String(string(FormatJSON)),
	})
	require.NoError(t, err)

	fwd := &fakeForwarder{}
	require.NoError(t, proc.Start(ctx, nodeCtx, fwd))
	require.Len(t, fwd.sent, 2)
}

func TestReaderRejectsUnknownFormatAtBuild(t *testing.T) {
	nodeCtx := runtime.NodeContext{NodeID: "read"}
	_, err := (ReaderFactory{}).BuildSource(nodeCtx, map[string]types.Value{
		"dataset": types.String("ram:///data.csv"),
		"format":  types.String("xml"),
	})
	require.Error(t, err)
}
