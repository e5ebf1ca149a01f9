package attribute

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/reearth/reearth-flow-go/flow/runtime"
	"github.com/reearth/reearth-flow-go/flow/types"
	"github.com/stretchr/testify/require"
)

func TestFilePathInfoExtractorRejectsMissingAttribute(t *testing.T) {
	nodeCtx := runtime.NodeContext{NodeID: "extract"}
	proc, err := (FilePathInfoExtractorFactory{}).BuildProcessor(nodeCtx, map[string]types.Value{
		"attribute": types.String("path"),
	})
	require.NoError(t, err)

	fwd := &fakeForwarder{}
	execCtx := runtime.ExecutorContext{NodeContext: nodeCtx, Feature: types.New()}
	require.NoError(t, proc.Process(context.Background(), execCtx, fwd))
	require.Len(t, fwd.sent, 1)
	require.Equal(t, runtime.PortRejected, fwd.sent[0].port)
}

func TestFilePathInfoExtractorPopulatesFileAttributes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	nodeCtx := runtime.NodeContext{NodeID: "extract"}
	proc, err := (FilePathInfoExtractorFactory{}).BuildProcessor(nodeCtx, map[string]types.Value{
		"attribute": types.String("path"),
	})
	require.NoError(t, err)

	fwd := &fakeForwarder{}
	execCtx := runtime.ExecutorContext{
		NodeContext: nodeCtx,
		Feature:     featureWithAttrs(map[string]types.Value{"path": types.String(path)}),
	}
	require.NoError(t, proc.Process(context.Background(), execCtx, fwd))
	require.Len(t, fwd.sent, 1)
	require.Equal(t, runtime.PortDefault, fwd.sent[0].port)

	fileType, ok := fwd.sent[0].feature.Get(types.NewAttribute("fileType"))
	require.True(t, ok)
	s, _ := fileType.AsString()
	require.Equal(t, "File", s)

	size, ok := fwd.sent[0].feature.Get(types.NewAttribute("fileSize"))
	require.True(t, ok)
	n, _ := size.AsNumber()
	require.Equal(t, int64(5), n.I)
}
