package attribute

import (
	"context"
	"testing"

	"github.com/reearth/reearth-flow-go/flow/runtime"
	"github.com/reearth/reearth-flow-go/flow/types"
	"github.com/stretchr/testify/require"
)

func TestKeeperKeepsOnlyNamedAttributes(t *testing.T) {
	nodeCtx := runtime.NodeContext{NodeID: "keep"}
	with := map[string]types.Value{
		"keepAttributes": types.Array([]types.Value{types.String("a"), types.String("b")}),
	}
	proc, err := (KeeperFactory{}).BuildProcessor(nodeCtx, with)
	require.NoError(t, err)

	fwd := &fakeForwarder{}
	execCtx := runtime.ExecutorContext{
		NodeContext: nodeCtx,
		Feature: featureWithAttrs(map[string]types.Value{
			"a": types.String("1"),
			"b": types.String("2"),
			"c": types.String("3"),
		}),
	}
	require.NoError(t, proc.Process(context.Background(), execCtx, fwd))
	require.Len(t, fwd.sent, 1)
	require.Len(t, fwd.sent[0].feature.Attributes, 2)
	_, hasC := fwd.sent[0].feature.Get(types.NewAttribute("c"))
	require.False(t, hasC)
}

func TestMapperRenamesAttributes(t *testing.T) {
	nodeCtx := runtime.NodeContext{NodeID: "map"}
	with := map[string]types.Value{
		"mapping": types.Map(map[string]types.Value{"oldName": types.String("newName")}),
	}
	proc, err := (MapperFactory{}).BuildProcessor(nodeCtx, with)
	require.NoError(t, err)

	fwd := &fakeForwarder{}
	execCtx := runtime.ExecutorContext{
		NodeContext: nodeCtx,
		Feature:     featureWithAttrs(map[string]types.Value{"oldName": types.String("v")}),
	}
	require.NoError(t, proc.Process(context.Background(), execCtx, fwd))
	require.Len(t, fwd.sent, 1)
	v, ok := fwd.sent[0].feature.Get(types.NewAttribute("newName"))
	require.True(t, ok)
	s, _ := v.AsString()
	require.Equal(t, "v", s)
	_, hasOld := fwd.sent[0].feature.Get(types.NewAttribute("oldName"))
	require.False(t, hasOld)
}
