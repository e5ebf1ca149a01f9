package attribute

import (
	"context"
	"testing"

	"github.com/reearth/reearth-flow-go/flow/expr"
	"github.com/reearth/reearth-flow-go/flow/runtime"
	"github.com/reearth/reearth-flow-go/flow/types"
	"github.com/stretchr/testify/require"
)

type fakeForwarder struct {
	sent []sentMessage
}

type sentMessage struct {
	port    runtime.Port
	feature types.Feature
}

func (f *fakeForwarder) Send(ctx context.Context, port runtime.Port, feature types.Feature) error {
	f.sent = append(f.sent, sentMessage{port: port, feature: feature})
	return nil
}

func featureWithAttrs(attrs map[string]types.Value) types.Feature {
	feature := types.New()
	m := make(map[types.Attribute]types.Value, len(attrs))
	for k, v := range attrs {
		m[types.NewAttribute(k)] = v
	}
	return feature.WithAttributes(m)
}

func TestAggregatorCountsByKey(t *testing.T) {
	nodeCtx := runtime.NodeContext{NodeID: "agg", Expr: expr.NewEngine()}
	with := map[string]types.Value{
		"aggregateAttributes": types.Array([]types.Value{
			types.Map(map[string]types.Value{
				"newAttribute":   types.String("category"),
				"attributeValue": types.String("category"),
			}),
		}),
		"calculation":          types.String("1"),
		"calculationAttribute": types.String("count"),
		"method":               types.String("count"),
	}

	factory := AggregatorFactory{}
	proc, err := factory.BuildProcessor(nodeCtx, with)
	require.NoError(t, err)

	fwd := &fakeForwarder{}
	for _, cat := range []string{"a", "a", "b"} {
		execCtx := runtime.ExecutorContext{
			NodeContext: nodeCtx,
			Feature:     featureWithAttrs(map[string]types.Value{"category": types.String(cat)}),
		}
		require.NoError(t, proc.Process(context.Background(), execCtx, fwd))
	}
	require.NoError(t, proc.Finish(context.Background(), nodeCtx, fwd))

	require.Len(t, fwd.sent, 2)
	counts := make(map[string]int64)
	for _, m := range fwd.sent {
		cat, _ := m.feature.Get(types.NewAttribute("category"))
		count, _ := m.feature.Get(types.NewAttribute("count"))
		catStr, _ := cat.AsString()
		countNum, _ := count.AsNumber()
		counts[catStr] = countNum.I
	}
	require.Equal(t, int64(2), counts["a"])
	require.Equal(t, int64(1), counts["b"])
}

func TestAggregatorMaxMethod(t *testing.T) {
	nodeCtx := runtime.NodeContext{NodeID: "agg", Expr: expr.NewEngine()}
	with := map[string]types.Value{
		"aggregateAttributes": types.Array([]types.Value{
			types.Map(map[string]types.Value{
				"newAttribute":   types.String("category"),
				"attributeValue": types.String("category"),
			}),
		}),
		"calculation":          types.String("value"),
		"calculationAttribute": types.String("maxValue"),
		"method":               types.String("max"),
	}
	factory := AggregatorFactory{}
	proc, err := factory.BuildProcessor(nodeCtx, with)
	require.NoError(t, err)

	fwd := &fakeForwarder{}
	for _, v := range []int64{3, 7, 5} {
		execCtx := runtime.ExecutorContext{
			NodeContext: nodeCtx,
			Feature: featureWithAttrs(map[string]types.Value{
				"category": types.String("x"),
				"value":    types.Int(v),
			}),
		}
		require.NoError(t, proc.Process(context.Background(), execCtx, fwd))
	}
	require.NoError(t, proc.Finish(context.Background(), nodeCtx, fwd))

	require.Len(t, fwd.sent, 1)
	maxValue, _ := fwd.sent[0].feature.Get(types.NewAttribute("maxValue"))
	n, _ := maxValue.AsNumber()
	require.Equal(t, int64(7), n.I)
}
