package geometry

import (
	"context"

	"github.com/reearth/reearth-flow-go/flow/registry"
	"github.com/reearth/reearth-flow-go/flow/runtime"
	"github.com/reearth/reearth-flow-go/flow/types"
)

func init() {
	registry.RegisterProcessor("GeometryCoercer", &CoercerFactory{})
}

// CoercerTarget selects the dimensionality GeometryCoercer projects onto,
// reduced from coercer.rs's richer CoercerType enum (lineString/polygon/...)
// to the 2D/3D projection spec.md §3 actually names as an invariant.
type CoercerTarget string

const (
	CoerceTo2D CoercerTarget = "2d"
	CoerceTo3D CoercerTarget = "3d"
)

type CoercerParam struct {
	CoercerType CoercerTarget `flow:"coercerType,required"`
}

type CoercerFactory struct{}

func (CoercerFactory) ActionName() string  { return "GeometryCoercer" }
func (CoercerFactory) Description() string { return "Coerces feature geometry to a target dimensionality" }
func (CoercerFactory) Categories() []string { return []string{"Geometry"} }
func (CoercerFactory) ParameterSchema() runtime.ParamSchema {
	return registry.BuildParamSchema(CoercerParam{})
}
func (CoercerFactory) InputPorts() []runtime.Port  { return []runtime.Port{runtime.PortDefault} }
func (CoercerFactory) OutputPorts() []runtime.Port { return []runtime.Port{runtime.PortDefault} }

func (f CoercerFactory) BuildProcessor(nodeCtx runtime.NodeContext, with map[string]types.Value) (runtime.Processor, error) {
	v, ok := with["coercerType"]
	if !ok {
		return nil, runtime.FactoryError(nodeCtx.NodeID, "missing required parameter `coercerType`", nil)
	}
	s, ok := v.AsString()
	if !ok {
		return nil, runtime.FactoryError(nodeCtx.NodeID, "`coercerType` must be a string", nil)
	}
	target := CoercerTarget(s)
	if target != CoerceTo2D && target != CoerceTo3D {
		return nil, runtime.FactoryError(nodeCtx.NodeID, "`coercerType` must be \"2d\" or \"3d\"", nil)
	}
	return &Coercer{target: target}, nil
}

// Coercer projects a feature's geometry to the target dimensionality.
// 3D->2D always succeeds (dropping Z); 2D->3D is a type error per spec.md
// §3 and surfaces as ErrGeometryProjection wrapped in a ProcessError,
// mirroring coercer.rs's rejection of lossy upward projection.
type Coercer struct {
	target CoercerTarget
}

func (c *Coercer) Initialize(ctx context.Context, nodeCtx runtime.NodeContext) error { return nil }
func (c *Coercer) NumThreads() int                                                  { return 1 }
func (c *Coercer) Name() string                                                     { return "GeometryCoercer" }
func (c *Coercer) Finish(ctx context.Context, nodeCtx runtime.NodeContext, fwd runtime.Forwarder) error {
	return nil
}

func (c *Coercer) Process(ctx context.Context, execCtx runtime.ExecutorContext, fwd runtime.Forwarder) error {
	feature := execCtx.Feature
	switch g := feature.Geometry.(type) {
	case types.Geometry3D:
		if c.target == CoerceTo2D {
			feature = feature.WithGeometry(types.To2D(g))
		}
	case types.Geometry2D:
		if c.target == CoerceTo3D {
			g3, err := types.To3D(g)
			if err != nil {
				return runtime.ProcessError(execCtx.NodeID, "coercing 2D geometry to 3D", err)
			}
			feature = feature.WithGeometry(g3)
		}
	}
	return fwd.Send(ctx, runtime.PortDefault, feature)
}
