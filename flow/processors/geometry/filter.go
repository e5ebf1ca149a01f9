// Package geometry implements geometry-routing and geometry-projection
// processors. Grounded on original_source/worker/crates/action-processor/
// src/geometry/{filter,coercer}.rs.
package geometry

import (
	"context"

	"github.com/reearth/reearth-flow-go/flow/registry"
	"github.com/reearth/reearth-flow-go/flow/runtime"
	"github.com/reearth/reearth-flow-go/flow/types"
)

func init() {
	registry.RegisterProcessor("GeometryFilter", &FilterFactory{})
}

// FilterType selects which predicate GeometryFilter applies, mirroring
// filter.rs's GeometryFilterParam enum (tagged by filterType).
type FilterType string

const (
	FilterNone        FilterType = "none"
	FilterMultiple    FilterType = "multiple"
	FilterFeatureType FilterType = "featureType"
)

type FilterParam struct {
	FilterType FilterType `flow:"filterType,required"`
}

type FilterFactory struct{}

func (FilterFactory) ActionName() string  { return "GeometryFilter" }
func (FilterFactory) Description() string { return "Filter geometry by type" }
func (FilterFactory) Categories() []string { return []string{"Geometry"} }
func (FilterFactory) ParameterSchema() runtime.ParamSchema {
	return registry.BuildParamSchema(FilterParam{})
}
func (FilterFactory) InputPorts() []runtime.Port { return []runtime.Port{runtime.PortDefault} }

// OutputPorts is a superset covering every branch Process can take: the
// reserved "unfiltered" port plus every named outcome port a filterType can
// produce. filter.rs enumerates every geometry/feature type name as a
// potential port at factory-build time the same way; this port set is
// smaller (this engine's geometry model has fewer variants) but follows the
// same "declare every branch, dag_schema validates them all" shape.
func (FilterFactory) OutputPorts() []runtime.Port {
	return []runtime.Port{
		runtime.PortUnfiltered,
		runtime.Port("none"),
		runtime.Port("contains"),
		runtime.Port(geometryTypeName(types.GeomPoint)),
		runtime.Port(geometryTypeName(types.GeomLine)),
		runtime.Port(geometryTypeName(types.GeomLineString)),
		runtime.Port(geometryTypeName(types.GeomMultiLineString)),
		runtime.Port(geometryTypeName(types.GeomPolygon)),
		runtime.Port(geometryTypeName(types.GeomMultiPolygon)),
		runtime.Port(geometryTypeName(types.GeomCollection)),
		runtime.Port("cityGmlGeometry"),
	}
}

func (f FilterFactory) BuildProcessor(nodeCtx runtime.NodeContext, with map[string]types.Value) (runtime.Processor, error) {
	v, ok := with["filterType"]
	if !ok {
		return nil, runtime.FactoryError(nodeCtx.NodeID, "missing required parameter `filterType`", nil)
	}
	s, ok := v.AsString()
	if !ok {
		return nil, runtime.FactoryError(nodeCtx.NodeID, "`filterType` must be a string", nil)
	}
	return &Filter{filterType: FilterType(s)}, nil
}

// Filter routes a feature to a port chosen by its geometry shape. Runs with
// 2 worker goroutines, matching filter.rs's num_threads() == 2.
type Filter struct {
	filterType FilterType
}

func (f *Filter) Initialize(ctx context.Context, nodeCtx runtime.NodeContext) error { return nil }
func (f *Filter) NumThreads() int                                                  { return 2 }
func (f *Filter) Name() string                                                     { return "GeometryFilter" }
func (f *Filter) Finish(ctx context.Context, nodeCtx runtime.NodeContext, fwd runtime.Forwarder) error {
	return nil
}

func (f *Filter) Process(ctx context.Context, execCtx runtime.ExecutorContext, fwd runtime.Forwarder) error {
	feature := execCtx.Feature
	switch f.filterType {
	case FilterNone:
		return f.filterNone(ctx, feature, fwd)
	case FilterMultiple:
		return f.filterMultiple(ctx, feature, fwd)
	case FilterFeatureType:
		return f.filterFeatureType(ctx, feature, fwd)
	default:
		return runtime.ProcessError(execCtx.NodeID, "unknown filterType", nil)
	}
}

func (f *Filter) filterNone(ctx context.Context, feature types.Feature, fwd runtime.Forwarder) error {
	switch feature.Geometry.(type) {
	case types.NoGeometry, nil:
		return fwd.Send(ctx, "none", feature)
	default:
		return fwd.Send(ctx, runtime.PortUnfiltered, feature)
	}
}

func (f *Filter) filterMultiple(ctx context.Context, feature types.Feature, fwd runtime.Forwarder) error {
	switch g := feature.Geometry.(type) {
	case types.Geometry2D:
		if g.Type == types.GeomMultiPolygon || g.Type == types.GeomCollection {
			return fwd.Send(ctx, "contains", feature)
		}
	case types.Geometry3D:
		if g.Type == types.GeomMultiPolygon || g.Type == types.GeomCollection {
			return fwd.Send(ctx, "contains", feature)
		}
	case types.CityGmlGeometry:
		if len(g.Features) > 1 {
			return fwd.Send(ctx, "contains", feature)
		}
	}
	return fwd.Send(ctx, runtime.PortUnfiltered, feature)
}

func (f *Filter) filterFeatureType(ctx context.Context, feature types.Feature, fwd runtime.Forwarder) error {
	switch g := feature.Geometry.(type) {
	case types.Geometry2D:
		return fwd.Send(ctx, runtime.Port(geometryTypeName(g.Type)), feature)
	case types.Geometry3D:
		return fwd.Send(ctx, runtime.Port(geometryTypeName(g.Type)), feature)
	case types.CityGmlGeometry:
		if len(g.Features) != 1 {
			return fwd.Send(ctx, runtime.PortUnfiltered, feature)
		}
		return fwd.Send(ctx, "cityGmlGeometry", feature)
	default:
		return fwd.Send(ctx, runtime.PortUnfiltered, feature)
	}
}

func geometryTypeName(t types.GeometryType) string {
	switch t {
	case types.GeomPoint:
		return "point"
	case types.GeomLine:
		return "line"
	case types.GeomLineString:
		return "lineString"
	case types.GeomMultiLineString:
		return "multiLineString"
	case types.GeomPolygon:
		return "polygon"
	case types.GeomMultiPolygon:
		return "multiPolygon"
	case types.GeomCollection:
		return "geometryCollection"
	default:
		return "unknown"
	}
}
