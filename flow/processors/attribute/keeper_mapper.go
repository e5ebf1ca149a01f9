package attribute

import (
	"context"

	"github.com/reearth/reearth-flow-go/flow/registry"
	"github.com/reearth/reearth-flow-go/flow/runtime"
	"github.com/reearth/reearth-flow-go/flow/types"
)

func init() {
	registry.RegisterProcessor("AttributeKeeper", &KeeperFactory{})
	registry.RegisterProcessor("AttributeMapper", &MapperFactory{})
}

// KeeperParam lists the attribute names to retain; everything else is
// dropped. Covers spec.md §4.2's with_attributes contract from the "keep a
// subset" side.
type KeeperParam struct {
	KeepAttributes []string `flow:"keepAttributes,required"`
}

type KeeperFactory struct{}

func (KeeperFactory) ActionName() string  { return "AttributeKeeper" }
func (KeeperFactory) Description() string { return "Keeps only the named attributes" }
func (KeeperFactory) Categories() []string { return []string{"Attribute"} }
func (KeeperFactory) ParameterSchema() runtime.ParamSchema {
	return registry.BuildParamSchema(KeeperParam{})
}
func (KeeperFactory) InputPorts() []runtime.Port  { return []runtime.Port{runtime.PortDefault} }
func (KeeperFactory) OutputPorts() []runtime.Port { return []runtime.Port{runtime.PortDefault} }

func (f KeeperFactory) BuildProcessor(nodeCtx runtime.NodeContext, with map[string]types.Value) (runtime.Processor, error) {
	names, err := decodeStringList(with, "keepAttributes")
	if err != nil {
		return nil, runtime.FactoryError(nodeCtx.NodeID, "decoding AttributeKeeper params", err)
	}
	keep := make(map[types.Attribute]bool, len(names))
	for _, n := range names {
		keep[types.NewAttribute(n)] = true
	}
	return &Keeper{keep: keep}, nil
}

type Keeper struct {
	keep map[types.Attribute]bool
}

func (k *Keeper) Initialize(ctx context.Context, nodeCtx runtime.NodeContext) error { return nil }
func (k *Keeper) NumThreads() int                                                  { return 1 }
func (k *Keeper) Name() string                                                     { return "AttributeKeeper" }
func (k *Keeper) Finish(ctx context.Context, nodeCtx runtime.NodeContext, fwd runtime.Forwarder) error {
	return nil
}

func (k *Keeper) Process(ctx context.Context, execCtx runtime.ExecutorContext, fwd runtime.Forwarder) error {
	kept := make(map[types.Attribute]types.Value, len(k.keep))
	for attr, value := range execCtx.Feature.Attributes {
		if k.keep[attr] {
			kept[attr] = value
		}
	}
	return fwd.Send(ctx, runtime.PortDefault, execCtx.Feature.WithAttributes(kept))
}

// MapperParam renames attributes: oldName -> newName. Attributes not named
// as a source key pass through unchanged.
type MapperParam struct {
	Mapping map[string]string `flow:"mapping,required"`
}

type MapperFactory struct{}

func (MapperFactory) ActionName() string  { return "AttributeMapper" }
func (MapperFactory) Description() string { return "Renames attributes" }
func (MapperFactory) Categories() []string { return []string{"Attribute"} }
func (MapperFactory) ParameterSchema() runtime.ParamSchema {
	return registry.BuildParamSchema(MapperParam{})
}
func (MapperFactory) InputPorts() []runtime.Port  { return []runtime.Port{runtime.PortDefault} }
func (MapperFactory) OutputPorts() []runtime.Port { return []runtime.Port{runtime.PortDefault} }

func (f MapperFactory) BuildProcessor(nodeCtx runtime.NodeContext, with map[string]types.Value) (runtime.Processor, error) {
	mappingValue, ok := with["mapping"]
	if !ok {
		return nil, runtime.FactoryError(nodeCtx.NodeID, "missing required parameter `mapping`", nil)
	}
	m, ok := mappingValue.AsMap()
	if !ok {
		return nil, runtime.FactoryError(nodeCtx.NodeID, "`mapping` must be an object", nil)
	}
	mapping := make(map[types.Attribute]types.Attribute, len(m))
	for from, toValue := range m {
		to, ok := toValue.AsString()
		if !ok {
			return nil, runtime.FactoryError(nodeCtx.NodeID, "mapping values must be strings", nil)
		}
		mapping[types.NewAttribute(from)] = types.NewAttribute(to)
	}
	return &Mapper{mapping: mapping}, nil
}

type Mapper struct {
	mapping map[types.Attribute]types.Attribute
}

func (m *Mapper) Initialize(ctx context.Context, nodeCtx runtime.NodeContext) error { return nil }
func (m *Mapper) NumThreads() int                                                  { return 1 }
func (m *Mapper) Name() string                                                     { return "AttributeMapper" }
func (m *Mapper) Finish(ctx context.Context, nodeCtx runtime.NodeContext, fwd runtime.Forwarder) error {
	return nil
}

func (m *Mapper) Process(ctx context.Context, execCtx runtime.ExecutorContext, fwd runtime.Forwarder) error {
	mapped := execCtx.Feature.CloneAttributes()
	for from, to := range m.mapping {
		if v, ok := mapped[from]; ok {
			delete(mapped, from)
			mapped[to] = v
		}
	}
	return fwd.Send(ctx, runtime.PortDefault, execCtx.Feature.WithAttributes(mapped))
}

func decodeStringList(with map[string]types.Value, key string) ([]string, error) {
	v, ok := with[key]
	if !ok {
		return nil, nil
	}
	items, ok := v.AsArray()
	if !ok {
		return nil, nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, _ := item.AsString()
		out = append(out, s)
	}
	return out, nil
}
