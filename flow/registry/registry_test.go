package registry

import (
	"testing"

	"github.com/reearth/reearth-flow-go/flow/runtime"
	"github.com/reearth/reearth-flow-go/flow/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSourceFactory struct{}

func (stubSourceFactory) ActionName() string                  { return "stub_source" }
func (stubSourceFactory) Description() string                 { return "test stub" }
func (stubSourceFactory) Categories() []string                { return []string{"test"} }
func (stubSourceFactory) ParameterSchema() runtime.ParamSchema { return runtime.ParamSchema{} }
func (stubSourceFactory) InputPorts() []runtime.Port           { return nil }
func (stubSourceFactory) OutputPorts() []runtime.Port          { return []runtime.Port{runtime.PortDefault} }
func (stubSourceFactory) BuildSource(runtime.NodeContext, map[string]types.Value) (runtime.Source, error) {
	return nil, nil
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := New()
	r.RegisterSource("stub_source", stubSourceFactory{})

	kind, factory, ok := r.Lookup("stub_source")
	require.True(t, ok)
	assert.Equal(t, runtime.NodeKindSource, kind)
	assert.IsType(t, stubSourceFactory{}, factory)

	_, _, ok = r.Lookup("does_not_exist")
	assert.False(t, ok)
}

func TestRegistryRegisterDuplicatePanics(t *testing.T) {
	r := New()
	r.RegisterSource("stub_source", stubSourceFactory{})
	assert.Panics(t, func() {
		r.RegisterSource("stub_source", stubSourceFactory{})
	})
}

func TestRegistryActionNamesSorted(t *testing.T) {
	r := New()
	r.RegisterSource("zzz_source", stubSourceFactory{})
	r.RegisterSource("aaa_source", stubSourceFactory{})
	assert.Equal(t, []string{"aaa_source", "zzz_source"}, r.ActionNames())
}

func TestRegistryFactoryReturnsTypedFactory(t *testing.T) {
	r := New()
	r.RegisterSource("stub_source", stubSourceFactory{})

	kind, f, ok := r.Factory("stub_source")
	require.True(t, ok)
	assert.Equal(t, runtime.NodeKindSource, kind)
	assert.Equal(t, []runtime.Port{runtime.PortDefault}, f.OutputPorts())
}

type paramStub struct {
	Path  string `flow:"path,required"`
	Count int    `flow:"count"`
	Ratio float64
}

func TestBuildParamSchemaReflectsStructTags(t *testing.T) {
	schema := BuildParamSchema(paramStub{})
	assert.Equal(t, "object", schema["type"])
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "path")
	assert.Contains(t, props, "count")
	assert.Contains(t, props, "Ratio")
	assert.Equal(t, []string{"path"}, schema["required"])
}
