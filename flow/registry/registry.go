// Package registry is the static action-name -> factory lookup the DAG
// schema builder consults (spec.md §4.5 step 3). Grounded on the teacher's
// graph/tool package-level registry (register-by-name, lookup-by-name, no
// reflection-based discovery) and on rakunlabs-at's
// RegisterNodeType/GetNodeFactory pair (internal/service/workflow/node.go),
// which registers node factories from init() functions in sibling node
// packages — the same shape flow/processors/* uses here.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/reearth/reearth-flow-go/flow/runtime"
)

type entry struct {
	kind    runtime.NodeKind
	factory any
}

// Registry is a concurrency-safe action name -> factory map. The zero value
// is not usable; construct with New.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

func New() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// global is the package-level registry flow/processors/* packages populate
// from their init() functions, mirroring rakunlabs-at's package-level
// registry instance.
var global = New()

// Global returns the shared registry every flow/processors/* package
// registers into.
func Global() *Registry { return global }

func (r *Registry) register(name string, kind runtime.NodeKind, factory any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; exists {
		panic(fmt.Sprintf("registry: action %q already registered", name))
	}
	r.entries[name] = entry{kind: kind, factory: factory}
}

// RegisterSource adds a source factory under name, called from a
// flow/processors/* package's init().
func (r *Registry) RegisterSource(name string, f runtime.SourceFactory) {
	r.register(name, runtime.NodeKindSource, f)
}

// RegisterProcessor adds a processor factory under name.
func (r *Registry) RegisterProcessor(name string, f runtime.ProcessorFactory) {
	r.register(name, runtime.NodeKindProcessor, f)
}

// RegisterSink adds a sink factory under name.
func (r *Registry) RegisterSink(name string, f runtime.SinkFactory) {
	r.register(name, runtime.NodeKindSink, f)
}

// Lookup satisfies runtime.ActionRegistry.
func (r *Registry) Lookup(actionName string) (runtime.NodeKind, any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[actionName]
	return e.kind, e.factory, ok
}

// ActionNames returns every registered action name, sorted, for
// `flow schema-action` to enumerate without an explicit argument.
func (r *Registry) ActionNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Factory returns the raw factory behind name along with its kind, used by
// `flow schema-action` to print one action's ParameterSchema/InputPorts/
// OutputPorts without the caller needing a type switch at the call site.
func (r *Registry) Factory(name string) (kind runtime.NodeKind, factory runtime.Factory, ok bool) {
	k, raw, ok := r.Lookup(name)
	if !ok {
		return 0, nil, false
	}
	f, ok := raw.(runtime.Factory)
	return k, f, ok
}

// RegisterSource is a package-level convenience wrapping Global().
func RegisterSource(name string, f runtime.SourceFactory) { global.RegisterSource(name, f) }

// RegisterProcessor is a package-level convenience wrapping Global().
func RegisterProcessor(name string, f runtime.ProcessorFactory) { global.RegisterProcessor(name, f) }

// RegisterSink is a package-level convenience wrapping Global().
func RegisterSink(name string, f runtime.SinkFactory) { global.RegisterSink(name, f) }
