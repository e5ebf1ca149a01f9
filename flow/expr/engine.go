// Package expr is a thin adapter over an embedded scripting engine
// (goja, a pure-Go ECMAScript implementation). It exposes exactly two
// capabilities per spec.md §4.1: Compile and evaluate-in-scope.
package expr

import (
	"fmt"

	"github.com/dop251/goja"

	"github.com/reearth/reearth-flow-go/flow/types"
)

// CompiledScript is the output of Compile: a parsed, ready-to-run program.
// Compilation happens once per node at build time (spec.md §4.1); the same
// CompiledScript is evaluated once per feature against a fresh Scope.
type CompiledScript struct {
	prog   *goja.Program
	source string
}

// Engine compiles scripts and builds evaluation scopes. It carries no
// mutable state of its own — a new goja.Runtime is created per Scope,
// because goja runtimes are not safe for concurrent use and a Processor's
// process may be invoked from num_threads() goroutines at once (spec.md §5).
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

// Compile parses source once. A syntax error aborts factory construction at
// build time, never surfaces during execution (spec.md §4.1, §7 FactoryError).
func (e *Engine) Compile(source string) (*CompiledScript, error) {
	prog, err := goja.Compile("expr", source, false)
	if err != nil {
		return nil, &CompileError{Source: source, Cause: err}
	}
	return &CompiledScript{prog: prog, source: source}, nil
}

// NewScope builds a fresh evaluation scope populated with attrs (keyed by
// attribute name, per Feature.NewScope in spec.md §4.2) and the workflow
// parameter bag.
func (e *Engine) NewScope(attrs map[types.Attribute]types.Value, params map[string]any) *Scope {
	vm := goja.New()
	for k, v := range attrs {
		_ = vm.Set(k.String(), v.ToAny())
	}
	if params != nil {
		_ = vm.Set("params", params)
	}
	return &Scope{vm: vm}
}

// Scope is a key→value environment used to evaluate a compiled expression
// (spec.md glossary: "Scope"). It is cheap to build (one goja.Runtime) and
// is not intended to outlive a single feature's processing.
type Scope struct {
	vm *goja.Runtime
}

// EvalValue runs script in this scope and converts the result to a Value.
// Evaluating the same compiled script with the same scope always yields the
// same value (spec.md §8, Invariant 7: expression purity) because the
// scope's bindings are immutable for the duration of a single eval.
func (s *Scope) EvalValue(script *CompiledScript) (result types.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &EvaluationError{Source: script.source, Cause: fmt.Errorf("panic: %v", r)}
		}
	}()
	v, runErr := s.vm.RunProgram(script.prog)
	if runErr != nil {
		return types.Null(), &EvaluationError{Source: script.source, Cause: runErr}
	}
	return types.FromAny(v.Export()), nil
}

// EvalString is a convenience wrapper for scripts expected to yield a string
// attribute value (the common case for aggregate-key expressions).
func (s *Scope) EvalString(script *CompiledScript) (string, error) {
	v, err := s.EvalValue(script)
	if err != nil {
		return "", err
	}
	str, ok := v.AsString()
	if !ok {
		return "", &EvaluationError{Source: script.source, Cause: fmt.Errorf("expected string, got %s", v.Kind())}
	}
	return str, nil
}

// EvalInt is a convenience wrapper for scripts expected to yield an integer.
func (s *Scope) EvalInt(script *CompiledScript) (int64, error) {
	v, err := s.EvalValue(script)
	if err != nil {
		return 0, err
	}
	n, ok := v.AsNumber()
	if !ok {
		return 0, &EvaluationError{Source: script.source, Cause: fmt.Errorf("expected number, got %s", v.Kind())}
	}
	return n.I, nil
}
