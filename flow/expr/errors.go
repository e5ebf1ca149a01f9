package expr

import "fmt"

// CompileError wraps a parse failure returned by Compile. Factories must
// surface this as a FactoryError and abort construction (spec.md §7).
type CompileError struct {
	Source string
	Cause  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("expr: compile error: %v", e.Cause)
}

func (e *CompileError) Unwrap() error { return e.Cause }

// EvaluationError wraps a runtime fault or type mismatch raised while
// evaluating a compiled script in a scope (spec.md §4.1). Evaluation errors
// are surfaced to the caller, never silently swallowed.
type EvaluationError struct {
	Source string
	Cause  error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("expr: evaluation error: %v", e.Cause)
}

func (e *EvaluationError) Unwrap() error { return e.Cause }
