package runtime

import "fmt"

// Error kinds form a taxonomy, not a type hierarchy: each kind dictates how
// the executor reacts (fatal-at-build vs counted-at-runtime), grounded on
// graph/errors.go's sentinel style and NodeError's Message/Code/NodeID/Cause
// shape (graph/node.go), generalized to the six kinds spec.md §7 names.
type ErrorKind string

const (
	KindSchema   ErrorKind = "SchemaError"
	KindFactory  ErrorKind = "FactoryError"
	KindProcess  ErrorKind = "ProcessError"
	KindSource   ErrorKind = "SourceError"
	KindSink     ErrorKind = "SinkError"
	KindExecutor ErrorKind = "ExecutorError"
)

// FlowError is the single error type every component returns; Kind selects
// how the executor reacts to it.
type FlowError struct {
	Kind   ErrorKind
	NodeID string
	Msg    string
	Cause  error
}

func (e *FlowError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("%s: node %s: %s", e.Kind, e.NodeID, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *FlowError) Unwrap() error { return e.Cause }

func newErr(kind ErrorKind, nodeID, msg string, cause error) *FlowError {
	return &FlowError{Kind: kind, NodeID: nodeID, Msg: msg, Cause: cause}
}

func SchemaError(nodeID, msg string, cause error) *FlowError {
	return newErr(KindSchema, nodeID, msg, cause)
}

func FactoryError(nodeID, msg string, cause error) *FlowError {
	return newErr(KindFactory, nodeID, msg, cause)
}

func ProcessError(nodeID, msg string, cause error) *FlowError {
	return newErr(KindProcess, nodeID, msg, cause)
}

func SourceError(nodeID, msg string, cause error) *FlowError {
	return newErr(KindSource, nodeID, msg, cause)
}

func SinkError(nodeID, msg string, cause error) *FlowError {
	return newErr(KindSink, nodeID, msg, cause)
}

func ExecutorError(nodeID, msg string, cause error) *FlowError {
	return newErr(KindExecutor, nodeID, msg, cause)
}

// IsFatalAtBuild reports whether an error of this kind must abort DAG
// schema construction before any node runs (spec.md §4.5, §7).
func (k ErrorKind) IsFatalAtBuild() bool {
	return k == KindSchema || k == KindFactory
}
