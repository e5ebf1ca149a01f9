// Package emit implements the executor's event hub: a bounded broadcast
// channel used for out-of-band lifecycle notifications (node started, node
// finished, error counts) per spec.md §4.7.
package emit

import "time"

// Kind enumerates the lifecycle events the executor reports.
type Kind string

const (
	NodeStarted  Kind = "node_started"
	NodeFinished Kind = "node_finished"
	NodeErrored  Kind = "node_errored"
	RunCancelled Kind = "run_cancelled"
	ErrorCount   Kind = "error_count"
)

// Event is a single out-of-band notification about graph execution.
type Event struct {
	RunID  string
	NodeID string
	Kind   Kind
	Time   time.Time
	Meta   map[string]any
}

// Emitter receives events from the hub. Implementations must not block the
// hub's fan-out goroutine for long; slow backends should buffer internally.
type Emitter interface {
	Emit(event Event)
}
