package runtime

import (
	"context"

	"github.com/reearth/reearth-flow-go/flow/types"
)

// edgeChannel is the bounded queue backing one EdgeDef, sized by
// ExecutorOptions.ChannelBufferSize (spec.md §4.6). FIFO within the edge is
// simply Go's channel guarantee; ordering across multiple inbound edges is
// deliberately not preserved (the executor merges edges with one fan-in
// goroutine per edge, see executor.go).
type edgeChannel struct {
	edge EdgeDef
	ch   chan types.Feature
}

func newEdgeChannel(e EdgeDef, bufferSize int) *edgeChannel {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &edgeChannel{edge: e, ch: make(chan types.Feature, bufferSize)}
}

func (c *edgeChannel) close() { close(c.ch) }

// nodeForwarder is the Forwarder a node's worker sees: it knows only this
// node's outgoing edges, grouped by output port, and routes purely on the
// port name (spec.md §4.6's "forwarder hides edge identity").
type nodeForwarder struct {
	nodeID  string
	byPort  map[Port][]*edgeChannel
	metrics interface {
		UpdateEdgeQueueDepth(runID, edgeID string, depth int)
		IncrementBackpressure(runID, edgeID string)
	}
	runID string
}

// Send enqueues feature on every edge channel wired to port. A port with no
// downstream edges is a silent no-op (spec.md §4.6). Send blocks on a full
// downstream queue (backpressure, spec.md §5) but returns early if ctx is
// cancelled, honoring the executor's single cancellation token.
func (f *nodeForwarder) Send(ctx context.Context, port Port, feature types.Feature) error {
	channels := f.byPort[port]
	for _, c := range channels {
		select {
		case c.ch <- feature:
			if f.metrics != nil {
				f.metrics.UpdateEdgeQueueDepth(f.runID, c.edge.ID, len(c.ch))
			}
		case <-ctx.Done():
			return ctx.Err()
		default:
			if f.metrics != nil {
				f.metrics.IncrementBackpressure(f.runID, c.edge.ID)
			}
			select {
			case c.ch <- feature:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}
