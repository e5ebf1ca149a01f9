package emit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubFanOut(t *testing.T) {
	h := NewHub(4)
	defer h.Close()
	b := NewBufferedEmitter()
	h.Subscribe(b)

	h.Publish(Event{RunID: "r1", Kind: NodeStarted, Time: time.Now()})
	h.Publish(Event{RunID: "r1", Kind: NodeFinished, Time: time.Now()})

	require.Eventually(t, func() bool {
		return len(b.History("r1")) == 2
	}, time.Second, time.Millisecond)
}

type blockingEmitter struct{ release chan struct{} }

func (b *blockingEmitter) Emit(Event) { <-b.release }

func TestHubDropsWhenFull(t *testing.T) {
	h := NewHub(1)
	defer h.Close()
	block := &blockingEmitter{release: make(chan struct{})}
	h.Subscribe(block)

	// First publish is picked up immediately by the fan-out goroutine,
	// which then blocks in Emit until released. The queue (capacity 1)
	// absorbs one more, and everything past that must be dropped.
	for i := 0; i < 10; i++ {
		h.Publish(Event{RunID: "r1"})
	}
	close(block.release)

	assert.Greater(t, h.Dropped(), uint64(0))
}
