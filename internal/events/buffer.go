package events

import "sync"

// RingBuffer keeps the most recent events for snapshot queries and for
// priming new live subscribers. Once full, each Add evicts the oldest
// entry.
type RingBuffer struct {
	mu    sync.RWMutex
	buf   []Event
	start int // index of the oldest entry
	count int
}

func NewRingBuffer(size int) *RingBuffer {
	return &RingBuffer{buf: make([]Event, size)}
}

func (rb *RingBuffer) Add(e Event) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if rb.count < len(rb.buf) {
		rb.buf[(rb.start+rb.count)%len(rb.buf)] = e
		rb.count++
		return
	}
	rb.buf[rb.start] = e
	rb.start = (rb.start + 1) % len(rb.buf)
}

// Snapshot returns the buffered events oldest-first.
func (rb *RingBuffer) Snapshot() []Event {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	out := make([]Event, rb.count)
	for i := range out {
		out[i] = rb.buf[(rb.start+i)%len(rb.buf)]
	}
	return out
}

// Clear discards all buffered events.
func (rb *RingBuffer) Clear() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.start = 0
	rb.count = 0
}
