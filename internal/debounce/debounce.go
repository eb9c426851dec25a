// Package debounce provides a reusable scheduled-flush utility: callers
// trigger as often as they like, the flush action runs once per idle
// window. Used to coalesce high-frequency field edits into single saves.
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs an idempotent flush action after a quiet period. Safe
// for concurrent use.
type Debouncer struct {
	d     time.Duration
	flush func()

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// New creates a debouncer. flush must be idempotent: Flush and an
// in-flight timer may both invoke it.
func New(d time.Duration, flush func()) *Debouncer {
	return &Debouncer{d: d, flush: flush}
}

// Trigger (re)arms the timer: the flush runs d after the last Trigger.
func (b *Debouncer) Trigger() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return
	}
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.d, b.flush)
}

// Flush cancels any pending timer and runs the flush action now.
func (b *Debouncer) Flush() {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	stopped := b.stopped
	b.mu.Unlock()
	if !stopped {
		b.flush()
	}
}

// Stop cancels any pending flush and refuses further triggers.
func (b *Debouncer) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.stopped = true
}
