// Package timer implements the per-room turn countdown. Expiry is a
// signal only: ticking stops at zero and nothing is forfeited.
package timer

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultTurnSeconds is the countdown each turn starts from.
const DefaultTurnSeconds = 30

// Timer counts down once per second and reports each tick through onTick.
// Start supersedes any running countdown; a generation counter makes a
// superseded run exit silently on its next fire, so stale ticks can never
// reach onTick.
type Timer struct {
	clock   clockwork.Clock
	seconds int
	onTick  func(remaining int)

	mu      sync.Mutex
	gen     int
	remain  int
	expired bool
}

func New(clock clockwork.Clock, seconds int, onTick func(remaining int)) *Timer {
	if seconds <= 0 {
		seconds = DefaultTurnSeconds
	}
	return &Timer{clock: clock, seconds: seconds, onTick: onTick}
}

// Start begins a fresh countdown, superseding any countdown in flight.
func (t *Timer) Start() {
	t.mu.Lock()
	t.gen++
	t.remain = t.seconds
	t.expired = false
	gen := t.gen
	t.mu.Unlock()

	go t.run(gen)
}

// Reset is Start by another name; called after every committed action
// that is not the final one.
func (t *Timer) Reset() { t.Start() }

// Cancel stops the countdown. The superseded run goroutine exits on its
// next fire.
func (t *Timer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	t.remain = 0
	t.expired = false
}

// Remaining returns the seconds left on the current countdown.
func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remain
}

// Expired reports whether the current countdown ran to zero. Read by the
// orchestrator; deliberately acted on by nothing yet.
func (t *Timer) Expired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expired
}

func (t *Timer) run(gen int) {
	ticker := t.clock.NewTicker(time.Second)
	defer ticker.Stop()
	for range ticker.Chan() {
		t.mu.Lock()
		if gen != t.gen {
			t.mu.Unlock()
			return
		}
		t.remain--
		remaining := t.remain
		if remaining <= 0 {
			t.expired = true
		}
		t.mu.Unlock()

		if t.onTick != nil {
			t.onTick(remaining)
		}
		if remaining <= 0 {
			return
		}
	}
}
