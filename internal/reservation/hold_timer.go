package reservation

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const holdTick = time.Second

// HoldTimer counts a seat hold down once per second and fires onExpire exactly
// once when it reaches zero. After that it stays expired until Reset.
type HoldTimer struct {
	mu        sync.Mutex
	clock     clockwork.Clock
	initial   int
	remaining int
	running   bool
	expired   bool
	stopped   bool
	gen       int
	timer     clockwork.Timer
	onExpire  func()
}

func NewHoldTimer(clock clockwork.Clock, seconds int, onExpire func()) *HoldTimer {
	if seconds < 0 {
		seconds = 0
	}
	return &HoldTimer{
		clock:     clock,
		initial:   seconds,
		remaining: seconds,
		onExpire:  onExpire,
	}
}

// Start begins ticking. Calling Start on a running, expired or stopped timer
// does nothing.
func (t *HoldTimer) Start() {
	t.mu.Lock()
	if t.running || t.expired || t.stopped {
		t.mu.Unlock()
		return
	}
	if t.remaining == 0 {
		t.expired = true
		t.mu.Unlock()
		t.fire()
		return
	}
	t.running = true
	t.schedule()
	t.mu.Unlock()
}

// Reset restores the initial countdown and starts ticking again.
func (t *HoldTimer) Reset() {
	t.mu.Lock()
	t.cancel()
	t.remaining = t.initial
	t.expired = false
	t.stopped = false
	t.mu.Unlock()

	t.Start()
}

// Stop cancels any pending tick and keeps the timer from starting again until
// Reset. The remaining time is kept.
func (t *HoldTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	t.cancel()
}

func (t *HoldTimer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

func (t *HoldTimer) Expired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expired
}

// schedule must be called with mu held.
func (t *HoldTimer) schedule() {
	gen := t.gen
	t.timer = t.clock.AfterFunc(holdTick, func() { t.tick(gen) })
}

// cancel must be called with mu held.
func (t *HoldTimer) cancel() {
	t.gen++
	t.running = false
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *HoldTimer) tick(gen int) {
	t.mu.Lock()
	if !t.running || gen != t.gen {
		t.mu.Unlock()
		return
	}

	t.remaining--
	if t.remaining > 0 {
		t.schedule()
		t.mu.Unlock()
		return
	}

	t.remaining = 0
	t.running = false
	t.expired = true
	t.timer = nil
	t.mu.Unlock()

	t.fire()
}

func (t *HoldTimer) fire() {
	if t.onExpire != nil {
		t.onExpire()
	}
}
