package records

import (
	"sync"
	"time"
)

// DefaultDebounceWindow coalesces change-notification bursts (a reorder issues
// two writes back to back).
const DefaultDebounceWindow = 300 * time.Millisecond

// debouncer runs fn at most once per window. The first trigger arms a timer;
// triggers that arrive while it is armed are folded into the same run.
type debouncer struct {
	mu       sync.Mutex
	window   time.Duration
	fn       func()
	timer    *time.Timer
	stopped  bool
	inflight sync.WaitGroup
}

func newDebouncer(window time.Duration, fn func()) *debouncer {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &debouncer{window: window, fn: fn}
}

func (d *debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped || d.timer != nil {
		return
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

func (d *debouncer) fire() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	fn := d.fn
	d.inflight.Add(1)
	d.mu.Unlock()

	defer d.inflight.Done()
	if fn != nil {
		fn()
	}
}

// Stop cancels a pending run, ignores later triggers and waits for a run that
// already started. It must not be called from fn.
func (d *debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()
	d.inflight.Wait()
}
