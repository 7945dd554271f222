package debounce

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

const (
	DefaultQuietPeriod = 800 * time.Millisecond
	DefaultMaxWait     = 3 * time.Second
)

// Debouncer coalesces bursts of Trigger calls into trailing invocations of fn.
//
// fn runs once the triggers have been quiet for the quiet period. While triggers keep
// arriving, the max wait timer still fires fn once per cycle, so fn runs at least once
// every maxWait. A zero maxWait disables the ceiling.
type Debouncer struct {
	fn      func()
	quiet   time.Duration
	maxWait time.Duration
	clock   clock.Clock

	mu         sync.Mutex
	quietTimer *clock.Timer
	maxTimer   *clock.Timer
	pending    bool
	stopped    bool

	// cycle identifies the current burst; timers armed for an older cycle are stale.
	cycle uint64
}

// New creates a debouncer driven by clk. A nil clk uses the wall clock.
func New(fn func(), quiet, maxWait time.Duration, clk clock.Clock) *Debouncer {
	if clk == nil {
		clk = clock.New()
	}

	return &Debouncer{
		fn:      fn,
		quiet:   quiet,
		maxWait: maxWait,
		clock:   clk,
	}
}

// Trigger schedules an invocation of fn.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.pending = true
	cycle := d.cycle

	if d.quietTimer != nil {
		d.quietTimer.Stop()
	}
	d.quietTimer = d.clock.AfterFunc(d.quiet, func() { d.fire(cycle) })

	if d.maxTimer == nil && d.maxWait > 0 {
		d.maxTimer = d.clock.AfterFunc(d.maxWait, func() { d.fire(cycle) })
	}
}

// Flush runs a pending invocation right away. It reports whether fn was called.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	if !d.pending || d.stopped {
		d.mu.Unlock()
		return false
	}

	d.reset()
	d.mu.Unlock()

	d.fn()
	return true
}

// Stop disarms the timers and drops any pending invocation. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.reset()
	d.stopped = true
}

// Pending reports whether an invocation is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

func (d *Debouncer) fire(cycle uint64) {
	d.mu.Lock()
	if cycle != d.cycle || !d.pending || d.stopped {
		d.mu.Unlock()
		return
	}

	d.reset()
	d.mu.Unlock()

	d.fn()
}

// reset must be called with mu held.
func (d *Debouncer) reset() {
	if d.quietTimer != nil {
		d.quietTimer.Stop()
		d.quietTimer = nil
	}

	if d.maxTimer != nil {
		d.maxTimer.Stop()
		d.maxTimer = nil
	}

	d.pending = false
	d.cycle++
}
