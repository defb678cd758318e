package chart

import (
	"sync"
	"time"
)

// DefaultResizeQuiet is how long resize events must stop before a redraw
const DefaultResizeQuiet = 220 * time.Millisecond

// stopper is the part of *time.Timer the debouncer needs
type stopper interface {
	Stop() bool
}

// Debouncer runs fn once events stop arriving for the quiet period. Each Trigger cancels
// the pending run and starts a new one.
type Debouncer struct {
	quiet time.Duration
	fn    func()
	after func(time.Duration, func()) stopper

	mu      sync.Mutex
	pending stopper
	seq     uint64
	stopped bool
}

func NewDebouncer(quiet time.Duration, fn func()) *Debouncer {
	return &Debouncer{
		quiet: quiet,
		fn:    fn,
		after: func(d time.Duration, f func()) stopper { return time.AfterFunc(d, f) },
	}
}

// Trigger starts or restarts the quiet period
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.pending != nil {
		d.pending.Stop()
	}
	d.seq++
	seq := d.seq
	d.pending = d.after(d.quiet, func() { d.fire(seq) })
}

// fire ignores a timer that was superseded but had already started running
func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	if d.stopped || seq != d.seq {
		d.mu.Unlock()
		return
	}
	d.pending = nil
	d.mu.Unlock()
	d.fn()
}

// Cancel drops the pending run, if any. Later Triggers still work
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
	d.seq++
}

// Pending reports whether a run is scheduled
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Stop cancels the pending run and ignores every later Trigger
func (d *Debouncer) Stop() {
	d.Cancel()
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
}
