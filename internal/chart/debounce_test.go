package chart

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	d       time.Duration
	fn      func()
	stopped bool
}

func (f *fakeTimer) Stop() bool {
	was := !f.stopped
	f.stopped = true
	return was
}

type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *fakeClock) after(d time.Duration, fn func()) stopper {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{d: d, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// fireAll runs every timer that was not stopped.
func (c *fakeClock) fireAll() {
	c.mu.Lock()
	ts := c.timers
	c.timers = nil
	c.mu.Unlock()
	for _, t := range ts {
		if !t.stopped {
			t.fn()
		}
	}
}

func newFakeDebouncer(fn func()) (*Debouncer, *fakeClock) {
	clk := &fakeClock{}
	d := NewDebouncer(DefaultResizeQuiet, fn)
	d.after = clk.after
	return d, clk
}

func TestDebouncerCoalesces(t *testing.T) {
	calls := 0
	d, clk := newFakeDebouncer(func() { calls++ })

	d.Trigger()
	d.Trigger()
	d.Trigger()
	require.Len(t, clk.timers, 3)
	assert.Equal(t, DefaultResizeQuiet, clk.timers[2].d)
	assert.True(t, d.Pending())

	clk.fireAll()
	assert.Equal(t, 1, calls)
	assert.False(t, d.Pending())

	d.Trigger()
	clk.fireAll()
	assert.Equal(t, 2, calls)
}

func TestDebouncerStaleTimer(t *testing.T) {
	calls := 0
	d, clk := newFakeDebouncer(func() { calls++ })

	d.Trigger()
	stale := clk.timers[0].fn
	d.Trigger()
	// a timer that already started before Stop took effect must not run fn
	stale()
	assert.Equal(t, 0, calls)

	clk.fireAll()
	assert.Equal(t, 1, calls)
}

func TestDebouncerCancelAndStop(t *testing.T) {
	calls := 0
	d, clk := newFakeDebouncer(func() { calls++ })

	d.Trigger()
	fn := clk.timers[0].fn
	d.Cancel()
	assert.False(t, d.Pending())
	fn()
	assert.Equal(t, 0, calls)

	d.Trigger()
	d.Stop()
	clk.fireAll()
	d.Trigger()
	clk.fireAll()
	assert.Equal(t, 0, calls)
	assert.False(t, d.Pending())
}

func TestDebouncerRealTimer(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	d := NewDebouncer(20*time.Millisecond, func() {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	defer d.Stop()

	for i := 0; i < 5; i++ {
		d.Trigger()
		time.Sleep(2 * time.Millisecond)
	}
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 1
	}, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, 1, calls)
	mu.Unlock()
}
