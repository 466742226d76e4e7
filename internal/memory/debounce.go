package memory

import (
	"time"

	"github.com/1broseidon/zonetile/internal/dispatch"
	"github.com/1broseidon/zonetile/internal/platform"
)

// Debouncer collapses bursts of calls per window into one delayed call.
// Each Trigger cancels the pending call for that window, so at most one is
// outstanding per window and it always carries the latest arguments.
type Debouncer struct {
	sched   dispatch.Scheduler
	delay   time.Duration
	pending map[platform.WindowID]dispatch.Timer
}

func NewDebouncer(sched dispatch.Scheduler, delay time.Duration) *Debouncer {
	return &Debouncer{
		sched:   sched,
		delay:   delay,
		pending: make(map[platform.WindowID]dispatch.Timer),
	}
}

// Trigger schedules fn for win, replacing any pending call.
func (d *Debouncer) Trigger(win platform.WindowID, fn func()) {
	d.Cancel(win)
	var timer dispatch.Timer
	timer = d.sched.AfterFunc(d.delay, func() {
		if d.pending[win] == timer {
			delete(d.pending, win)
		}
		fn()
	})
	d.pending[win] = timer
}

// Cancel drops the pending call for win and reports whether there was one.
func (d *Debouncer) Cancel(win platform.WindowID) bool {
	t, ok := d.pending[win]
	if !ok {
		return false
	}
	delete(d.pending, win)
	return t.Stop()
}

func (d *Debouncer) Pending(win platform.WindowID) bool {
	_, ok := d.pending[win]
	return ok
}

func (d *Debouncer) SetDelay(delay time.Duration) {
	d.delay = delay
}
