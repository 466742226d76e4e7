// Package dispatch provides the single cooperative thread that owns all
// placement state. Window-system events, hotkeys, IPC requests and timers
// are funneled into one Loop so core types need no locking.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// ErrStopped is returned when work is submitted to a loop that has exited.
var ErrStopped = errors.New("dispatch loop stopped")

// Timer is a pending delayed callback.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the
	// callback was still pending.
	Stop() bool
}

// Scheduler runs delayed callbacks on the dispatch thread.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
	Now() time.Time
}

// Loop serializes callbacks onto a single goroutine.
type Loop struct {
	queue  chan func()
	logger *slog.Logger

	mu      sync.Mutex
	stopped bool
	done    chan struct{}
}

var _ Scheduler = (*Loop)(nil)

// NewLoop creates a loop with a buffered queue. Run must be called to start it.
func NewLoop(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		queue:  make(chan func(), 256),
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Run executes queued callbacks until ctx is cancelled. A panicking
// callback is logged and does not stop the loop.
func (l *Loop) Run(ctx context.Context) error {
	defer func() {
		l.mu.Lock()
		l.stopped = true
		l.mu.Unlock()
		close(l.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-l.queue:
			l.invoke(fn)
		}
	}
}

func (l *Loop) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("dispatch callback panic", "panic", r)
		}
	}()
	fn()
}

// Post enqueues fn. It reports false when the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	stopped := l.stopped
	l.mu.Unlock()
	if stopped {
		return false
	}

	select {
	case l.queue <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Do runs fn on the loop and waits for its result.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	ok := l.Post(func() {
		defer func() {
			if r := recover(); r != nil {
				result <- fmt.Errorf("dispatch callback panic: %v", r)
			}
		}()
		result <- fn()
	})
	if !ok {
		return ErrStopped
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrStopped
	}
}

// AfterFunc schedules fn to run on the loop after d. Stopping the timer from
// the loop guarantees fn will not run, even if the timer already fired and
// its callback is waiting in the queue.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	lt := &loopTimer{}
	lt.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if lt.cancelled.Load() {
				return
			}
			lt.fired.Store(true)
			fn()
		})
	})
	return lt
}

// Now returns the wall clock.
func (l *Loop) Now() time.Time {
	return time.Now()
}

type loopTimer struct {
	timer     *time.Timer
	cancelled atomic.Bool
	fired     atomic.Bool
}

func (t *loopTimer) Stop() bool {
	t.timer.Stop()
	if t.fired.Load() {
		return false
	}
	return !t.cancelled.Swap(true)
}
