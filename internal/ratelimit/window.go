package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Window is an in-process sliding-window limiter. It remembers the time of
// every admitted call in the last Window and admits a new one only while
// fewer than Requests remain. Waiting happens outside the mutex, so one
// throttled caller never holds the others back beyond the budget itself.
type Window struct {
	mu     sync.Mutex
	config Config
	stamps []time.Time
	now    Clock
	sleep  Sleeper
}

// WindowOption customises a Window.
type WindowOption func(*Window)

func WithClock(clock Clock) WindowOption {
	return func(w *Window) { w.now = clock }
}

func WithSleeper(sleep Sleeper) WindowOption {
	return func(w *Window) { w.sleep = sleep }
}

// NewWindow creates a sliding-window limiter for config.
func NewWindow(config Config, opts ...WindowOption) *Window {
	if config.Requests <= 0 || config.Window <= 0 {
		config = DefaultConfig()
	}
	w := &Window{
		config: config,
		stamps: make([]time.Time, 0, config.Requests),
		now:    time.Now,
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Admit blocks until one more call fits in the window, then records it.
func (w *Window) Admit(ctx context.Context) error {
	for {
		wait := w.reserve()
		if wait <= 0 {
			return nil
		}
		if err := w.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// reserve records a call and returns 0, or returns how long to wait for the
// oldest recorded call to leave the window.
func (w *Window) reserve() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	w.prune(now)

	if len(w.stamps) < w.config.Requests {
		w.stamps = append(w.stamps, now)
		return 0
	}

	wait := w.config.Window - now.Sub(w.stamps[0])
	if wait <= 0 {
		wait = time.Millisecond
	}
	return wait
}

// prune drops stamps at or before now-Window; must hold mu.
func (w *Window) prune(now time.Time) {
	cutoff := now.Add(-w.config.Window)
	i := 0
	for i < len(w.stamps) && !w.stamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		w.stamps = append(w.stamps[:0], w.stamps[i:]...)
	}
}
