// Package ratelimit provides a sliding-window call budget shared across
// concurrent workers.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter admits at most MaxCalls acquisitions within any sliding window of
// Window duration. Acquire blocks until a slot frees up; it fails only when the
// supplied context is cancelled. Safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	maxCalls int
	window   time.Duration
	calls    []time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Option customizes a Limiter, primarily for deterministic tests.
type Option func(*Limiter)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// WithSleep replaces the blocking sleep.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(l *Limiter) { l.sleep = sleep }
}

// New returns a Limiter with the given budget. maxCalls and window must be
// positive.
func New(maxCalls int, window time.Duration, opts ...Option) *Limiter {
	l := &Limiter{
		maxCalls: maxCalls,
		window:   window,
		now:      time.Now,
		sleep:    sleepWithContext,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Acquire blocks until a call slot is available under the configured budget,
// then records the call. The only error it returns is ctx.Err() on
// cancellation; a background context degrades to pure blocking.
func (l *Limiter) Acquire(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	for {
		wait, ok := l.tryReserve()
		if ok {
			return nil
		}
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// tryReserve records a call if the window has capacity. When full it returns
// the duration until the oldest recorded call leaves the window.
func (l *Limiter) tryReserve() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)
	live := l.calls[:0]
	for _, t := range l.calls {
		if t.After(cutoff) {
			live = append(live, t)
		}
	}
	l.calls = live

	if len(l.calls) < l.maxCalls {
		l.calls = append(l.calls, now)
		return 0, true
	}
	wait := l.calls[0].Sub(cutoff)
	if wait <= 0 {
		wait = time.Millisecond
	}
	return wait, false
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
