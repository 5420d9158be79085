package blockfrost

import (
	"context"
	"sync"
	"time"
)

// RateLimiter enforces a minimum interval between outbound requests.
// A single instance is shared by every caller of the client, so all
// indexer traffic is serialized behind one throttle regardless of which
// pipeline component issued it.
//
// The clock and sleep functions are injectable so tests can drive the
// limiter deterministically without real wall-clock waits.
type RateLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// NewRateLimiter creates a limiter with the given minimum inter-request interval.
func NewRateLimiter(interval time.Duration) *RateLimiter {
	return &RateLimiter{
		interval: interval,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// NewRateLimiterWithClock creates a limiter with injected time functions for tests.
func NewRateLimiterWithClock(interval time.Duration, now func() time.Time, sleep func(context.Context, time.Duration) error) *RateLimiter {
	return &RateLimiter{
		interval: interval,
		now:      now,
		sleep:    sleep,
	}
}

// Wait blocks until at least the configured interval has passed since the
// previous call returned. It returns early with the context's error if the
// context is cancelled while waiting.
func (l *RateLimiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if !l.last.IsZero() {
		if wait := l.interval - now.Sub(l.last); wait > 0 {
			if err := l.sleep(ctx, wait); err != nil {
				return err
			}
			now = l.now()
		}
	}
	l.last = now
	return nil
}

// Interval returns the minimum inter-request interval.
func (l *RateLimiter) Interval() time.Duration {
	return l.interval
}

// sleepContext sleeps for d or until ctx is cancelled, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
