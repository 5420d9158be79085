package blockfrost

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock drives a RateLimiter deterministically: sleeps advance the clock
// instead of waiting.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) error {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

func TestRateLimiter_FirstCallDoesNotWait(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	limiter := NewRateLimiterWithClock(100*time.Millisecond, clock.Now, clock.Sleep)

	err := limiter.Wait(context.Background())

	require.NoError(t, err)
	assert.Empty(t, clock.sleeps)
}

func TestRateLimiter_EnforcesMinimumInterval(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	limiter := NewRateLimiterWithClock(100*time.Millisecond, clock.Now, clock.Sleep)

	require.NoError(t, limiter.Wait(context.Background()))

	// Immediate second call must wait out the full interval.
	require.NoError(t, limiter.Wait(context.Background()))
	require.Len(t, clock.sleeps, 1)
	assert.Equal(t, 100*time.Millisecond, clock.sleeps[0])

	// A call after part of the interval has passed waits only the remainder.
	clock.now = clock.now.Add(60 * time.Millisecond)
	require.NoError(t, limiter.Wait(context.Background()))
	require.Len(t, clock.sleeps, 2)
	assert.Equal(t, 40*time.Millisecond, clock.sleeps[1])
}

func TestRateLimiter_NoWaitAfterIntervalElapsed(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	limiter := NewRateLimiterWithClock(100*time.Millisecond, clock.Now, clock.Sleep)

	require.NoError(t, limiter.Wait(context.Background()))
	clock.now = clock.now.Add(250 * time.Millisecond)
	require.NoError(t, limiter.Wait(context.Background()))

	assert.Empty(t, clock.sleeps)
}

func TestRateLimiter_CancelledContext(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	limiter := NewRateLimiterWithClock(100*time.Millisecond, clock.Now, func(ctx context.Context, d time.Duration) error {
		return context.Canceled
	})

	require.NoError(t, limiter.Wait(context.Background()))
	err := limiter.Wait(context.Background())

	assert.ErrorIs(t, err, context.Canceled)
}
