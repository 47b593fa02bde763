package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleRateLimiterZeroDelay(t *testing.T) {
	limiter := NewSimpleRateLimiter(0, 0)

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestSimpleRateLimiterCancelledContext(t *testing.T) {
	limiter := NewSimpleRateLimiter(time.Hour, time.Hour)
	require.NoError(t, limiter.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := limiter.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAdaptiveRateLimiterBacksOffAfterErrors(t *testing.T) {
	limiter := NewAdaptiveRateLimiter(2*time.Second, 4*time.Second)

	for i := 0; i < 3; i++ {
		limiter.RecordError()
	}

	assert.Equal(t, 3*time.Second, limiter.minDelay)
	assert.Equal(t, 6*time.Second, limiter.maxDelay)
}

func TestAdaptiveRateLimiterSpeedsUpAfterSuccesses(t *testing.T) {
	limiter := NewAdaptiveRateLimiter(10*time.Second, 20*time.Second)

	for i := 0; i < 6; i++ {
		limiter.RecordSuccess()
	}

	assert.Equal(t, 9*time.Second, limiter.minDelay)
}
