package summary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedWindowLimiter_AllowsUpToLimit(t *testing.T) {
	now := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	limiter := NewFixedWindowLimiter(3, time.Minute).WithClock(func() time.Time { return now })

	assert.True(t, limiter.Allow())
	assert.True(t, limiter.Allow())
	assert.True(t, limiter.Allow())
	assert.False(t, limiter.Allow(), "fourth request in the window is rejected")
}

func TestFixedWindowLimiter_ResetsAtWindowBoundary(t *testing.T) {
	now := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	limiter := NewFixedWindowLimiter(1, time.Minute).WithClock(func() time.Time { return now })

	assert.True(t, limiter.Allow())
	assert.False(t, limiter.Allow())

	now = now.Add(59 * time.Second)
	assert.False(t, limiter.Allow(), "still inside the window")

	now = now.Add(time.Second)
	assert.True(t, limiter.Allow(), "counter resets after a full window")
}
