package summary

import (
	"sync"
	"time"
)

// FixedWindowLimiter allows at most maxRequests per fixed window. The
// counter resets at window boundaries rather than sliding, matching the
// upstream provider's own accounting. The clock is injectable for tests.
type FixedWindowLimiter struct {
	mu          sync.Mutex
	maxRequests int
	window      time.Duration
	windowStart time.Time
	count       int
	now         func() time.Time
}

func NewFixedWindowLimiter(maxRequests int, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
}

// WithClock replaces the time source, for tests
func (l *FixedWindowLimiter) WithClock(now func() time.Time) *FixedWindowLimiter {
	l.now = now
	return l
}

// Allow reports whether one more request fits in the current window and
// consumes a slot when it does
func (l *FixedWindowLimiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.windowStart) >= l.window {
		l.windowStart = now
		l.count = 0
	}
	if l.count >= l.maxRequests {
		return false
	}
	l.count++
	return true
}
