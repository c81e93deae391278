// Package ratelimit throttles upstream social API calls per platform.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"

	"matchpulse/pkg/errors"
)

// Limiter smooths a per-minute request budget into a token bucket
type Limiter struct {
	limiter *rate.Limiter
	name    string
}

// NewLimiter builds a limiter for requestsPerMinute with a burst of 10%
// of the budget (minimum 1)
func NewLimiter(name string, requestsPerMinute int) *Limiter {
	rps := float64(requestsPerMinute) / 60.0

	burst := requestsPerMinute / 10
	if burst < 1 {
		burst = 1
	}

	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		name:    name,
	}
}

// Wait blocks until the limiter admits the request or ctx is done
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return errors.Wrapf(err, "rate limiter %s", l.name)
	}
	return nil
}

// Allow reports whether a request may proceed without blocking
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}
