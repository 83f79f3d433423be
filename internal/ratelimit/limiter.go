// Package ratelimit throttles journey starts and tracks load profile phases.
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter caps how many journeys per second the actor pool may start.
// The rate is adjustable mid-run so profile phases can reshape the load.
type RateLimiter struct {
	limiter *rate.Limiter
	mu      sync.RWMutex
}

func NewRateLimiter(rps int) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
	}
}

func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.RLock()
	limiter := r.limiter
	limit := limiter.Limit()
	r.mu.RUnlock()

	// A zero limit means no rate limiting.
	if limit == 0 {
		return nil
	}
	return limiter.Wait(ctx)
}

func (r *RateLimiter) SetRate(rps int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.limiter.SetLimit(rate.Limit(rps))
	r.limiter.SetBurst(rps)
}
