// Package ratelimit paces outbound requests to a single upstream service.
package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Limiter wraps rate.Limiter with a name for logging/debugging.
type Limiter struct {
	limiter *rate.Limiter
	name    string
}

// New creates a new rate limiter with the given requests per second.
// Rates below one request per second are allowed (e.g. 5 per minute is 1.0/12).
// A rate of zero or less disables limiting. Burst is one request.
func New(name string, requestsPerSecond float64) *Limiter {
	return NewWithBurst(name, requestsPerSecond, 1)
}

// NewWithBurst creates a new rate limiter with custom burst size.
func NewWithBurst(name string, requestsPerSecond float64, burst int) *Limiter {
	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		limiter: rate.NewLimiter(limit, burst),
		name:    name,
	}
}

// Wait blocks until the rate limiter allows a request to proceed.
// Returns an error if the context is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait for %s: %w", l.name, err)
	}
	return nil
}

// Name returns the name of this rate limiter.
func (l *Limiter) Name() string {
	return l.name
}
