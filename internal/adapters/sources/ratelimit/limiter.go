package ratelimit

import (
	"context"

	"golang.org/x/time/rate"

	"mmradar/pkg/errors"
)

// Limiter throttles outbound calls to one market-data provider.
// Free-tier APIs are strict about request rates; blowing the budget
// turns the whole source into an error stream for the aggregator.
type Limiter struct {
	limiter *rate.Limiter
	name    string
}

// NewLimiter creates a named rate limiter
func NewLimiter(name string, perSecond float64, burst int) *Limiter {
	if perSecond <= 0 {
		perSecond = 1
	}
	if burst < 1 {
		burst = 1
	}

	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		name:    name,
	}
}

// Wait blocks until the rate limiter allows the request
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return errors.Wrapf(err, "rate limiter %s", l.name)
	}
	return nil
}

// Allow checks if a request is allowed without blocking
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}
