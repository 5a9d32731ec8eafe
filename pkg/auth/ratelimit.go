package auth

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyRequests is returned by rate limiters when a principal exceeds
// its budget.
var ErrTooManyRequests = errors.New("rate limit exceeded")

// RateLimiter is the post-authentication hook the pipeline consults before
// letting a request proceed. Implementations decide per principal.
type RateLimiter interface {
	Allow(ctx context.Context, principal *Principal) error
}

// InProcessLimiter is a simple sliding-window rate limiter that tracks
// request counts per account in memory.
type InProcessLimiter struct {
	rpm      int
	mu       sync.Mutex
	counters map[string]*counter
}

type counter struct {
	count    int
	windowAt time.Time
}

// NewInProcessLimiter creates a limiter allowing rpm requests per minute
// per account. rpm <= 0 disables limiting.
func NewInProcessLimiter(rpm int) *InProcessLimiter {
	return &InProcessLimiter{
		rpm:      rpm,
		counters: make(map[string]*counter),
	}
}

// Allow checks if the request is within the rate limit.
func (l *InProcessLimiter) Allow(_ context.Context, principal *Principal) error {
	if l.rpm <= 0 {
		return nil // no limit
	}

	key := principal.Account.ID

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	c, ok := l.counters[key]
	if !ok || now.Sub(c.windowAt) >= time.Minute {
		// New window.
		l.counters[key] = &counter{count: 1, windowAt: now}
		return nil
	}

	c.count++
	if c.count > l.rpm {
		return ErrTooManyRequests
	}

	return nil
}
