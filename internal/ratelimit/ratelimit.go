// Package ratelimit enforces a fixed-window request ceiling per client
// address. The counting store is behind the Counter interface so the same
// limiter runs against Redis in production and an in-process map in tests
// or single-node deployments.
package ratelimit

import (
	"context"
	"time"
)

type Counter interface {
	// IncrementAndGet bumps the counter for key inside the current window
	// and returns the post-increment value. The first increment of a window
	// arms an expiry equal to the window length.
	IncrementAndGet(ctx context.Context, key string, window time.Duration) (int64, error)
	Reset(ctx context.Context, key string) error
}

type Result struct {
	Allowed    bool
	RetryAfter time.Duration
}

type Limiter struct {
	counter  Counter
	max      int64
	window   time.Duration
	failOpen bool
}

// NewLimiter builds a fixed-window limiter. failOpen decides what happens
// when the counting store is unreachable: true admits the request, false
// rejects it.
func NewLimiter(counter Counter, max int64, window time.Duration, failOpen bool) *Limiter {
	return &Limiter{counter: counter, max: max, window: window, failOpen: failOpen}
}

func (l *Limiter) Check(ctx context.Context, key string) (Result, error) {
	count, err := l.counter.IncrementAndGet(ctx, "rate-limit:"+key, l.window)
	if err != nil {
		return Result{Allowed: l.failOpen, RetryAfter: l.window}, err
	}
	if count > l.max {
		return Result{Allowed: false, RetryAfter: l.window}, nil
	}
	return Result{Allowed: true}, nil
}

func (l *Limiter) Window() time.Duration {
	return l.window
}
