package resilience

import (
	"context"
	"time"
)

// Executor composes the admission controls for one check request.
type Executor struct {
	rateLimiter *RateLimiter
	bulkhead    *Bulkhead
	timeout     *Timeout
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor creates a new executor. With no options it runs op directly.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithRateLimiter adds per-client rate limiting.
func WithRateLimiter(rl *RateLimiter) ExecutorOption {
	return func(e *Executor) {
		e.rateLimiter = rl
	}
}

// WithBulkhead caps checks in flight.
func WithBulkhead(b *Bulkhead) ExecutorOption {
	return func(e *Executor) {
		e.bulkhead = b
	}
}

// WithTimeout bounds each request by its budget.
func WithTimeout(t *Timeout) ExecutorOption {
	return func(e *Executor) {
		e.timeout = t
	}
}

// Execute runs op for client through the configured controls.
//
// The execution order is:
// 1. Rate Limiter (if configured) - rejects clients over their rate
// 2. Bulkhead (if configured) - limits checks in flight
// 3. Timeout (if configured) - bounds the request by its budget
func (e *Executor) Execute(ctx context.Context, client string, checkTimeout time.Duration, op func(context.Context) error) error {
	execute := op

	if e.timeout != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.timeout.Execute(ctx, checkTimeout, inner)
		}
	}

	if e.bulkhead != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.bulkhead.Execute(ctx, inner)
		}
	}

	if e.rateLimiter != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.rateLimiter.Execute(ctx, client, inner)
		}
	}

	return execute(ctx)
}

// RateLimiter returns the configured rate limiter, or nil.
func (e *Executor) RateLimiter() *RateLimiter {
	return e.rateLimiter
}

// Bulkhead returns the configured bulkhead, or nil.
func (e *Executor) Bulkhead() *Bulkhead {
	return e.bulkhead
}
