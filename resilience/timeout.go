package resilience

import (
	"context"
	"errors"
	"time"
)

// TimeoutConfig configures request budgets.
type TimeoutConfig struct {
	// Grace is added to a check's per-tracker timeout to form the budget.
	// It covers resolution, scheduling and response encoding.
	// Default: 2 seconds
	Grace time.Duration

	// Max caps every budget.
	// Default: 30 seconds
	Max time.Duration
}

// Timeout bounds how long a request may run.
type Timeout struct {
	config TimeoutConfig
}

// NewTimeout creates a new timeout wrapper.
func NewTimeout(config TimeoutConfig) *Timeout {
	if config.Grace <= 0 {
		config.Grace = 2 * time.Second
	}
	if config.Max <= 0 {
		config.Max = 30 * time.Second
	}
	if config.Grace > config.Max {
		config.Grace = config.Max
	}

	return &Timeout{config: config}
}

// Budget returns the time allowed for a check whose trackers each get
// checkTimeout.
func (t *Timeout) Budget(checkTimeout time.Duration) time.Duration {
	if checkTimeout < 0 {
		checkTimeout = 0
	}
	budget := checkTimeout + t.config.Grace
	if budget > t.config.Max {
		budget = t.config.Max
	}
	return budget
}

// Execute runs op with a deadline of Budget(checkTimeout).
//
// When the budget runs out first, Execute returns ErrTimeout without waiting
// for op. op sees its context cancelled and must not touch shared state
// afterwards.
func (t *Timeout) Execute(ctx context.Context, checkTimeout time.Duration, op func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, t.Budget(checkTimeout))
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- op(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ctx.Err()
	}
}

// Config returns the timeout configuration.
func (t *Timeout) Config() TimeoutConfig {
	return t.config
}
