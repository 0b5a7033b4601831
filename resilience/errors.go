package resilience

import "errors"

// Sentinel errors for admission control.
var (
	// ErrRateLimitExceeded is returned when a client has no tokens left.
	ErrRateLimitExceeded = errors.New("resilience: rate limit exceeded")

	// ErrBulkheadFull is returned when the maximum number of checks is in flight.
	ErrBulkheadFull = errors.New("resilience: bulkhead at capacity")

	// ErrTimeout is returned when a request exceeds its budget.
	ErrTimeout = errors.New("resilience: operation timed out")
)
