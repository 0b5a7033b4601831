package resilience

import (
	"context"
	"math"
	"sync"
	"time"
)

// RateLimiterConfig configures the per-client rate limiter.
type RateLimiterConfig struct {
	// Rate is the number of checks each client may start per second.
	// Default: 5
	Rate float64

	// Burst is the bucket size per client.
	// Default: 10
	Burst int

	// IdleTTL evicts a client's bucket after this long without requests.
	// Default: 10 minutes
	IdleTTL time.Duration
}

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// RateLimiter implements a token bucket per client key.
type RateLimiter struct {
	config RateLimiterConfig
	now    func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.Rate <= 0 {
		config.Rate = 5
	}
	if config.Burst <= 0 {
		config.Burst = 10
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = 10 * time.Minute
	}

	return &RateLimiter{
		config:    config,
		now:       time.Now,
		buckets:   make(map[string]*bucket),
		lastSweep: time.Now(),
	}
}

// Allow takes one token from client's bucket.
func (rl *RateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweepLocked(now)

	b := rl.bucketLocked(client, now)
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// RetryAfter reports how long client must wait for its next token.
func (rl *RateLimiter) RetryAfter(client string) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b := rl.bucketLocked(client, rl.now())
	if b.tokens >= 1 {
		return 0
	}
	secs := (1 - b.tokens) / rl.config.Rate
	return time.Duration(math.Ceil(secs * float64(time.Second)))
}

// Execute runs op if client is within its rate.
func (rl *RateLimiter) Execute(ctx context.Context, client string, op func(context.Context) error) error {
	if !rl.Allow(client) {
		return ErrRateLimitExceeded
	}
	return op(ctx)
}

// Clients returns the number of tracked client buckets.
func (rl *RateLimiter) Clients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

// bucketLocked returns client's bucket refilled up to now.
func (rl *RateLimiter) bucketLocked(client string, now time.Time) *bucket {
	b, ok := rl.buckets[client]
	if !ok {
		b = &bucket{tokens: float64(rl.config.Burst), lastSeen: now}
		rl.buckets[client] = b
		return b
	}

	if elapsed := now.Sub(b.lastSeen); elapsed > 0 {
		b.tokens = math.Min(float64(rl.config.Burst), b.tokens+elapsed.Seconds()*rl.config.Rate)
	}
	b.lastSeen = now
	return b
}

func (rl *RateLimiter) sweepLocked(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.config.IdleTTL {
		return
	}
	rl.lastSweep = now
	for key, b := range rl.buckets {
		if now.Sub(b.lastSeen) >= rl.config.IdleTTL {
			delete(rl.buckets, key)
		}
	}
}
