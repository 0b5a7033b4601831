// Package resilience provides the admission controls that sit in front of
// health checks served over HTTP.
//
// # Patterns
//
//   - Rate Limiter: a token bucket per client key, so one noisy caller cannot
//     starve the others. Idle buckets are evicted.
//
//   - Bulkhead: caps the number of checks in flight. Every check fans out to
//     one goroutine per tracker, so this bounds total outbound scrapes.
//
//   - Timeout: a request budget derived from the check's per-tracker timeout
//     plus a grace period, clamped to a maximum.
//
// Retries are deliberately absent: a failed or timed-out tracker is reported,
// never re-queried within one check.
//
// # Usage
//
//	executor := resilience.NewExecutor(
//	    resilience.WithRateLimiter(resilience.NewRateLimiter(resilience.RateLimiterConfig{
//	        Rate:  5,
//	        Burst: 10,
//	    })),
//	    resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{
//	        MaxConcurrent: 64,
//	    })),
//	    resilience.WithTimeout(resilience.NewTimeout(resilience.TimeoutConfig{})),
//	)
//
//	err := executor.Execute(ctx, clientIP, cfg.Timeout, func(ctx context.Context) error {
//	    report, err = checker.Check(ctx, source, cfg)
//	    return err
//	})
package resilience
