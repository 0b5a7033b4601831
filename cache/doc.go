// Package cache caches health reports.
//
// It provides a byte-oriented Cache interface with an in-memory
// implementation, SHA-256 keys derived from a normalized check request, TTL
// policies, and ReportCache, which coalesces concurrent misses for the same
// key into a single check.
package cache
