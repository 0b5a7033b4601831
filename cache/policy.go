package cache

import "time"

// Policy configures report caching.
type Policy struct {
	// DefaultTTL is used when no override is given. Zero disables caching.
	DefaultTTL time.Duration

	// MaxTTL clamps override TTLs. Zero means no maximum.
	MaxTTL time.Duration

	// CacheEmpty also caches reports in which no tracker answered.
	CacheEmpty bool
}

// DefaultPolicy returns the default policy: 30s TTL, 5m maximum, and reports
// with no successful tracker left uncached.
func DefaultPolicy() Policy {
	return Policy{
		DefaultTTL: 30 * time.Second,
		MaxTTL:     5 * time.Minute,
	}
}

// NoCachePolicy returns a policy that disables caching entirely.
func NoCachePolicy() Policy {
	return Policy{}
}

// ShouldCache reports whether caching is enabled.
func (p Policy) ShouldCache() bool {
	return p.DefaultTTL > 0
}

// EffectiveTTL returns the TTL to use, applying defaults and clamping.
func (p Policy) EffectiveTTL(override time.Duration) time.Duration {
	ttl := override
	if ttl <= 0 {
		ttl = p.DefaultTTL
	}
	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		ttl = p.MaxTTL
	}
	return ttl
}
