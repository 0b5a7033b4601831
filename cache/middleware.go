package cache

import (
	"context"
	"encoding/json"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/trackerhealth/health"
)

// CheckFunc runs one health check.
type CheckFunc func(ctx context.Context) (health.Report, error)

// AdmitRule decides whether a finished report may be cached.
type AdmitRule func(report health.Report) bool

// AnyAnswered admits reports in which at least one tracker answered.
func AnyAnswered(report health.Report) bool {
	return report.Successes() > 0
}

// ReportCache wraps health checks with caching. Concurrent misses for the
// same key share one check.
type ReportCache struct {
	cache  Cache
	keyer  Keyer
	policy Policy
	admit  AdmitRule

	group singleflight.Group
}

// NewReportCache creates a report cache. A nil keyer means DefaultKeyer. A
// nil admit rule means AnyAnswered, unless the policy caches empty reports.
func NewReportCache(c Cache, keyer Keyer, policy Policy, admit AdmitRule) (*ReportCache, error) {
	if c == nil {
		return nil, ErrNilCache
	}
	if keyer == nil {
		keyer = NewDefaultKeyer()
	}
	if admit == nil {
		admit = AnyAnswered
		if policy.CacheEmpty {
			admit = func(health.Report) bool { return true }
		}
	}
	return &ReportCache{cache: c, keyer: keyer, policy: policy, admit: admit}, nil
}

// Do returns the cached report for req, or runs check. hit reports whether
// the report came from the cache. Errors are never cached.
//
// A shared check runs detached from the first caller's cancellation, so
// one client going away does not fail the others.
func (m *ReportCache) Do(ctx context.Context, req Request, check CheckFunc) (report health.Report, hit bool, err error) {
	if !m.policy.ShouldCache() {
		report, err = check(ctx)
		return report, false, err
	}

	key, err := m.keyer.Key(req)
	if err != nil {
		report, err = check(ctx)
		return report, false, err
	}

	if data, ok := m.cache.Get(ctx, key); ok {
		if err := json.Unmarshal(data, &report); err == nil {
			return report, true, nil
		}
		_ = m.cache.Delete(ctx, key)
	}

	v, err, _ := m.group.Do(key, func() (any, error) {
		detached := context.WithoutCancel(ctx)
		r, err := check(detached)
		if err != nil {
			return health.Report{}, err
		}
		if m.admit(r) {
			if data, err := json.Marshal(r); err == nil {
				_ = m.cache.Set(detached, key, data, m.policy.EffectiveTTL(0))
			}
		}
		return r, nil
	})
	if err != nil {
		return health.Report{}, false, err
	}
	return v.(health.Report), false, nil
}

// Invalidate drops the cached report for req.
func (m *ReportCache) Invalidate(ctx context.Context, req Request) error {
	key, err := m.keyer.Key(req)
	if err != nil {
		return err
	}
	return m.cache.Delete(ctx, key)
}
