package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names.
const (
	MetricScrapeTotal    = "tracker.scrape.total"
	MetricScrapeErrors   = "tracker.scrape.errors"
	MetricScrapeDuration = "tracker.scrape.duration_ms"
	MetricCheckTotal     = "health.check.total"
	MetricCheckTrackers  = "health.check.trackers"
	MetricCheckTimeouts  = "health.check.timeouts"
)

// Metrics records scrape and check metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordScrape records one tracker query.
	RecordScrape(ctx context.Context, meta ScrapeMeta, duration time.Duration, err error)

	// RecordCheck records one completed health check.
	RecordCheck(ctx context.Context, stats CheckStats)
}

type metricsImpl struct {
	scrapeTotal    metric.Int64Counter
	scrapeErrors   metric.Int64Counter
	scrapeDuration metric.Float64Histogram
	checkTotal     metric.Int64Counter
	checkTrackers  metric.Int64Histogram
	checkTimeouts  metric.Int64Counter
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	m := &metricsImpl{}
	var err error

	if m.scrapeTotal, err = meter.Int64Counter(MetricScrapeTotal,
		metric.WithDescription("Total number of tracker scrapes"),
		metric.WithUnit("{scrape}"),
	); err != nil {
		return nil, err
	}

	if m.scrapeErrors, err = meter.Int64Counter(MetricScrapeErrors,
		metric.WithDescription("Total number of failed tracker scrapes"),
		metric.WithUnit("{error}"),
	); err != nil {
		return nil, err
	}

	if m.scrapeDuration, err = meter.Float64Histogram(MetricScrapeDuration,
		metric.WithDescription("Tracker scrape duration in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}

	if m.checkTotal, err = meter.Int64Counter(MetricCheckTotal,
		metric.WithDescription("Total number of completed health checks"),
		metric.WithUnit("{check}"),
	); err != nil {
		return nil, err
	}

	if m.checkTrackers, err = meter.Int64Histogram(MetricCheckTrackers,
		metric.WithDescription("Trackers queried per health check"),
		metric.WithUnit("{tracker}"),
	); err != nil {
		return nil, err
	}

	if m.checkTimeouts, err = meter.Int64Counter(MetricCheckTimeouts,
		metric.WithDescription("Trackers that timed out during health checks"),
		metric.WithUnit("{tracker}"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *metricsImpl) RecordScrape(ctx context.Context, meta ScrapeMeta, duration time.Duration, err error) {
	opt := metric.WithAttributes(attribute.String("tracker.scheme", meta.Scheme))

	m.scrapeTotal.Add(ctx, 1, opt)
	if err != nil {
		m.scrapeErrors.Add(ctx, 1, opt)
	}
	m.scrapeDuration.Record(ctx, float64(duration.Milliseconds()), opt)
}

func (m *metricsImpl) RecordCheck(ctx context.Context, stats CheckStats) {
	healthy := stats.Successes > 0
	opt := metric.WithAttributes(attribute.Bool("health.healthy", healthy))

	m.checkTotal.Add(ctx, 1, opt)
	m.checkTrackers.Record(ctx, int64(stats.Trackers))
	if stats.Timeouts > 0 {
		m.checkTimeouts.Add(ctx, int64(stats.Timeouts))
	}
}

// NopMetrics returns a Metrics that records nothing.
func NopMetrics() Metrics {
	return noopMetrics{}
}

type noopMetrics struct{}

func (noopMetrics) RecordScrape(context.Context, ScrapeMeta, time.Duration, error) {}
func (noopMetrics) RecordCheck(context.Context, CheckStats)                        {}
