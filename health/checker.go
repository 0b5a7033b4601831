package health

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonwraymond/trackerhealth/metainfo"
	"github.com/jonwraymond/trackerhealth/observe"
	"github.com/jonwraymond/trackerhealth/scrape"
)

// Resolver turns a source string into an info hash and announced trackers.
type Resolver interface {
	Resolve(ctx context.Context, source string) (*metainfo.Descriptor, error)
}

// Checker runs health checks.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: only ErrMissingIdentifier, ErrInvalidIdentifier and ErrNoTrackers
// are returned, always before any tracker is queried.
type Checker struct {
	resolver Resolver
	scraper  scrape.Scraper
	logger   observe.Logger
	tracer   observe.Tracer
	metrics  observe.Metrics

	agg *Aggregator
}

// Option configures a Checker.
type Option func(*Checker)

// WithResolver replaces the default metainfo resolver.
func WithResolver(r Resolver) Option {
	return func(c *Checker) {
		if r != nil {
			c.resolver = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l observe.Logger) Option {
	return func(c *Checker) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTracer sets the tracer used for check and scrape spans.
func WithTracer(t observe.Tracer) Option {
	return func(c *Checker) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observe.Metrics) Option {
	return func(c *Checker) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithObserver takes the logger, tracer and metrics from obs. If the metric
// instruments cannot be created, metrics stay disabled.
func WithObserver(obs observe.Observer) Option {
	return func(c *Checker) {
		if obs == nil {
			return
		}
		WithLogger(obs.Logger())(c)
		WithTracer(observe.NewTracer(obs.Tracer()))(c)
		if m, err := observe.NewMetrics(obs.Meter()); err == nil {
			WithMetrics(m)(c)
		}
	}
}

// NewChecker creates a checker that queries trackers through s.
func NewChecker(s scrape.Scraper, opts ...Option) *Checker {
	c := &Checker{
		resolver: metainfo.NewResolver(),
		logger:   observe.NopLogger(),
		tracer:   observe.NopTracer(),
		metrics:  observe.NopMetrics(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.scraper = observe.NewMiddleware(c.tracer, c.metrics, c.logger).Wrap(s)
	c.agg = NewAggregator(c.scraper)
	return c
}

// Check runs a health check and waits for its Report.
func (c *Checker) Check(ctx context.Context, source string, cfg *Config) (Report, error) {
	return c.CheckAsync(ctx, source, cfg).Result()
}

// CheckFunc runs a health check and delivers the result to cb. cfg may be nil.
func (c *Checker) CheckFunc(ctx context.Context, source string, cfg *Config, cb func(Report, error)) *Future {
	return c.CheckAsync(ctx, source, cfg).Then(cb)
}

// CheckAsync starts a health check.
//
// Validation, resolution and tracker selection happen before CheckAsync
// returns; their errors come back as an already finished Future. Tracker
// queries run in the background.
func (c *Checker) CheckAsync(ctx context.Context, source string, cfg *Config) *Future {
	id := uuid.NewString()
	log := c.logger.With(observe.F("check_id", id))

	if strings.TrimSpace(source) == "" {
		return completedFuture(id, ErrMissingIdentifier)
	}

	desc, err := c.resolver.Resolve(ctx, source)
	if err != nil {
		log.Debug(ctx, "source resolution failed", observe.F("error", err))
		return completedFuture(id, fmt.Errorf("%w: %w", ErrInvalidIdentifier, err))
	}

	opts := cfg.settings()
	trackers, err := BuildTrackers(desc.Announce, opts.trackers, opts.blacklist)
	if err != nil {
		log.Debug(ctx, "no trackers to query", observe.F("info_hash", desc.InfoHash.String()))
		return completedFuture(id, err)
	}

	f := newFuture(id)
	go c.run(ctx, f, log, desc.InfoHash, trackers, opts)
	return f
}

func (c *Checker) run(ctx context.Context, f *Future, log observe.Logger, ih metainfo.InfoHash, trackers []string, opts settings) {
	start := time.Now()
	ctx, span := c.tracer.StartCheck(ctx, ih.String(), len(trackers))

	report := c.agg.AggregateFunc(ctx, trackers, ih, opts.timeout, opts.onOutcome)

	stats := observe.CheckStats{
		InfoHash:  ih.String(),
		Trackers:  len(trackers),
		Successes: report.Successes(),
		Timeouts:  report.Timeouts(),
		Seeds:     report.Seeds,
		Peers:     report.Peers,
	}
	c.tracer.EndCheck(span, stats)
	c.metrics.RecordCheck(ctx, stats)
	log.Info(ctx, "health check completed",
		observe.F("info_hash", stats.InfoHash),
		observe.F("trackers", stats.Trackers),
		observe.F("successes", stats.Successes),
		observe.F("timeouts", stats.Timeouts),
		observe.F("seeds", report.Seeds),
		observe.F("peers", report.Peers),
		observe.F("duration_ms", time.Since(start).Milliseconds()),
	)

	f.complete(report, nil)
}
