package observe

import (
	"context"
	"time"

	"github.com/jonwraymond/trackerhealth/metainfo"
	"github.com/jonwraymond/trackerhealth/scrape"
)

// Middleware wraps tracker scrapes with tracing, metrics and logging.
//
// Contract:
//   - Concurrency: Wrap returns a Scraper as safe as the one it wraps.
//   - Context: the scrape span is the parent of anything the scraper starts.
//   - Errors: errors from the wrapped scraper are recorded and returned unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware. Nil components become no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = NopTracer()
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Wrap returns a Scraper that instruments every call to next.
func (m *Middleware) Wrap(next scrape.Scraper) scrape.Scraper {
	return scrape.ScraperFunc(func(ctx context.Context, tracker string, ih metainfo.InfoHash) (scrape.Result, error) {
		meta := NewScrapeMeta(tracker, ih)

		ctx, span := m.tracer.StartScrape(ctx, meta)
		start := time.Now()

		res, err := next.Scrape(ctx, tracker, ih)

		duration := time.Since(start)
		m.tracer.EndSpan(span, err)
		m.metrics.RecordScrape(ctx, meta, duration, err)

		log := m.logger.With(F("tracker", meta.Tracker), F("info_hash", meta.InfoHash))
		if err != nil {
			log.Warn(ctx, "tracker scrape failed",
				F("duration_ms", duration.Milliseconds()),
				F("error", err.Error()),
			)
		} else {
			log.Debug(ctx, "tracker scrape completed",
				F("duration_ms", duration.Milliseconds()),
				F("complete", res.Complete),
				F("incomplete", res.Incomplete),
			)
		}

		return res, err
	})
}
