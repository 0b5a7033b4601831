package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/jonwraymond/trackerhealth/metainfo"
	"github.com/jonwraymond/trackerhealth/scrape"
)

// Span names.
const (
	SpanScrape = "tracker.scrape"
	SpanCheck  = "health.check"
)

// ScrapeMeta describes one tracker query for telemetry.
type ScrapeMeta struct {
	Tracker  string
	Scheme   string // lowercase URL scheme, "unknown" if unparseable
	InfoHash string // hex
}

// NewScrapeMeta builds ScrapeMeta for a tracker and info hash.
func NewScrapeMeta(tracker string, ih metainfo.InfoHash) ScrapeMeta {
	scheme, err := scrape.SchemeOf(tracker)
	if err != nil {
		scheme = "unknown"
	}
	return ScrapeMeta{Tracker: tracker, Scheme: scheme, InfoHash: ih.String()}
}

// CheckStats summarizes one completed health check.
type CheckStats struct {
	InfoHash  string
	Trackers  int
	Successes int
	Timeouts  int
	Seeds     int
	Peers     int
}

// Tracer wraps OpenTelemetry tracing with check- and scrape-specific spans.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: End* methods must be best-effort and must not panic.
type Tracer interface {
	// StartScrape starts a span for one tracker query.
	StartScrape(ctx context.Context, meta ScrapeMeta) (context.Context, trace.Span)

	// StartCheck starts the parent span of a health check.
	StartCheck(ctx context.Context, infoHash string, trackers int) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)

	// EndCheck ends a check span with its summary attributes.
	EndCheck(span trace.Span, stats CheckStats)
}

// NewTracer wraps an OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

type tracerImpl struct {
	tracer trace.Tracer
}

func (t *tracerImpl) StartScrape(ctx context.Context, meta ScrapeMeta) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanScrape,
		trace.WithAttributes(
			attribute.String("tracker.url", meta.Tracker),
			attribute.String("tracker.scheme", meta.Scheme),
			attribute.String("torrent.info_hash", meta.InfoHash),
			attribute.Bool("tracker.error", false),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func (t *tracerImpl) StartCheck(ctx context.Context, infoHash string, trackers int) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanCheck,
		trace.WithAttributes(
			attribute.String("torrent.info_hash", infoHash),
			attribute.Int("health.trackers", trackers),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("tracker.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func (t *tracerImpl) EndCheck(span trace.Span, stats CheckStats) {
	span.SetAttributes(
		attribute.Int("health.successes", stats.Successes),
		attribute.Int("health.timeouts", stats.Timeouts),
		attribute.Int("health.seeds", stats.Seeds),
		attribute.Int("health.peers", stats.Peers),
	)
	span.SetStatus(codes.Ok, "")
	span.End()
}

// NopTracer returns a tracer whose spans record nothing.
func NopTracer() Tracer {
	return &tracerImpl{tracer: tracenoop.NewTracerProvider().Tracer("noop")}
}
