package observe

import (
	"context"
	"io"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/jonwraymond/trackerhealth/metainfo"
	"github.com/jonwraymond/trackerhealth/scrape"
)

// BenchmarkLogger_Info measures JSON line encoding.
func BenchmarkLogger_Info(b *testing.B) {
	logger := NewLoggerWithWriter("info", io.Discard).With(F("check_id", "bench"))
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info(ctx, "tracker scrape completed", F("tracker", "udp://a"), F("duration_ms", 12))
	}
}

// BenchmarkMetrics_RecordScrape measures instrument overhead.
func BenchmarkMetrics_RecordScrape(b *testing.B) {
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	m, err := NewMetrics(mp.Meter("bench"))
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	meta := ScrapeMeta{Tracker: "udp://a", Scheme: "udp"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.RecordScrape(ctx, meta, time.Millisecond, nil)
	}
}

// BenchmarkMiddleware_Wrap measures the full instrumented scrape path.
func BenchmarkMiddleware_Wrap(b *testing.B) {
	tp := sdktrace.NewTracerProvider()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	m, err := NewMetrics(mp.Meter("bench"))
	if err != nil {
		b.Fatal(err)
	}
	mw := NewMiddleware(NewTracer(tp.Tracer("bench")), m, NopLogger())

	s := mw.Wrap(scrape.ScraperFunc(func(context.Context, string, metainfo.InfoHash) (scrape.Result, error) {
		return scrape.Result{Complete: 1}, nil
	}))
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = s.Scrape(ctx, "udp://a", metainfo.InfoHash{})
	}
}
