package health

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/jonwraymond/trackerhealth/metainfo"
	"github.com/jonwraymond/trackerhealth/observe"
)

func TestChecker_MissingIdentifier(t *testing.T) {
	s := newFakeScraper(nil)
	c := NewChecker(s)

	for _, source := range []string{"", "   "} {
		f := c.CheckAsync(context.Background(), source, nil)
		select {
		case <-f.Done():
		default:
			t.Fatalf("CheckAsync(%q) returned a pending future, want finished", source)
		}
		if _, err := f.Result(); !errors.Is(err, ErrMissingIdentifier) {
			t.Errorf("CheckAsync(%q) error = %v, want ErrMissingIdentifier", source, err)
		}
	}
	if s.totalCalls() != 0 {
		t.Errorf("scraper called %d times, want 0", s.totalCalls())
	}
}

func TestChecker_InvalidIdentifier(t *testing.T) {
	s := newFakeScraper(nil)
	c := NewChecker(s)

	tests := []struct {
		name   string
		source string
		cause  error
	}{
		{name: "garbage", source: "not a torrent", cause: metainfo.ErrUnrecognizedSource},
		{name: "bad hash", source: strings.Repeat("z", 40), cause: metainfo.ErrInvalidInfoHash},
		{name: "bad magnet", source: "magnet:?dn=nothing", cause: metainfo.ErrInvalidMagnet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Check(context.Background(), tt.source, nil)
			if !errors.Is(err, ErrInvalidIdentifier) {
				t.Fatalf("error = %v, want ErrInvalidIdentifier", err)
			}
			if !errors.Is(err, tt.cause) {
				t.Errorf("error = %v, want it to wrap %v", err, tt.cause)
			}
		})
	}
	if s.totalCalls() != 0 {
		t.Errorf("scraper called %d times, want 0", s.totalCalls())
	}
}

func TestChecker_NoTrackers(t *testing.T) {
	c := NewChecker(newFakeScraper(nil))

	tests := []struct {
		name   string
		source string
		cfg    *Config
	}{
		{name: "bare hash", source: testHash},
		{name: "all blacklisted", source: magnet("udp://a", "udp://b"), cfg: &Config{Blacklist: []string{"^udp://"}}},
		{name: "blank configured", source: testHash, cfg: &Config{Trackers: []string{" ", ""}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Check(context.Background(), tt.source, tt.cfg)
			if !errors.Is(err, ErrNoTrackers) {
				t.Errorf("error = %v, want ErrNoTrackers", err)
			}
		})
	}
}

func TestChecker_Check(t *testing.T) {
	s := newFakeScraper(map[string]fakeResponse{
		"udp://a":  ok(10, 4),
		"udp://b":  ok(20, 6),
		"udp://cf": slow(time.Second),
	})
	c := NewChecker(s)

	cfg := &Config{Trackers: []string{"udp://cf"}, Timeout: 30 * time.Millisecond}
	report, err := c.Check(context.Background(), magnet("udp://a", "udp://b"), cfg)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	if report.Seeds != 15 || report.Peers != 5 {
		t.Errorf("Seeds/Peers = %d/%d, want 15/5", report.Seeds, report.Peers)
	}
	if len(report.Extra) != 3 {
		t.Fatalf("len(Extra) = %d, want 3", len(report.Extra))
	}
	if report.Timeouts() != 1 || report.Successes() != 2 {
		t.Errorf("Successes/Timeouts = %d/%d, want 2/1", report.Successes(), report.Timeouts())
	}
}

func TestChecker_DuplicatesQueriedOnce(t *testing.T) {
	s := newFakeScraper(map[string]fakeResponse{"udp://a": ok(1, 1)})
	c := NewChecker(s)

	cfg := &Config{Trackers: []string{"udp://a", " udp://a "}}
	report, err := c.Check(context.Background(), magnet("udp://a", "udp://a"), cfg)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if len(report.Extra) != 1 {
		t.Errorf("len(Extra) = %d, want 1", len(report.Extra))
	}
	if n := s.callCount("udp://a"); n != 1 {
		t.Errorf("udp://a queried %d times, want 1", n)
	}
}

func TestChecker_BlacklistedNeverQueried(t *testing.T) {
	s := newFakeScraper(map[string]fakeResponse{
		"udp://good":       ok(1, 1),
		"udp://bad.tld":    ok(100, 100),
		"http://extra.bad": ok(100, 100),
	})
	c := NewChecker(s)

	cfg := &Config{
		Trackers:  []string{"http://extra.bad"},
		Blacklist: []string{`\.bad`, "bad.tld"},
	}
	report, err := c.Check(context.Background(), magnet("udp://good", "udp://bad.tld"), cfg)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if len(report.Extra) != 1 || report.Extra[0].Tracker != "udp://good" {
		t.Errorf("Extra = %+v, want only udp://good", report.Extra)
	}
	if s.callCount("udp://bad.tld") != 0 || s.callCount("http://extra.bad") != 0 {
		t.Error("blacklisted tracker was queried")
	}
}

func TestChecker_CheckFuncNilConfig(t *testing.T) {
	s := newFakeScraper(map[string]fakeResponse{"udp://a": ok(7, 3)})
	c := NewChecker(s)

	got := make(chan Report, 1)
	c.CheckFunc(context.Background(), magnet("udp://a"), nil, func(r Report, err error) {
		if err != nil {
			t.Errorf("callback error = %v", err)
		}
		got <- r
	})

	select {
	case r := <-got:
		if r.Seeds != 7 || r.Peers != 3 {
			t.Errorf("Seeds/Peers = %d/%d, want 7/3", r.Seeds, r.Peers)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("callback never ran")
	}
}

func TestChecker_CheckFuncFatalErrorIsSynchronous(t *testing.T) {
	c := NewChecker(newFakeScraper(nil))

	var called bool
	c.CheckFunc(context.Background(), "", nil, func(_ Report, err error) {
		called = true
		if !errors.Is(err, ErrMissingIdentifier) {
			t.Errorf("error = %v, want ErrMissingIdentifier", err)
		}
	})
	if !called {
		t.Error("callback did not run before CheckFunc returned")
	}
}

func TestChecker_SubscribersShareOneCheck(t *testing.T) {
	s := newFakeScraper(map[string]fakeResponse{
		"udp://a": {result: ok(5, 5).result, delay: 20 * time.Millisecond},
	})
	c := NewChecker(s)

	f := c.CheckAsync(context.Background(), magnet("udp://a"), nil)

	var (
		wg    sync.WaitGroup
		calls atomic.Int32
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		f.Then(func(r Report, err error) {
			defer wg.Done()
			if err != nil || r.Seeds != 5 {
				t.Errorf("subscriber got %+v, %v", r, err)
			}
			calls.Add(1)
		})
	}
	wg.Wait()

	// A late subscriber runs synchronously.
	late := false
	f.Then(func(Report, error) { late = true })
	if !late {
		t.Error("Then on a finished future did not run synchronously")
	}

	if calls.Load() != 5 {
		t.Errorf("subscribers called %d times, want 5", calls.Load())
	}
	if n := s.callCount("udp://a"); n != 1 {
		t.Errorf("udp://a queried %d times, want 1", n)
	}
}

func TestFuture_WaitHonorsContext(t *testing.T) {
	s := newFakeScraper(map[string]fakeResponse{"udp://a": slow(200 * time.Millisecond)})
	c := NewChecker(s)

	f := c.CheckAsync(context.Background(), magnet("udp://a"), &Config{Timeout: time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := f.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want DeadlineExceeded", err)
	}

	// The check keeps running after the waiter gives up.
	report, err := f.Result()
	if err != nil {
		t.Fatalf("Result() error = %v", err)
	}
	if report.Seeds != 999 {
		t.Errorf("Seeds = %d, want 999", report.Seeds)
	}
}

func TestChecker_UniqueIDs(t *testing.T) {
	c := NewChecker(newFakeScraper(nil))

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := c.CheckAsync(context.Background(), "", nil).ID()
		if id == "" || seen[id] {
			t.Fatalf("duplicate or empty check ID %q", id)
		}
		seen[id] = true
	}
}

func TestChecker_OnOutcome(t *testing.T) {
	s := newFakeScraper(map[string]fakeResponse{
		"udp://a": ok(1, 1),
		"udp://b": {err: errors.New("refused")},
	})
	c := NewChecker(s)

	var streamed []Outcome
	report, err := c.Check(context.Background(), magnet("udp://a", "udp://b"), &Config{
		OnOutcome: func(o Outcome) { streamed = append(streamed, o) },
	})
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if len(streamed) != len(report.Extra) {
		t.Fatalf("streamed %d outcomes, want %d", len(streamed), len(report.Extra))
	}
	for i := range streamed {
		if streamed[i] != report.Extra[i] {
			t.Errorf("streamed[%d] = %+v, want %+v", i, streamed[i], report.Extra[i])
		}
	}
}

func TestChecker_Logging(t *testing.T) {
	var buf bytes.Buffer
	s := newFakeScraper(map[string]fakeResponse{"udp://a": ok(1, 1)})
	c := NewChecker(s, WithLogger(observe.NewLoggerWithWriter("debug", &buf)))

	f := c.CheckAsync(context.Background(), magnet("udp://a"), nil)
	if _, err := f.Result(); err != nil {
		t.Fatalf("Result() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "health check completed") {
		t.Errorf("log output missing completion line: %s", out)
	}
	if !strings.Contains(out, f.ID()) {
		t.Errorf("log output missing check ID %s: %s", f.ID(), out)
	}
}

func TestChecker_WithObserver(t *testing.T) {
	var buf bytes.Buffer
	obs, err := observe.NewObserver(context.Background(), observe.Config{
		ServiceName: "trackerhealth-test",
		Output:      &buf,
		Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
	})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	defer func() { _ = obs.Shutdown(context.Background()) }()

	s := newFakeScraper(map[string]fakeResponse{"udp://a": ok(2, 2)})
	c := NewChecker(s, WithObserver(obs))

	report, err := c.Check(context.Background(), magnet("udp://a"), nil)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if report.Seeds != 2 {
		t.Errorf("Seeds = %d, want 2", report.Seeds)
	}
	if !strings.Contains(buf.String(), "health check completed") {
		t.Errorf("observer logger not used: %s", buf.String())
	}
}

func TestChecker_WithTracerAndMetrics(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := observe.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}

	s := newFakeScraper(map[string]fakeResponse{"udp://a": ok(2, 2), "udp://b": ok(4, 4)})
	c := NewChecker(s, WithTracer(observe.NewTracer(tp.Tracer("test"))), WithMetrics(metrics))

	if _, err := c.Check(context.Background(), magnet("udp://a", "udp://b"), nil); err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	names := map[string]int{}
	for _, span := range recorder.Ended() {
		names[span.Name()]++
	}
	if names[observe.SpanCheck] != 1 || names[observe.SpanScrape] != 2 {
		t.Errorf("spans = %v, want 1 %s and 2 %s", names, observe.SpanCheck, observe.SpanScrape)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	found := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			found[m.Name] = true
		}
	}
	for _, name := range []string{observe.MetricCheckTotal, observe.MetricScrapeTotal} {
		if !found[name] {
			t.Errorf("metric %s not recorded; have %v", name, found)
		}
	}
}

func TestChecker_NilTracerAndMetricsIgnored(t *testing.T) {
	s := newFakeScraper(map[string]fakeResponse{"udp://a": ok(1, 1)})
	c := NewChecker(s, WithTracer(nil), WithMetrics(nil))

	if report, err := c.Check(context.Background(), magnet("udp://a"), nil); err != nil || report.Seeds != 1 {
		t.Errorf("Check() = %+v, %v; want seeds 1", report, err)
	}
}
