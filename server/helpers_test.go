package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonwraymond/trackerhealth/health"
	"github.com/jonwraymond/trackerhealth/metainfo"
	"github.com/jonwraymond/trackerhealth/scrape"
)

const testHash = "c12fe1c06bba254a9dc9f519b335aa7c1367a88a"

const (
	trackerA    = "udp://a.example:80"
	trackerB    = "udp://b.example:80"
	trackerDead = "udp://dead.example:80"
	trackerSlow = "udp://slow.example:80"
)

func magnet(trackers ...string) string {
	q := url.Values{}
	q.Set("xt", "urn:btih:"+testHash)
	for _, t := range trackers {
		q.Add("tr", t)
	}
	return "magnet:?" + q.Encode()
}

// countingScraper answers from a fixture and counts scrapes.
type countingScraper struct {
	fixture *scrape.Fixture
	calls   atomic.Int64
}

func newCountingScraper() *countingScraper {
	return &countingScraper{fixture: scrape.NewFixture(map[string]scrape.FixtureEntry{
		trackerA:    {Complete: 10, Incomplete: 4, Downloaded: 100},
		trackerB:    {Complete: 20, Incomplete: 6, Downloaded: 200},
		trackerDead: {Error: "connection refused"},
		trackerSlow: {Complete: 99, Incomplete: 99, Delay: time.Hour},
	})}
}

func (c *countingScraper) Scrape(ctx context.Context, tracker string, ih metainfo.InfoHash) (scrape.Result, error) {
	c.calls.Add(1)
	return c.fixture.Scrape(ctx, tracker, ih)
}

func newTestServer(t *testing.T, opts ...Option) (*Server, *countingScraper) {
	t.Helper()
	sc := newCountingScraper()
	return New(health.NewChecker(sc), opts...), sc
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func post(t *testing.T, h http.Handler, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func healthURL(source string, params ...string) string {
	q := url.Values{}
	if source != "" {
		q.Set("source", source)
	}
	for i := 0; i+1 < len(params); i += 2 {
		q.Add(params[i], params[i+1])
	}
	return "/v1/health?" + q.Encode()
}
