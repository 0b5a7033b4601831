package health

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/jonwraymond/trackerhealth/metainfo"
	"github.com/jonwraymond/trackerhealth/scrape"
)

const testHash = "c12fe1c06bba254a9dc9f519b335aa7c1367a88a"

// magnet builds a magnet URI for testHash announcing trackers.
func magnet(trackers ...string) string {
	q := url.Values{}
	q.Set("xt", "urn:btih:"+testHash)
	for _, t := range trackers {
		q.Add("tr", t)
	}
	return "magnet:?" + q.Encode()
}

type fakeResponse struct {
	result scrape.Result
	err    error
	delay  time.Duration

	// ignoreCtx keeps the scrape running past cancellation.
	ignoreCtx bool
	panicWith any
}

// fakeScraper answers from a table and records calls.
type fakeScraper struct {
	mu        sync.Mutex
	responses map[string]fakeResponse
	calls     map[string]int

	// returned receives the tracker of every scrape that returns.
	returned chan string
}

func newFakeScraper(responses map[string]fakeResponse) *fakeScraper {
	return &fakeScraper{
		responses: responses,
		calls:     make(map[string]int),
		returned:  make(chan string, 64),
	}
}

func (f *fakeScraper) Scrape(ctx context.Context, tracker string, _ metainfo.InfoHash) (scrape.Result, error) {
	f.mu.Lock()
	f.calls[tracker]++
	r, ok := f.responses[tracker]
	f.mu.Unlock()

	defer func() { f.returned <- tracker }()

	if !ok {
		return scrape.Result{}, errors.New("unknown tracker")
	}
	if r.panicWith != nil {
		panic(r.panicWith)
	}
	if r.delay > 0 {
		if r.ignoreCtx {
			time.Sleep(r.delay)
		} else {
			timer := time.NewTimer(r.delay)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-ctx.Done():
				return scrape.Result{}, ctx.Err()
			}
		}
	}
	return r.result, r.err
}

func (f *fakeScraper) callCount(tracker string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[tracker]
}

func (f *fakeScraper) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func ok(complete, incomplete int) fakeResponse {
	return fakeResponse{result: scrape.Result{Complete: complete, Incomplete: incomplete}}
}

func slow(d time.Duration) fakeResponse {
	return fakeResponse{result: scrape.Result{Complete: 999, Incomplete: 999}, delay: d}
}

func mustHash() metainfo.InfoHash {
	h, err := metainfo.ParseInfoHash(testHash)
	if err != nil {
		panic(err)
	}
	return h
}
