package health

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jonwraymond/trackerhealth/metainfo"
	"github.com/jonwraymond/trackerhealth/scrape"
)

// trackerQuery scrapes one tracker under its own timeout and reports exactly
// one Outcome.
type trackerQuery struct {
	tracker  string
	infoHash metainfo.InfoHash
	timeout  time.Duration

	// decided is set by whichever of the scrape and the timer settles first.
	decided atomic.Bool
}

// run starts the query and returns immediately. settle is called exactly
// once, from the timer goroutine or the scrape goroutine.
func (q *trackerQuery) run(ctx context.Context, s scrape.Scraper, settle func(Outcome)) {
	ctx, cancel := context.WithCancel(ctx)
	start := time.Now()

	timer := time.AfterFunc(q.timeout, func() {
		if q.decide(Outcome{Tracker: q.tracker, Err: MessageTimedOut}, settle) {
			cancel()
		}
	})

	go func() {
		defer cancel()

		res, err := q.scrape(ctx, s)
		o := q.outcome(res, err, time.Since(start))
		if q.decide(o, settle) {
			timer.Stop()
		}
	}()
}

func (q *trackerQuery) decide(o Outcome, settle func(Outcome)) bool {
	if !q.decided.CompareAndSwap(false, true) {
		return false
	}
	settle(o)
	return true
}

func (q *trackerQuery) scrape(ctx context.Context, s scrape.Scraper) (res scrape.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scraper panic: %v", r)
		}
	}()
	return s.Scrape(ctx, q.tracker, q.infoHash)
}

func (q *trackerQuery) outcome(res scrape.Result, err error, elapsed time.Duration) Outcome {
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = "scrape failed"
		}
		return Outcome{Tracker: q.tracker, Err: msg}
	}
	return Outcome{
		Tracker:      q.tracker,
		Seeds:        max(res.Complete, 0),
		Peers:        max(res.Incomplete, 0),
		Downloads:    max(res.Downloaded, 0),
		ResponseTime: elapsed,
	}
}
