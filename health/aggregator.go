package health

import (
	"context"
	"time"

	"github.com/jonwraymond/trackerhealth/metainfo"
	"github.com/jonwraymond/trackerhealth/scrape"
)

// Aggregator fans one info hash out to many trackers and folds the answers
// into a Report.
//
// Contract:
// - Concurrency: safe for concurrent use; each call owns its own state.
// - Context: cancelling ctx cancels outstanding scrapes; each still yields one Outcome.
// - Completion: bounded by the timeout, since every query has its own timer.
type Aggregator struct {
	scraper scrape.Scraper
}

// NewAggregator creates an aggregator that queries trackers through s.
func NewAggregator(s scrape.Scraper) *Aggregator {
	return &Aggregator{scraper: s}
}

// Aggregate queries every tracker in parallel and waits for all Outcomes.
func (a *Aggregator) Aggregate(ctx context.Context, trackers []string, ih metainfo.InfoHash, timeout time.Duration) Report {
	return a.AggregateFunc(ctx, trackers, ih, timeout, nil)
}

// AggregateFunc is Aggregate with a hook called once per Outcome, in arrival
// order, from the goroutine that builds the Report.
func (a *Aggregator) AggregateFunc(ctx context.Context, trackers []string, ih metainfo.InfoHash, timeout time.Duration, onOutcome func(Outcome)) Report {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	n := len(trackers)
	outcomes := make(chan Outcome, n)
	settle := func(o Outcome) { outcomes <- o }

	for _, tracker := range trackers {
		q := &trackerQuery{tracker: tracker, infoHash: ih, timeout: timeout}
		q.run(ctx, a.scraper, settle)
	}

	// Only this loop touches the running totals.
	var sumSeeds, sumPeers, successes int
	extra := make([]Outcome, 0, n)

	for pending := n; pending > 0; pending-- {
		o := <-outcomes
		extra = append(extra, o)
		if o.OK() {
			sumSeeds += o.Seeds
			sumPeers += o.Peers
			successes++
		}
		if onOutcome != nil {
			onOutcome(o)
		}
	}

	divisor := max(successes, 1)
	return Report{
		Seeds: roundedMean(sumSeeds, divisor),
		Peers: roundedMean(sumPeers, divisor),
		Extra: extra,
	}
}

// roundedMean returns sum/n rounded half up, for sum >= 0 and n > 0.
func roundedMean(sum, n int) int {
	return (2*sum + n) / (2 * n)
}
