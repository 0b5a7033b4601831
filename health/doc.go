// Package health reports the swarm health of a torrent by scraping every
// tracker that announces it, in parallel, and averaging the answers.
//
// # Core Concepts
//
// A check runs in four steps:
//
//  1. The source (magnet URI, info hash or .torrent content) is resolved
//     into an info hash and the trackers it announces.
//  2. BuildTrackers merges configured trackers with the announced ones,
//     drops blacklisted and duplicate addresses, and fails with
//     ErrNoTrackers if nothing is left.
//  3. The Aggregator queries every tracker at once. Each query has its own
//     timer; whichever of the answer and the timer comes first decides that
//     tracker's Outcome, and the other is ignored.
//  4. When the last Outcome arrives the Report is built: seeds and peers are
//     the rounded mean over successful trackers only, and Extra lists every
//     Outcome in completion order.
//
// A tracker that errors or times out never fails the check. It shows up in
// Extra and is left out of the averages.
//
// # Basic Usage
//
//	checker := health.NewChecker(scraper)
//
//	report, err := checker.Check(ctx, "magnet:?xt=urn:btih:...", &health.Config{
//	    Trackers: []string{"udp://tracker.example:1337"},
//	    Timeout:  2 * time.Second,
//	})
//
// The same work is available as a future or with a callback:
//
//	f := checker.CheckAsync(ctx, source, nil)
//	f.Then(func(r health.Report, err error) { ... })
//
// # HTTP Endpoints
//
// LivenessHandler and ReadinessHandler serve probes. StatusCode maps the
// fatal check errors onto HTTP status codes.
package health
