// Package scrape defines the tracker scrape client contract used by the
// health aggregator, plus two implementations that need no network:
//
//   - Registry routes a tracker URL to the Scraper registered for its scheme.
//   - Fixture answers from a YAML file of canned per-tracker results.
//
// The tracker wire protocols themselves (UDP, HTTP, WebSocket) are not part
// of this package. Protocol clients plug in by implementing Scraper and
// registering under their scheme.
//
// # Basic Usage
//
//	reg := scrape.NewRegistry()
//	_ = reg.Register("udp", udpClient)
//	res, err := reg.Scrape(ctx, "udp://tracker.example:1337", ih)
//
// # Contract
//
// A Scraper must be safe for concurrent use: the aggregator calls it from one
// goroutine per tracker. It should return promptly once ctx is cancelled,
// although a late return is tolerated and its result discarded.
package scrape
