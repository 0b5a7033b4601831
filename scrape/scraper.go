package scrape

import (
	"context"

	"github.com/jonwraymond/trackerhealth/metainfo"
)

// Result is one tracker's answer for a torrent.
type Result struct {
	// Complete is the number of seeders.
	Complete int

	// Incomplete is the number of leechers.
	Incomplete int

	// Downloaded is the number of completed downloads the tracker has seen.
	Downloaded int
}

// Scraper queries one tracker for the swarm counts of one torrent.
type Scraper interface {
	Scrape(ctx context.Context, tracker string, ih metainfo.InfoHash) (Result, error)
}

// ScraperFunc is an adapter to allow ordinary functions to be used as Scrapers.
type ScraperFunc func(ctx context.Context, tracker string, ih metainfo.InfoHash) (Result, error)

// Scrape calls f(ctx, tracker, ih).
func (f ScraperFunc) Scrape(ctx context.Context, tracker string, ih metainfo.InfoHash) (Result, error) {
	return f(ctx, tracker, ih)
}
