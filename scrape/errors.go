package scrape

import "errors"

var (
	// ErrUnsupportedScheme indicates no scraper is registered for a tracker's
	// URL scheme. The error text is reported per tracker, so it carries no
	// package prefix.
	ErrUnsupportedScheme = errors.New("unsupported tracker scheme")

	// ErrInvalidTracker indicates a tracker address that is not a URL.
	ErrInvalidTracker = errors.New("invalid tracker address")

	// ErrNoFixture indicates the fixture file has no entry for a tracker.
	ErrNoFixture = errors.New("scrape: no fixture for tracker")

	// ErrInvalidFixture indicates a malformed fixture file.
	ErrInvalidFixture = errors.New("scrape: invalid fixture")
)
