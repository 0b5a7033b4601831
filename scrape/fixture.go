package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/jonwraymond/trackerhealth/metainfo"
	"gopkg.in/yaml.v3"
)

// FixtureEntry is the canned answer for one tracker.
type FixtureEntry struct {
	Complete   int           `yaml:"complete"`
	Incomplete int           `yaml:"incomplete"`
	Downloaded int           `yaml:"downloaded"`
	Delay      time.Duration `yaml:"delay"`
	Error      string        `yaml:"error"`
}

// fixtureFile is the on-disk layout:
//
//	trackers:
//	  udp://tracker.example:1337:
//	    complete: 10
//	    incomplete: 4
//	    delay: 150ms
//	  http://down.example/announce:
//	    error: connection refused
type fixtureFile struct {
	Trackers map[string]FixtureEntry `yaml:"trackers"`
}

// Fixture is a Scraper that answers from canned entries. It ignores the
// info hash: every torrent gets the same per-tracker answer.
//
// Fixture is immutable after construction and safe for concurrent use.
type Fixture struct {
	entries map[string]FixtureEntry
}

// NewFixture creates a fixture scraper from entries keyed by tracker address.
func NewFixture(entries map[string]FixtureEntry) *Fixture {
	copied := make(map[string]FixtureEntry, len(entries))
	for k, v := range entries {
		copied[k] = v
	}
	return &Fixture{entries: copied}
}

// LoadFixture reads a YAML fixture file.
func LoadFixture(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return ReadFixture(f)
}

// ReadFixture decodes YAML fixture content.
func ReadFixture(r io.Reader) (*Fixture, error) {
	var file fixtureFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFixture, err)
	}

	for tracker, e := range file.Trackers {
		if e.Complete < 0 || e.Incomplete < 0 || e.Downloaded < 0 || e.Delay < 0 {
			return nil, fmt.Errorf("%w: negative value for %q", ErrInvalidFixture, tracker)
		}
	}
	return NewFixture(file.Trackers), nil
}

// Trackers returns the tracker addresses the fixture knows, sorted.
func (f *Fixture) Trackers() []string {
	out := make([]string, 0, len(f.entries))
	for k := range f.entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Schemes returns the distinct URL schemes of the fixture's trackers, sorted.
func (f *Fixture) Schemes() []string {
	seen := make(map[string]struct{})
	var out []string
	for k := range f.entries {
		scheme, err := SchemeOf(k)
		if err != nil {
			continue
		}
		if _, dup := seen[scheme]; dup {
			continue
		}
		seen[scheme] = struct{}{}
		out = append(out, scheme)
	}
	sort.Strings(out)
	return out
}

// Scrape waits out the entry's delay, then returns its counts or error.
func (f *Fixture) Scrape(ctx context.Context, tracker string, _ metainfo.InfoHash) (Result, error) {
	e, ok := f.entries[tracker]
	if !ok {
		return Result{}, fmt.Errorf("%w %q", ErrNoFixture, tracker)
	}

	if e.Delay > 0 {
		timer := time.NewTimer(e.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}

	if e.Error != "" {
		return Result{}, errors.New(e.Error)
	}
	return Result{Complete: e.Complete, Incomplete: e.Incomplete, Downloaded: e.Downloaded}, nil
}
