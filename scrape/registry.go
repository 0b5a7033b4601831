package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/jonwraymond/trackerhealth/metainfo"
)

// Registry routes scrapes by tracker URL scheme.
//
// Registry itself implements Scraper. A tracker whose scheme has no
// registered scraper fails with ErrUnsupportedScheme.
type Registry struct {
	mu       sync.RWMutex
	scrapers map[string]Scraper
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{scrapers: make(map[string]Scraper)}
}

// Register binds a scraper to a URL scheme (case-insensitive).
func (r *Registry) Register(scheme string, s Scraper) error {
	scheme = strings.ToLower(strings.TrimSpace(scheme))
	if scheme == "" || s == nil {
		return errors.New("invalid scraper registration")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.scrapers[scheme]; exists {
		return fmt.Errorf("scraper for scheme %q already registered", scheme)
	}
	r.scrapers[scheme] = s
	return nil
}

// Lookup returns the scraper bound to scheme.
func (r *Registry) Lookup(scheme string) (Scraper, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.scrapers[strings.ToLower(scheme)]
	return s, ok
}

// Schemes returns the registered schemes, sorted.
func (r *Registry) Schemes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.scrapers))
	for name := range r.scrapers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Scrape dispatches to the scraper registered for the tracker's scheme.
func (r *Registry) Scrape(ctx context.Context, tracker string, ih metainfo.InfoHash) (Result, error) {
	scheme, err := SchemeOf(tracker)
	if err != nil {
		return Result{}, err
	}

	s, ok := r.Lookup(scheme)
	if !ok {
		return Result{}, fmt.Errorf("%w %q", ErrUnsupportedScheme, scheme)
	}
	return s.Scrape(ctx, tracker, ih)
}

// SchemeOf returns the lowercase URL scheme of a tracker address.
func SchemeOf(tracker string) (string, error) {
	u, err := url.Parse(tracker)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidTracker, err)
	}
	if u.Scheme == "" {
		return "", fmt.Errorf("%w: %q has no scheme", ErrInvalidTracker, tracker)
	}
	return strings.ToLower(u.Scheme), nil
}
