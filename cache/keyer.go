package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jonwraymond/trackerhealth/health"
)

// Request is the part of a health check that determines its report.
type Request struct {
	InfoHash  string
	Trackers  []string
	Blacklist []string
	Timeout   time.Duration
}

// Normalize returns a copy with the info hash lowercased, and trackers and
// blacklist patterns trimmed, sorted and deduplicated with blanks dropped.
// A timeout <= 0 becomes health.DefaultTimeout. Requests that select the
// same trackers normalize to the same value.
func (r Request) Normalize() Request {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = health.DefaultTimeout
	}
	return Request{
		InfoHash:  strings.ToLower(strings.TrimSpace(r.InfoHash)),
		Trackers:  normalizeList(r.Trackers),
		Blacklist: normalizeList(r.Blacklist),
		Timeout:   timeout,
	}
}

func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Keyer derives cache keys from check requests.
//
// Contract:
// - Determinism: requests that normalize equally get the same key.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	Key(req Request) (string, error)
}

// DefaultKeyer generates SHA-256 based cache keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a new default keyer.
func NewDefaultKeyer() *DefaultKeyer {
	return &DefaultKeyer{}
}

// keyPayload is the hashed form of a normalized request.
type keyPayload struct {
	Trackers  []string `json:"trackers"`
	Blacklist []string `json:"blacklist"`
	TimeoutMS int64    `json:"timeout_ms"`
}

// Key returns report:<infohash>:<hash>, where hash is the first 16 hex
// characters of SHA-256 over the normalized request.
func (k *DefaultKeyer) Key(req Request) (string, error) {
	req = req.Normalize()
	if req.InfoHash == "" {
		return "", ErrNoInfoHash
	}

	payload, err := json.Marshal(keyPayload{
		Trackers:  req.Trackers,
		Blacklist: req.Blacklist,
		TimeoutMS: req.Timeout.Milliseconds(),
	})
	if err != nil {
		return "", fmt.Errorf("cache: failed to encode request: %w", err)
	}

	sum := sha256.Sum256(payload)
	key := fmt.Sprintf("report:%s:%s", req.InfoHash, hex.EncodeToString(sum[:8]))
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return key, nil
}

var _ Keyer = (*DefaultKeyer)(nil)
