package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/jonwraymond/trackerhealth/cache"
	"github.com/jonwraymond/trackerhealth/health"
	"github.com/jonwraymond/trackerhealth/metainfo"
)

// maxBodyBytes bounds POST bodies; .torrent content is sent in source.
const maxBodyBytes = 4 << 20

// CheckRequest is one health check as received over HTTP.
type CheckRequest struct {
	Source    string   `json:"source"`
	Trackers  []string `json:"trackers,omitempty"`
	Blacklist []string `json:"blacklist,omitempty"`

	// Timeout is the per-tracker timeout in milliseconds. Zero or
	// negative means the server default.
	Timeout int64 `json:"timeout,omitempty"`
}

// parseQuery reads a CheckRequest from source, tracker, blacklist and
// timeout query parameters. tracker and blacklist may repeat.
func parseQuery(r *http.Request) (CheckRequest, error) {
	q := r.URL.Query()
	req := CheckRequest{
		Source:    q.Get("source"),
		Trackers:  q["tracker"],
		Blacklist: q["blacklist"],
	}
	if v := q.Get("timeout"); v != "" {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return CheckRequest{}, fmt.Errorf("%w: %q", ErrInvalidTimeout, v)
		}
		req.Timeout = ms
	}
	return req, nil
}

// decodeBody reads a CheckRequest from a JSON body.
func decodeBody(w http.ResponseWriter, r *http.Request) (CheckRequest, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	var req CheckRequest
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return CheckRequest{}, fmt.Errorf("%w: empty body", ErrInvalidRequest)
		}
		return CheckRequest{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return req, nil
}

// merge layers req over the server defaults. Trackers and blacklist
// patterns are added to the defaults; a positive timeout replaces them.
func (req CheckRequest) merge(defaults health.Config) *health.Config {
	cfg := &health.Config{
		Trackers:          append(slices.Clone(defaults.Trackers), req.Trackers...),
		Blacklist:         append(slices.Clone(defaults.Blacklist), req.Blacklist...),
		BlacklistPatterns: defaults.BlacklistPatterns,
		Timeout:           defaults.Timeout,
	}
	if req.Timeout > 0 {
		cfg.Timeout = time.Duration(req.Timeout) * time.Millisecond
	}
	return cfg
}

// cacheRequest returns the cache identity of a check of desc under cfg.
// Announced trackers are part of it, since two sources with one info hash
// may announce different trackers.
func cacheRequest(desc *metainfo.Descriptor, cfg *health.Config) cache.Request {
	return cache.Request{
		InfoHash:  desc.InfoHash.String(),
		Trackers:  append(slices.Clone(desc.Announce), cfg.Trackers...),
		Blacklist: cfg.Blacklist,
		Timeout:   cfg.Timeout,
	}
}
