package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/jonwraymond/trackerhealth/auth"
	"github.com/jonwraymond/trackerhealth/health"
	"github.com/jonwraymond/trackerhealth/observe"
	"github.com/jonwraymond/trackerhealth/resilience"
)

const (
	headerCheckID = "X-Check-Id"
	headerCache   = "X-Cache"
)

func (s *Server) handleCheckQuery(w http.ResponseWriter, r *http.Request) {
	req, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.serveCheck(w, r, req)
}

func (s *Server) handleCheckBody(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.serveCheck(w, r, req)
}

func (s *Server) serveCheck(w http.ResponseWriter, r *http.Request, req CheckRequest) {
	client := clientKey(r)
	cfg := req.merge(s.defaults)

	var res checkResult
	err := s.exec.Execute(r.Context(), client, cfg.Timeout, func(ctx context.Context) error {
		var err error
		res, err = s.check(ctx, req.Source, cfg)
		return err
	})
	if err != nil {
		s.writeCheckError(w, r, client, err)
		return
	}

	if res.checkID != "" {
		w.Header().Set(headerCheckID, res.checkID)
	}
	if s.reports != nil {
		w.Header().Set(headerCache, cacheStatus(res.hit))
	}
	health.WriteReport(w, res.report)
}

// handleInvalidate drops the cached report that a GET with the same query
// parameters would be served.
func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	req, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Source) == "" {
		health.WriteError(w, health.ErrMissingIdentifier)
		return
	}
	desc, err := s.resolver.Resolve(r.Context(), req.Source)
	if err != nil {
		health.WriteError(w, fmt.Errorf("%w: %w", health.ErrInvalidIdentifier, err))
		return
	}

	cfg := req.merge(s.defaults)
	if err := s.reports.Invalidate(r.Context(), cacheRequest(desc, cfg)); err != nil {
		s.logger.Error(r.Context(), "cache invalidation failed", observe.F("error", err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.logger.Info(r.Context(), "cached report invalidated",
		observe.F("info_hash", desc.InfoHash.String()),
		observe.F("principal", auth.PrincipalFromContext(r.Context())),
	)
	w.WriteHeader(http.StatusNoContent)
}

type checkResult struct {
	report  health.Report
	checkID string
	hit     bool
}

// check runs one check, through the report cache when there is one.
// checkID is empty when the report came from the cache or from a check
// started by a concurrent identical request.
func (s *Server) check(ctx context.Context, source string, cfg *health.Config) (checkResult, error) {
	var res checkResult
	run := func(ctx context.Context) (health.Report, error) {
		f := s.checker.CheckAsync(ctx, source, cfg)
		res.checkID = f.ID()
		return f.Wait(ctx)
	}

	if s.reports == nil {
		report, err := run(ctx)
		res.report = report
		return res, err
	}

	// Unresolvable sources bypass the cache; the checker reports why.
	desc, err := s.resolver.Resolve(ctx, source)
	if err != nil {
		report, err := run(ctx)
		res.report = report
		return res, err
	}

	res.report, res.hit, err = s.reports.Do(ctx, cacheRequest(desc, cfg), run)
	return res, err
}

func (s *Server) writeCheckError(w http.ResponseWriter, r *http.Request, client string, err error) {
	switch {
	case errors.Is(err, resilience.ErrRateLimitExceeded):
		w.Header().Set("Retry-After", strconv.Itoa(s.retryAfter(client)))
		writeError(w, http.StatusTooManyRequests, err)
	case errors.Is(err, resilience.ErrBulkheadFull):
		writeError(w, http.StatusServiceUnavailable, err)
	case errors.Is(err, resilience.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, err)
	case errors.Is(err, context.Canceled):
		s.logger.Debug(r.Context(), "client went away", observe.F("client", client))
	default:
		status := health.StatusCode(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error(r.Context(), "check failed", observe.F("client", client), observe.F("error", err))
		}
		health.WriteError(w, err)
	}
}

// retryAfter returns whole seconds until client may retry, at least 1.
func (s *Server) retryAfter(client string) int {
	rl := s.exec.RateLimiter()
	if rl == nil {
		return 1
	}
	secs := int(math.Ceil(rl.RetryAfter(client).Seconds()))
	return max(secs, 1)
}

func cacheStatus(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}

func writeError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(health.ErrorResponse{Error: err.Error()})
}
