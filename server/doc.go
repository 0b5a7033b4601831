// Package server exposes health checks over HTTP.
//
// Routes:
//
//	GET  /v1/health   check a source given as query parameters
//	POST /v1/health   check a source given as a JSON body
//	DELETE /v1/health drop the cached report for the same query parameters
//	GET  /v1/stream   websocket; one event per tracker outcome, then the report
//	GET  /healthz     liveness
//	GET  /readyz      readiness
//	GET  /metrics     Prometheus metrics, when a gatherer is configured
//
// Check requests pass through optional authentication, per-client rate
// limiting, a bulkhead on checks in flight and a per-request time budget.
// Reports may be served from a cache.ReportCache. Cache invalidation is
// only routed when a cache is configured and, with authentication on,
// requires the admin role (see WithAdminRole).
package server
