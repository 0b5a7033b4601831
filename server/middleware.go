package server

import (
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/jonwraymond/trackerhealth/auth"
	"github.com/jonwraymond/trackerhealth/observe"
)

// accessLog logs one line per request.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
			if websocket.IsWebSocketUpgrade(r) {
				status = http.StatusSwitchingProtocols
			}
		}

		fields := []observe.Field{
			observe.F("request_id", middleware.GetReqID(r.Context())),
			observe.F("method", r.Method),
			observe.F("path", r.URL.Path),
			observe.F("status", status),
			observe.F("bytes", ww.BytesWritten()),
			observe.F("remote_addr", r.RemoteAddr),
			observe.F("duration_ms", time.Since(start).Milliseconds()),
		}
		if status >= http.StatusInternalServerError {
			s.logger.Warn(r.Context(), "request", fields...)
			return
		}
		s.logger.Info(r.Context(), "request", fields...)
	})
}

// clientKey identifies the caller for rate limiting: the authenticated
// principal when there is one, the remote IP otherwise.
func clientKey(r *http.Request) string {
	if id := auth.IdentityFromContext(r.Context()); id != nil && !id.IsAnonymous() {
		return "principal:" + id.Principal
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

// requireAdmin rejects callers without the admin role. It is a no-op when
// authentication is off or no admin role is configured.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	if s.authn == nil || s.adminRole == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := auth.IdentityFromContext(r.Context())
		if id == nil || !id.HasRole(s.adminRole) {
			writeError(w, http.StatusForbidden, ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
