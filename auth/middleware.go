package auth

import (
	"encoding/json"
	"net/http"

	"github.com/jonwraymond/trackerhealth/observe"
)

// MiddlewareConfig configures Middleware.
type MiddlewareConfig struct {
	// AllowAnonymous lets requests without credentials through with
	// AnonymousIdentity. Requests with bad credentials are still rejected.
	AllowAnonymous bool

	// Logger receives rejected attempts. Defaults to a no-op logger.
	Logger observe.Logger
}

// Middleware authenticates every request with a. Rejected requests get 401
// with a JSON error body; accepted ones carry their Identity in the context.
func Middleware(a Authenticator, cfg MiddlewareConfig) func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = observe.NopLogger()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			req := NewAuthRequest(r)

			if cfg.AllowAnonymous && !a.Supports(ctx, req) {
				next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, AnonymousIdentity())))
				return
			}

			result, err := a.Authenticate(ctx, req)
			if err != nil {
				logger.Error(ctx, "authentication error", observe.F("path", req.Path), observe.F("error", err))
				writeUnauthorized(w, http.StatusInternalServerError, "authentication unavailable")
				return
			}
			if !result.Authenticated {
				logger.Warn(ctx, "authentication rejected",
					observe.F("path", req.Path),
					observe.F("method", result.Method),
					observe.F("remote_addr", req.RemoteAddr),
					observe.F("error", result.Error),
				)
				writeUnauthorized(w, http.StatusUnauthorized, result.Error.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, result.Identity)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, status int, msg string) {
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="trackerhealth"`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
