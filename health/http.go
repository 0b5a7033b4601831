package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// LivenessHandler returns an HTTP handler for liveness probes.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// ReadinessHandler returns an HTTP handler for readiness probes. The service
// is ready while probe returns nil.
func ReadinessHandler(probe func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "text/plain")
		if err := probe(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("NOT READY: " + err.Error()))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// StatusCode maps a check error to an HTTP status.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrMissingIdentifier):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidIdentifier):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNoTrackers):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse is the JSON body of a failed check request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteReport writes report as JSON with status 200.
func WriteReport(w http.ResponseWriter, report Report) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(report)
}

// WriteError writes err as JSON with the status given by StatusCode.
func WriteError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusCode(err))
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error()})
}
