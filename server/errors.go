package server

import "errors"

// Sentinel errors for malformed requests.
var (
	// ErrInvalidRequest is returned for a body or query that cannot be parsed.
	ErrInvalidRequest = errors.New("server: invalid request")

	// ErrInvalidTimeout is returned for a timeout that is not an integer
	// number of milliseconds.
	ErrInvalidTimeout = errors.New("server: invalid timeout")

	// ErrForbidden is returned when the caller lacks the admin role.
	ErrForbidden = errors.New("server: forbidden")
)
