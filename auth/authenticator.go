package auth

import (
	"context"
	"net/http"
)

// Authenticator validates credentials and returns an identity.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: methods should honor cancellation/deadlines.
// - Errors: Authenticate returns (nil, error) for internal errors and
// (AuthResult, nil) for rejected credentials.
type Authenticator interface {
	// Name returns a unique identifier for this authenticator.
	Name() string

	// Supports reports whether the request carries credentials this
	// authenticator understands.
	Supports(ctx context.Context, req *AuthRequest) bool

	// Authenticate validates the request's credentials.
	Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error)
}

// AuthRequest carries the parts of an HTTP request used for authentication.
type AuthRequest struct {
	Headers    http.Header
	RemoteAddr string
	Path       string
}

// NewAuthRequest builds an AuthRequest from r.
func NewAuthRequest(r *http.Request) *AuthRequest {
	return &AuthRequest{Headers: r.Header, RemoteAddr: r.RemoteAddr, Path: r.URL.Path}
}

// GetHeader returns the first value of a header, or "".
func (r *AuthRequest) GetHeader(key string) string {
	if r.Headers == nil {
		return ""
	}
	return r.Headers.Get(key)
}

// AuthResult is the result of an authentication attempt.
type AuthResult struct {
	Authenticated bool

	// Identity is set when Authenticated is true.
	Identity *Identity

	// Error is set when Authenticated is false.
	Error error

	Method string
}

// AuthSuccess creates a successful authentication result.
func AuthSuccess(identity *Identity) *AuthResult {
	return &AuthResult{
		Authenticated: true,
		Identity:      identity,
		Method:        string(identity.Method),
	}
}

// AuthFailure creates a failed authentication result.
func AuthFailure(err error, method string) *AuthResult {
	return &AuthResult{Error: err, Method: method}
}

// AuthenticatorFunc adapts functions to the Authenticator interface.
type AuthenticatorFunc struct {
	name     string
	supports func(ctx context.Context, req *AuthRequest) bool
	auth     func(ctx context.Context, req *AuthRequest) (*AuthResult, error)
}

// NewAuthenticatorFunc creates an AuthenticatorFunc.
func NewAuthenticatorFunc(
	name string,
	supports func(ctx context.Context, req *AuthRequest) bool,
	auth func(ctx context.Context, req *AuthRequest) (*AuthResult, error),
) *AuthenticatorFunc {
	return &AuthenticatorFunc{name: name, supports: supports, auth: auth}
}

// Name returns the authenticator name.
func (f *AuthenticatorFunc) Name() string {
	return f.name
}

// Supports calls the supports function.
func (f *AuthenticatorFunc) Supports(ctx context.Context, req *AuthRequest) bool {
	return f.supports(ctx, req)
}

// Authenticate calls the auth function.
func (f *AuthenticatorFunc) Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error) {
	return f.auth(ctx, req)
}
