package auth

import (
	"slices"
	"time"
)

// AuthMethod indicates how authentication was performed.
type AuthMethod string

const (
	AuthMethodJWT       AuthMethod = "jwt"
	AuthMethodAPIKey    AuthMethod = "api_key"
	AuthMethodAnonymous AuthMethod = "anonymous"
)

// Identity is an authenticated caller.
type Identity struct {
	// Principal identifies the caller: the JWT subject or the API key name.
	Principal string

	Roles  []string
	Method AuthMethod

	// Claims holds the token claims, or key metadata for API keys.
	Claims map[string]any

	// ExpiresAt is zero when the identity never expires.
	ExpiresAt time.Time
}

// HasRole reports whether the identity carries role.
func (id *Identity) HasRole(role string) bool {
	return slices.Contains(id.Roles, role)
}

// IsExpired reports whether the identity has expired at now.
func (id *Identity) IsExpired(now time.Time) bool {
	return !id.ExpiresAt.IsZero() && now.After(id.ExpiresAt)
}

// IsAnonymous reports whether the identity stands for an unauthenticated caller.
func (id *Identity) IsAnonymous() bool {
	return id.Method == AuthMethodAnonymous || id.Principal == ""
}

// AnonymousIdentity returns the identity given to unauthenticated callers
// when anonymous access is allowed.
func AnonymousIdentity() *Identity {
	return &Identity{Principal: "anonymous", Method: AuthMethodAnonymous}
}
