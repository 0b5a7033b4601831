package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTConfig configures the JWT authenticator.
type JWTConfig struct {
	// Issuer, if set, must match the iss claim.
	Issuer string

	// Audience, if set, must appear in the aud claim.
	Audience string

	// PrincipalClaim names the claim holding the principal. Default: "sub".
	PrincipalClaim string

	// RolesClaim, if set, names a string-array claim holding roles.
	RolesClaim string

	// Leeway is the clock skew allowed on exp, nbf and iat.
	Leeway time.Duration
}

// KeyProvider returns the key that verifies a token with the given key ID.
type KeyProvider interface {
	GetKey(ctx context.Context, keyID string) (any, error)
}

// StaticKeyProvider returns one shared HMAC key for every token.
type StaticKeyProvider struct {
	key []byte
}

// NewStaticKeyProvider creates a static key provider.
func NewStaticKeyProvider(key []byte) *StaticKeyProvider {
	return &StaticKeyProvider{key: key}
}

// GetKey returns the static key.
func (p *StaticKeyProvider) GetKey(context.Context, string) (any, error) {
	if len(p.key) == 0 {
		return nil, ErrMissingKey
	}
	return p.key, nil
}

// hmacMethods are the accepted signing algorithms.
var hmacMethods = []string{"HS256", "HS384", "HS512"}

// JWTAuthenticator validates bearer tokens from the Authorization header.
type JWTAuthenticator struct {
	config JWTConfig
	keys   KeyProvider
	parser *jwt.Parser
}

// NewJWTAuthenticator creates a JWT authenticator.
func NewJWTAuthenticator(config JWTConfig, keys KeyProvider) *JWTAuthenticator {
	if config.PrincipalClaim == "" {
		config.PrincipalClaim = "sub"
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods(hmacMethods), jwt.WithLeeway(config.Leeway)}
	if config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(config.Issuer))
	}
	if config.Audience != "" {
		opts = append(opts, jwt.WithAudience(config.Audience))
	}

	return &JWTAuthenticator{config: config, keys: keys, parser: jwt.NewParser(opts...)}
}

// Name returns "jwt".
func (a *JWTAuthenticator) Name() string {
	return "jwt"
}

// Supports reports whether the request carries a bearer token.
func (a *JWTAuthenticator) Supports(_ context.Context, req *AuthRequest) bool {
	_, ok := bearerToken(req)
	return ok
}

// Authenticate validates the bearer token.
func (a *JWTAuthenticator) Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error) {
	raw, ok := bearerToken(req)
	if !ok || raw == "" {
		return AuthFailure(ErrMissingCredentials, a.Name()), nil
	}

	claims := jwt.MapClaims{}
	_, err := a.parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		return a.keys.GetKey(ctx, kid)
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrMissingKey):
		return nil, err
	case errors.Is(err, jwt.ErrTokenExpired):
		return AuthFailure(ErrTokenExpired, a.Name()), nil
	case errors.Is(err, jwt.ErrTokenMalformed):
		return AuthFailure(ErrTokenMalformed, a.Name()), nil
	default:
		return AuthFailure(ErrInvalidCredentials, a.Name()), nil
	}

	return AuthSuccess(a.identity(claims)), nil
}

func (a *JWTAuthenticator) identity(claims jwt.MapClaims) *Identity {
	id := &Identity{Method: AuthMethodJWT, Claims: make(map[string]any, len(claims))}
	for k, v := range claims {
		id.Claims[k] = v
	}

	id.Principal, _ = claims[a.config.PrincipalClaim].(string)
	if a.config.RolesClaim != "" {
		if roles, ok := claims[a.config.RolesClaim].([]any); ok {
			for _, r := range roles {
				if s, ok := r.(string); ok {
					id.Roles = append(id.Roles, s)
				}
			}
		}
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.Time
	}
	return id
}

func bearerToken(req *AuthRequest) (string, bool) {
	header := req.GetHeader("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	return strings.TrimSpace(token), true
}

var (
	_ Authenticator = (*JWTAuthenticator)(nil)
	_ KeyProvider   = (*StaticKeyProvider)(nil)
)
