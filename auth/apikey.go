package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// DefaultAPIKeyHeader carries API keys unless configured otherwise.
const DefaultAPIKeyHeader = "X-API-Key"

// APIKeyInfo describes a registered API key. Only its hash is stored.
type APIKeyInfo struct {
	// KeyHash is the SHA-256 hex digest of the key (see HashAPIKey).
	KeyHash string

	// Principal is the identity the key authenticates as.
	Principal string

	Roles []string

	// ExpiresAt is zero when the key never expires.
	ExpiresAt time.Time
}

// APIKeyStore looks up API keys by hash.
type APIKeyStore interface {
	// Lookup returns nil when the hash is unknown.
	Lookup(ctx context.Context, keyHash string) (*APIKeyInfo, error)
}

// APIKeyAuthenticator validates API keys from a request header.
type APIKeyAuthenticator struct {
	header string
	store  APIKeyStore
	now    func() time.Time
}

// NewAPIKeyAuthenticator creates an API key authenticator. An empty header
// means DefaultAPIKeyHeader.
func NewAPIKeyAuthenticator(header string, store APIKeyStore) *APIKeyAuthenticator {
	if header == "" {
		header = DefaultAPIKeyHeader
	}
	return &APIKeyAuthenticator{header: header, store: store, now: time.Now}
}

// Name returns "api_key".
func (a *APIKeyAuthenticator) Name() string {
	return "api_key"
}

// Supports reports whether the request carries the API key header.
func (a *APIKeyAuthenticator) Supports(_ context.Context, req *AuthRequest) bool {
	return req.GetHeader(a.header) != ""
}

// Authenticate validates the API key.
func (a *APIKeyAuthenticator) Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error) {
	key := strings.TrimSpace(req.GetHeader(a.header))
	if key == "" {
		return AuthFailure(ErrMissingCredentials, a.Name()), nil
	}

	info, err := a.store.Lookup(ctx, HashAPIKey(key))
	if err != nil {
		return nil, err
	}
	if info == nil {
		return AuthFailure(ErrInvalidCredentials, a.Name()), nil
	}
	if !info.ExpiresAt.IsZero() && a.now().After(info.ExpiresAt) {
		return AuthFailure(ErrTokenExpired, a.Name()), nil
	}

	return AuthSuccess(&Identity{
		Principal: info.Principal,
		Roles:     info.Roles,
		Method:    AuthMethodAPIKey,
		ExpiresAt: info.ExpiresAt,
	}), nil
}

// HashAPIKey returns the SHA-256 hex digest of key.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// MemoryAPIKeyStore is an in-memory APIKeyStore.
type MemoryAPIKeyStore struct {
	mu   sync.RWMutex
	keys map[string]*APIKeyInfo
}

// NewMemoryAPIKeyStore creates an empty store.
func NewMemoryAPIKeyStore() *MemoryAPIKeyStore {
	return &MemoryAPIKeyStore{keys: make(map[string]*APIKeyInfo)}
}

// Lookup returns the key with the given hash, or nil.
func (s *MemoryAPIKeyStore) Lookup(_ context.Context, keyHash string) (*APIKeyInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keys[keyHash], nil
}

// Add stores info under its hash.
func (s *MemoryAPIKeyStore) Add(info *APIKeyInfo) {
	s.mu.Lock()
	s.keys[info.KeyHash] = info
	s.mu.Unlock()
}

// AddKey hashes key and stores it for principal.
func (s *MemoryAPIKeyStore) AddKey(principal, key string, roles ...string) {
	s.Add(&APIKeyInfo{KeyHash: HashAPIKey(key), Principal: principal, Roles: roles})
}

// Remove deletes the key with the given hash.
func (s *MemoryAPIKeyStore) Remove(keyHash string) {
	s.mu.Lock()
	delete(s.keys, keyHash)
	s.mu.Unlock()
}

var (
	_ Authenticator = (*APIKeyAuthenticator)(nil)
	_ APIKeyStore   = (*MemoryAPIKeyStore)(nil)
)
