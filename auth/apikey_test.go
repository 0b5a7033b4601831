package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestHashAPIKey(t *testing.T) {
	// sha256("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := HashAPIKey("abc"); got != want {
		t.Errorf("HashAPIKey(abc) = %s, want %s", got, want)
	}
}

func TestAPIKeyAuthenticator(t *testing.T) {
	store := NewMemoryAPIKeyStore()
	store.AddKey("ci", "k-valid", "reader")
	store.Add(&APIKeyInfo{KeyHash: HashAPIKey("k-old"), Principal: "old", ExpiresAt: time.Now().Add(-time.Hour)})

	a := NewAPIKeyAuthenticator("", store)

	tests := []struct {
		name          string
		key           string
		wantAuth      bool
		wantErr       error
		wantPrincipal string
	}{
		{name: "valid", key: "k-valid", wantAuth: true, wantPrincipal: "ci"},
		{name: "valid with spaces", key: "  k-valid ", wantAuth: true, wantPrincipal: "ci"},
		{name: "unknown", key: "k-nope", wantErr: ErrInvalidCredentials},
		{name: "expired", key: "k-old", wantErr: ErrTokenExpired},
		{name: "missing", key: "", wantErr: ErrMissingCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &AuthRequest{Headers: headers(DefaultAPIKeyHeader, tt.key)}
			result, err := a.Authenticate(context.Background(), req)
			if err != nil {
				t.Fatalf("Authenticate() error = %v", err)
			}
			if result.Authenticated != tt.wantAuth {
				t.Fatalf("Authenticated = %v, want %v (error %v)", result.Authenticated, tt.wantAuth, result.Error)
			}
			if tt.wantAuth {
				if result.Identity.Principal != tt.wantPrincipal {
					t.Errorf("Principal = %q, want %q", result.Identity.Principal, tt.wantPrincipal)
				}
				if result.Identity.Method != AuthMethodAPIKey {
					t.Errorf("Method = %v, want %v", result.Identity.Method, AuthMethodAPIKey)
				}
				return
			}
			if !errors.Is(result.Error, tt.wantErr) {
				t.Errorf("Error = %v, want %v", result.Error, tt.wantErr)
			}
		})
	}
}

func TestAPIKeyAuthenticator_CustomHeader(t *testing.T) {
	store := NewMemoryAPIKeyStore()
	store.AddKey("ci", "k")
	a := NewAPIKeyAuthenticator("X-Tracker-Key", store)

	if a.Supports(context.Background(), &AuthRequest{Headers: headers(DefaultAPIKeyHeader, "k")}) {
		t.Error("Supports() = true for the default header, want false")
	}
	if !a.Supports(context.Background(), &AuthRequest{Headers: headers("X-Tracker-Key", "k")}) {
		t.Error("Supports() = false for the configured header")
	}
}

type failingStore struct{}

func (failingStore) Lookup(context.Context, string) (*APIKeyInfo, error) {
	return nil, errors.New("store down")
}

func TestAPIKeyAuthenticator_StoreError(t *testing.T) {
	a := NewAPIKeyAuthenticator("", failingStore{})
	if _, err := a.Authenticate(context.Background(), &AuthRequest{Headers: headers(DefaultAPIKeyHeader, "k")}); err == nil {
		t.Error("expected store error")
	}
}

func TestMemoryAPIKeyStore_Remove(t *testing.T) {
	store := NewMemoryAPIKeyStore()
	store.AddKey("ci", "k")
	store.Remove(HashAPIKey("k"))

	info, err := store.Lookup(context.Background(), HashAPIKey("k"))
	if err != nil || info != nil {
		t.Errorf("Lookup() = %v, %v, want nil, nil", info, err)
	}
}
