package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func newTestComposite(t *testing.T) *CompositeAuthenticator {
	t.Helper()
	store := NewMemoryAPIKeyStore()
	store.AddKey("ci", "k-valid")
	return NewCompositeAuthenticator(
		newTestJWT(),
		nil,
		NewAPIKeyAuthenticator("", store),
	)
}

func TestCompositeAuthenticator(t *testing.T) {
	c := newTestComposite(t)
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (nil skipped)", c.Len())
	}

	token := signToken(t, jwt.SigningMethodHS256, testKey, validClaims())

	tests := []struct {
		name       string
		headers    []string
		wantAuth   bool
		wantMethod string
		wantErr    error
	}{
		{name: "jwt", headers: []string{"Authorization", "Bearer " + token}, wantAuth: true, wantMethod: "jwt"},
		{name: "api key", headers: []string{DefaultAPIKeyHeader, "k-valid"}, wantAuth: true, wantMethod: "api_key"},
		{name: "bad jwt good key", headers: []string{"Authorization", "Bearer junk", DefaultAPIKeyHeader, "k-valid"}, wantAuth: true, wantMethod: "api_key"},
		{name: "bad key", headers: []string{DefaultAPIKeyHeader, "nope"}, wantErr: ErrInvalidCredentials},
		{name: "nothing", wantErr: ErrMissingCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := c.Authenticate(context.Background(), &AuthRequest{Headers: headers(tt.headers...)})
			if err != nil {
				t.Fatalf("Authenticate() error = %v", err)
			}
			if result.Authenticated != tt.wantAuth {
				t.Fatalf("Authenticated = %v, want %v (error %v)", result.Authenticated, tt.wantAuth, result.Error)
			}
			if tt.wantAuth && result.Method != tt.wantMethod {
				t.Errorf("Method = %q, want %q", result.Method, tt.wantMethod)
			}
			if !tt.wantAuth && !errors.Is(result.Error, tt.wantErr) {
				t.Errorf("Error = %v, want %v", result.Error, tt.wantErr)
			}
		})
	}
}

func TestCompositeAuthenticator_PropagatesInternalErrors(t *testing.T) {
	boom := errors.New("boom")
	c := NewCompositeAuthenticator(NewAuthenticatorFunc("broken",
		func(context.Context, *AuthRequest) bool { return true },
		func(context.Context, *AuthRequest) (*AuthResult, error) { return nil, boom },
	))

	if _, err := c.Authenticate(context.Background(), &AuthRequest{}); !errors.Is(err, boom) {
		t.Errorf("Authenticate() error = %v, want boom", err)
	}
}
