package config

import (
	"context"
	"fmt"

	"github.com/jonwraymond/trackerhealth/secret"
)

// ResolveSecrets expands environment variables and secret references in
// the fields that may carry credentials: the JWT secret, each API key and
// the configured tracker URLs (private trackers embed a passkey in the
// announce URL). Other fields are left as written.
func (c *Config) ResolveSecrets(ctx context.Context, r *secret.Resolver) error {
	var err error
	if c.Check.Trackers, err = r.ResolveSlice(ctx, c.Check.Trackers); err != nil {
		return fmt.Errorf("config: check.trackers: %w", err)
	}
	if c.Auth.JWT.Secret, err = r.ResolveValue(ctx, c.Auth.JWT.Secret); err != nil {
		return fmt.Errorf("config: auth.jwt.secret: %w", err)
	}
	for i := range c.Auth.APIKeys {
		if c.Auth.APIKeys[i].Key, err = r.ResolveValue(ctx, c.Auth.APIKeys[i].Key); err != nil {
			return fmt.Errorf("config: auth.api_keys[%d] (%s): %w", i, c.Auth.APIKeys[i].Name, err)
		}
	}
	return nil
}

// SecretResolver builds a strict resolver over the built-in providers,
// configured from c.Secrets.
func (c Config) SecretResolver() (*secret.Resolver, error) {
	return secret.NewBuiltinRegistry().NewResolver(true, c.Secrets)
}
