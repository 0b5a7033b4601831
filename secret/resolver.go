package secret

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const refPrefix = "secretref:"

var inlineRefPattern = regexp.MustCompile(`secretref:([^:\s]+):(\S+)`)

// Resolver expands environment variables and secret references in
// configuration values.
//
// Contract:
// - Concurrency: safe for concurrent use once providers are registered.
// - Errors: a missing variable, unknown provider or failed lookup is an error;
// with strict set, so is an empty secret.
type Resolver struct {
	providers map[string]Provider
	strict    bool
}

// NewResolver creates a resolver over providers.
func NewResolver(strict bool, providers ...Provider) *Resolver {
	r := &Resolver{providers: make(map[string]Provider), strict: strict}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register adds a provider, replacing any with the same name.
func (r *Resolver) Register(p Provider) {
	if p == nil {
		return
	}
	r.providers[p.Name()] = p
}

// ResolveValue expands value. A nil Resolver only expands environment
// variables.
func (r *Resolver) ResolveValue(ctx context.Context, value string) (string, error) {
	expanded, err := ExpandEnvStrict(value)
	if err != nil || r == nil {
		return expanded, err
	}

	if provider, ref, ok := ParseSecretRef(expanded); ok {
		return r.lookup(ctx, provider, ref)
	}

	var out strings.Builder
	last := 0
	for _, m := range inlineRefPattern.FindAllStringSubmatchIndex(expanded, -1) {
		secret, err := r.lookup(ctx, expanded[m[2]:m[3]], expanded[m[4]:m[5]])
		if err != nil {
			return "", err
		}
		out.WriteString(expanded[last:m[0]])
		out.WriteString(secret)
		last = m[1]
	}
	out.WriteString(expanded[last:])
	return out.String(), nil
}

// ResolveSlice resolves each value in values.
func (r *Resolver) ResolveSlice(ctx context.Context, values []string) ([]string, error) {
	if values == nil {
		return nil, nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		resolved, err := r.ResolveValue(ctx, v)
		if err != nil {
			return nil, fmt.Errorf("resolve [%d]: %w", i, err)
		}
		out[i] = resolved
	}
	return out, nil
}

// Close closes every provider and returns the joined errors.
func (r *Resolver) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	for _, p := range r.providers {
		errs = append(errs, p.Close())
	}
	return errors.Join(errs...)
}

// ParseSecretRef splits a whole-value reference secretref:<provider>:<ref>.
// Values containing whitespace are not whole-value references.
func ParseSecretRef(value string) (provider, ref string, ok bool) {
	rest, found := strings.CutPrefix(value, refPrefix)
	if !found {
		return "", "", false
	}
	provider, ref, found = strings.Cut(rest, ":")
	if !found || provider == "" || ref == "" || strings.ContainsAny(rest, " \t\r\n") {
		return "", "", false
	}
	return provider, ref, true
}

func (r *Resolver) lookup(ctx context.Context, name, ref string) (string, error) {
	p, ok := r.providers[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	v, err := p.Resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	if r.strict && v == "" {
		return "", fmt.Errorf("%w: %s:%s", ErrEmptySecret, name, ref)
	}
	return v, nil
}
