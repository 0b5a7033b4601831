package secret

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// ProviderFactory creates a Provider from configuration.
type ProviderFactory func(cfg map[string]any) (Provider, error)

// Registry maps provider names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]ProviderFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]ProviderFactory)}
}

// NewBuiltinRegistry creates a registry holding the env and file providers.
func NewBuiltinRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register("env", NewEnvProvider)
	_ = r.Register("file", NewFileProvider)
	return r
}

// Register adds a provider factory.
func (r *Registry) Register(name string, factory ProviderFactory) error {
	name = strings.TrimSpace(name)
	if name == "" || factory == nil {
		return ErrInvalidRegistration
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateProvider, name)
	}
	r.factories[name] = factory
	return nil
}

// Create instantiates a provider by name.
func (r *Registry) Create(name string, cfg map[string]any) (Provider, error) {
	name = strings.TrimSpace(name)

	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return factory(cfg)
}

// NewResolver instantiates every registered provider, passing each the
// entry of cfgs under its name, and returns a resolver over them. Providers
// already created are closed if a later one fails.
func (r *Registry) NewResolver(strict bool, cfgs map[string]map[string]any) (*Resolver, error) {
	res := NewResolver(strict)
	for _, name := range r.List() {
		p, err := r.Create(name, cfgs[name])
		if err != nil {
			return nil, errors.Join(fmt.Errorf("secret: create provider %q: %w", name, err), res.Close())
		}
		res.Register(p)
	}
	return res, nil
}

// List returns registered provider names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
