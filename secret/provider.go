package secret

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Provider resolves secrets by reference string.
//
// Implementations must be safe for concurrent use and must not log secret values.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, ref string) (string, error)
	Close() error
}

// EnvProvider resolves a reference as an environment variable name, with an
// optional prefix prepended.
type EnvProvider struct {
	prefix string
}

// NewEnvProvider creates an env provider. Recognized cfg key: "prefix".
func NewEnvProvider(cfg map[string]any) (Provider, error) {
	prefix, err := stringOption(cfg, "prefix")
	if err != nil {
		return nil, err
	}
	return &EnvProvider{prefix: prefix}, nil
}

// Name returns "env".
func (p *EnvProvider) Name() string { return "env" }

// Resolve returns the value of the variable named prefix+ref.
func (p *EnvProvider) Resolve(_ context.Context, ref string) (string, error) {
	v, ok := os.LookupEnv(p.prefix + ref)
	if !ok {
		return "", fmt.Errorf("%w: env %s", ErrNotFound, p.prefix+ref)
	}
	return v, nil
}

// Close is a no-op.
func (p *EnvProvider) Close() error { return nil }

// FileProvider resolves a reference as a file path. Relative paths are
// taken from an optional base directory.
type FileProvider struct {
	dir string
}

// NewFileProvider creates a file provider. Recognized cfg key: "dir".
func NewFileProvider(cfg map[string]any) (Provider, error) {
	dir, err := stringOption(cfg, "dir")
	if err != nil {
		return nil, err
	}
	return &FileProvider{dir: dir}, nil
}

// Name returns "file".
func (p *FileProvider) Name() string { return "file" }

// Resolve reads the file, trimming trailing newlines.
func (p *FileProvider) Resolve(ctx context.Context, ref string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := ref
	if p.dir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(p.dir, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: file %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("secret: read %s: %w", path, err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// Close is a no-op.
func (p *FileProvider) Close() error { return nil }

func stringOption(cfg map[string]any, key string) (string, error) {
	v, ok := cfg[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("secret: option %q must be a string, got %T", key, v)
	}
	return s, nil
}
