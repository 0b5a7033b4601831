package metainfo

import (
	"context"
	"strings"
	"unicode"
)

// Resolver turns a source string into a Descriptor.
//
// Contract:
// - Concurrency: safe for concurrent use (stateless).
// - Errors: every failure wraps one of the package sentinel errors.
type Resolver struct{}

// NewResolver creates a new resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve accepts a magnet URI, a bare info hash, or bencoded .torrent content.
func (r *Resolver) Resolve(_ context.Context, source string) (*Descriptor, error) {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return nil, ErrEmptySource
	}

	switch {
	case len(trimmed) > 7 && strings.EqualFold(trimmed[:7], "magnet:"):
		return ParseMagnet(trimmed)

	case looksLikeInfoHash(trimmed):
		h, err := ParseInfoHash(trimmed)
		if err != nil {
			return nil, err
		}
		return &Descriptor{InfoHash: h}, nil

	case trimmed[0] == 'd':
		// Torrent content is binary; only leading whitespace is dropped.
		return ParseTorrent([]byte(strings.TrimLeftFunc(source, unicode.IsSpace)))

	default:
		return nil, ErrUnrecognizedSource
	}
}

func looksLikeInfoHash(s string) bool {
	return len(s) == 40 || len(s) == 32
}
