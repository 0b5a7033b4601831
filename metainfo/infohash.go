package metainfo

import (
	"crypto/sha1"
	"encoding/base32"
	"encoding/hex"
	"fmt"
	"strings"
)

// InfoHash is the SHA-1 identifier of a torrent's info dictionary.
type InfoHash [sha1.Size]byte

// String returns the lowercase hex form of the hash.
func (h InfoHash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether the hash is unset.
func (h InfoHash) IsZero() bool {
	return h == InfoHash{}
}

// MarshalText implements encoding.TextMarshaler.
func (h InfoHash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *InfoHash) UnmarshalText(text []byte) error {
	parsed, err := ParseInfoHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// ParseInfoHash parses a 40-character hex or 32-character base32 info hash.
func ParseInfoHash(s string) (InfoHash, error) {
	var h InfoHash

	switch len(s) {
	case hex.EncodedLen(sha1.Size):
		if _, err := hex.Decode(h[:], []byte(s)); err != nil {
			return InfoHash{}, fmt.Errorf("%w: %v", ErrInvalidInfoHash, err)
		}
	case base32.StdEncoding.EncodedLen(sha1.Size):
		raw, err := base32.StdEncoding.DecodeString(strings.ToUpper(s))
		if err != nil {
			return InfoHash{}, fmt.Errorf("%w: %v", ErrInvalidInfoHash, err)
		}
		copy(h[:], raw)
	default:
		return InfoHash{}, fmt.Errorf("%w: unexpected length %d", ErrInvalidInfoHash, len(s))
	}

	return h, nil
}
