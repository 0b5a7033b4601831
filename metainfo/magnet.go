package metainfo

import (
	"fmt"

	torrentmeta "github.com/anacrolix/torrent/metainfo"
)

// ParseMagnet parses a magnet URI carrying a BitTorrent v1 info hash.
func ParseMagnet(uri string) (*Descriptor, error) {
	m, err := torrentmeta.ParseMagnetUri(uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMagnet, err)
	}

	h := InfoHash(m.InfoHash)
	if h.IsZero() {
		return nil, fmt.Errorf("%w: no urn:btih exact topic", ErrInvalidMagnet)
	}

	return &Descriptor{
		InfoHash: h,
		Name:     m.DisplayName,
		Announce: uniqueNonEmpty(m.Trackers),
	}, nil
}
