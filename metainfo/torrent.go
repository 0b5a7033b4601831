package metainfo

import (
	"bytes"
	"fmt"

	torrentmeta "github.com/anacrolix/torrent/metainfo"
)

// Descriptor is a resolved torrent identifier.
type Descriptor struct {
	// InfoHash identifies the torrent on every tracker.
	InfoHash InfoHash

	// Name is the display name, if the source carried one.
	Name string

	// Announce lists the trackers carried by the source, in source order,
	// without duplicates.
	Announce []string
}

// ParseTorrent decodes bencoded .torrent content.
//
// The info hash is the SHA-1 of the info dictionary exactly as encoded.
// Trackers are taken from announce-list (all tiers, flattened in order)
// followed by announce.
func ParseTorrent(data []byte) (*Descriptor, error) {
	mi, err := torrentmeta.Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTorrent, err)
	}
	if len(mi.InfoBytes) == 0 || mi.InfoBytes[0] != 'd' {
		return nil, ErrMissingInfo
	}

	info, err := mi.UnmarshalInfo()
	if err != nil {
		return nil, fmt.Errorf("%w: info: %v", ErrInvalidTorrent, err)
	}

	var trackers []string
	for _, tier := range mi.AnnounceList {
		trackers = append(trackers, tier...)
	}
	trackers = append(trackers, mi.Announce)

	return &Descriptor{
		InfoHash: InfoHash(mi.HashInfoBytes()),
		Name:     info.Name,
		Announce: uniqueNonEmpty(trackers),
	}, nil
}

func uniqueNonEmpty(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
