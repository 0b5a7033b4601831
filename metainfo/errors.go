package metainfo

import "errors"

// Sentinel errors for identifier resolution.
var (
	// ErrEmptySource indicates the source was empty.
	ErrEmptySource = errors.New("metainfo: empty source")

	// ErrUnrecognizedSource indicates the source is not a magnet URI,
	// info hash, or bencoded torrent.
	ErrUnrecognizedSource = errors.New("metainfo: unrecognized source")

	// ErrInvalidInfoHash indicates a malformed info hash.
	ErrInvalidInfoHash = errors.New("metainfo: invalid info hash")

	// ErrInvalidMagnet indicates a malformed magnet URI.
	ErrInvalidMagnet = errors.New("metainfo: invalid magnet uri")

	// ErrInvalidTorrent indicates .torrent content that is not valid bencode
	// or does not decode as a torrent.
	ErrInvalidTorrent = errors.New("metainfo: invalid torrent")

	// ErrMissingInfo indicates a torrent without an info dictionary.
	ErrMissingInfo = errors.New("metainfo: missing info dictionary")
)
