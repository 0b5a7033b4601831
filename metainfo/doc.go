// Package metainfo resolves torrent identifiers into a Descriptor: the info
// hash that every tracker is queried with, plus the trackers the identifier
// itself announces to.
//
// Three source forms are understood:
//
//   - Magnet URIs (magnet:?xt=urn:btih:<hash>&tr=<tracker>...)
//   - Bare info hashes, 40 hex characters or 32 base32 characters
//   - Bencoded .torrent content
//
// # Basic Usage
//
//	r := metainfo.NewResolver()
//	desc, err := r.Resolve(ctx, "magnet:?xt=urn:btih:...")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(desc.InfoHash, desc.Announce)
//
// Magnet and .torrent decoding is delegated to
// github.com/anacrolix/torrent/metainfo; this package narrows the result to
// what a scrape needs and wraps failures in its own sentinel errors.
package metainfo
