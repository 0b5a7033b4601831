package health

import "errors"

// Fatal check errors. Per-tracker failures never surface as errors; they are
// reported as Outcomes inside the Report.
var (
	// ErrMissingIdentifier indicates an empty source.
	ErrMissingIdentifier = errors.New("health: missing identifier")

	// ErrInvalidIdentifier indicates the source could not be resolved. The
	// resolver's error is wrapped alongside it.
	ErrInvalidIdentifier = errors.New("health: invalid identifier")

	// ErrNoTrackers indicates no tracker was left to query after merging,
	// filtering and deduplication.
	ErrNoTrackers = errors.New("health: no trackers found")
)

// MessageTimedOut is the Outcome error of a tracker that did not answer in time.
const MessageTimedOut = "Timed out"
