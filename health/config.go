package health

import (
	"regexp"
	"strings"
	"time"
)

// DefaultTimeout is the per-tracker timeout used when none is configured.
const DefaultTimeout = 1000 * time.Millisecond

// Config tunes one health check. A nil *Config means all defaults.
type Config struct {
	// Trackers are queried in addition to those the source announces.
	// Blank entries are ignored.
	Trackers []string

	// Blacklist holds patterns; a tracker matching any is never queried.
	// Each is compiled as a regular expression, or matched literally when
	// it is not a valid one. Blank patterns are ignored.
	Blacklist []string

	// BlacklistPatterns are precompiled blacklist expressions, applied
	// together with Blacklist.
	BlacklistPatterns []*regexp.Regexp

	// Timeout bounds each tracker query. Zero or negative means DefaultTimeout.
	Timeout time.Duration

	// OnOutcome, if set, is called once per tracker as its Outcome arrives,
	// from a single goroutine, before the Report completes.
	OnOutcome func(Outcome)
}

// settings is a Config with defaults applied.
type settings struct {
	trackers  []string
	blacklist []*regexp.Regexp
	timeout   time.Duration
	onOutcome func(Outcome)
}

func (c *Config) settings() settings {
	s := settings{timeout: DefaultTimeout}
	if c == nil {
		return s
	}

	for _, t := range c.Trackers {
		if t = strings.TrimSpace(t); t != "" {
			s.trackers = append(s.trackers, t)
		}
	}

	s.blacklist = CompileBlacklist(c.Blacklist)
	for _, re := range c.BlacklistPatterns {
		if re != nil {
			s.blacklist = append(s.blacklist, re)
		}
	}

	if c.Timeout > 0 {
		s.timeout = c.Timeout
	}
	s.onOutcome = c.OnOutcome
	return s
}
