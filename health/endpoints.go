package health

import (
	"regexp"
	"strings"
)

// BuildTrackers returns the trackers to query: configured ones first, then
// announced ones, each trimmed, with blacklisted and duplicate addresses
// removed. Order of first occurrence is kept. An empty result is
// ErrNoTrackers.
func BuildTrackers(announce, configured []string, blacklist []*regexp.Regexp) ([]string, error) {
	seen := make(map[string]struct{}, len(configured)+len(announce))
	out := make([]string, 0, len(configured)+len(announce))

	add := func(list []string) {
		for _, t := range list {
			t = strings.TrimSpace(t)
			if t == "" || blacklisted(t, blacklist) {
				continue
			}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	add(configured)
	add(announce)

	if len(out) == 0 {
		return nil, ErrNoTrackers
	}
	return out, nil
}

func blacklisted(tracker string, blacklist []*regexp.Regexp) bool {
	for _, re := range blacklist {
		if re.MatchString(tracker) {
			return true
		}
	}
	return false
}

// CompileBlacklist compiles blacklist patterns. A pattern that is not a valid
// regular expression matches as a literal substring. Blank patterns are
// skipped.
func CompileBlacklist(patterns []string) []*regexp.Regexp {
	var out []*regexp.Regexp
	for _, p := range patterns {
		if strings.TrimSpace(p) == "" {
			continue
		}
		re, err := regexp.Compile(p)
		if err != nil {
			re = regexp.MustCompile(regexp.QuoteMeta(p))
		}
		out = append(out, re)
	}
	return out
}
