package secret

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// dollarEscape stands in for "$$" while expanding.
const dollarEscape = "\x00TRACKERHEALTH_DOLLAR\x00"

// ExpandEnvStrict expands $VAR and ${VAR} in s. A ${VAR} that is not set is
// an error wrapping ErrMissingEnv; a bare $VAR that is not set expands to
// nothing. $$ yields a literal $.
func ExpandEnvStrict(s string) (string, error) {
	s = strings.ReplaceAll(s, "$$", dollarEscape)

	var missing []string
	for _, match := range envVarPattern.FindAllStringSubmatch(s, -1) {
		if _, ok := os.LookupEnv(match[1]); !ok && !slices.Contains(missing, match[1]) {
			missing = append(missing, match[1])
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return "", fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(missing, ", "))
	}

	return strings.ReplaceAll(os.ExpandEnv(s), dollarEscape, "$"), nil
}
