package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TRACKERHEALTH_"

// LookupFunc reads an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides cfg from TRACKERHEALTH_* variables. Lists are comma
// separated; durations use time.ParseDuration syntax. Empty values are
// ignored.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	e := envReader{lookup: lookup}

	e.list("TRACKERS", &cfg.Check.Trackers)
	e.list("BLACKLIST", &cfg.Check.Blacklist)
	e.duration("TIMEOUT", &cfg.Check.Timeout)
	e.str("FIXTURES", &cfg.Fixtures)

	e.str("ADDR", &cfg.Server.Addr)
	e.list("ALLOWED_ORIGINS", &cfg.Server.AllowedOrigins)
	e.number("RATE_LIMIT", &cfg.Server.RateLimit)
	e.integer("BURST", &cfg.Server.Burst)
	e.integer("MAX_CONCURRENT", &cfg.Server.MaxConcurrent)
	e.duration("CACHE_TTL", &cfg.Server.CacheTTL)

	e.boolean("AUTH_ENABLED", &cfg.Auth.Enabled)
	e.str("JWT_SECRET", &cfg.Auth.JWT.Secret)
	e.str("JWT_ISSUER", &cfg.Auth.JWT.Issuer)
	e.str("JWT_AUDIENCE", &cfg.Auth.JWT.Audience)
	e.str("ADMIN_ROLE", &cfg.Auth.AdminRole)

	e.str("LOG_LEVEL", &cfg.Observe.LogLevel)
	e.str("TRACING_EXPORTER", &cfg.Observe.TracingExporter)
	e.str("METRICS_EXPORTER", &cfg.Observe.MetricsExporter)

	return e.err
}

// envReader applies overrides, keeping the first parse error.
type envReader struct {
	lookup LookupFunc
	err    error
}

func (e *envReader) get(name string) (string, bool) {
	if e.err != nil {
		return "", false
	}
	v, ok := e.lookup(EnvPrefix + name)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (e *envReader) fail(name, value string, err error) {
	e.err = fmt.Errorf("%w: %s%s=%q: %v", ErrInvalidEnvValue, EnvPrefix, name, value, err)
}

func (e *envReader) str(name string, dst *string) {
	if v, ok := e.get(name); ok {
		*dst = v
	}
}

func (e *envReader) list(name string, dst *[]string) {
	v, ok := e.get(name)
	if !ok {
		return
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*dst = out
}

func (e *envReader) duration(name string, dst *time.Duration) {
	v, ok := e.get(name)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(name, v, err)
		return
	}
	*dst = d
}

func (e *envReader) integer(name string, dst *int) {
	v, ok := e.get(name)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(name, v, err)
		return
	}
	*dst = n
}

func (e *envReader) number(name string, dst *float64) {
	v, ok := e.get(name)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(name, v, err)
		return
	}
	*dst = f
}

func (e *envReader) boolean(name string, dst *bool) {
	v, ok := e.get(name)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(name, v, err)
		return
	}
	*dst = b
}
