package config

import "errors"

// Sentinel errors for configuration.
var (
	ErrInvalidTimeout   = errors.New("config: check timeout must not be negative")
	ErrMissingAddr      = errors.New("config: server addr is required")
	ErrInvalidRate      = errors.New("config: rate limit must not be negative")
	ErrInvalidBurst     = errors.New("config: burst must not be negative")
	ErrInvalidBulkhead  = errors.New("config: max concurrent must not be negative")
	ErrInvalidCacheTTL  = errors.New("config: cache ttl must not be negative")
	ErrNoAuthMethod     = errors.New("config: auth enabled without jwt secret or api keys")
	ErrInvalidAPIKey    = errors.New("config: api key needs a name and a key")
	ErrInvalidEnvValue  = errors.New("config: invalid environment value")
	ErrUnreadableConfig = errors.New("config: cannot read config file")
)
