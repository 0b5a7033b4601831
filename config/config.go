package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/trackerhealth/health"
	"github.com/jonwraymond/trackerhealth/observe"
	"github.com/jonwraymond/trackerhealth/resilience"
)

// Version is the build version reported in telemetry. It is set at link time.
var Version = "dev"

// Config is the complete trackerhealth configuration.
type Config struct {
	Check   CheckConfig   `yaml:"check"`
	Server  ServerConfig  `yaml:"server"`
	Auth    AuthConfig    `yaml:"auth"`
	Observe ObserveConfig `yaml:"observe"`

	// Fixtures is a scrape fixture file. When set, trackers are answered
	// from it instead of the network.
	Fixtures string `yaml:"fixtures"`

	// Secrets holds per-provider options, keyed by provider name.
	Secrets map[string]map[string]any `yaml:"secrets"`
}

// CheckConfig holds health check defaults.
type CheckConfig struct {
	Trackers  []string      `yaml:"trackers"`
	Blacklist []string      `yaml:"blacklist"`
	Timeout   time.Duration `yaml:"timeout"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	// RateLimit is checks per second per client; zero disables limiting.
	RateLimit float64 `yaml:"rate_limit"`
	Burst     int     `yaml:"burst"`

	// MaxConcurrent bounds checks in flight; zero disables the bulkhead.
	MaxConcurrent int           `yaml:"max_concurrent"`
	MaxWait       time.Duration `yaml:"max_wait"`

	// RequestGrace is added to the check timeout to bound each request.
	RequestGrace time.Duration `yaml:"request_grace"`

	// CacheTTL is how long reports are cached; zero disables the cache.
	CacheTTL time.Duration `yaml:"cache_ttl"`

	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// AuthConfig configures API authentication.
type AuthConfig struct {
	Enabled        bool      `yaml:"enabled"`
	AllowAnonymous bool      `yaml:"allow_anonymous"`
	JWT            JWTConfig `yaml:"jwt"`
	APIKeyHeader   string    `yaml:"api_key_header"`
	APIKeys        []APIKey  `yaml:"api_keys"`

	// AdminRole is required to invalidate cached reports. Empty admits any
	// authenticated caller.
	AdminRole string `yaml:"admin_role"`
}

// JWTConfig configures HMAC bearer tokens. An empty Secret disables JWT.
type JWTConfig struct {
	Secret     string        `yaml:"secret"`
	Issuer     string        `yaml:"issuer"`
	Audience   string        `yaml:"audience"`
	RolesClaim string        `yaml:"roles_claim"`
	Leeway     time.Duration `yaml:"leeway"`
}

// APIKey is a named static API key.
type APIKey struct {
	Name  string   `yaml:"name"`
	Key   string   `yaml:"key"`
	Roles []string `yaml:"roles"`
}

// ObserveConfig configures telemetry.
type ObserveConfig struct {
	ServiceName     string  `yaml:"service_name"`
	LogLevel        string  `yaml:"log_level"`
	TracingExporter string  `yaml:"tracing_exporter"`
	SamplePct       float64 `yaml:"sample_pct"`
	MetricsExporter string  `yaml:"metrics_exporter"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Check: CheckConfig{Timeout: health.DefaultTimeout},
		Auth:  AuthConfig{AdminRole: "admin"},
		Server: ServerConfig{
			Addr:            "127.0.0.1:8080",
			RateLimit:       5,
			Burst:           10,
			MaxConcurrent:   32,
			RequestGrace:    2 * time.Second,
			CacheTTL:        30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Observe: ObserveConfig{
			ServiceName:     "trackerhealth",
			LogLevel:        "info",
			TracingExporter: "none",
			SamplePct:       1,
			MetricsExporter: "prometheus",
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the process environment, then validates it.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %w", ErrUnreadableConfig, err)
		}
		defer f.Close()

		if err := Decode(f, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
	}

	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode reads YAML into cfg, keeping values the document does not set.
// Unknown keys are an error.
func Decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks the configuration for values no component accepts.
func (c Config) Validate() error {
	switch {
	case c.Check.Timeout < 0:
		return ErrInvalidTimeout
	case c.Server.Addr == "":
		return ErrMissingAddr
	case c.Server.RateLimit < 0:
		return ErrInvalidRate
	case c.Server.Burst < 0:
		return ErrInvalidBurst
	case c.Server.MaxConcurrent < 0:
		return ErrInvalidBulkhead
	case c.Server.CacheTTL < 0:
		return ErrInvalidCacheTTL
	}

	if c.Auth.Enabled {
		if c.Auth.JWT.Secret == "" && len(c.Auth.APIKeys) == 0 {
			return ErrNoAuthMethod
		}
		for i, k := range c.Auth.APIKeys {
			if k.Name == "" || k.Key == "" {
				return fmt.Errorf("%w: api_keys[%d]", ErrInvalidAPIKey, i)
			}
		}
	}

	obs := c.ObserveSettings(nil)
	return obs.Validate()
}

// HealthConfig returns the per-check configuration.
func (c Config) HealthConfig() *health.Config {
	return &health.Config{
		Trackers:  c.Check.Trackers,
		Blacklist: c.Check.Blacklist,
		Timeout:   c.Check.Timeout,
	}
}

// ObserveSettings returns the telemetry configuration. Log lines and stdout
// exporter output go to out, or stderr when out is nil.
func (c Config) ObserveSettings(out io.Writer) observe.Config {
	o := c.Observe
	return observe.Config{
		ServiceName: o.ServiceName,
		Version:     Version,
		Tracing: observe.TracingConfig{
			Enabled:   o.TracingExporter != "" && o.TracingExporter != "none",
			Exporter:  o.TracingExporter,
			SamplePct: o.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  o.MetricsExporter != "" && o.MetricsExporter != "none",
			Exporter: o.MetricsExporter,
		},
		Logging: observe.LoggingConfig{Enabled: true, Level: o.LogLevel},
		Output:  out,
	}
}

// RateLimiter returns the rate limiter configuration, or false when rate
// limiting is disabled.
func (s ServerConfig) RateLimiter() (resilience.RateLimiterConfig, bool) {
	return resilience.RateLimiterConfig{Rate: s.RateLimit, Burst: s.Burst}, s.RateLimit > 0
}

// Bulkhead returns the bulkhead configuration, or false when it is disabled.
func (s ServerConfig) Bulkhead() (resilience.BulkheadConfig, bool) {
	return resilience.BulkheadConfig{MaxConcurrent: s.MaxConcurrent, MaxWait: s.MaxWait}, s.MaxConcurrent > 0
}

// Timeout returns the request budget configuration.
func (s ServerConfig) Timeout() resilience.TimeoutConfig {
	return resilience.TimeoutConfig{Grace: s.RequestGrace}
}
