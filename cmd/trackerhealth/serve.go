package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/jonwraymond/trackerhealth/auth"
	"github.com/jonwraymond/trackerhealth/cache"
	"github.com/jonwraymond/trackerhealth/config"
	"github.com/jonwraymond/trackerhealth/health"
	"github.com/jonwraymond/trackerhealth/observe"
	"github.com/jonwraymond/trackerhealth/resilience"
	"github.com/jonwraymond/trackerhealth/server"
)

var errNoScrapers = errors.New("no tracker scheme has a scraper")

type serveOptions struct {
	addr     string
	fixtures string
}

func newServeCmd(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve health checks over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			cfg, err := root.load(ctx, func(c *config.Config) {
				if opts.addr != "" {
					c.Server.Addr = opts.addr
				}
				if opts.fixtures != "" {
					c.Fixtures = opts.fixtures
				}
			})
			if err != nil {
				return err
			}
			return runServe(ctx, cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.addr, "addr", "", "Listen address (default from config, 127.0.0.1:8080)")
	f.StringVar(&opts.fixtures, "fixtures", "", "Answer trackers from this YAML fixture file")
	return cmd
}

func runServe(ctx context.Context, cfg config.Config) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	settings := cfg.ObserveSettings(os.Stderr)
	settings.Metrics.Registerer = reg
	obs, err := observe.NewObserver(ctx, settings)
	if err != nil {
		return err
	}
	defer func() { _ = obs.Shutdown(context.WithoutCancel(ctx)) }()
	logger := obs.Logger()

	scraper, err := newScraper(cfg)
	if err != nil {
		return err
	}
	if len(scraper.Schemes()) == 0 {
		logger.Warn(ctx, "no scrapers registered; every tracker will fail")
	}

	opts := []server.Option{
		server.WithDefaults(cfg.HealthConfig()),
		server.WithExecutor(newExecutor(cfg.Server)),
		server.WithAllowedOrigins(cfg.Server.AllowedOrigins...),
		server.WithGatherer(reg),
		server.WithLogger(logger),
		server.WithReadiness(func(context.Context) error {
			if len(scraper.Schemes()) == 0 {
				return errNoScrapers
			}
			return nil
		}),
	}

	if ttl := cfg.Server.CacheTTL; ttl > 0 {
		mem := cache.NewMemoryCache()
		rc, err := cache.NewReportCache(mem, nil, cache.Policy{DefaultTTL: ttl, MaxTTL: ttl}, nil)
		if err != nil {
			return err
		}
		go purgeEvery(ctx, mem, ttl)
		opts = append(opts, server.WithReportCache(rc))
	}

	if cfg.Auth.Enabled {
		opts = append(opts,
			server.WithAuth(newAuthenticator(cfg.Auth), auth.MiddlewareConfig{
				AllowAnonymous: cfg.Auth.AllowAnonymous,
				Logger:         logger,
			}),
			server.WithAdminRole(cfg.Auth.AdminRole),
		)
	}

	checker := health.NewChecker(scraper, health.WithObserver(obs))
	srv := server.New(checker, opts...)
	return srv.ListenAndServe(ctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout)
}

func newExecutor(s config.ServerConfig) *resilience.Executor {
	opts := []resilience.ExecutorOption{resilience.WithTimeout(resilience.NewTimeout(s.Timeout()))}
	if rl, ok := s.RateLimiter(); ok {
		opts = append(opts, resilience.WithRateLimiter(resilience.NewRateLimiter(rl)))
	}
	if bh, ok := s.Bulkhead(); ok {
		opts = append(opts, resilience.WithBulkhead(resilience.NewBulkhead(bh)))
	}
	return resilience.NewExecutor(opts...)
}

// newAuthenticator accepts bearer tokens when a JWT secret is configured
// and API keys when any are listed.
func newAuthenticator(a config.AuthConfig) auth.Authenticator {
	var auths []auth.Authenticator
	if a.JWT.Secret != "" {
		auths = append(auths, auth.NewJWTAuthenticator(auth.JWTConfig{
			Issuer:     a.JWT.Issuer,
			Audience:   a.JWT.Audience,
			RolesClaim: a.JWT.RolesClaim,
			Leeway:     a.JWT.Leeway,
		}, auth.NewStaticKeyProvider([]byte(a.JWT.Secret))))
	}
	if len(a.APIKeys) > 0 {
		store := auth.NewMemoryAPIKeyStore()
		for _, k := range a.APIKeys {
			store.AddKey(k.Name, k.Key, k.Roles...)
		}
		auths = append(auths, auth.NewAPIKeyAuthenticator(a.APIKeyHeader, store))
	}
	return auth.NewCompositeAuthenticator(auths...)
}

func purgeEvery(ctx context.Context, c *cache.MemoryCache, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Purge()
		}
	}
}
