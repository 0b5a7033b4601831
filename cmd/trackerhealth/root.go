package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/trackerhealth/config"
	"github.com/jonwraymond/trackerhealth/scrape"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:     "trackerhealth",
		Short:   "Estimate torrent swarm health from tracker scrapes",
		Version: config.Version,
		Long: `trackerhealth asks every tracker of a torrent how many seeders and
leechers it knows about, and reports the mean over the trackers that
answered. Sources are magnet links, info hashes or .torrent files.`,
		Example: `  trackerhealth check 'magnet:?xt=urn:btih:...'
  trackerhealth check ubuntu.torrent -t udp://tracker.example:1337 --json
  trackerhealth check --fixtures trackers.yaml c12fe1c06bba254a9dc9f519b335aa7c1367a88a
  trackerhealth serve --config trackerhealth.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	cmd.AddCommand(newCheckCmd(opts), newServeCmd(opts))
	return cmd
}

// load reads the configuration file and environment, applies the shared
// flags and resolves secret references.
func (o *rootOptions) load(ctx context.Context, apply func(*config.Config)) (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if o.logLevel != "" {
		cfg.Observe.LogLevel = o.logLevel
	}
	if apply != nil {
		apply(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	resolver, err := cfg.SecretResolver()
	if err != nil {
		return config.Config{}, err
	}
	defer closeQuietly(resolver)
	if err := cfg.ResolveSecrets(ctx, resolver); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newScraper routes trackers by scheme. Without a fixture file no scheme is
// registered and every tracker fails as unsupported.
func newScraper(cfg config.Config) (*scrape.Registry, error) {
	registry := scrape.NewRegistry()
	if cfg.Fixtures == "" {
		return registry, nil
	}

	fixture, err := scrape.LoadFixture(cfg.Fixtures)
	if err != nil {
		return nil, fmt.Errorf("fixtures: %w", err)
	}
	for _, scheme := range fixture.Schemes() {
		if err := registry.Register(scheme, fixture); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// closeQuietly is used for deferred shutdowns whose errors have no caller.
func closeQuietly(c io.Closer) {
	_ = c.Close()
}
