package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/trackerhealth/config"
	"github.com/jonwraymond/trackerhealth/health"
	"github.com/jonwraymond/trackerhealth/observe"
)

var errChecksFailed = errors.New("one or more checks failed")

type checkOptions struct {
	trackers    []string
	blacklist   []string
	timeout     time.Duration
	fixtures    string
	jsonOut     bool
	concurrency int
	noColor     bool
}

func newCheckCmd(root *rootOptions) *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check <source>...",
		Short: "Check the health of one or more torrents",
		Long: `Check queries every tracker of each source and prints the mean seeder
and leecher counts. A source is a magnet link, a 40-character hex or
32-character base32 info hash, or the path of a .torrent file.

The exit status is 1 when any source could not be checked at all.`,
		Args: cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.concurrency < 1 {
				return fmt.Errorf("--concurrency must be at least 1")
			}
			if opts.timeout <= 0 {
				return fmt.Errorf("--timeout must be positive")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			cfg, err := root.load(ctx, func(c *config.Config) {
				opts.apply(cmd, c)
			})
			if err != nil {
				return err
			}
			return runCheck(ctx, cfg, opts, args, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringArrayVarP(&opts.trackers, "tracker", "t", nil, "Extra tracker to query (repeatable)")
	f.StringArrayVarP(&opts.blacklist, "blacklist", "b", nil, "Skip trackers matching this pattern (repeatable)")
	f.DurationVar(&opts.timeout, "timeout", health.DefaultTimeout, "Per-tracker timeout")
	f.StringVar(&opts.fixtures, "fixtures", "", "Answer trackers from this YAML fixture file")
	f.BoolVar(&opts.jsonOut, "json", false, "Write results as JSON")
	f.IntVar(&opts.concurrency, "concurrency", 4, "Sources checked at once")
	f.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	return cmd
}

// apply layers explicitly set flags over the loaded configuration.
func (o *checkOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	cfg.Check.Trackers = append(cfg.Check.Trackers, o.trackers...)
	cfg.Check.Blacklist = append(cfg.Check.Blacklist, o.blacklist...)
	if cmd.Flags().Changed("timeout") {
		cfg.Check.Timeout = o.timeout
	}
	if cmd.Flags().Changed("fixtures") {
		cfg.Fixtures = o.fixtures
	}
}

func runCheck(ctx context.Context, cfg config.Config, opts *checkOptions, sources []string, out io.Writer) error {
	settings := cfg.ObserveSettings(os.Stderr)
	settings.Metrics.Enabled = false
	obs, err := observe.NewObserver(ctx, settings)
	if err != nil {
		return err
	}
	defer func() { _ = obs.Shutdown(context.WithoutCancel(ctx)) }()

	scraper, err := newScraper(cfg)
	if err != nil {
		return err
	}
	checker := health.NewChecker(scraper, health.WithObserver(obs))
	hcfg := cfg.HealthConfig()

	results := make([]checkResult, len(sources))
	var g errgroup.Group
	g.SetLimit(opts.concurrency)
	for i, src := range sources {
		g.Go(func() error {
			results[i] = checkSource(ctx, checker, src, hcfg)
			return nil
		})
	}
	_ = g.Wait()

	w := newResultWriter(out, opts)
	failed := false
	for _, res := range results {
		if res.Err != nil {
			failed = true
		}
		if err := w.WriteResult(res); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}
	if failed {
		return errChecksFailed
	}
	return nil
}

func checkSource(ctx context.Context, checker *health.Checker, src string, cfg *health.Config) checkResult {
	source, err := readSource(src)
	if err != nil {
		return checkResult{Source: src, Err: err}
	}
	report, err := checker.Check(ctx, source, cfg)
	return checkResult{Source: src, Report: report, Err: err}
}

// readSource returns the content of src when it names a regular file, and
// src itself otherwise.
func readSource(src string) (string, error) {
	info, err := os.Stat(src)
	if err != nil || !info.Mode().IsRegular() {
		return src, nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", src, err)
	}
	return string(data), nil
}

func newResultWriter(out io.Writer, opts *checkOptions) resultWriter {
	if opts.jsonOut {
		return newJSONWriter(out)
	}
	color := false
	if f, ok := out.(*os.File); ok {
		color = useColor(f, opts.noColor)
	}
	return newTextWriter(out, color)
}
