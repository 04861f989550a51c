package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/egocrawl/internal/browser"
	"github.com/nao1215/egocrawl/internal/config"
	"github.com/nao1215/egocrawl/internal/metrics"
	"github.com/nao1215/egocrawl/internal/model"
	"github.com/nao1215/egocrawl/internal/pipeline"
	"github.com/nao1215/egocrawl/internal/store"
	"github.com/nao1215/egocrawl/internal/tor"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [seeds.csv] [storage-state.json]",
		Short: "Crawl the seeds and their highest-ranked neighbors",
		Long: `Crawl visits every seed of the seed list, stores its connections and then
visits the seed's frontier: the not yet visited connections, ranked by the
weight table and bounded by --limit.

The crawl runs as a whole pass over all seeds. When the browser session
fails (a crash, a challenge page, an error payload from the site) the pass
is retried with a fresh browser after the next wait of --retry-schedule.
Each retry resumes from the stores, so no profile is visited twice.

The storage state is a Playwright-style JSON file holding the cookies of a
logged-in session. It is only read.

Examples:
  # Crawl Facebook friend lists
  egocrawl crawl seeds.csv state.json

  # Crawl Instagram following lists, ranked by weights, 100 per seed
  egocrawl crawl --site instagram -w weights.csv -l 100 seeds.csv state.json

  # Route the browser through Tor and expose metrics
  egocrawl crawl --tor --metrics-addr 127.0.0.1:9464 seeds.csv state.json`,
		Args: cobra.RangeArgs(0, 2),
		RunE: runCrawlCmd,
	}

	addGraphFlags(cmd)

	cmd.Flags().String("storage-state", "", "Storage-state JSON of the logged-in session")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency, "Seeds crawled at the same time")
	cmd.Flags().String("retry-schedule", "0s,100s,400s,800s", "Wait before each attempt of the pass")
	cmd.Flags().Bool("keep-snapshots", false, "Store the sanitized page markup of every visit")

	// Browser flags
	cmd.Flags().Bool("headful", false, "Show the browser window")
	cmd.Flags().String("remote-url", "", "DevTools WebSocket URL of a running Chrome")
	cmd.Flags().String("user-agent", "", "Override the browser user agent")
	cmd.Flags().Duration("navigation-timeout", config.DefaultNavigationTimeout, "Timeout of a page load")
	cmd.Flags().Duration("scroll-delay", config.DefaultScrollDelay, "Wait after every scroll step")
	cmd.Flags().Int("max-scroll-rounds", config.DefaultMaxScrollRounds, "Scroll steps per list at most")

	// Proxy flags
	cmd.Flags().String("proxy", "", "SOCKS5 proxy for the browser (host:port)")
	cmd.Flags().Bool("tor", false, "Start an embedded Tor daemon and use it as proxy")
	cmd.Flags().DurationP("tor-timeout", "T", config.DefaultTorStartupTimeout, "Timeout for embedded Tor startup")

	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if len(args) > 1 {
		cfg.StorageState = args[1]
	}

	if err := cfg.ValidateCrawl(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newLogger(cmd, cfg)

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	proxyURL, stop, err := setupProxy(ctx, cfg, logger, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer stop()

	launcher := browser.NewLauncher(browserConfig(cfg, proxyURL, logger))
	sessions := func(ctx context.Context) (pipeline.Session, error) {
		s, err := launcher.Open(ctx)
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	return runCrawl(ctx, cfg, logger, cmd.OutOrStdout(), sessions)
}

// runCrawl runs a whole crawl with sessions from the given factory and
// prints a summary to out.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer, sessions pipeline.SessionFactory) error {
	seeds, err := loadSeeds(cfg)
	if err != nil {
		return err
	}

	selector, err := newSelector(cfg, logger)
	if err != nil {
		return err
	}

	recorder := metrics.NewRecorder()
	if cfg.MetricsAddr != "" {
		addr, err := recorder.Serve(ctx, cfg.MetricsAddr, logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Metrics: http://%s/metrics\n", addr)
	}

	storeOpts := store.DefaultOptions()
	storeOpts.Driver = cfg.DriverValue()

	pass := pipeline.NewPass(seeds, cfg.OutputDir, selector,
		pipeline.WithPassLogger(logger),
		pipeline.WithConcurrency(cfg.Concurrency),
		pipeline.WithStoreOptions(storeOpts),
		pipeline.WithObserver(recorder),
	)

	supervisor := pipeline.NewSupervisor(
		pipeline.WithSchedule(cfg.RetrySchedule),
		pipeline.WithSupervisorLogger(logger),
		pipeline.WithAttemptObserver(recorder),
	)

	job := pipeline.NewJob(pass, sessions,
		pipeline.WithLogger(logger),
		pipeline.WithSupervisor(supervisor),
	)

	logger.Info("starting crawl",
		"site", cfg.Site,
		"seeds", len(seeds),
		"out", cfg.OutputDir,
		"limit", cfg.Limit,
		"attempts", supervisor.Attempts(),
	)

	fmt.Fprintf(out, "Crawling %d seed(s) of %s into %s...\n", len(seeds), cfg.Site, cfg.OutputDir)
	start := time.Now()

	res, err := job.Run(ctx)
	if res != nil {
		fmt.Fprintf(out, "Visited %d profile(s), skipped %d after soft failures.\n",
			res.Visited(), res.SoftFailures())
	}
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	fmt.Fprintf(out, "Crawl completed in %s\n", time.Since(start).Round(time.Second))
	return nil
}

// browserConfig maps the configuration onto the browser settings.
func browserConfig(cfg *config.Config, proxyURL string, logger *slog.Logger) browser.Config {
	return browser.Config{
		Site:              cfg.SiteValue(),
		StorageState:      cfg.StorageState,
		Headful:           cfg.Headful,
		RemoteURL:         cfg.RemoteURL,
		Proxy:             proxyURL,
		UserAgent:         cfg.UserAgent,
		NavigationTimeout: cfg.NavigationTimeout,
		ScrollDelay:       cfg.ScrollDelay,
		MaxScrollRounds:   cfg.MaxScrollRounds,
		KeepSnapshots:     cfg.KeepSnapshots,
		Logger:            logger,
	}
}

// setupProxy prepares the proxy of the browser: an embedded Tor daemon, an
// external SOCKS5 proxy or none. It returns the proxy URL for Chrome and a
// function that releases what was started.
func setupProxy(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) (string, func(), error) {
	noop := func() {}
	target := siteTarget(cfg.SiteValue())

	switch {
	case cfg.UseTor:
		fmt.Fprintln(out, "Starting embedded Tor daemon...")
		fmt.Fprintf(out, "This may take 1-3 minutes while Tor bootstraps and connects to the network.\n\n")

		embedded := tor.NewEmbeddedTor(tor.WithStartupTimeout(cfg.TorStartupTimeout))
		if err := embedded.Start(ctx); err != nil {
			return "", noop, fmt.Errorf("failed to start embedded Tor: %w", err)
		}
		stop := func() {
			logger.Info("stopping embedded Tor daemon")
			if err := embedded.Stop(); err != nil {
				logger.Error("failed to stop embedded Tor", "error", err)
			}
		}

		p, err := embedded.Proxy()
		if err != nil {
			stop()
			return "", noop, err
		}
		if status := p.CheckConnection(ctx, target); status != tor.ProxyStatusOK {
			stop()
			return "", noop, fmt.Errorf("embedded Tor proxy check failed: %w", status.Error())
		}

		logger.Info("embedded Tor daemon started", "socksAddr", p.Address())
		return p.URL(), stop, nil

	case cfg.Proxy != "":
		if err := tor.CheckProxy(ctx, cfg.Proxy, target); err != nil {
			return "", noop, fmt.Errorf("proxy check failed (make sure the proxy is running at %s): %w", cfg.Proxy, err)
		}
		p, err := tor.NewProxy(cfg.Proxy, 0)
		if err != nil {
			return "", noop, err
		}
		logger.Info("proxy connection verified", "address", p.Address())
		return p.URL(), noop, nil

	default:
		return "", noop, nil
	}
}

// siteTarget returns the "host:443" the proxy check dials for site.
func siteTarget(site model.Site) string {
	u, err := url.Parse(site.BaseURL())
	if err != nil || u.Host == "" {
		return ""
	}
	return net.JoinHostPort(u.Hostname(), "443")
}
