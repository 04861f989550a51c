package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/egocrawl/internal/config"
	"github.com/nao1215/egocrawl/internal/frontier"
	"github.com/nao1215/egocrawl/internal/log"
	"github.com/nao1215/egocrawl/internal/model"
	"github.com/nao1215/egocrawl/internal/pipeline"
	"github.com/nao1215/egocrawl/internal/weight"
)

// addGraphFlags adds the flags every command that reads stores needs.
func addGraphFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("site", "s", config.DefaultSite, "Site to crawl: facebook or instagram")
	cmd.Flags().StringP("out", "d", "", "Directory of the graph stores (default: XDG data directory)")
	cmd.Flags().String("driver", config.DefaultDriver, "Store backend: sqlite or duckdb")
	cmd.Flags().StringP("weights", "w", "", "CSV with alter and n_interactions columns used to rank neighbors")
	cmd.Flags().IntP("limit", "l", config.DefaultLimit, "Ranked neighbors expanded per seed (0: no bound)")
}

// addReportFlags adds the output format flags.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false, "Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "", "Write report to specified file path (creates directories if needed)")
}

// loadConfig builds the configuration of a command: defaults, then the
// config file, then the flags the user set. args[0], when present, is the
// seeds file.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	path, err := stringFlag(cmd, "config")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath = path

	// An explicitly given config file must exist; the default locations
	// are optional.
	if found := config.FindConfigFile(cfg.ConfigFilePath); found != "" {
		file, err := config.LoadConfigFile(found)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", found, err)
		}
		file.Apply(cfg)
	} else if cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	if len(args) > 0 {
		cfg.SeedsFile = args[0]
	}
	return cfg, nil
}

// stringFlag returns the value of a string flag, or "" when the command
// does not define it.
func stringFlag(cmd *cobra.Command, name string) (string, error) {
	if cmd.Flags().Lookup(name) == nil {
		return "", nil
	}
	return cmd.Flags().GetString(name)
}

// applyFlags copies every flag the user set onto cfg. Flags left at their
// default do not override the config file.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	for name, dst := range map[string]*string{
		"site":          &cfg.Site,
		"out":           &cfg.OutputDir,
		"driver":        &cfg.Driver,
		"weights":       &cfg.WeightsFile,
		"storage-state": &cfg.StorageState,
		"remote-url":    &cfg.RemoteURL,
		"proxy":         &cfg.Proxy,
		"user-agent":    &cfg.UserAgent,
		"metrics-addr":  &cfg.MetricsAddr,
		"log-format":    &cfg.LogFormat,
		"output":        &cfg.ReportFile,
	} {
		if !changed(name) {
			continue
		}
		v, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	for name, dst := range map[string]*int{
		"limit":             &cfg.Limit,
		"concurrency":       &cfg.Concurrency,
		"max-scroll-rounds": &cfg.MaxScrollRounds,
	} {
		if !changed(name) {
			continue
		}
		v, err := flags.GetInt(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	for name, dst := range map[string]*bool{
		"verbose":        &cfg.Verbose,
		"headful":        &cfg.Headful,
		"tor":            &cfg.UseTor,
		"keep-snapshots": &cfg.KeepSnapshots,
		"json":           &cfg.JSONReport,
		"markdown":       &cfg.MarkdownReport,
	} {
		if !changed(name) {
			continue
		}
		v, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	for name, dst := range map[string]*time.Duration{
		"tor-timeout":        &cfg.TorStartupTimeout,
		"navigation-timeout": &cfg.NavigationTimeout,
		"scroll-delay":       &cfg.ScrollDelay,
	} {
		if !changed(name) {
			continue
		}
		v, err := flags.GetDuration(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	if changed("retry-schedule") {
		raw, err := flags.GetString("retry-schedule")
		if err != nil {
			return err
		}
		schedule, err := pipeline.ParseSchedule(raw)
		if err != nil {
			return fmt.Errorf("invalid --retry-schedule: %w", err)
		}
		cfg.RetrySchedule = schedule
	}

	return nil
}

// newLogger creates the logger of a command. Credentials are redacted.
func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return log.NewLogger(cmd.ErrOrStderr(), cfg.Verbose, cfg.LogFormat)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// loadSeeds reads and normalizes the seed list of cfg.
func loadSeeds(cfg *config.Config) ([]model.ProfileID, error) {
	f, err := os.Open(cfg.SeedsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open seeds file: %w", err)
	}
	defer f.Close()

	seeds, err := model.LoadSeeds(f, cfg.SiteValue())
	if err != nil {
		return nil, fmt.Errorf("failed to load seeds from %s: %w", cfg.SeedsFile, err)
	}
	if len(seeds) == 0 {
		return nil, fmt.Errorf("%w: %s lists no profiles", config.ErrNoSeeds, cfg.SeedsFile)
	}
	return seeds, nil
}

// newSelector creates the frontier selector of cfg, loading the weight table
// when one is configured.
func newSelector(cfg *config.Config, logger *slog.Logger) (*frontier.Selector, error) {
	opts := []frontier.Option{
		frontier.WithLimit(cfg.Limit),
		frontier.WithLogger(logger),
	}

	if cfg.WeightsFile == "" {
		return frontier.NewSelector(nil, opts...), nil
	}

	table, err := weight.LoadFile(cfg.WeightsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load weights: %w", err)
	}
	logger.Info("weights loaded", "file", cfg.WeightsFile, "names", table.Len())
	return frontier.NewSelector(table, opts...), nil
}
