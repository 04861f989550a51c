package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/egocrawl/internal/config"
	"github.com/nao1215/egocrawl/internal/model"
	"github.com/nao1215/egocrawl/internal/report"
)

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <seeds.csv>",
		Short: "Summarize the graph stores of a seed list",
		Long: `Report reads the store of every seed without modifying it and prints
how many profiles were visited, how many edges were stored, how many
profiles hid their connections and how many frontier profiles are still
pending.

Examples:
  egocrawl report seeds.csv
  egocrawl report --markdown -o progress.md seeds.csv
  egocrawl report --json seeds.csv | jq .totals`,
		Args: cobra.MaximumNArgs(1),
		RunE: runReportCmd,
	}

	addGraphFlags(cmd)
	addReportFlags(cmd)

	return cmd
}

// runReportCmd executes the report command.
func runReportCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newLogger(cmd, cfg)
	seeds, err := loadSeeds(cfg)
	if err != nil {
		return err
	}
	selector, err := newSelector(cfg, logger)
	if err != nil {
		return err
	}

	builder := report.NewBuilder(cfg.SiteValue(), cfg.OutputDir,
		report.WithDriver(cfg.DriverValue()),
		report.WithSelector(selector),
		report.WithLogger(logger),
	)
	r, err := builder.Build(cmd.Context(), seeds)
	if err != nil {
		return err
	}

	return outputReport(cfg, r, cmd.OutOrStdout())
}

// outputReport writes r in the configured format to the report file or,
// without one, to stdout.
func outputReport(cfg *config.Config, r *model.CrawlReport, stdout io.Writer) error {
	output := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports list profile URLs, so only the owner may read them.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	format := report.FormatText
	switch {
	case cfg.JSONReport:
		format = report.FormatJSON
	case cfg.MarkdownReport:
		format = report.FormatMarkdown
	}

	_, err := report.NewWriter(output, format, getVersion()).Write(r)
	return err
}
