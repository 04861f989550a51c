package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nao1215/egocrawl/internal/config"
	"github.com/nao1215/egocrawl/internal/frontier"
	"github.com/nao1215/egocrawl/internal/model"
	"github.com/nao1215/egocrawl/internal/store"
)

// NewFrontierCmd creates the frontier command.
func NewFrontierCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "frontier <seeds.csv> <profile>",
		Short: "Print the ranked frontier of a visited profile",
		Long: `Frontier prints the profiles the next crawl would visit after profile:
its connections ranked by the weight table, bounded by --limit, without
those already visited.

Every seed store that holds a visit of profile is listed. Nothing is
fetched and no store is created or modified.

Examples:
  egocrawl frontier seeds.csv https://www.facebook.com/alice
  egocrawl frontier --site instagram -w weights.csv seeds.csv @alice`,
		Args: cobra.ExactArgs(2),
		RunE: runFrontierCmd,
	}

	addGraphFlags(cmd)

	return cmd
}

// runFrontierCmd executes the frontier command.
func runFrontierCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	profile, err := cfg.SiteValue().Normalize(args[1])
	if err != nil {
		return fmt.Errorf("invalid profile %q: %w", args[1], err)
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

	return printFrontiers(cmd.Context(), cmd.OutOrStdout(), cfg, seeds, selector, profile)
}

// printFrontiers prints the frontier of profile in every seed store that
// visited it. It fails when no store did.
func printFrontiers(ctx context.Context, out io.Writer, cfg *config.Config, seeds []model.ProfileID, selector *frontier.Selector, profile model.ProfileID) error {
	found := 0
	for _, seed := range seeds {
		gs, err := store.Open(ctx, cfg.OutputDir, seed, store.Options{Driver: cfg.DriverValue()})
		if errors.Is(err, store.ErrStoreNotFound) {
			continue
		}
		if err != nil {
			return err
		}

		res, err := selector.SelectDetailed(ctx, gs, profile)
		_ = gs.Close()
		if errors.Is(err, frontier.ErrNotVisited) {
			continue
		}
		if err != nil {
			return fmt.Errorf("seed %s: %w", seed, err)
		}

		found++
		order := "lexicographic"
		if res.Ranked {
			order = "ranked"
		}
		fmt.Fprintf(out, "# seed %s (%s, %d candidate(s), %d pending)\n",
			seed, order, res.Candidates, len(res.Profiles))
		for _, p := range res.Profiles {
			fmt.Fprintln(out, p)
		}
	}

	if found == 0 {
		return fmt.Errorf("%w in any seed store: %s", frontier.ErrNotVisited, profile)
	}
	return nil
}
