package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/nao1215/egocrawl/internal/frontier"
	"github.com/nao1215/egocrawl/internal/model"
	"github.com/nao1215/egocrawl/internal/store"
)

// Builder collects a CrawlReport from the stores of an output directory.
type Builder struct {
	site     model.Site
	dir      string
	driver   store.Driver
	selector *frontier.Selector
	logger   *slog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithDriver selects the store backend. Default: SQLite.
func WithDriver(d store.Driver) BuilderOption {
	return func(b *Builder) {
		b.driver = d
	}
}

// WithSelector sets the selector used to count pending profiles. It should
// be configured like the crawl's selector, or the counts will not match
// what the next pass visits.
func WithSelector(s *frontier.Selector) BuilderOption {
	return func(b *Builder) {
		if s != nil {
			b.selector = s
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

// NewBuilder creates a Builder for the stores of site in dir.
func NewBuilder(site model.Site, dir string, opts ...BuilderOption) *Builder {
	b := &Builder{
		site:     site,
		dir:      dir,
		driver:   store.DriverSQLite,
		selector: frontier.NewSelector(nil),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build summarizes the store of every seed, in seed order.
//
// A seed without a store is reported as not visited. A store that cannot be
// read is reported with its error so one broken file does not hide the
// others. Only a cancelled ctx fails the whole build.
func (b *Builder) Build(ctx context.Context, seeds []model.ProfileID) (*model.CrawlReport, error) {
	report := model.NewCrawlReport(b.site, b.dir)

	for _, seed := range seeds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		summary, err := b.summarize(ctx, seed)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			b.logger.Warn("failed to read seed store", "seed", seed, "error", err)
			summary.Error = err.Error()
		}
		report.Seeds = append(report.Seeds, summary)
	}

	return report, nil
}

func (b *Builder) summarize(ctx context.Context, seed model.ProfileID) (model.SeedSummary, error) {
	path := store.Path(b.dir, seed, b.driver)
	summary := model.SeedSummary{
		Seed:  seed,
		Store: filepath.Base(path),
	}

	gs, err := store.Open(ctx, b.dir, seed, store.Options{Driver: b.driver})
	if err != nil {
		if errors.Is(err, store.ErrStoreNotFound) {
			return summary, nil
		}
		return summary, err
	}
	defer gs.Close()

	stats, err := gs.Stats(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to read stats: %w", err)
	}
	summary.Visited = stats.Visits
	summary.Edges = stats.Edges
	summary.HiddenConnections = stats.HiddenVisits

	visited, err := gs.IsVisited(ctx, seed)
	if err != nil {
		return summary, fmt.Errorf("failed to check seed visit: %w", err)
	}
	summary.SeedVisited = visited
	if !visited {
		return summary, nil
	}

	pending, err := b.selector.Select(ctx, gs, seed)
	if err != nil {
		return summary, fmt.Errorf("failed to select frontier: %w", err)
	}
	summary.Pending = len(pending)

	return summary, nil
}
