package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/egocrawl/internal/crawler"
	"github.com/nao1215/egocrawl/internal/frontier"
	"github.com/nao1215/egocrawl/internal/model"
	"github.com/nao1215/egocrawl/internal/store"
)

// Pass runs the orchestrator for every seed of a crawl, each against its own
// store.
//
// Design decision: Seeds run sequentially by default because one browser
// session behaves like one person browsing. A concurrency above one bounds an
// errgroup worker pool keyed by seed; each seed still owns its store and is
// crawled strictly in order, so stores are never shared between goroutines.
type Pass struct {
	// seeds are visited in this order.
	seeds []model.ProfileID

	// dir holds the per-seed stores.
	dir string

	// storeOpts are used to open every store.
	storeOpts store.Options

	// selector computes frontiers; its weight table is shared read-only.
	selector *frontier.Selector

	// concurrency is the maximum number of seeds crawled at once.
	concurrency int

	// logger is used for pass-level logging.
	logger *slog.Logger

	// observer receives crawl events of every seed.
	observer crawler.Observer
}

// PassOption configures a Pass.
type PassOption func(*Pass)

// WithPassLogger sets the logger of the pass and its orchestrators.
func WithPassLogger(logger *slog.Logger) PassOption {
	return func(p *Pass) {
		p.logger = logger
	}
}

// WithConcurrency sets the maximum number of seeds crawled at once.
// Default is 1.
func WithConcurrency(n int) PassOption {
	return func(p *Pass) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithStoreOptions sets the options every seed store is opened with.
func WithStoreOptions(opts store.Options) PassOption {
	return func(p *Pass) {
		p.storeOpts = opts
	}
}

// WithObserver sets the receiver of crawl events.
func WithObserver(o crawler.Observer) PassOption {
	return func(p *Pass) {
		p.observer = o
	}
}

// NewPass creates a Pass over seeds whose stores live in dir.
// A nil selector ranks nothing and uses frontier.DefaultLimit.
func NewPass(seeds []model.ProfileID, dir string, selector *frontier.Selector, opts ...PassOption) *Pass {
	if selector == nil {
		selector = frontier.NewSelector(nil)
	}

	p := &Pass{
		seeds:       seeds,
		dir:         dir,
		storeOpts:   store.DefaultOptions(),
		selector:    selector,
		concurrency: 1,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// PassResult collects the seed results of one pass, in seed order.
// A seed that was never started has a nil entry.
type PassResult struct {
	Seeds []*crawler.SeedResult
}

// Visited sums the visit records written by the pass.
func (r *PassResult) Visited() int {
	total := 0
	for _, s := range r.Seeds {
		if s != nil {
			total += s.Visited
		}
	}
	return total
}

// SoftFailures sums the profiles skipped after soft failures.
func (r *PassResult) SoftFailures() int {
	total := 0
	for _, s := range r.Seeds {
		if s != nil {
			total += s.SoftFailures
		}
	}
	return total
}

// Run crawls every seed with fetcher.
//
// The first systemic failure or store error cancels the seeds that are still
// running and is returned together with the results collected so far.
func (p *Pass) Run(ctx context.Context, fetcher crawler.Fetcher) (*PassResult, error) {
	p.logger.Info("starting pass",
		"seeds", len(p.seeds),
		"concurrency", p.concurrency,
	)

	startTime := time.Now()
	result := &PassResult{Seeds: make([]*crawler.SeedResult, len(p.seeds))}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, seed := range p.seeds {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			p.logger.Info("crawling seed",
				"seed", seed,
				"index", i+1,
				"total", len(p.seeds),
			)

			res, err := p.runSeed(gctx, fetcher, seed)

			mu.Lock()
			result.Seeds[i] = res
			mu.Unlock()

			if err != nil {
				return fmt.Errorf("seed %s: %w", seed, err)
			}
			return nil
		})
	}

	err := g.Wait()

	p.logger.Info("pass finished",
		"visited", result.Visited(),
		"soft_failures", result.SoftFailures(),
		"elapsed", time.Since(startTime),
		"error", err,
	)

	return result, err
}

func (p *Pass) runSeed(ctx context.Context, fetcher crawler.Fetcher, seed model.ProfileID) (*crawler.SeedResult, error) {
	gs, err := store.Open(ctx, p.dir, seed, p.storeOpts)
	if err != nil {
		return nil, err
	}
	defer gs.Close()

	opts := []crawler.Option{crawler.WithLogger(p.logger)}
	if p.observer != nil {
		opts = append(opts, crawler.WithObserver(p.observer))
	}

	return crawler.NewOrchestrator(fetcher, gs, p.selector, opts...).Run(ctx, seed)
}
