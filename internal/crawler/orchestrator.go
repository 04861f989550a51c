package crawler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/egocrawl/internal/frontier"
	"github.com/nao1215/egocrawl/internal/model"
)

// State is the progress of one seed's run.
type State int

const (
	// StateUnstarted means the seed has no visit record yet.
	StateUnstarted State = iota

	// StateSeedVisited means the seed has a visit record and its frontier
	// has not been computed.
	StateSeedVisited

	// StateExpanding means the frontier is being visited.
	StateExpanding

	// StateDone means every frontier entry was processed.
	StateDone
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnstarted:
		return "unstarted"
	case StateSeedVisited:
		return "seed_visited"
	case StateExpanding:
		return "expanding"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// GraphStore is the store an orchestrator reads and writes.
// *store.GraphStore implements it.
type GraphStore interface {
	frontier.EdgeSource

	// CommitVisit writes the visit record and edges of profile atomically.
	CommitVisit(ctx context.Context, visit model.Visit, neighbors []model.Neighbor) error
}

// Observer receives crawl events. It is used for metrics.
type Observer interface {
	// Visited is called after a visit record was committed.
	Visited(seed, profile model.ProfileID, neighbors int)

	// SoftFailed is called when a profile was skipped after a soft failure.
	SoftFailed(seed, profile model.ProfileID)

	// FrontierSelected is called once per run with the frontier size.
	FrontierSelected(seed model.ProfileID, size int)
}

type nopObserver struct{}

func (nopObserver) Visited(model.ProfileID, model.ProfileID, int) {}
func (nopObserver) SoftFailed(model.ProfileID, model.ProfileID)   {}
func (nopObserver) FrontierSelected(model.ProfileID, int)         {}

// SeedResult summarizes one run.
type SeedResult struct {
	// Seed is the seed profile of the run.
	Seed model.ProfileID

	// State is where the run stopped.
	State State

	// Visited is the number of visit records written by this run.
	Visited int

	// SoftFailures is the number of profiles skipped after a soft failure.
	SoftFailures int

	// Skipped is the number of frontier entries skipped because they were
	// the seed itself or already visited.
	Skipped int

	// Frontier is the size of the computed frontier.
	Frontier int
}

// Orchestrator visits a seed and its frontier.
//
// Design decision: We keep the fetcher, the store and the selector on the
// Orchestrator value instead of in package variables. A run is scoped to one
// seed, so everything it touches is released with it and two seeds can run
// side by side without sharing state.
type Orchestrator struct {
	// fetcher retrieves connections.
	fetcher Fetcher

	// store is the graph store of the seed.
	store GraphStore

	// selector computes the frontier.
	selector *frontier.Selector

	// logger is used for progress and soft failure logging.
	logger *slog.Logger

	// observer receives crawl events.
	observer Observer
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithObserver sets the crawl event observer.
func WithObserver(observer Observer) Option {
	return func(o *Orchestrator) {
		o.observer = observer
	}
}

// NewOrchestrator creates an Orchestrator for one seed's store.
// A nil selector uses frontier.NewSelector(nil).
func NewOrchestrator(fetcher Fetcher, store GraphStore, selector *frontier.Selector, opts ...Option) *Orchestrator {
	if selector == nil {
		selector = frontier.NewSelector(nil)
	}

	o := &Orchestrator{
		fetcher:  fetcher,
		store:    store,
		selector: selector,
		logger:   slog.Default(),
		observer: nopObserver{},
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Run visits seed if needed, then every profile of its frontier.
//
// Soft fetch failures are logged and counted. If the seed itself fails softly
// the run ends in StateUnstarted without error. Systemic failures, store
// errors and context cancellation stop the run and are returned together with
// the partial result.
//
// Cancellation is only observed between profiles: a visit in progress is
// always finished and committed first.
func (o *Orchestrator) Run(ctx context.Context, seed model.ProfileID) (*SeedResult, error) {
	res := &SeedResult{Seed: seed, State: StateUnstarted}
	logger := o.logger.With("seed", seed)

	if err := ctx.Err(); err != nil {
		return res, err
	}

	seedVisited, err := o.store.IsVisited(ctx, seed)
	if err != nil {
		return res, fmt.Errorf("failed to check seed visit: %w", err)
	}

	if !seedVisited {
		ok, err := o.visit(ctx, seed, seed, res)
		if err != nil {
			return res, err
		}
		if !ok {
			logger.Warn("seed could not be fetched, leaving it for a later pass")
			return res, nil
		}
	} else {
		logger.Debug("seed already visited, resuming expansion")
	}
	res.State = StateSeedVisited

	if err := ctx.Err(); err != nil {
		return res, err
	}

	next, err := o.selector.Select(ctx, o.store, seed)
	if err != nil {
		return res, fmt.Errorf("failed to select frontier: %w", err)
	}
	res.Frontier = len(next)
	res.State = StateExpanding
	o.observer.FrontierSelected(seed, len(next))
	logger.Info("expanding seed", "frontier", len(next))

	for i, profile := range next {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if profile == seed {
			res.Skipped++
			continue
		}

		// The frontier is computed once, so re-check right before visiting.
		done, err := o.store.IsVisited(ctx, profile)
		if err != nil {
			return res, fmt.Errorf("failed to check visit of %s: %w", profile, err)
		}
		if done {
			res.Skipped++
			continue
		}

		logger.Debug("visiting profile", "profile", profile, "position", i+1, "of", len(next))
		if _, err := o.visit(ctx, seed, profile, res); err != nil {
			return res, err
		}
	}

	res.State = StateDone
	logger.Info("seed done",
		"visited", res.Visited,
		"soft_failures", res.SoftFailures,
		"skipped", res.Skipped)

	return res, nil
}

// visit fetches profile and commits the result. It returns false after a
// soft failure and an error for systemic or store failures.
func (o *Orchestrator) visit(ctx context.Context, seed, profile model.ProfileID, res *SeedResult) (bool, error) {
	// Finish the visit even if a shutdown starts meanwhile.
	visitCtx := context.WithoutCancel(ctx)

	result, err := o.fetcher.Fetch(visitCtx, profile)
	if err != nil {
		if IsSystemic(err) {
			return false, fmt.Errorf("failed to fetch %s: %w", profile, err)
		}
		res.SoftFailures++
		o.observer.SoftFailed(seed, profile)
		o.logger.Warn("skipping profile after fetch failure",
			"seed", seed,
			"profile", profile,
			"error", err)
		return false, nil
	}

	if err := o.store.CommitVisit(visitCtx, result.Visit(profile), result.Neighbors); err != nil {
		return false, fmt.Errorf("failed to store visit of %s: %w", profile, err)
	}

	res.Visited++
	o.observer.Visited(seed, profile, len(result.Neighbors))
	return true, nil
}
