package frontier

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/nao1215/egocrawl/internal/model"
)

// DefaultLimit is the number of top-weighted connections expanded per profile.
const DefaultLimit = 50

// EdgeSource is the read side of a graph store.
type EdgeSource interface {
	// IsVisited reports whether profile has a visit record.
	IsVisited(ctx context.Context, profile model.ProfileID) (bool, error)

	// EdgesFrom returns the connections of profile keyed by display name.
	EdgesFrom(ctx context.Context, profile model.ProfileID) (map[string]model.ProfileID, error)

	// Edges returns the raw connections of profile in insertion order.
	Edges(ctx context.Context, profile model.ProfileID) ([]model.Edge, error)

	// VisitedProfiles returns every profile with a visit record.
	VisitedProfiles(ctx context.Context) (map[model.ProfileID]struct{}, error)
}

// Weights ranks display names. *weight.Table implements it.
type Weights interface {
	Weight(name string) (float64, bool)
	Len() int
}

// Result is a selected frontier with the way it was produced.
type Result struct {
	// Profiles are the next profiles to visit, in visiting order.
	Profiles []model.ProfileID

	// Ranked is true when the weight table was used. False means the
	// lexicographic fallback produced the frontier.
	Ranked bool

	// Candidates is the number of connections considered before the limit
	// and the visited filter were applied.
	Candidates int
}

// Select returns the not-yet-visited connections of profile, ranked by
// weights and bounded by limit. A limit <= 0 means no bound. Without usable
// weights every unvisited connection is returned and limit is ignored.
//
// The result is deterministic for a given store content and weight table.
// It returns ErrNotVisited when profile has no visit record.
func Select(ctx context.Context, src EdgeSource, profile model.ProfileID, weights Weights, limit int) ([]model.ProfileID, error) {
	res, err := selectFrontier(ctx, src, profile, weights, limit)
	if err != nil {
		return nil, err
	}
	return res.Profiles, nil
}

// candidate is a connection name eligible for ranking.
type candidate struct {
	name   string
	weight float64
}

func selectFrontier(ctx context.Context, src EdgeSource, profile model.ProfileID, weights Weights, limit int) (Result, error) {
	visited, err := src.IsVisited(ctx, profile)
	if err != nil {
		return Result{}, fmt.Errorf("failed to check visit of %s: %w", profile, err)
	}
	if !visited {
		return Result{}, fmt.Errorf("%w: %s", ErrNotVisited, profile)
	}

	byName, err := src.EdgesFrom(ctx, profile)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load connections of %s: %w", profile, err)
	}
	if len(byName) == 0 {
		return Result{Profiles: []model.ProfileID{}}, nil
	}

	var candidates []candidate
	if weights != nil && weights.Len() > 0 {
		for name := range byName {
			if w, ok := weights.Weight(name); ok {
				candidates = append(candidates, candidate{name: name, weight: w})
			}
		}
	}

	var res Result
	if len(candidates) > 0 {
		res = ranked(byName, candidates, limit)
	} else {
		// No usable weights: fall back to every distinct neighbor of the
		// raw edge list, which also covers names collapsed by EdgesFrom.
		edges, err := src.Edges(ctx, profile)
		if err != nil {
			return Result{}, fmt.Errorf("failed to load connections of %s: %w", profile, err)
		}
		res = lexicographic(edges)
	}

	done, err := src.VisitedProfiles(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load visited profiles: %w", err)
	}
	res.Profiles = slices.DeleteFunc(res.Profiles, func(p model.ProfileID) bool {
		_, ok := done[p]
		return ok
	})

	return res, nil
}

// ranked orders candidates by weight descending then name ascending, keeps
// the top limit and maps them to neighbors, dropping repeated neighbors.
func ranked(byName map[string]model.ProfileID, candidates []candidate, limit int) Result {
	slices.SortFunc(candidates, func(a, b candidate) int {
		if c := cmp.Compare(b.weight, a.weight); c != 0 {
			return c
		}
		return cmp.Compare(a.name, b.name)
	})

	res := Result{Ranked: true, Candidates: len(candidates)}
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	seen := make(map[model.ProfileID]bool, len(candidates))
	res.Profiles = make([]model.ProfileID, 0, len(candidates))
	for _, c := range candidates {
		id := byName[c.name]
		if seen[id] {
			continue
		}
		seen[id] = true
		res.Profiles = append(res.Profiles, id)
	}
	return res
}

// lexicographic returns every distinct neighbor of edges sorted by ID. The
// limit only bounds ranked frontiers: without weights there is no order
// worth cutting at, and a cut would hide the remaining neighbors forever
// once the first ones are visited.
func lexicographic(edges []model.Edge) Result {
	ids := make([]model.ProfileID, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.Neighbor)
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	return Result{Profiles: ids, Candidates: len(ids)}
}

// Selector selects frontiers with a fixed weight table and limit.
// It is safe for concurrent use when its weight table is.
type Selector struct {
	weights Weights
	limit   int
	logger  *slog.Logger
}

// Option configures a Selector.
type Option func(*Selector)

// WithLimit sets the maximum number of ranked connections per profile.
// Values <= 0 disable the bound.
func WithLimit(n int) Option {
	return func(s *Selector) {
		s.limit = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Selector) {
		s.logger = logger
	}
}

// NewSelector creates a Selector. weights may be nil.
func NewSelector(weights Weights, opts ...Option) *Selector {
	s := &Selector{
		weights: weights,
		limit:   DefaultLimit,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Limit returns the configured limit.
func (s *Selector) Limit() int {
	return s.limit
}

// Select returns the frontier of profile in src.
func (s *Selector) Select(ctx context.Context, src EdgeSource, profile model.ProfileID) ([]model.ProfileID, error) {
	res, err := s.SelectDetailed(ctx, src, profile)
	if err != nil {
		return nil, err
	}
	return res.Profiles, nil
}

// SelectDetailed is Select with information about how the frontier was built.
func (s *Selector) SelectDetailed(ctx context.Context, src EdgeSource, profile model.ProfileID) (Result, error) {
	res, err := selectFrontier(ctx, src, profile, s.weights, s.limit)
	if err != nil {
		return Result{}, err
	}

	s.logger.Debug("frontier selected",
		"profile", profile,
		"ranked", res.Ranked,
		"candidates", res.Candidates,
		"pending", len(res.Profiles))

	return res, nil
}
