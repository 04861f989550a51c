package report

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/nao1215/egocrawl/internal/frontier"
	"github.com/nao1215/egocrawl/internal/model"
	"github.com/nao1215/egocrawl/internal/store"
	"github.com/nao1215/egocrawl/internal/weight"
)

const (
	seedA  model.ProfileID = "https://www.facebook.com/alice"
	seedB  model.ProfileID = "https://www.facebook.com/bruno"
	seedC  model.ProfileID = "https://www.facebook.com/carla"
	friend model.ProfileID = "https://www.facebook.com/n1"
	other  model.ProfileID = "https://www.facebook.com/n2"
)

// seedStore writes a store for seed with visits and edges and closes it.
func seedStore(t *testing.T, dir string, seed model.ProfileID, visits map[model.ProfileID][]model.Neighbor, counts map[model.ProfileID]int) {
	t.Helper()

	ctx := context.Background()
	gs, err := store.Open(ctx, dir, seed, store.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer gs.Close()

	for profile, neighbors := range visits {
		visit := model.Visit{Profile: profile, NeighborCount: counts[profile]}
		if err := gs.CommitVisit(ctx, visit, neighbors); err != nil {
			t.Fatalf("failed to commit visit: %v", err)
		}
	}
}

func TestBuilderBuild(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	// alice: visited, one of two friends visited (hidden count).
	seedStore(t, dir, seedA,
		map[model.ProfileID][]model.Neighbor{
			seedA:  {{ID: friend, Name: "Bob"}, {ID: other, Name: "Ann"}},
			friend: {},
		},
		map[model.ProfileID]int{seedA: 2, friend: model.UnknownCount},
	)
	// bruno: visited, friend list exhausted.
	seedStore(t, dir, seedB,
		map[model.ProfileID][]model.Neighbor{
			seedB:  {{ID: friend, Name: "Bob"}},
			friend: {},
		},
		map[model.ProfileID]int{seedB: 1, friend: 0},
	)
	// carla has no store.

	b := NewBuilder(model.SiteFacebook, dir, WithSelector(frontier.NewSelector(nil)))
	report, err := b.Build(context.Background(), []model.ProfileID{seedA, seedB, seedC})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.Seeds) != 3 {
		t.Fatalf("expected 3 seeds, got %d", len(report.Seeds))
	}

	a := report.Seeds[0]
	if a.Seed != seedA || !a.SeedVisited || a.Visited != 2 || a.Edges != 2 || a.HiddenConnections != 1 || a.Pending != 1 {
		t.Errorf("unexpected summary for alice: %+v", a)
	}
	if a.Store != model.StoreName(seedA)+".db" {
		t.Errorf("unexpected store name %q", a.Store)
	}

	bs := report.Seeds[1]
	if !bs.Done() || bs.Visited != 2 || bs.Edges != 1 {
		t.Errorf("unexpected summary for bruno: %+v", bs)
	}

	c := report.Seeds[2]
	if c.SeedVisited || c.Visited != 0 || c.Error != "" {
		t.Errorf("unexpected summary for carla: %+v", c)
	}
	if store.Exists(dir, seedC, store.DriverSQLite) {
		t.Error("building a report must not create stores")
	}

	if report.CompletedSeeds() != 1 || report.TotalPending() != 1 {
		t.Errorf("unexpected totals: completed=%d pending=%d", report.CompletedSeeds(), report.TotalPending())
	}
}

func TestBuilderLimitBoundsPending(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	seedStore(t, dir, seedA,
		map[model.ProfileID][]model.Neighbor{
			seedA: {{ID: friend, Name: "Bob"}, {ID: other, Name: "Ann"}},
		},
		map[model.ProfileID]int{seedA: 2},
	)

	weights := weight.New(map[string]float64{"Bob": 2, "Ann": 1})
	b := NewBuilder(model.SiteFacebook, dir, WithSelector(frontier.NewSelector(weights, frontier.WithLimit(1))))
	report, err := b.Build(context.Background(), []model.ProfileID{seedA})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Seeds[0].Pending != 1 {
		t.Errorf("expected 1 pending, got %d", report.Seeds[0].Pending)
	}
}

func TestBuilderUnreadableStore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := store.Path(dir, seedA, store.DriverSQLite)
	if err := os.WriteFile(path, []byte("this is not a database"), 0600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	report, err := NewBuilder(model.SiteFacebook, dir).Build(context.Background(), []model.ProfileID{seedA})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Seeds[0].Error == "" {
		t.Error("expected the broken store to be reported")
	}
	if report.Seeds[0].Store != filepath.Base(path) {
		t.Errorf("unexpected store %q", report.Seeds[0].Store)
	}
}

func TestBuilderCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewBuilder(model.SiteFacebook, t.TempDir()).Build(ctx, []model.ProfileID{seedA}); err == nil {
		t.Error("expected an error for a cancelled context")
	}
}
