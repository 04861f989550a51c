package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/egocrawl/internal/frontier"
	"github.com/nao1215/egocrawl/internal/model"
	"github.com/nao1215/egocrawl/internal/report"
	"github.com/nao1215/egocrawl/internal/store"
)

// seedGraph writes alice's store: alice lists Bob (n1) and Ann (n2), and n1
// has been visited. It returns the store directory.
func seedGraph(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	ctx := context.Background()

	gs, err := store.Open(ctx, dir, alice, store.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer gs.Close()

	neighbors := []model.Neighbor{{ID: n1, Name: "Bob"}, {ID: n2, Name: "Ann"}}
	if err := gs.CommitVisit(ctx, model.Visit{Profile: alice, NeighborCount: 2}, neighbors); err != nil {
		t.Fatalf("failed to commit alice: %v", err)
	}
	if err := gs.CommitVisit(ctx, model.Visit{Profile: n1, NeighborCount: model.UnknownCount}, nil); err != nil {
		t.Fatalf("failed to commit n1: %v", err)
	}
	return dir
}

// runRoot executes the root command with args and returns its stdout.
func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestFrontierCmd(t *testing.T) {
	t.Parallel()

	dir := seedGraph(t)
	seeds := writeSeeds(t, string(alice), "bruno")

	t.Run("lexicographic without weights", func(t *testing.T) {
		t.Parallel()

		out, err := runRoot(t, "frontier", "-d", dir, seeds, "alice")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := "# seed " + string(alice) + " (lexicographic, 2 candidate(s), 1 pending)\n" + string(n2) + "\n"
		if out != want {
			t.Errorf("expected %q, got %q", want, out)
		}
	})

	t.Run("ranked with weights", func(t *testing.T) {
		t.Parallel()

		weights := filepath.Join(t.TempDir(), "weights.csv")
		if err := os.WriteFile(weights, []byte("alter,n_interactions\nAnn,7\n"), 0600); err != nil {
			t.Fatalf("failed to write weights: %v", err)
		}

		out, err := runRoot(t, "frontier", "-d", dir, "-w", weights, seeds, string(alice))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "(ranked, 1 candidate(s), 1 pending)") {
			t.Errorf("expected a ranked frontier, got %q", out)
		}
	})

	t.Run("profile never visited", func(t *testing.T) {
		t.Parallel()

		_, err := runRoot(t, "frontier", "-d", dir, seeds, string(n2))
		if !errors.Is(err, frontier.ErrNotVisited) {
			t.Errorf("expected ErrNotVisited, got %v", err)
		}
		if exitCode(err) != exitError {
			t.Errorf("expected exit status %d, got %d", exitError, exitCode(err))
		}
	})

	t.Run("profile of another site", func(t *testing.T) {
		t.Parallel()

		if _, err := runRoot(t, "frontier", "-d", dir, seeds, "https://example.com/alice"); err == nil {
			t.Error("expected an error")
		}
	})

	// The missing store of bruno must not be created by reading.
	if store.Exists(dir, bruno, store.DriverSQLite) {
		t.Error("frontier created a store")
	}
}

func TestReportCmd(t *testing.T) {
	t.Parallel()

	dir := seedGraph(t)
	seeds := writeSeeds(t, string(alice), "bruno")

	t.Run("text", func(t *testing.T) {
		t.Parallel()

		out, err := runRoot(t, "report", "-d", dir, seeds)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"EGOCRAWL REPORT", string(alice), string(bruno), "not started"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		out, err := runRoot(t, "report", "-j", "-d", dir, seeds)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got report.JSONReport
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, out)
		}
		want := report.Totals{Seeds: 2, Visited: 2, Edges: 2, Pending: 1}
		if got.Totals != want {
			t.Errorf("expected totals %+v, got %+v", want, got.Totals)
		}
	})

	t.Run("markdown to file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nested", "progress.md")
		out, err := runRoot(t, "report", "-m", "-o", path, "-d", dir, seeds)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out != "" {
			t.Errorf("expected nothing on stdout, got %q", out)
		}

		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		if !strings.Contains(string(content), "# egocrawl Report") {
			t.Errorf("unexpected markdown:\n%s", content)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("failed to stat report: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("expected mode 0600, got %o", perm)
		}
	})

	t.Run("conflicting formats", func(t *testing.T) {
		t.Parallel()

		if _, err := runRoot(t, "report", "-j", "-m", "-d", dir, seeds); err == nil {
			t.Error("expected an error")
		}
	})
}
