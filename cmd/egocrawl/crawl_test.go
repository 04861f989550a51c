package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/egocrawl/internal/config"
	"github.com/nao1215/egocrawl/internal/model"
	"github.com/nao1215/egocrawl/internal/pipeline"
	"github.com/nao1215/egocrawl/internal/store"
	"github.com/nao1215/egocrawl/internal/tor"
)

const (
	alice model.ProfileID = "https://www.facebook.com/alice"
	bruno model.ProfileID = "https://www.facebook.com/bruno"
	n1    model.ProfileID = "https://www.facebook.com/n1"
	n2    model.ProfileID = "https://www.facebook.com/n2"
)

// graphSession serves a fixed friend graph.
type graphSession struct {
	graph  map[model.ProfileID][]model.Neighbor
	closed *atomic.Int32
}

func (s graphSession) Fetch(_ context.Context, profile model.ProfileID) (model.FetchResult, error) {
	neighbors := s.graph[profile]
	return model.FetchResult{Neighbors: neighbors, DeclaredCount: len(neighbors)}, nil
}

func (s graphSession) Close() error {
	s.closed.Add(1)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeSeeds writes a seeds CSV and returns its path.
func writeSeeds(t *testing.T, seeds ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "seeds.csv")
	if err := os.WriteFile(path, []byte(strings.Join(seeds, "\n")+"\n"), 0600); err != nil {
		t.Fatalf("failed to write seeds: %v", err)
	}
	return path
}

func testCrawlConfig(t *testing.T, seedsFile string) *config.Config {
	t.Helper()

	cfg := config.NewConfig()
	cfg.SeedsFile = seedsFile
	cfg.StorageState = "state.json"
	cfg.OutputDir = t.TempDir()
	cfg.RetrySchedule = []time.Duration{0, 0}
	return cfg
}

func TestRunCrawl(t *testing.T) {
	t.Parallel()

	cfg := testCrawlConfig(t, writeSeeds(t, string(alice), "bruno"))

	var closed atomic.Int32
	graph := map[model.ProfileID][]model.Neighbor{
		alice: {{ID: n1, Name: "Bob"}, {ID: n2, Name: "Ann"}},
		bruno: {{ID: n1, Name: "Bob"}},
	}
	sessions := func(context.Context) (pipeline.Session, error) {
		return graphSession{graph: graph, closed: &closed}, nil
	}

	var out bytes.Buffer
	if err := runCrawl(context.Background(), cfg, discardLogger(), &out, sessions); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// alice, n1, n2 in alice's store; bruno, n1 in bruno's store.
	if !strings.Contains(out.String(), "Visited 5 profile(s), skipped 0") {
		t.Errorf("unexpected output: %q", out.String())
	}
	if closed.Load() != 1 {
		t.Errorf("expected one session closed, got %d", closed.Load())
	}

	for _, seed := range []model.ProfileID{alice, bruno} {
		if !store.Exists(cfg.OutputDir, seed, store.DriverSQLite) {
			t.Errorf("expected a store for %s", seed)
		}
	}

	// A second crawl finds nothing left to do.
	out.Reset()
	if err := runCrawl(context.Background(), cfg, discardLogger(), &out, sessions); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "Visited 0 profile(s)") {
		t.Errorf("expected the second crawl to resume with nothing to visit: %q", out.String())
	}
}

func TestRunCrawlRetryExhausted(t *testing.T) {
	t.Parallel()

	cfg := testCrawlConfig(t, writeSeeds(t, string(alice)))

	var opened atomic.Int32
	sessions := func(context.Context) (pipeline.Session, error) {
		opened.Add(1)
		return nil, errors.New("chrome not found")
	}

	err := runCrawl(context.Background(), cfg, discardLogger(), io.Discard, sessions)
	if !errors.Is(err, pipeline.ErrRetryExhausted) {
		t.Fatalf("expected ErrRetryExhausted, got %v", err)
	}
	if exitCode(err) != exitRetryExhausted {
		t.Errorf("expected exit status %d, got %d", exitRetryExhausted, exitCode(err))
	}
	if opened.Load() != 2 {
		t.Errorf("expected one session per scheduled attempt, got %d", opened.Load())
	}
}

func TestRunCrawlServesMetrics(t *testing.T) {
	t.Parallel()

	cfg := testCrawlConfig(t, writeSeeds(t, string(alice)))
	cfg.MetricsAddr = "127.0.0.1:0"

	var closed atomic.Int32
	sessions := func(context.Context) (pipeline.Session, error) {
		return graphSession{closed: &closed}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out bytes.Buffer
	if err := runCrawl(ctx, cfg, discardLogger(), &out, sessions); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "Metrics: http://127.0.0.1:") {
		t.Errorf("expected the metrics address in the output: %q", out.String())
	}
}

func TestRunCrawlErrors(t *testing.T) {
	t.Parallel()

	never := func(context.Context) (pipeline.Session, error) {
		t.Error("no session should be opened")
		return nil, errors.New("unexpected")
	}

	t.Run("missing seeds file", func(t *testing.T) {
		t.Parallel()

		cfg := testCrawlConfig(t, filepath.Join(t.TempDir(), "missing.csv"))
		if err := runCrawl(context.Background(), cfg, discardLogger(), io.Discard, never); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("empty seeds file", func(t *testing.T) {
		t.Parallel()

		cfg := testCrawlConfig(t, writeSeeds(t, ""))
		err := runCrawl(context.Background(), cfg, discardLogger(), io.Discard, never)
		if !errors.Is(err, config.ErrNoSeeds) {
			t.Errorf("expected ErrNoSeeds, got %v", err)
		}
	})

	t.Run("missing weights file", func(t *testing.T) {
		t.Parallel()

		cfg := testCrawlConfig(t, writeSeeds(t, string(alice)))
		cfg.WeightsFile = filepath.Join(t.TempDir(), "missing.csv")
		if err := runCrawl(context.Background(), cfg, discardLogger(), io.Discard, never); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestCrawlCmdValidates(t *testing.T) {
	t.Parallel()

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"crawl", writeSeeds(t, string(alice))})

	err := root.Execute()
	if !errors.Is(err, config.ErrNoStorageState) {
		t.Errorf("expected ErrNoStorageState, got %v", err)
	}
	if exitCode(err) != exitError {
		t.Errorf("expected exit status %d, got %d", exitError, exitCode(err))
	}
}

func TestBrowserConfig(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Site = "instagram"
	cfg.StorageState = "state.json"
	cfg.KeepSnapshots = true
	cfg.MaxScrollRounds = 80

	bc := browserConfig(cfg, "socks5://127.0.0.1:9050", discardLogger())
	if bc.Site != model.SiteInstagram || bc.StorageState != "state.json" || bc.Proxy != "socks5://127.0.0.1:9050" {
		t.Errorf("unexpected browser config: %+v", bc)
	}
	if !bc.KeepSnapshots || bc.MaxScrollRounds != 80 || bc.ScrollDelay != config.DefaultScrollDelay {
		t.Errorf("unexpected browser pacing: %+v", bc)
	}
}

func TestSiteTarget(t *testing.T) {
	t.Parallel()

	if got := siteTarget(model.SiteFacebook); got != "www.facebook.com:443" {
		t.Errorf("unexpected target %q", got)
	}
	if got := siteTarget(model.SiteInstagram); got != "www.instagram.com:443" {
		t.Errorf("unexpected target %q", got)
	}
	if got := siteTarget(model.Site("myspace")); got != "" {
		t.Errorf("expected no target for an unknown site, got %q", got)
	}
}

func TestSetupProxy(t *testing.T) {
	t.Parallel()

	t.Run("no proxy", func(t *testing.T) {
		t.Parallel()

		proxyURL, stop, err := setupProxy(context.Background(), config.NewConfig(), discardLogger(), io.Discard)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer stop()
		if proxyURL != "" {
			t.Errorf("expected no proxy, got %q", proxyURL)
		}
	})

	t.Run("proxy that is down", func(t *testing.T) {
		t.Parallel()

		listener, err := net.Listen("tcp", "127.0.0.1:0") //nolint:noctx // test code
		if err != nil {
			t.Fatalf("failed to reserve port: %v", err)
		}
		addr := listener.Addr().String()
		listener.Close()

		cfg := config.NewConfig()
		cfg.Proxy = addr
		_, stop, err := setupProxy(context.Background(), cfg, discardLogger(), io.Discard)
		defer stop()
		if !errors.Is(err, tor.ErrProxyCannotConnect) {
			t.Errorf("expected ErrProxyCannotConnect, got %v", err)
		}
	})
}
