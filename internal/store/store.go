package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nao1215/egocrawl/internal/model"
)

// GraphStore holds the crawl graph of a single seed.
//
// Design decision: We use one store file per seed rather than one shared
// database. Seeds never share edges or visit records, a seed's store can be
// copied or removed on its own, and a pass that fails halfway through one
// seed cannot affect the others.
type GraphStore struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// path is the store file.
	path string

	// seed is the profile the store belongs to.
	seed model.ProfileID

	// driver is the backend in use.
	driver Driver
}

// Options configures GraphStore behavior.
type Options struct {
	// Driver selects the backend. Empty means DriverSQLite.
	Driver Driver

	// CreateIfNotExists creates the store file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging (SQLite only).
	EnableWAL bool
}

// DefaultOptions returns the options used by crawls.
func DefaultOptions() Options {
	return Options{
		Driver:            DriverSQLite,
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Stats summarizes the contents of a store.
type Stats struct {
	// Visits is the number of distinct visited profiles.
	Visits int `json:"visits"`

	// Edges is the number of stored edge rows.
	Edges int `json:"edges"`

	// HiddenVisits is the number of visited profiles whose connection count
	// was not visible.
	HiddenVisits int `json:"hidden_visits"`
}

// Path returns the store file for seed inside dir.
func Path(dir string, seed model.ProfileID, driver Driver) string {
	if driver == "" {
		driver = DriverSQLite
	}
	return filepath.Join(dir, model.StoreName(seed)+driver.Ext())
}

// Exists reports whether a store for seed already exists in dir.
func Exists(dir string, seed model.ProfileID, driver Driver) bool {
	_, err := os.Stat(Path(dir, seed, driver))
	return err == nil
}

// Open opens or creates the store of seed inside dir.
// If CreateIfNotExists is false and the store doesn't exist, ErrStoreNotFound
// is returned and nothing is created.
func Open(ctx context.Context, dir string, seed model.ProfileID, opts Options) (*GraphStore, error) {
	if opts.Driver == "" {
		opts.Driver = DriverSQLite
	}
	b, err := lookupBackend(opts.Driver)
	if err != nil {
		return nil, err
	}

	path := Path(dir, seed, opts.Driver)
	if !opts.CreateIfNotExists {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, path)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check store path: %w", err)
		}
	} else if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open(b.sqlDriver, b.dsn(path, opts.CreateIfNotExists))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	// A store belongs to exactly one orchestrator run and is written
	// sequentially, so a single connection avoids writer contention.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	gs := &GraphStore{
		db:     db,
		path:   path,
		seed:   seed,
		driver: opts.Driver,
	}

	for _, pragma := range b.pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if opts.EnableWAL && b.supportsWAL {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := gs.createTables(ctx, b.indexes); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return gs, nil
}

// Close closes the database connection.
func (gs *GraphStore) Close() error {
	return gs.db.Close()
}

// Path returns the store file.
func (gs *GraphStore) Path() string {
	return gs.path
}

// Seed returns the seed the store belongs to.
func (gs *GraphStore) Seed() model.ProfileID {
	return gs.seed
}

// Driver returns the backend of the store.
func (gs *GraphStore) Driver() Driver {
	return gs.driver
}

// createTables creates the schema if it doesn't exist.
// The column layout matches stores written by earlier crawls.
func (gs *GraphStore) createTables(ctx context.Context, indexes []string) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS friendships (
			profile TEXT,
			friend TEXT,
			name TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS profile_doms (
			profile TEXT,
			n_friends INTEGER,
			dom TEXT
		)`,
	}
	statements = append(statements, indexes...)

	for _, stmt := range statements {
		if _, err := gs.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// RecordVisit appends a visit record. It does not check for an existing one.
func (gs *GraphStore) RecordVisit(ctx context.Context, visit model.Visit) error {
	err := runTx(ctx, gs.db, func(tx *sql.Tx) error {
		return insertVisit(ctx, tx, visit)
	})
	if err != nil {
		return fmt.Errorf("failed to record visit of %s: %w", visit.Profile, err)
	}
	return nil
}

// RecordEdges appends one edge row per neighbor of profile, in one transaction.
func (gs *GraphStore) RecordEdges(ctx context.Context, profile model.ProfileID, neighbors []model.Neighbor) error {
	if len(neighbors) == 0 {
		return nil
	}
	err := runTx(ctx, gs.db, func(tx *sql.Tx) error {
		return insertEdges(ctx, tx, profile, neighbors)
	})
	if err != nil {
		return fmt.Errorf("failed to record edges of %s: %w", profile, err)
	}
	return nil
}

// CommitVisit writes the edges of a visited profile and its visit record in a
// single transaction. Either both are stored or neither is.
func (gs *GraphStore) CommitVisit(ctx context.Context, visit model.Visit, neighbors []model.Neighbor) error {
	err := runTx(ctx, gs.db, func(tx *sql.Tx) error {
		if err := insertEdges(ctx, tx, visit.Profile, neighbors); err != nil {
			return err
		}
		return insertVisit(ctx, tx, visit)
	})
	if err != nil {
		return fmt.Errorf("failed to commit visit of %s: %w", visit.Profile, err)
	}
	return nil
}

func insertVisit(ctx context.Context, tx *sql.Tx, visit model.Visit) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO profile_doms (profile, n_friends, dom) VALUES (?, ?, ?)",
		string(visit.Profile),
		visit.NeighborCount,
		visit.Snapshot,
	)
	return err
}

func insertEdges(ctx context.Context, tx *sql.Tx, profile model.ProfileID, neighbors []model.Neighbor) error {
	if len(neighbors) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO friendships (profile, friend, name) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare edge insert: %w", err)
	}
	defer stmt.Close()

	for _, n := range neighbors {
		if _, err := stmt.ExecContext(ctx, string(profile), string(n.ID), n.Name); err != nil {
			return fmt.Errorf("failed to insert edge to %s: %w", n.ID, err)
		}
	}
	return nil
}

// VisitedProfiles returns the set of profiles that have a visit record.
func (gs *GraphStore) VisitedProfiles(ctx context.Context) (map[model.ProfileID]struct{}, error) {
	rows, err := gs.db.QueryContext(ctx, "SELECT DISTINCT profile FROM profile_doms")
	if err != nil {
		return nil, fmt.Errorf("failed to query visited profiles: %w", err)
	}
	defer rows.Close()

	visited := make(map[model.ProfileID]struct{})
	for rows.Next() {
		var profile sql.NullString
		if err := rows.Scan(&profile); err != nil {
			return nil, fmt.Errorf("failed to scan visited profile: %w", err)
		}
		if profile.Valid {
			visited[model.ProfileID(profile.String)] = struct{}{}
		}
	}

	return visited, rows.Err()
}

// IsVisited reports whether profile has a visit record.
func (gs *GraphStore) IsVisited(ctx context.Context, profile model.ProfileID) (bool, error) {
	var count int
	err := gs.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM profile_doms WHERE profile = ?",
		string(profile),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check visit of %s: %w", profile, err)
	}
	return count > 0, nil
}

// Visit returns the latest visit record of profile, or nil if it was never visited.
func (gs *GraphStore) Visit(ctx context.Context, profile model.ProfileID) (*model.Visit, error) {
	var (
		count sql.NullInt64
		dom   sql.NullString
	)
	err := gs.db.QueryRowContext(ctx,
		"SELECT n_friends, dom FROM profile_doms WHERE profile = ? ORDER BY rowid DESC LIMIT 1",
		string(profile),
	).Scan(&count, &dom)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get visit of %s: %w", profile, err)
	}

	visit := &model.Visit{
		Profile:       profile,
		NeighborCount: model.UnknownCount,
		Snapshot:      dom.String,
	}
	if count.Valid {
		visit.NeighborCount = int(count.Int64)
	}
	return visit, nil
}

// Edges returns every edge row of profile in insertion order, including
// repeated neighbors and repeated names.
func (gs *GraphStore) Edges(ctx context.Context, profile model.ProfileID) ([]model.Edge, error) {
	rows, err := gs.db.QueryContext(ctx,
		"SELECT friend, name FROM friendships WHERE profile = ? ORDER BY rowid",
		string(profile),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges of %s: %w", profile, err)
	}
	defer rows.Close()

	var edges []model.Edge
	for rows.Next() {
		var friend, name sql.NullString
		if err := rows.Scan(&friend, &name); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		if !friend.Valid || friend.String == "" {
			continue
		}
		edges = append(edges, model.Edge{
			Profile:  profile,
			Neighbor: model.ProfileID(friend.String),
			Name:     name.String,
		})
	}

	return edges, rows.Err()
}

// EdgesFrom returns the connections of profile keyed by display name.
// When one name maps to several neighbors the last written row wins; use
// Edges for the uncollapsed list.
func (gs *GraphStore) EdgesFrom(ctx context.Context, profile model.ProfileID) (map[string]model.ProfileID, error) {
	edges, err := gs.Edges(ctx, profile)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]model.ProfileID, len(edges))
	for _, e := range edges {
		byName[e.Name] = e.Neighbor
	}
	return byName, nil
}

// Stats returns visit and edge counts.
func (gs *GraphStore) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	queries := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(DISTINCT profile) FROM profile_doms", &stats.Visits},
		{"SELECT COUNT(*) FROM friendships", &stats.Edges},
		{"SELECT COUNT(DISTINCT profile) FROM profile_doms WHERE n_friends IS NULL OR n_friends < 0", &stats.HiddenVisits},
	}

	for _, q := range queries {
		if err := gs.db.QueryRowContext(ctx, q.query).Scan(q.dest); err != nil {
			return Stats{}, fmt.Errorf("failed to compute store stats: %w", err)
		}
	}
	return stats, nil
}
