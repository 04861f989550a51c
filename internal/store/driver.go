package store

import (
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver
)

// Driver names a storage backend.
type Driver string

const (
	// DriverSQLite stores the graph in a SQLite file (default).
	DriverSQLite Driver = "sqlite"

	// DriverDuckDB stores the graph in a DuckDB file. Only available in cgo builds.
	DriverDuckDB Driver = "duckdb"
)

// backend describes how to open and initialize one database engine.
type backend struct {
	// sqlDriver is the database/sql driver name.
	sqlDriver string

	// dsn builds the connection string for a store file.
	dsn func(path string, create bool) string

	// pragmas run right after opening, before the schema.
	pragmas []string

	// supportsWAL reports whether EnableWAL has any effect.
	supportsWAL bool

	// indexes are created together with the schema.
	indexes []string
}

// backends holds every backend compiled into this binary.
// The DuckDB backend registers itself from a cgo-only file.
var backends = map[Driver]backend{
	DriverSQLite: {
		sqlDriver: "sqlite",
		dsn: func(path string, create bool) string {
			// modernc.org/sqlite: mode=rw refuses to create a missing file.
			if create {
				return path + "?mode=rwc"
			}
			return path + "?mode=rw"
		},
		pragmas:     []string{"PRAGMA busy_timeout=5000"},
		supportsWAL: true,
		indexes: []string{
			"CREATE INDEX IF NOT EXISTS idx_friendships_profile ON friendships(profile)",
			"CREATE INDEX IF NOT EXISTS idx_profile_doms_profile ON profile_doms(profile)",
		},
	},
}

// ParseDriver parses a driver name such as "sqlite" or "duckdb".
func ParseDriver(name string) (Driver, error) {
	d := Driver(strings.ToLower(strings.TrimSpace(name)))
	switch d {
	case DriverSQLite, DriverDuckDB:
		return d, nil
	case "":
		return DriverSQLite, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDriver, name)
	}
}

// String returns the driver name.
func (d Driver) String() string {
	return string(d)
}

// Available reports whether the driver is compiled into this binary.
func (d Driver) Available() bool {
	_, ok := backends[d]
	return ok
}

// Ext returns the file extension used by stores of this driver.
func (d Driver) Ext() string {
	if d == DriverDuckDB {
		return ".duckdb"
	}
	return ".db"
}

// lookupBackend returns the backend for d.
func lookupBackend(d Driver) (backend, error) {
	if d == "" {
		d = DriverSQLite
	}
	if _, err := ParseDriver(string(d)); err != nil {
		return backend{}, err
	}
	b, ok := backends[d]
	if !ok {
		return backend{}, fmt.Errorf("%w: %s", ErrDriverUnavailable, d)
	}
	return b, nil
}
