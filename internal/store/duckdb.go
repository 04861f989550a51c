//go:build cgo

package store

import (
	_ "github.com/marcboeker/go-duckdb" // DuckDB driver
)

func init() {
	backends[DriverDuckDB] = backend{
		sqlDriver: "duckdb",
		dsn: func(path string, _ bool) string {
			// DuckDB creates missing files on open; Open checks existence
			// itself when creation is not allowed.
			return path
		},
	}
}
