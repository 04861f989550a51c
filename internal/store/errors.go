package store

import "errors"

var (
	// ErrStoreNotFound is returned when opening a store that does not exist
	// without CreateIfNotExists.
	ErrStoreNotFound = errors.New("store not found")

	// ErrUnknownDriver is returned for a driver name that is not supported.
	ErrUnknownDriver = errors.New("unknown store driver")

	// ErrDriverUnavailable is returned when the driver is not compiled into
	// this binary (DuckDB requires cgo).
	ErrDriverUnavailable = errors.New("store driver not available in this build")
)
