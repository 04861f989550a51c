package crawler

import (
	"context"
	"errors"
	"fmt"

	"github.com/nao1215/egocrawl/internal/model"
)

// Fetcher retrieves the connections of a profile.
//
// Implementations apply their own timeouts. Returning an empty FetchResult is
// a successful visit with zero visible connections; failing is reported with
// an error, preferably a *FetchError.
type Fetcher interface {
	Fetch(ctx context.Context, profile model.ProfileID) (model.FetchResult, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, profile model.ProfileID) (model.FetchResult, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, profile model.ProfileID) (model.FetchResult, error) {
	return f(ctx, profile)
}

// FailureKind classifies a fetch failure.
type FailureKind int

const (
	// FailureSoft affects one profile only. The profile is left unvisited
	// and the run continues with the next one.
	FailureSoft FailureKind = iota

	// FailureSystemic means the session can no longer be trusted (detected,
	// crashed, rate limited). The run stops and the pass is retried.
	FailureSystemic
)

// String returns a human-readable name of the failure kind.
func (k FailureKind) String() string {
	switch k {
	case FailureSoft:
		return "soft"
	case FailureSystemic:
		return "systemic"
	default:
		return fmt.Sprintf("FailureKind(%d)", int(k))
	}
}

// FetchError is returned by fetchers when a profile could not be retrieved.
type FetchError struct {
	// Kind tells the orchestrator how to react.
	Kind FailureKind

	// Profile is the profile being fetched.
	Profile model.ProfileID

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("%s fetch failure for %s: %v", e.Kind, e.Profile, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// SoftFailure wraps err as a soft failure for profile.
func SoftFailure(profile model.ProfileID, err error) error {
	return &FetchError{Kind: FailureSoft, Profile: profile, Err: err}
}

// SystemicFailure wraps err as a systemic failure for profile.
func SystemicFailure(profile model.ProfileID, err error) error {
	return &FetchError{Kind: FailureSystemic, Profile: profile, Err: err}
}

// IsSystemic reports whether err contains a systemic FetchError.
// Errors that are not FetchErrors are not systemic.
func IsSystemic(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == FailureSystemic
}
