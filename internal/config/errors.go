package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate and Config.ValidateCrawl.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoSeeds is returned when no seeds file is configured.
	ErrNoSeeds = errors.New("no seeds specified: provide a seeds CSV with --seeds")

	// ErrNoStorageState is returned when a crawl has no browser session to use.
	ErrNoStorageState = errors.New("no storage state specified: provide a logged-in session with --storage-state")

	// ErrInvalidSite is returned for a site other than facebook or instagram.
	ErrInvalidSite = errors.New("invalid site")

	// ErrInvalidDriver is returned for an unknown storage driver.
	ErrInvalidDriver = errors.New("invalid storage driver")

	// ErrNoOutputDir is returned when the output directory is empty.
	ErrNoOutputDir = errors.New("no output directory specified")

	// ErrInvalidLimit is returned when the frontier limit is negative.
	// Zero is allowed and expands the seed only.
	ErrInvalidLimit = errors.New("invalid limit: must be non-negative")

	// ErrInvalidConcurrency is returned when the concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrEmptyRetrySchedule is returned when the retry schedule has no entries.
	// A pass needs at least one attempt.
	ErrEmptyRetrySchedule = errors.New("retry schedule is empty: at least one attempt is required")

	// ErrInvalidRetrySchedule is returned when a retry wait is negative.
	ErrInvalidRetrySchedule = errors.New("invalid retry schedule: waits must be non-negative")

	// ErrConflictingProxy is returned when both --tor and --proxy are set.
	ErrConflictingProxy = errors.New("conflicting proxy settings: --tor and --proxy cannot be used together")

	// ErrInvalidTimeout is returned when a timeout or delay is negative.
	ErrInvalidTimeout = errors.New("invalid timeout: must be non-negative")

	// ErrInvalidScrollRounds is returned when the scroll round limit is negative.
	ErrInvalidScrollRounds = errors.New("invalid max scroll rounds: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidLogFormat is returned for a log format other than text or json.
	ErrInvalidLogFormat = errors.New("invalid log format: must be text or json")
)
