package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/egocrawl/internal/model"
	"github.com/nao1215/egocrawl/internal/pipeline"
	"github.com/nao1215/egocrawl/internal/store"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "egocrawl"

	// DefaultSite is crawled when no site is configured.
	DefaultSite = string(model.SiteFacebook)

	// DefaultDriver is the storage backend. SQLite needs no cgo.
	DefaultDriver = string(store.DriverSQLite)

	// DefaultLimit is how many neighbors of the seed are expanded per pass.
	DefaultLimit = 50

	// DefaultConcurrency of 1 keeps one browser page per account. Running
	// several seeds at once on one login is the quickest way to get the
	// session challenged.
	DefaultConcurrency = 1

	// DefaultNavigationTimeout bounds a single page load.
	DefaultNavigationTimeout = 60 * time.Second

	// DefaultScrollDelay is waited after every scroll step. Both sites load
	// the next slice of a list lazily, and scrolling faster than they
	// render ends the list early.
	DefaultScrollDelay = 2500 * time.Millisecond

	// DefaultMaxScrollRounds bounds scrolling on a single list.
	DefaultMaxScrollRounds = 250

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon to bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute

	// DefaultLogFormat is the slog handler used for log output.
	DefaultLogFormat = "text"
)

// Config holds all configuration options for egocrawl.
// It is populated from the config file and CLI flags and passed down
// explicitly; nothing reads it from global state.
//
// Design decision: We use a single flat struct instead of nested structs.
// The YAML file groups browser and Tor settings, but by the time the
// values reach the commands they are just a list of knobs.
type Config struct {
	// Site is the social network to crawl: "facebook" or "instagram".
	Site string

	// SeedsFile is the CSV file holding the seed profiles (first column).
	SeedsFile string

	// StorageState is the browser storage-state JSON with the logged-in
	// session. Only the crawl command needs it.
	StorageState string

	// WeightsFile is an optional CSV of profile weights for frontier
	// ranking. Empty means every candidate weighs the same.
	WeightsFile string

	// OutputDir holds one graph store per seed.
	// Defaults to the XDG data directory (~/.local/share/egocrawl on Linux).
	OutputDir string

	// Driver is the storage backend: "sqlite" or "duckdb".
	Driver string

	// Limit is the maximum number of ranked neighbors expanded after each
	// seed. Zero removes the bound.
	Limit int

	// Concurrency is the number of seeds crawled at the same time.
	Concurrency int

	// RetrySchedule lists the wait before each attempt of a pass. Its
	// length is the number of attempts.
	RetrySchedule []time.Duration

	// Headful shows the browser window.
	Headful bool

	// RemoteURL is the DevTools WebSocket URL of an already running Chrome.
	RemoteURL string

	// Proxy is a SOCKS5 proxy in "host:port" form for the browser.
	// Mutually exclusive with UseTor.
	Proxy string

	// UseTor starts an embedded Tor daemon and routes the browser through it.
	UseTor bool

	// TorStartupTimeout bounds the bootstrap of the embedded Tor daemon.
	TorStartupTimeout time.Duration

	// UserAgent overrides the browser user agent when set.
	UserAgent string

	// NavigationTimeout bounds a single page load.
	NavigationTimeout time.Duration

	// ScrollDelay is waited after every scroll step.
	ScrollDelay time.Duration

	// MaxScrollRounds bounds scrolling on a single list.
	MaxScrollRounds int

	// KeepSnapshots stores the sanitized page markup with every visit.
	KeepSnapshots bool

	// MetricsAddr serves Prometheus metrics on this address during a crawl.
	// Empty disables the endpoint.
	MetricsAddr string

	// Verbose enables debug logging.
	Verbose bool

	// LogFormat selects the log handler: "text" or "json".
	LogFormat string

	// JSONReport selects JSON report output.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown report output.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile writes the report to this path instead of stdout.
	ReportFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, FindConfigFile searches the usual locations.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (limit, retry schedule,
// scroll pacing). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Site:              DefaultSite,
		OutputDir:         XDGDataDir(),
		Driver:            DefaultDriver,
		Limit:             DefaultLimit,
		Concurrency:       DefaultConcurrency,
		RetrySchedule:     slices.Clone(pipeline.DefaultSchedule),
		TorStartupTimeout: DefaultTorStartupTimeout,
		NavigationTimeout: DefaultNavigationTimeout,
		ScrollDelay:       DefaultScrollDelay,
		MaxScrollRounds:   DefaultMaxScrollRounds,
		LogFormat:         DefaultLogFormat,
	}
}

// XDGDataDir returns the XDG data directory for egocrawl.
// On Linux: ~/.local/share/egocrawl
// On macOS: ~/Library/Application Support/egocrawl
// On Windows: %LOCALAPPDATA%\egocrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for egocrawl.
// On Linux: ~/.config/egocrawl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for egocrawl.
// On Linux: ~/.cache/egocrawl
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// SiteValue returns the parsed Site. Call Validate first.
func (c *Config) SiteValue() model.Site {
	site, err := model.ParseSite(c.Site)
	if err != nil {
		return model.SiteFacebook
	}
	return site
}

// DriverValue returns the parsed storage driver. Call Validate first.
func (c *Config) DriverValue() store.Driver {
	d, err := store.ParseDriver(c.Driver)
	if err != nil {
		return store.DriverSQLite
	}
	return d
}

// Validate checks the settings every command shares.
// It returns the first problem found.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
func (c *Config) Validate() error {
	if c.SeedsFile == "" {
		return ErrNoSeeds
	}

	if _, err := model.ParseSite(c.Site); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSite, err)
	}

	if _, err := store.ParseDriver(c.Driver); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDriver, err)
	}

	if c.OutputDir == "" {
		return ErrNoOutputDir
	}

	if c.Limit < 0 {
		return ErrInvalidLimit
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	switch c.LogFormat {
	case "", "text", "json":
	default:
		return ErrInvalidLogFormat
	}

	return nil
}

// ValidateCrawl runs Validate plus the checks that only matter when a
// browser is about to be started.
func (c *Config) ValidateCrawl() error {
	if err := c.Validate(); err != nil {
		return err
	}

	if c.StorageState == "" {
		return ErrNoStorageState
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if len(c.RetrySchedule) == 0 {
		return ErrEmptyRetrySchedule
	}
	for _, d := range c.RetrySchedule {
		if d < 0 {
			return ErrInvalidRetrySchedule
		}
	}

	if c.UseTor && c.Proxy != "" {
		return ErrConflictingProxy
	}

	if c.NavigationTimeout < 0 || c.ScrollDelay < 0 || c.TorStartupTimeout < 0 {
		return ErrInvalidTimeout
	}

	if c.MaxScrollRounds < 0 {
		return ErrInvalidScrollRounds
	}

	return nil
}
