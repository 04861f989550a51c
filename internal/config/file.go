package config

import "time"

// File is the schema of the YAML configuration file.
//
// Example .egocrawl:
//
//	site: instagram
//	seeds: seeds.csv
//	storage_state: state.json
//	output_dir: ./graphs
//	limit: 100
//	retry_schedule: [0s, 100s, 400s, 800s]
//	browser:
//	  headful: true
//	  scroll_delay: 3s
//	tor:
//	  enabled: true
//	metrics_addr: 127.0.0.1:9464
//
// Zero values mean "not set" and leave the default alone, so a boolean in
// the file can switch a feature on but not off.
type File struct {
	// Site is "facebook" or "instagram".
	Site string `yaml:"site"`

	// Seeds is the seeds CSV path.
	Seeds string `yaml:"seeds"`

	// StorageState is the storage-state JSON path.
	StorageState string `yaml:"storage_state"`

	// Weights is the weights CSV path.
	Weights string `yaml:"weights"`

	// OutputDir holds the graph stores.
	OutputDir string `yaml:"output_dir"`

	// Driver is "sqlite" or "duckdb".
	Driver string `yaml:"driver"`

	// Limit is the frontier size.
	Limit int `yaml:"limit"`

	// Concurrency is the number of seeds crawled at once.
	Concurrency int `yaml:"concurrency"`

	// RetrySchedule lists the wait before each attempt, e.g. [0s, 100s].
	RetrySchedule []time.Duration `yaml:"retry_schedule"`

	// KeepSnapshots stores sanitized markup with every visit.
	KeepSnapshots bool `yaml:"keep_snapshots"`

	// MetricsAddr serves Prometheus metrics during a crawl.
	MetricsAddr string `yaml:"metrics_addr"`

	// LogFormat is "text" or "json".
	LogFormat string `yaml:"log_format"`

	// Browser holds the browser settings.
	Browser BrowserFile `yaml:"browser"`

	// Tor holds the proxy settings.
	Tor TorFile `yaml:"tor"`
}

// BrowserFile is the browser section of the config file.
type BrowserFile struct {
	Headful           bool          `yaml:"headful"`
	RemoteURL         string        `yaml:"remote_url"`
	UserAgent         string        `yaml:"user_agent"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout"`
	ScrollDelay       time.Duration `yaml:"scroll_delay"`
	MaxScrollRounds   int           `yaml:"max_scroll_rounds"`
}

// TorFile is the proxy section of the config file.
type TorFile struct {
	// Enabled starts an embedded Tor daemon.
	Enabled bool `yaml:"enabled"`

	// Proxy is an external SOCKS5 proxy used instead of the embedded daemon.
	Proxy string `yaml:"proxy"`

	// StartupTimeout bounds the bootstrap of the embedded daemon.
	StartupTimeout time.Duration `yaml:"startup_timeout"`
}

// Apply copies every value set in the file onto cfg. A nil File is a no-op.
func (f *File) Apply(cfg *Config) {
	if f == nil || cfg == nil {
		return
	}

	setString(&cfg.Site, f.Site)
	setString(&cfg.SeedsFile, f.Seeds)
	setString(&cfg.StorageState, f.StorageState)
	setString(&cfg.WeightsFile, f.Weights)
	setString(&cfg.OutputDir, f.OutputDir)
	setString(&cfg.Driver, f.Driver)
	setString(&cfg.MetricsAddr, f.MetricsAddr)
	setString(&cfg.LogFormat, f.LogFormat)

	if f.Limit > 0 {
		cfg.Limit = f.Limit
	}
	if f.Concurrency > 0 {
		cfg.Concurrency = f.Concurrency
	}
	if len(f.RetrySchedule) > 0 {
		cfg.RetrySchedule = append([]time.Duration(nil), f.RetrySchedule...)
	}
	if f.KeepSnapshots {
		cfg.KeepSnapshots = true
	}

	if f.Browser.Headful {
		cfg.Headful = true
	}
	setString(&cfg.RemoteURL, f.Browser.RemoteURL)
	setString(&cfg.UserAgent, f.Browser.UserAgent)
	if f.Browser.NavigationTimeout > 0 {
		cfg.NavigationTimeout = f.Browser.NavigationTimeout
	}
	if f.Browser.ScrollDelay > 0 {
		cfg.ScrollDelay = f.Browser.ScrollDelay
	}
	if f.Browser.MaxScrollRounds > 0 {
		cfg.MaxScrollRounds = f.Browser.MaxScrollRounds
	}

	if f.Tor.Enabled {
		cfg.UseTor = true
	}
	setString(&cfg.Proxy, f.Tor.Proxy)
	if f.Tor.StartupTimeout > 0 {
		cfg.TorStartupTimeout = f.Tor.StartupTimeout
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
