package browser

import (
	"log/slog"
	"time"

	"github.com/nao1215/egocrawl/internal/model"
)

// Config configures the browser fetcher.
type Config struct {
	// Site selects the page driver.
	Site model.Site

	// StorageState is the path of the browser storage-state JSON holding the
	// logged-in cookies. It is read once per session and never written.
	StorageState string

	// Headful shows the browser window instead of running headless.
	Headful bool

	// RemoteURL is the DevTools WebSocket URL of an external Chrome.
	// Empty launches a local Chrome.
	RemoteURL string

	// Proxy is passed to Chrome as --proxy-server, e.g. "socks5://127.0.0.1:9050".
	Proxy string

	// UserAgent overrides the browser user agent when set.
	UserAgent string

	// NavigationTimeout bounds page loads. Default: 60s.
	NavigationTimeout time.Duration

	// FetchTimeout bounds a whole fetch including scrolling. Default: 15m.
	FetchTimeout time.Duration

	// SettleDelay is waited after a page loaded. Default: 5s.
	SettleDelay time.Duration

	// ScrollDelay is waited after every scroll step. Default: 2.5s.
	ScrollDelay time.Duration

	// MaxScrollRounds bounds scrolling per page. Default: 250.
	MaxScrollRounds int

	// MaxIdleRounds stops scrolling after that many rounds without growth.
	// Default: 6.
	MaxIdleRounds int

	// KeepSnapshots stores the sanitized page markup with each visit.
	KeepSnapshots bool

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.NavigationTimeout <= 0 {
		c.NavigationTimeout = 60 * time.Second
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 15 * time.Minute
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = 5 * time.Second
	}
	if c.ScrollDelay <= 0 {
		c.ScrollDelay = 2500 * time.Millisecond
	}
	if c.MaxScrollRounds <= 0 {
		c.MaxScrollRounds = 250
	}
	if c.MaxIdleRounds <= 0 {
		c.MaxIdleRounds = 6
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
