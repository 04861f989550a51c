package browser

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/nao1215/egocrawl/internal/crawler"
	"github.com/nao1215/egocrawl/internal/extract"
	"github.com/nao1215/egocrawl/internal/model"
)

// Launcher opens browser sessions.
type Launcher struct {
	cfg Config
}

// NewLauncher creates a Launcher. The storage state is checked on every Open.
func NewLauncher(cfg Config) *Launcher {
	cfg.defaults()
	return &Launcher{cfg: cfg}
}

// Session is one browser with the logged-in cookies loaded. It implements
// crawler.Fetcher and is used by a single pass at a time.
type Session struct {
	cfg      Config
	driver   pageDriver
	browser  *rod.Browser
	lnch     *launcher.Launcher
	detected atomic.Bool

	mu     sync.Mutex
	closed bool
}

// Open launches Chrome (or connects to RemoteURL) and loads the cookies of
// the storage state.
func (l *Launcher) Open(ctx context.Context) (*Session, error) {
	log := l.cfg.Logger

	driver, ok := drivers[l.cfg.Site]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSite, l.cfg.Site)
	}

	state, err := LoadStorageState(l.cfg.StorageState)
	if err != nil {
		return nil, err
	}

	s := &Session{cfg: l.cfg, driver: driver}

	wsURL := l.cfg.RemoteURL
	if wsURL != "" {
		log.Info("connecting to remote browser", "url", wsURL)
	} else {
		lnch := launcher.New().Headless(!l.cfg.Headful)

		// Anti-detection flags.
		lnch = lnch.Set("disable-blink-features", "AutomationControlled")
		if l.cfg.Proxy != "" {
			lnch = lnch.Proxy(l.cfg.Proxy)
		}

		u, err := lnch.Context(ctx).Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
		wsURL = u
		s.lnch = lnch
		log.Debug("launched local browser", "headful", l.cfg.Headful, "proxy", l.cfg.Proxy != "")
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		s.cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	s.browser = b

	if err := b.SetCookies(state.CookieParams()); err != nil {
		s.cleanup()
		return nil, fmt.Errorf("failed to load session cookies: %w", err)
	}

	log.Info("browser session ready", "site", l.cfg.Site, "cookies", len(state.Cookies))
	return s, nil
}

// Close shuts the browser down. It is safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.cleanup()
	return nil
}

func (s *Session) cleanup() {
	if s.browser != nil {
		_ = s.browser.Close()
		s.browser = nil
	}
	if s.lnch != nil {
		s.lnch.Cleanup()
		s.lnch = nil
	}
}

// Detected reports whether the site flagged this session.
func (s *Session) Detected() bool {
	return s.detected.Load()
}

// Fetch visits the connections page of profile.
//
// Navigation and extraction problems are soft failures. A closed or crashed
// browser and a detected session are systemic failures.
func (s *Session) Fetch(ctx context.Context, profile model.ProfileID) (model.FetchResult, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return model.FetchResult{}, crawler.SystemicFailure(profile, ErrSessionClosed)
	}
	if s.Detected() {
		return model.FetchResult{}, crawler.SystemicFailure(profile, ErrSessionDetected)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	page, err := stealth.Page(s.browser)
	if err != nil {
		return model.FetchResult{}, crawler.SystemicFailure(profile, fmt.Errorf("failed to open page: %w", err))
	}
	defer page.Close()

	if s.cfg.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: s.cfg.UserAgent}); err != nil {
			s.cfg.Logger.Warn("failed to set user agent", "error", err)
		}
	}

	stopWatch := s.watchErrorPayloads(ctx, page)
	result, markup, err := s.driver(ctx, s, page.Context(ctx), profile)
	stopWatch()
	if s.Detected() {
		return model.FetchResult{}, crawler.SystemicFailure(profile, ErrSessionDetected)
	}
	if err != nil {
		return model.FetchResult{}, crawler.SoftFailure(profile, err)
	}

	if s.cfg.KeepSnapshots {
		result.Snapshot = extract.SanitizeSnapshot(markup)
	}

	s.cfg.Logger.Debug("fetched profile",
		"profile", profile,
		"neighbors", len(result.Neighbors),
		"declared", result.DeclaredCount)

	return result, nil
}

// watchErrorPayloads marks the session detected when a GraphQL response
// carries an "errors" key. The returned function stops watching and waits
// for the response bodies still being inspected, so Detected is final for
// the fetch once it returns.
func (s *Session) watchErrorPayloads(ctx context.Context, page *rod.Page) func() {
	if err := (proto.NetworkEnable{}).Call(page); err != nil {
		s.cfg.Logger.Debug("failed to enable network events", "error", err)
		return func() {}
	}

	watchCtx, cancel := context.WithCancel(ctx)
	w := &payloadWatch{session: s, cancel: cancel, loopDone: make(chan struct{})}

	var (
		mu      sync.Mutex
		pending = make(map[proto.NetworkRequestID]bool)
	)

	wait := page.Context(watchCtx).EachEvent(
		func(e *proto.NetworkResponseReceived) {
			if strings.Contains(e.Response.URL, "graphql") {
				mu.Lock()
				pending[e.RequestID] = true
				mu.Unlock()
			}
		},
		func(e *proto.NetworkLoadingFinished) {
			mu.Lock()
			ok := pending[e.RequestID]
			delete(pending, e.RequestID)
			mu.Unlock()
			if ok {
				w.inspect(func() ([]byte, error) {
					return responseBody(page, e.RequestID)
				})
			}
		},
	)
	go func() {
		defer close(w.loopDone)
		wait()
	}()

	return w.stop
}

// payloadWatch tracks the response inspections started during one fetch.
// inspect is only called from the event loop, so no inspection can start
// after loopDone is closed.
type payloadWatch struct {
	session  *Session
	cancel   context.CancelFunc
	loopDone chan struct{}
	inflight sync.WaitGroup
}

// inspect reads a response body in the background and flags the session
// when it is an error payload.
func (w *payloadWatch) inspect(read func() ([]byte, error)) {
	w.inflight.Add(1)
	go func() {
		defer w.inflight.Done()
		body, err := read()
		if err != nil {
			return
		}
		if hasErrorPayload(body) {
			w.session.markDetected()
		}
	}()
}

// stop ends the event loop and waits for every started inspection.
func (w *payloadWatch) stop() {
	w.cancel()
	<-w.loopDone
	w.inflight.Wait()
}

// markDetected flags the session. Only the first call logs.
func (s *Session) markDetected() {
	if !s.detected.Swap(true) {
		s.cfg.Logger.Warn("site returned a GraphQL error payload, session is flagged")
	}
}

// responseBody fetches the decoded body of a finished response.
func responseBody(page *rod.Page, id proto.NetworkRequestID) ([]byte, error) {
	res, err := proto.NetworkGetResponseBody{RequestID: id}.Call(page)
	if err != nil {
		return nil, err
	}
	if res.Base64Encoded {
		return base64.StdEncoding.DecodeString(res.Body)
	}
	return []byte(res.Body), nil
}

// hasErrorPayload reports whether body is a JSON object with an "errors" key.
// Bodies that are not JSON objects are ignored.
func hasErrorPayload(body []byte) bool {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return false
	}
	_, ok := doc["errors"]
	return ok
}

// sleepCtx waits d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
