package log

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
)

// MaskValue replaces every redacted value.
const MaskValue = "***REDACTED***"

// sessionCookies are the cookies that make up a logged-in Facebook or
// Instagram session. Any one of them is enough to take over the account.
var sessionCookies = []string{
	// Facebook
	"c_user", "xs", "fr", "datr", "sb",
	// Instagram
	"sessionid", "ds_user_id", "csrftoken", "mid", "rur",
}

// sessionKeys are attribute keys whose values are always masked.
var sessionKeys = func() map[string]bool {
	keys := map[string]bool{
		"cookie":        true,
		"cookies":       true,
		"set-cookie":    true,
		"authorization": true,
		"storage_state": true,
		"storagestate":  true,
		"fb_dtsg":       true,
		"lsd":           true,
	}
	for _, name := range sessionCookies {
		keys[name] = true
	}
	return keys
}()

// sessionKeywords mask any key that contains them, e.g. "session_cookie" or
// "x-csrf-token".
var sessionKeywords = []string{"cookie", "token", "password", "secret", "storage_state"}

var (
	// sessionCookiePattern finds session cookies inside cookie strings and
	// request bodies.
	sessionCookiePattern = regexp.MustCompile(
		`(?i)\b(` + strings.Join(sessionCookies, "|") + `|fb_dtsg|lsd)=[^;&\s]+`)

	// storageStatePattern matches a serialized storage-state document.
	storageStatePattern = regexp.MustCompile(`"cookies"\s*:\s*\[`)
)

// SecureHandler wraps an slog.Handler and masks browser session data before
// it reaches the log: session cookies, storage-state documents, request
// tokens of the sites and proxy passwords.
//
// Design decision: We use a handler wrapper rather than a custom logger
// so that every component, tornago included, can keep taking a plain
// *slog.Logger.
//
// Profile URLs and display names are not masked. They are the data the
// crawler collects and the logs are useless without them.
type SecureHandler struct {
	handler slog.Handler
}

// NewSecureHandler wraps handler. A nil handler wraps slog.Default's.
func NewSecureHandler(handler slog.Handler) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SecureHandler{handler: handler}
}

// Enabled delegates to the wrapped handler.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle masks the attributes of r and passes it on.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	masked := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		masked.AddAttrs(redactAttr(a))
		return true
	})
	return h.handler.Handle(ctx, masked)
}

// WithAttrs masks attrs before binding them.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = redactAttr(a)
	}
	return &SecureHandler{handler: h.handler.WithAttrs(masked)}
}

// WithGroup delegates to the wrapped handler.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name)}
}

// redactAttr masks a single attribute, descending into groups.
func redactAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		masked := make([]slog.Attr, len(group))
		for i, ga := range group {
			masked[i] = redactAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(masked...)}
	}

	if isSessionKey(a.Key) {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() == slog.KindString {
		if v, changed := redactValue(a.Value.String()); changed {
			return slog.String(a.Key, v)
		}
	}

	return a
}

// isSessionKey reports whether values logged under key are always masked.
func isSessionKey(key string) bool {
	key = strings.ToLower(key)
	if sessionKeys[key] {
		return true
	}
	for _, kw := range sessionKeywords {
		if strings.Contains(key, kw) {
			return true
		}
	}
	return false
}

// redactValue masks session data inside a string value. Proxy URLs keep
// everything but their password so that connection errors stay readable.
func redactValue(v string) (string, bool) {
	if storageStatePattern.MatchString(v) || sessionCookiePattern.MatchString(v) {
		return MaskValue, true
	}

	if strings.Contains(v, "://") && strings.Contains(v, "@") {
		if u, err := url.Parse(v); err == nil && u.User != nil {
			if _, ok := u.User.Password(); ok {
				return u.Redacted(), true
			}
		}
	}

	return v, false
}
