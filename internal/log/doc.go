// Package log provides the logger of egocrawl: log/slog behind a handler
// that keeps the logged-in browser session out of log output.
//
// SecureHandler masks the session cookies of Facebook and Instagram
// (c_user, xs, sessionid, ...), serialized storage-state documents, the
// request tokens both sites embed in GraphQL calls and the password of
// proxy URLs. It does so in verbose mode too, since crawl logs tend to be
// attached to bug reports.
//
//	logger := log.NewLogger(os.Stderr, true, "text")
//	logger.Info("session loaded",
//	    "storage_state", path,                 // masked
//	    "seed", "https://www.facebook.com/a", // kept
//	)
package log
