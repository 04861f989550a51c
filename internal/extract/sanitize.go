package extract

import "github.com/microcosm-cc/bluemonday"

// snapshotPolicy keeps structure and links but removes scripts, styles,
// event handlers and embedded media.
var snapshotPolicy = bluemonday.UGCPolicy()

// SanitizeSnapshot returns markup that is safe to store and reopen for
// auditing. It runs before a snapshot is written to a store.
func SanitizeSnapshot(markup string) string {
	if markup == "" {
		return ""
	}
	return snapshotPolicy.Sanitize(markup)
}
