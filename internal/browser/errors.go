package browser

import "errors"

var (
	// ErrSessionDetected is returned once the site answered with an error
	// payload. The session must be discarded.
	ErrSessionDetected = errors.New("site returned an error payload, session detected")

	// ErrSessionClosed is returned when fetching through a closed session.
	ErrSessionClosed = errors.New("browser session is closed")

	// ErrUnsupportedSite is returned for sites without a page driver.
	ErrUnsupportedSite = errors.New("site is not supported by the browser fetcher")
)
