// Package browser fetches connection pages with a real Chrome driven through
// go-rod.
//
// A Launcher opens one Session per pass. The session carries the logged-in
// cookies of a browser storage-state file and serves crawler.Fetcher: every
// Fetch opens a stealth page, navigates to the profile's connections, scrolls
// until the list stops growing and hands the markup to package extract.
//
// Sites answer automated sessions with error payloads on their GraphQL
// endpoints before anything visible happens. The session watches network
// responses for such payloads; once one is seen every fetch fails with a
// systemic failure so the pass is restarted with a fresh browser.
package browser
