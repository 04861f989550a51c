// Package crawler expands the neighborhood of one seed profile.
//
// # Architecture
//
// The package is designed around the Orchestrator type, which owns everything
// a seed's run needs: the Fetcher that retrieves connections, the seed's
// graph store and the frontier selector. There is no package-level state; a
// new Orchestrator is built for every seed of every pass.
//
// A run moves through four states:
//
//	StateUnstarted -> StateSeedVisited -> StateExpanding -> StateDone
//
// The seed is visited first if the store has no visit record for it. Its
// frontier is then computed once and every entry is visited in ranked order.
// Connections discovered during the run do not enlarge the frontier: the
// expansion is a single level deep.
//
// # Failures
//
// Fetchers report failures as *FetchError values. A FailureSoft error skips
// the profile without writing a visit record, so a later pass retries it.
// A FailureSystemic error, or any store error, aborts the run so the caller
// can restart the session.
//
// # Usage
//
//	orch := crawler.NewOrchestrator(fetcher, graphStore, selector,
//		crawler.WithLogger(logger))
//	result, err := orch.Run(ctx, seed)
package crawler
