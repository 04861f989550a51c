// Package pipeline runs a crawl over all seeds and retries it after systemic
// failures.
//
// A Pass crawls every seed once, each seed through its own store and
// crawler.Orchestrator. A Supervisor re-runs a unit of work on an escalating
// schedule (DefaultSchedule waits 0s, 100s, 400s and 800s before its four
// attempts). A Job ties both together: every attempt opens a fresh session
// and re-runs the whole pass, which resumes from the stores.
//
// Design decision: Failures are retried at pass level rather than per
// profile. Soft per-profile failures are already absorbed by the
// orchestrator; what reaches this package means the session or the store is
// unusable, and only a new session after a pause fixes that.
package pipeline
