// Package store persists the crawl graph of one seed.
//
// Every seed gets its own store file holding two append-only tables:
//
//   - friendships: one row per observed connection (profile, friend, name)
//   - profile_doms: one row per visited profile (profile, n_friends, dom)
//
// A profile counts as visited as soon as it has a profile_doms row. Edges and
// the visit record of one profile are committed together, so the visited set
// is also the set of profiles whose connections are fully recorded. That is
// what makes a crawl resumable after a crash or a failed pass.
//
// Design decision: the default backend is SQLite through modernc.org/sqlite,
// which needs no cgo and keeps the store a single portable file. DuckDB is
// available in cgo builds so that stores produced by earlier DuckDB-based
// crawls can be resumed without conversion. Both backends share the schema.
package store
