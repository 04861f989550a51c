// Package frontier decides which connections of a visited profile are crawled
// next.
//
// The frontier of a profile is built from its stored edges. When an
// interaction weight table shares names with those edges, connections are
// ranked by weight (highest first, ties broken by name) and only the top
// entries are kept. Without a usable table every distinct neighbor is
// returned in lexicographic order. Profiles that already have a visit record
// are always removed, which keeps the at-most-once guarantee independent of
// the ranking.
package frontier
