// Package model defines the core data structures used throughout egocrawl.
//
// This package contains the following main types:
//   - ProfileID: The normalized key of one profile in the social graph
//   - Site: The social network a crawl targets, with its normalization rules
//   - Neighbor, Edge, Visit: The rows persisted in a seed's graph store
//   - FetchResult: What the page fetcher returns for one profile
//   - CrawlReport: A per-seed summary of what has been stored so far
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The store, frontier, crawler and report packages all need
// these types, so centralizing them prevents import cycles.
package model
