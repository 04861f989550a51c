package model

// Neighbor is one connection shown on a profile's connections page.
type Neighbor struct {
	// ID is the normalized profile of the connection.
	ID ProfileID `json:"id"`

	// Name is the display name shown next to the connection. Weight lookups
	// join on this value, not on ID.
	Name string `json:"name"`
}

// Edge is one stored row of the friendships table: Profile lists Neighbor
// among its connections under the display name Name.
//
// Edges are directed as observed. Nothing in egocrawl assumes that the
// neighbor lists the profile back.
type Edge struct {
	Profile  ProfileID `json:"profile"`
	Neighbor ProfileID `json:"neighbor"`
	Name     string    `json:"name"`
}

// Visit is one stored row of the profile_doms table. It is the durable proof
// that a profile's connections were fetched, or found inaccessible.
type Visit struct {
	// Profile is the visited profile.
	Profile ProfileID `json:"profile"`

	// NeighborCount is the count the site itself displays, or UnknownCount
	// when the connections are hidden.
	NeighborCount int `json:"neighborCount"`

	// Snapshot is the page markup kept for auditing. Nothing reads it back
	// for crawl decisions.
	Snapshot string `json:"-"`
}

// FetchResult is what a fetcher returns for one profile.
//
// An empty Neighbors slice is a valid result: it records that the profile
// has no visible connections, so later passes do not probe it again.
type FetchResult struct {
	// Neighbors are the connections found on the page.
	Neighbors []Neighbor

	// DeclaredCount is the count the site displays, or UnknownCount.
	DeclaredCount int

	// Snapshot is the page markup to keep with the visit record.
	Snapshot string
}

// Visit converts the result into the visit record for profile.
func (r FetchResult) Visit(profile ProfileID) Visit {
	return Visit{
		Profile:       profile,
		NeighborCount: r.DeclaredCount,
		Snapshot:      r.Snapshot,
	}
}
