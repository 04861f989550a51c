package model

import "time"

// SeedSummary describes what one seed's store currently holds.
type SeedSummary struct {
	// Seed is the seed profile.
	Seed ProfileID `json:"seed"`

	// Store is the store file name, without directory.
	Store string `json:"store"`

	// SeedVisited reports whether the seed itself has a visit record.
	SeedVisited bool `json:"seedVisited"`

	// Visited is the number of distinct visited profiles.
	Visited int `json:"visited"`

	// Edges is the number of stored edge rows.
	Edges int `json:"edges"`

	// HiddenConnections is the number of visits whose connections were not
	// visible.
	HiddenConnections int `json:"hiddenConnections"`

	// Pending is the size of the seed's current frontier: ranked neighbors
	// that are still waiting for a visit.
	Pending int `json:"pending"`

	// Error is set when the store could not be read.
	Error string `json:"error,omitempty"`
}

// Done reports whether the seed has been visited and nothing is pending.
func (s SeedSummary) Done() bool {
	return s.SeedVisited && s.Pending == 0 && s.Error == ""
}

// CrawlReport summarizes every seed store of one output directory.
type CrawlReport struct {
	// Site is the crawled site.
	Site Site `json:"site"`

	// OutputDir is the directory holding the stores.
	OutputDir string `json:"outputDir"`

	// GeneratedAt is when the report was built.
	GeneratedAt time.Time `json:"generatedAt"`

	// Seeds has one entry per seed, in seed order.
	Seeds []SeedSummary `json:"seeds"`
}

// NewCrawlReport creates an empty report for the given site and directory.
func NewCrawlReport(site Site, outputDir string) *CrawlReport {
	return &CrawlReport{
		Site:        site,
		OutputDir:   outputDir,
		GeneratedAt: time.Now(),
		Seeds:       make([]SeedSummary, 0),
	}
}

// TotalVisited sums visited profiles over all seeds.
func (r *CrawlReport) TotalVisited() int {
	total := 0
	for _, s := range r.Seeds {
		total += s.Visited
	}
	return total
}

// TotalEdges sums edge rows over all seeds.
func (r *CrawlReport) TotalEdges() int {
	total := 0
	for _, s := range r.Seeds {
		total += s.Edges
	}
	return total
}

// TotalPending sums pending frontier entries over all seeds.
func (r *CrawlReport) TotalPending() int {
	total := 0
	for _, s := range r.Seeds {
		total += s.Pending
	}
	return total
}

// CompletedSeeds counts the seeds for which Done is true.
func (r *CrawlReport) CompletedSeeds() int {
	n := 0
	for _, s := range r.Seeds {
		if s.Done() {
			n++
		}
	}
	return n
}
