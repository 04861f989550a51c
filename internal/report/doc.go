// Package report summarizes the seed stores of an output directory and
// writes the summary for people and tools.
//
// Build opens every seed's store without creating anything and collects
// visit, edge and frontier counts into a model.CrawlReport. The writers
// render that report:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: GitHub Flavored Markdown with a progress pie chart
//
// Design decision: We separate report writing from report data structures
// (which are in the model package) so new output formats do not touch the
// data.
package report
