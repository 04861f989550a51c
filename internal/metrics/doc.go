// Package metrics exposes crawl progress as Prometheus metrics.
//
// A Recorder receives orchestrator events (crawler.Observer) and supervisor
// events (pipeline.AttemptObserver) and updates its counters. Serve publishes
// the registry on /metrics for the length of a crawl.
package metrics
