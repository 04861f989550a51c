// Package main provides the entry point for the egocrawl CLI.
//
// egocrawl crawls the friend (Facebook) or following (Instagram) lists of a
// set of seed profiles and their most relevant neighbors through a logged-in
// browser session, and keeps one resumable graph store per seed.
//
// Usage:
//
//	egocrawl crawl seeds.csv state.json
//	egocrawl report seeds.csv
//
// See --help for all available options.
package main

import "os"

func main() {
	os.Exit(Execute())
}
