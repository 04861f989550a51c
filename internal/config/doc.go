// Package config holds egocrawl's settings: defaults, the YAML config file
// (.egocrawl) and validation. CLI flags are applied on top by the commands.
package config
