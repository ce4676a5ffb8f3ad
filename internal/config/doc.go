// Package config loads, normalizes, and validates audiogram configuration.
//
// TOML is the primary format; files ending in .yaml or .yml are decoded with
// the same schema. Defaults come from Default, paths are expanded, enum values
// are lower-cased, and the feed URL falls back to AUDIOGRAM_FEED_URL. Use
// CreateSample to scaffold a commented config file for new installs.
package config
