package preflight

import (
	"context"
	"strings"

	"audiogram/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Options select the optional checks.
type Options struct {
	// SkipFeed skips the network round trip to the feed URL.
	SkipFeed bool
	// SkipEncoders skips probing ffmpeg for the configured codecs.
	SkipEncoders bool
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir, true))
	if cfg.Paths.CacheDir != "" {
		results = append(results, CheckDirectoryAccess("Cache directory", cfg.Paths.CacheDir, true))
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir, true))
	}

	for _, status := range CheckSystemDeps(cfg) {
		results = append(results, Result{Name: status.Name, Passed: status.Available || status.Optional, Detail: status.Detail})
	}

	if !opts.SkipEncoders {
		results = append(results, CheckEncoders(ctx, cfg)...)
	}
	if !opts.SkipFeed && strings.TrimSpace(cfg.Feed.URL) != "" {
		results = append(results, CheckFeed(ctx, cfg))
	}
	return results
}

// Failures returns the results that did not pass.
func Failures(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
