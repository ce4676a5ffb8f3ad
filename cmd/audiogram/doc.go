// Package main hosts the audiogram CLI entrypoint and command graph.
//
// The root command renders audiograms for the selected episodes of the
// configured podcast feed. Subcommands scaffold and validate configuration,
// list feed episodes, inspect the render history, and check the
// environment. Flags on the root command override configuration values for a
// single run.
//
// Keep this package lean: behaviour lives in the internal packages and is
// surfaced here through flags and output formatting.
package main
