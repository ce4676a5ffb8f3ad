// Package preflight provides readiness checks for the feed, the external
// binaries, and the filesystem paths audiogram depends on.
//
// These checks run in two contexts:
//   - The workflow manager calls RunAll before rendering. If a check fails
//     the run stops before any audio is downloaded.
//   - The CLI "audiogram check" command prints every result as a table.
//
// Checks never mutate configuration; directory checks may create missing
// directories so a fresh install passes.
package preflight
