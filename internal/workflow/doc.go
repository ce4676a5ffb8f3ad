// Package workflow runs audiogram end to end.
//
// A Manager loads the feed, resolves the episode and soundbite selection,
// checks the environment, and for each selected episode downloads the audio,
// cover, and transcript before handing a pipeline.Request to the renderer.
// Episodes are processed one at a time; parallelism lives inside the
// pipeline. Every render outcome is appended to the history ledger and the
// run ends with a Summary the CLI prints.
//
// The output directory is locked for the duration of a non-dry run so two
// invocations never write the same files.
package workflow
