// Package services defines shared utilities consumed by the audiogram pipeline
// stages and their external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, episode and soundbite numbers, and
//     output format names for logging.
//   - Structured error markers plus the Wrap helper, and FailureScope which
//     decides whether a failure costs a format, a soundbite, an episode, or
//     the whole run.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
