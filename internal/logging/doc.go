// Package logging assembles the slog loggers used by audiogram.
//
// The console handler renders human-readable lines tagged with the episode,
// soundbite, and format being processed; the JSON handler serves machine
// consumers and the per-run log file. Context helpers pull run identifiers
// and pipeline coordinates from context.Context so stage code never has to
// pass them explicitly.
package logging
