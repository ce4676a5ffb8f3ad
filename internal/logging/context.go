package logging

import (
	"context"
	"log/slog"

	"audiogram/internal/services"
)

const (
	// FieldComponent names the subsystem emitting a record.
	FieldComponent = "component"
	// FieldRunID correlates every record produced by one CLI invocation.
	FieldRunID = "run_id"
	// FieldStage names the pipeline stage (feed, decode, render, encode, ...).
	FieldStage = "stage"
	// FieldEpisode is the 1-based episode number counted from the oldest episode.
	FieldEpisode = "episode"
	// FieldSoundbite is the 1-based soundbite number within its episode.
	FieldSoundbite = "soundbite"
	// FieldFormat is the output format name.
	FieldFormat = "format"
	// FieldEventType classifies a record for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests a next step to the operator.
	FieldErrorHint = "error_hint"
	// FieldImpact describes the user-facing consequence of a warning.
	FieldImpact = "impact"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 5)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if n, ok := services.EpisodeFromContext(ctx); ok {
		fields = append(fields, slog.Int(FieldEpisode, n))
	}
	if n, ok := services.SoundbiteFromContext(ctx); ok {
		fields = append(fields, slog.Int(FieldSoundbite, n))
	}
	if format, ok := services.FormatFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldFormat, format))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
