package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")

	// Soundbite pipeline markers.
	ErrInvalidSoundbite    = errors.New("invalid soundbite")
	ErrEmptyRange          = errors.New("empty time range")
	ErrAudioDecode         = errors.New("audio decode error")
	ErrMalformedTranscript = errors.New("malformed transcript")
	ErrEncode              = errors.New("encode error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later failure classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Scope describes how far a failure propagates through a run.
type Scope int

const (
	// ScopeNone marks failures that are recovered where they occur.
	ScopeNone Scope = iota
	// ScopeFormat fails a single output format of a soundbite.
	ScopeFormat
	// ScopeSoundbite fails one soundbite; the rest of the episode continues.
	ScopeSoundbite
	// ScopeEpisode aborts the remaining soundbites of an episode.
	ScopeEpisode
	// ScopeRun stops the run before further soundbites start.
	ScopeRun
)

func (s Scope) String() string {
	switch s {
	case ScopeNone:
		return "none"
	case ScopeFormat:
		return "format"
	case ScopeSoundbite:
		return "soundbite"
	case ScopeEpisode:
		return "episode"
	case ScopeRun:
		return "run"
	default:
		return "unknown"
	}
}

// FailureScope maps a pipeline error to the unit of work it invalidates.
func FailureScope(err error) Scope {
	switch {
	case err == nil:
		return ScopeNone
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ScopeRun
	case errors.Is(err, ErrMalformedTranscript):
		return ScopeNone
	case errors.Is(err, ErrEncode):
		return ScopeFormat
	case errors.Is(err, ErrAudioDecode):
		return ScopeEpisode
	case errors.Is(err, ErrConfiguration):
		return ScopeRun
	default:
		return ScopeSoundbite
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
