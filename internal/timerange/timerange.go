// Package timerange turns a soundbite's declared timing into a validated
// [start, end) interval on the episode timeline.
package timerange

import (
	"fmt"
	"math"

	"audiogram/internal/podcast"
	"audiogram/internal/services"
)

const stage = "resolve"

// Range is a half-open interval in seconds.
type Range struct {
	Start float64
	End   float64
}

// Duration returns End - Start.
func (r Range) Duration() float64 {
	return r.End - r.Start
}

// Contains reports whether t falls inside [Start, End).
func (r Range) Contains(t float64) bool {
	return t >= r.Start && t < r.End
}

func (r Range) String() string {
	return fmt.Sprintf("%.3fs-%.3fs", r.Start, r.End)
}

// WarningKind identifies a recoverable adjustment made during resolution.
type WarningKind string

const (
	StartClamped WarningKind = "start_clamped"
	EndClamped   WarningKind = "end_clamped"
)

// Warning records a clamp applied to a declared soundbite.
type Warning struct {
	Kind    WarningKind
	Message string
}

func (w Warning) String() string {
	return w.Message
}

// Resolve validates a soundbite against the episode duration. A declared
// duration takes precedence over a declared end. An episodeDuration of zero
// or less means the length is unknown and the end is not clamped.
func Resolve(sb podcast.Soundbite, episodeDuration float64) (Range, []Warning, error) {
	if !finite(sb.Start) {
		return Range{}, nil, services.Wrap(services.ErrInvalidSoundbite, stage, "start", "start time is not a number", nil)
	}

	var end float64
	switch {
	case sb.Duration != nil:
		if !finite(*sb.Duration) {
			return Range{}, nil, services.Wrap(services.ErrInvalidSoundbite, stage, "duration", "duration is not a number", nil)
		}
		end = sb.Start + *sb.Duration
	case sb.End != nil:
		if !finite(*sb.End) {
			return Range{}, nil, services.Wrap(services.ErrInvalidSoundbite, stage, "end", "end time is not a number", nil)
		}
		end = *sb.End
	default:
		return Range{}, nil, services.Wrap(services.ErrInvalidSoundbite, stage, "declaration", "soundbite declares neither end nor duration", nil)
	}

	r := Range{Start: sb.Start, End: end}
	var warnings []Warning
	if r.Start < 0 {
		warnings = append(warnings, Warning{
			Kind:    StartClamped,
			Message: fmt.Sprintf("start %.3fs is negative; clamped to 0", r.Start),
		})
		r.Start = 0
	}
	if episodeDuration > 0 && r.End > episodeDuration {
		warnings = append(warnings, Warning{
			Kind:    EndClamped,
			Message: fmt.Sprintf("end %.3fs exceeds episode duration %.3fs; clamped", r.End, episodeDuration),
		})
		r.End = episodeDuration
	}
	if r.End <= r.Start {
		return Range{}, warnings, services.Wrap(services.ErrEmptyRange, stage, "clamp", fmt.Sprintf("range %s has no duration", r), nil)
	}
	return r, warnings, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
