package pipeline

import (
	"audiogram/internal/output"
	"audiogram/internal/timerange"
)

// Status is the outcome of a unit of work.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// RenderResult is one format of one soundbite.
type RenderResult struct {
	Format   string
	Path     string
	Duration float64
	Frames   int
	Status   Status
	Err      error
}

// DryRunRecord is the printable summary of a soundbite in a dry run.
type DryRunRecord struct {
	Soundbite int
	Start     float64
	End       float64
	Duration  float64
	Text      string
}

// SoundbiteResult collects everything produced for one soundbite.
type SoundbiteResult struct {
	Number   int
	Title    string
	Range    timerange.Range
	Warnings []timerange.Warning
	Status   Status
	Err      error

	Renders     []RenderResult
	Caption     *output.CaptionData
	CaptionPath string
	SRTPath     string
	AudioPath   string
	// SidecarErrors are failures writing the caption, SRT, or MP3. They do
	// not change Status.
	SidecarErrors []error

	DryRun *DryRunRecord
}

// Succeeded counts renders that produced a file.
func (r SoundbiteResult) Succeeded() int {
	n := 0
	for _, render := range r.Renders {
		if render.Status == StatusSucceeded {
			n++
		}
	}
	return n
}

// EpisodeResult is the outcome of Run.
type EpisodeResult struct {
	Episode  int
	Title    string
	Language string
	// TranscriptDiscarded is set when a transcript was supplied but rejected
	// as malformed.
	TranscriptDiscarded bool
	Soundbites          []SoundbiteResult
	Err                 error
}

// Failed reports whether the episode or any soundbite or render failed.
func (r EpisodeResult) Failed() bool {
	if r.Err != nil {
		return true
	}
	for _, sb := range r.Soundbites {
		if sb.Status != StatusSucceeded {
			return true
		}
		for _, render := range sb.Renders {
			if render.Status != StatusSucceeded {
				return true
			}
		}
	}
	return false
}
