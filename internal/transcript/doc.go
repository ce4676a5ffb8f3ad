// Package transcript parses timed episode transcripts and aligns their cues
// onto a soundbite's local timeline.
//
// Supported inputs are SubRip, WebVTT, and the Podcasting 2.0 JSON transcript
// format. Parsed cues pass through New, which rejects overlapping or unsorted
// input with services.ErrMalformedTranscript.
package transcript
