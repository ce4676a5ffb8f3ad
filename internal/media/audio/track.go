package audio

import (
	"context"
	"fmt"
	"math"

	"audiogram/internal/services"
	"audiogram/internal/timerange"
)

// Track is interleaved float32 PCM in [-1, 1].
type Track struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// Source yields decoded audio for a time range of an episode.
type Source interface {
	// Duration is the total length in seconds, or 0 when unknown.
	Duration() float64
	Extract(ctx context.Context, r timerange.Range) (*Track, error)
}

// Frames returns the number of sample frames (samples per channel).
func (t *Track) Frames() int {
	if t == nil || t.Channels <= 0 {
		return 0
	}
	return len(t.Samples) / t.Channels
}

// Duration returns the track length in seconds.
func (t *Track) Duration() float64 {
	if t == nil || t.SampleRate <= 0 {
		return 0
	}
	return float64(t.Frames()) / float64(t.SampleRate)
}

// Validate reports buffers that cannot be interpreted as PCM.
func (t *Track) Validate() error {
	switch {
	case t == nil:
		return services.Wrap(services.ErrAudioDecode, "slice", "validate", "no audio track", nil)
	case t.SampleRate <= 0:
		return services.Wrap(services.ErrAudioDecode, "slice", "validate", fmt.Sprintf("invalid sample rate %d", t.SampleRate), nil)
	case t.Channels <= 0:
		return services.Wrap(services.ErrAudioDecode, "slice", "validate", fmt.Sprintf("invalid channel count %d", t.Channels), nil)
	case len(t.Samples)%t.Channels != 0:
		return services.Wrap(services.ErrAudioDecode, "slice", "validate", fmt.Sprintf("%d samples do not divide into %d channels", len(t.Samples), t.Channels), nil)
	}
	return nil
}

// Slice copies the frames whose timestamps fall in [r.Start, r.End). The
// returned track shares no memory with t.
func (t *Track) Slice(r timerange.Range) (*Track, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	frames := t.Frames()
	first := clampIndex(FrameIndex(r.Start, t.SampleRate), frames)
	last := clampIndex(FrameIndex(r.End, t.SampleRate), frames)
	if last < first {
		last = first
	}
	out := make([]float32, (last-first)*t.Channels)
	copy(out, t.Samples[first*t.Channels:last*t.Channels])
	return &Track{Samples: out, SampleRate: t.SampleRate, Channels: t.Channels}, nil
}

// Extract implements Source for in-memory tracks.
func (t *Track) Extract(ctx context.Context, r timerange.Range) (*Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return t.Slice(r)
}

// FrameIndex returns the first frame whose timestamp is at or after seconds.
func FrameIndex(seconds float64, sampleRate int) int {
	return int(math.Ceil(seconds*float64(sampleRate) - 1e-9))
}

// FrameCount is the number of frames covered by r at sampleRate.
func FrameCount(r timerange.Range, sampleRate int) int {
	n := FrameIndex(r.End, sampleRate) - FrameIndex(r.Start, sampleRate)
	if n < 0 {
		return 0
	}
	return n
}

func clampIndex(i, frames int) int {
	if i < 0 {
		return 0
	}
	if i > frames {
		return frames
	}
	return i
}
