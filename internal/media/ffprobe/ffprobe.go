package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Stream kinds as reported in codec_type.
const (
	KindAudio = "audio"
	KindVideo = "video"
)

// Result is the subset of `ffprobe -show_format -show_streams` audiogram reads.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// InspectFunc matches Inspect so callers can substitute a probe in tests.
type InspectFunc func(ctx context.Context, binary string, path string) (Result, error)

// Stream describes one elementary stream. Numeric fields ffprobe emits as
// strings stay strings; use the helper methods to read them.
type Stream struct {
	Index         int    `json:"index"`
	CodecName     string `json:"codec_name"`
	CodecType     string `json:"codec_type"`
	Duration      string `json:"duration"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	SampleRate    string `json:"sample_rate"`
	Channels      int    `json:"channels"`
	ChannelLayout string `json:"channel_layout"`
}

// Format is the container section.
type Format struct {
	Filename   string `json:"filename"`
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

// Inspect runs ffprobe on path and decodes its JSON report.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	if strings.TrimSpace(path) == "" {
		return Result{}, errors.New("ffprobe: empty path")
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", path)
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return Result{}, fmt.Errorf("ffprobe %s: %w: %s", path, err, strings.TrimSpace(stderr.String()))
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe %s: decode report: %w", path, err)
	}
	return result, nil
}

// First returns the first stream of kind.
func (r Result) First(kind string) (Stream, bool) {
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, kind) {
			return stream, true
		}
	}
	return Stream{}, false
}

// Count returns how many streams of kind the container holds.
func (r Result) Count(kind string) int {
	n := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, kind) {
			n++
		}
	}
	return n
}

// Duration returns the container duration, falling back to the first stream
// of kind. It is NaN when neither reports a positive length.
func (r Result) Duration(kind string) float64 {
	if d := seconds(r.Format.Duration); d > 0 {
		return d
	}
	if stream, ok := r.First(kind); ok {
		if d := stream.DurationSeconds(); d > 0 {
			return d
		}
	}
	return math.NaN()
}

// SampleRateHz parses the stream sample rate, returning 0 when unavailable.
func (s Stream) SampleRateHz() int {
	rate := seconds(s.SampleRate)
	if math.IsNaN(rate) || rate <= 0 {
		return 0
	}
	return int(rate)
}

// DurationSeconds returns the stream duration, or NaN when unavailable.
func (s Stream) DurationSeconds() float64 {
	return seconds(s.Duration)
}

// seconds parses ffprobe's decimal strings; blank and "N/A" yield NaN.
func seconds(value string) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return math.NaN()
	}
	return parsed
}
