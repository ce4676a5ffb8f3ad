package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"audiogram/internal/media/ffprobe"
	"audiogram/internal/services"
	"audiogram/internal/timerange"
)

const decodeStage = "decode"

// Decoder opens episode audio for slicing.
type Decoder interface {
	Open(ctx context.Context, path string) (Source, error)
}

// FFmpegDecoder probes audio with ffprobe and decodes windows with ffmpeg.
type FFmpegDecoder struct {
	FFmpeg  string
	FFprobe string
	// SampleRate resamples output when positive; zero keeps the source rate.
	SampleRate int
	// Probe defaults to ffprobe.Inspect.
	Probe ffprobe.InspectFunc
}

// Open validates that path holds a decodable audio stream and returns a
// FileSource for it. Failures are marked ErrAudioDecode.
func (d FFmpegDecoder) Open(ctx context.Context, path string) (Source, error) {
	probe := d.Probe
	if probe == nil {
		probe = ffprobe.Inspect
	}
	result, err := probe(ctx, d.FFprobe, path)
	if err != nil {
		return nil, services.Wrap(services.ErrAudioDecode, decodeStage, "probe", path, err)
	}
	stream, ok := result.First(ffprobe.KindAudio)
	if !ok {
		return nil, services.Wrap(services.ErrAudioDecode, decodeStage, "probe", "no audio stream in "+path, nil)
	}
	channels := stream.Channels
	if channels <= 0 {
		channels = 2
	}
	rate := d.SampleRate
	if rate <= 0 {
		rate = stream.SampleRateHz()
	}
	if rate <= 0 {
		return nil, services.Wrap(services.ErrAudioDecode, decodeStage, "probe", "unknown sample rate in "+path, nil)
	}
	duration := result.Duration(ffprobe.KindAudio)
	if math.IsNaN(duration) {
		duration = 0
	}
	return &FileSource{
		ffmpeg:     binaryOr(d.FFmpeg, "ffmpeg"),
		path:       path,
		sampleRate: rate,
		channels:   channels,
		duration:   duration,
	}, nil
}

// FileSource decodes requested windows of an audio file on demand.
type FileSource struct {
	ffmpeg     string
	path       string
	sampleRate int
	channels   int
	duration   float64
}

// Duration reports the probed container duration.
func (s *FileSource) Duration() float64 { return s.duration }

// SampleRate is the rate of tracks returned by Extract.
func (s *FileSource) SampleRate() int { return s.sampleRate }

// Channels is the channel count of tracks returned by Extract.
func (s *FileSource) Channels() int { return s.channels }

// Extract decodes [r.Start, r.End) to PCM. The result always holds exactly
// FrameCount(r) frames; a short decode near the end of the file is padded
// with silence.
func (s *FileSource) Extract(ctx context.Context, r timerange.Range) (*Track, error) {
	args := DecodeArgs(s.path, r, s.sampleRate, s.channels)
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.ffmpeg, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		detail := strings.TrimSpace(stderr.String())
		return nil, services.Wrap(services.ErrAudioDecode, decodeStage, "ffmpeg", fmt.Sprintf("%s %s: %s", s.path, r, detail), err)
	}
	samples, err := decodeFloat32LE(stdout.Bytes())
	if err != nil {
		return nil, services.Wrap(services.ErrAudioDecode, decodeStage, "pcm", s.path, err)
	}
	want := FrameCount(r, s.sampleRate) * s.channels
	switch {
	case len(samples) > want:
		samples = samples[:want]
	case len(samples) < want:
		samples = append(samples, make([]float32, want-len(samples))...)
	}
	return &Track{Samples: samples, SampleRate: s.sampleRate, Channels: s.channels}, nil
}

// DecodeArgs builds the ffmpeg arguments that emit f32le PCM for r on stdout.
func DecodeArgs(path string, r timerange.Range, sampleRate, channels int) []string {
	return []string{
		"-nostdin", "-hide_banner", "-v", "error",
		"-ss", formatSeconds(r.Start),
		"-t", formatSeconds(r.Duration()),
		"-i", path,
		"-vn",
		"-ac", strconv.Itoa(channels),
		"-ar", strconv.Itoa(sampleRate),
		"-f", "f32le",
		"-acodec", "pcm_f32le",
		"pipe:1",
	}
}

func decodeFloat32LE(raw []byte) ([]float32, error) {
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("pcm stream length %d is not a multiple of 4", len(raw))
	}
	out := make([]float32, len(raw)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return out, nil
}

// EncodeFloat32LE is the inverse of the decoder's PCM parsing, used to feed
// tracks back into ffmpeg.
func EncodeFloat32LE(samples []float32) []byte {
	out := make([]byte, len(samples)*4)
	for i, v := range samples {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func binaryOr(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
