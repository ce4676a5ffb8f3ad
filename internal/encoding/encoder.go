package encoding

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"iter"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"audiogram/internal/logging"
	"audiogram/internal/media/audio"
	"audiogram/internal/services"
)

const stage = "encode"

// Options are the ffmpeg settings shared by every job.
type Options struct {
	FFmpeg         string
	FFprobe        string
	VideoCodec     string
	Preset         string
	CRF            int
	PixelFormat    string
	AudioCodec     string
	AudioBitrate   string
	FPS            float64
	VerifyDuration bool
}

// Job is one format of one soundbite.
type Job struct {
	Width            int
	Height           int
	Frames           iter.Seq[*image.RGBA]
	Audio            *audio.Track
	OutputPath       string
	ExpectedDuration float64
}

// Result describes a finished video.
type Result struct {
	Path     string
	Duration float64
	Frames   int
	Elapsed  time.Duration
}

// Encoder drives ffmpeg.
type Encoder struct {
	opts   Options
	logger *slog.Logger
}

// New returns an Encoder with defaults filled in.
func New(opts Options, logger *slog.Logger) *Encoder {
	if strings.TrimSpace(opts.FFmpeg) == "" {
		opts.FFmpeg = "ffmpeg"
	}
	if strings.TrimSpace(opts.FFprobe) == "" {
		opts.FFprobe = "ffprobe"
	}
	if opts.FPS <= 0 {
		opts.FPS = 24
	}
	return &Encoder{opts: opts, logger: logging.NewComponentLogger(logger, "encoder")}
}

// Encode renders job into job.OutputPath.
func (e *Encoder) Encode(ctx context.Context, job Job) (Result, error) {
	started := time.Now()
	if job.Width <= 0 || job.Height <= 0 || job.Width%2 != 0 || job.Height%2 != 0 {
		return Result{}, services.Wrap(services.ErrEncode, stage, "validate", fmt.Sprintf("invalid frame size %dx%d", job.Width, job.Height), nil)
	}
	if err := job.Audio.Validate(); err != nil {
		return Result{}, services.Wrap(services.ErrEncode, stage, "validate", "audio", err)
	}
	if err := os.MkdirAll(filepath.Dir(job.OutputPath), 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrEncode, stage, "prepare", "create output directory", err)
	}

	audioPath, cleanup, err := writePCM(job.Audio)
	if err != nil {
		return Result{}, services.Wrap(services.ErrEncode, stage, "prepare", "stage audio", err)
	}
	defer cleanup()

	partial := partialPath(job.OutputPath)
	defer os.Remove(partial)

	args := BuildArgs(e.opts, job, audioPath, partial)
	logger := logging.WithContext(ctx, e.logger)
	logger.Debug("ffmpeg encode starting", logging.String("command", e.opts.FFmpeg+" "+strings.Join(args, " ")))

	frames, err := e.run(ctx, args, job)
	if err != nil {
		return Result{}, err
	}

	duration := float64(frames) / e.opts.FPS
	if e.opts.VerifyDuration {
		probed, err := e.verify(ctx, partial, job.ExpectedDuration)
		if err != nil {
			return Result{}, err
		}
		duration = probed
	}

	finalPath, err := finalizeOutput(partial, job.OutputPath)
	if err != nil {
		return Result{}, err
	}
	return Result{Path: finalPath, Duration: duration, Frames: frames, Elapsed: time.Since(started)}, nil
}

func (e *Encoder) run(ctx context.Context, args []string, job Job) (int, error) {
	stderr := &tailBuffer{limit: 8 * 1024}
	cmd := exec.CommandContext(ctx, e.opts.FFmpeg, args...)
	cmd.Stderr = stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return 0, services.Wrap(services.ErrEncode, stage, "ffmpeg", "open stdin", err)
	}
	if err := cmd.Start(); err != nil {
		return 0, services.Wrap(services.ErrEncode, stage, "ffmpeg", "start "+e.opts.FFmpeg, err)
	}

	frames, writeErr := writeFrames(stdin, job)
	closeErr := stdin.Close()
	waitErr := cmd.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return 0, ctxErr
	}
	if waitErr != nil {
		return 0, services.Wrap(services.ErrEncode, stage, "ffmpeg", stderr.String(), waitErr)
	}
	if writeErr != nil {
		return 0, services.Wrap(services.ErrEncode, stage, "frames", "write frames", writeErr)
	}
	if closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
		return 0, services.Wrap(services.ErrEncode, stage, "frames", "close stdin", closeErr)
	}
	if frames == 0 {
		return 0, services.Wrap(services.ErrEncode, stage, "frames", "no frames rendered", nil)
	}
	return frames, nil
}

func writeFrames(w io.Writer, job Job) (int, error) {
	bw := bufio.NewWriterSize(w, job.Width*4*16)
	want := image.Rect(0, 0, job.Width, job.Height)
	count := 0
	for frame := range job.Frames {
		if frame.Bounds() != want {
			return count, fmt.Errorf("frame %d is %v, want %v", count, frame.Bounds(), want)
		}
		if frame.Stride == job.Width*4 {
			if _, err := bw.Write(frame.Pix[:job.Height*frame.Stride]); err != nil {
				return count, err
			}
		} else {
			for y := range job.Height {
				row := frame.Pix[y*frame.Stride : y*frame.Stride+job.Width*4]
				if _, err := bw.Write(row); err != nil {
					return count, err
				}
			}
		}
		count++
	}
	return count, bw.Flush()
}

// BuildArgs returns the ffmpeg arguments for job. Frames arrive as rawvideo
// on stdin; audio is read from audioPath.
func BuildArgs(opts Options, job Job, audioPath, outputPath string) []string {
	args := []string{
		"-hide_banner", "-v", "error", "-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", job.Width, job.Height),
		"-r", formatRate(opts.FPS),
		"-i", "pipe:0",
		"-f", "f32le",
		"-ar", strconv.Itoa(job.Audio.SampleRate),
		"-ac", strconv.Itoa(job.Audio.Channels),
		"-i", audioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", valueOr(opts.VideoCodec, "libx264"),
	}
	if opts.Preset != "" {
		args = append(args, "-preset", opts.Preset)
	}
	if opts.CRF > 0 {
		args = append(args, "-crf", strconv.Itoa(opts.CRF))
	}
	args = append(args,
		"-pix_fmt", valueOr(opts.PixelFormat, "yuv420p"),
		"-c:a", valueOr(opts.AudioCodec, "aac"),
	)
	if opts.AudioBitrate != "" {
		args = append(args, "-b:a", opts.AudioBitrate)
	}
	return append(args, "-movflags", "+faststart", "-f", "mp4", outputPath)
}

// ExportAudio writes track as an MP3 next to the videos.
func (e *Encoder) ExportAudio(ctx context.Context, track *audio.Track, outputPath string) error {
	if err := track.Validate(); err != nil {
		return services.Wrap(services.ErrEncode, stage, "export audio", "validate", err)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return services.Wrap(services.ErrEncode, stage, "export audio", "create output directory", err)
	}
	audioPath, cleanup, err := writePCM(track)
	if err != nil {
		return services.Wrap(services.ErrEncode, stage, "export audio", "stage audio", err)
	}
	defer cleanup()

	partial := partialPath(outputPath)
	defer os.Remove(partial)
	args := []string{
		"-hide_banner", "-v", "error", "-y",
		"-f", "f32le",
		"-ar", strconv.Itoa(track.SampleRate),
		"-ac", strconv.Itoa(track.Channels),
		"-i", audioPath,
		"-c:a", "libmp3lame",
		"-b:a", valueOr(e.opts.AudioBitrate, "192k"),
		"-f", "mp3", partial,
	}
	stderr := &tailBuffer{limit: 4 * 1024}
	cmd := exec.CommandContext(ctx, e.opts.FFmpeg, args...)
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return services.Wrap(services.ErrEncode, stage, "export audio", stderr.String(), err)
	}
	_, err = finalizeOutput(partial, outputPath)
	return err
}

// writePCM stages track as raw f32le in the temp directory.
func writePCM(track *audio.Track) (string, func(), error) {
	f, err := os.CreateTemp("", "audiogram-*.f32le")
	if err != nil {
		return "", func() {}, err
	}
	cleanup := func() { _ = os.Remove(f.Name()) }
	const chunk = 64 * 1024
	for start := 0; start < len(track.Samples); start += chunk {
		end := min(start+chunk, len(track.Samples))
		if _, err := f.Write(audio.EncodeFloat32LE(track.Samples[start:end])); err != nil {
			f.Close()
			cleanup()
			return "", func() {}, err
		}
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", func() {}, err
	}
	return f.Name(), cleanup, nil
}

func formatRate(fps float64) string {
	return strconv.FormatFloat(fps, 'f', -1, 64)
}

func valueOr(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	limit int
	buf   []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = t.buf[over:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	return strings.TrimSpace(string(t.buf))
}
