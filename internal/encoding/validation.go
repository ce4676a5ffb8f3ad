package encoding

import (
	"context"
	"fmt"
	"math"

	"audiogram/internal/logging"
	"audiogram/internal/media/ffprobe"
	"audiogram/internal/services"
)

// verify probes the encoded file and checks it carries one video and one
// audio stream whose length is within one frame of expected.
func (e *Encoder) verify(ctx context.Context, path string, expected float64) (float64, error) {
	result, err := encodeProbe(ctx, e.opts.FFprobe, path)
	if err != nil {
		return 0, services.Wrap(services.ErrEncode, stage, "verify", "ffprobe encoded output", err)
	}
	for _, kind := range []string{ffprobe.KindVideo, ffprobe.KindAudio} {
		if n := result.Count(kind); n != 1 {
			return 0, services.Wrap(services.ErrEncode, stage, "verify", fmt.Sprintf("expected 1 %s stream, found %d", kind, n), nil)
		}
	}

	duration := result.Duration(ffprobe.KindVideo)
	if math.IsNaN(duration) {
		return 0, services.Wrap(services.ErrEncode, stage, "verify", "encoded output reports no duration", nil)
	}
	if expected <= 0 {
		return duration, nil
	}

	tolerance := DurationTolerance(e.opts.FPS)
	if delta := math.Abs(duration - expected); delta > tolerance {
		return 0, services.Wrap(
			services.ErrEncode, stage, "verify",
			fmt.Sprintf("duration %.3fs differs from expected %.3fs by %.3fs (tolerance %.3fs)", duration, expected, delta, tolerance),
			nil,
		)
	}
	logging.WithContext(ctx, e.logger).Debug("encoded duration verified",
		logging.Seconds("duration_seconds", duration),
		logging.Seconds("expected_seconds", expected),
	)
	return duration, nil
}

// DurationTolerance is the allowed gap between a video's duration and its
// excerpt: one frame.
func DurationTolerance(fps float64) float64 {
	if fps <= 0 {
		return 0
	}
	return 1 / fps
}
