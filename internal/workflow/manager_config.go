package workflow

import (
	"time"

	"audiogram/internal/assets"
	"audiogram/internal/config"
	"audiogram/internal/encoding"
	"audiogram/internal/feed"
	"audiogram/internal/media/audio"
	"audiogram/internal/services"
)

func feedTimeout(cfg *config.Config) time.Duration {
	if cfg.Feed.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(cfg.Feed.TimeoutSeconds) * time.Second
}

func feedOptions(cfg *config.Config) feed.Options {
	return feed.Options{
		UserAgent: cfg.Feed.UserAgent,
		Timeout:   feedTimeout(cfg),
		Manual:    feed.ManualFromConfig(cfg.ManualSoundbites),
	}
}

// assetOptions leaves whole-file downloads unbounded; episode audio can be
// hours long. Covers and transcripts use the feed timeout.
func assetOptions(cfg *config.Config) assets.Options {
	return assets.Options{
		CacheDir:  cfg.Paths.CacheDir,
		UserAgent: cfg.Feed.UserAgent,
		Timeout:   feedTimeout(cfg),
	}
}

func audioDecoder(cfg *config.Config) audio.FFmpegDecoder {
	return audio.FFmpegDecoder{
		FFmpeg:     cfg.FFmpegBinary(),
		FFprobe:    cfg.FFprobeBinary(),
		SampleRate: cfg.Encoder.SampleRate,
	}
}

func encoderOptions(cfg *config.Config) encoding.Options {
	return encoding.Options{
		FFmpeg:         cfg.FFmpegBinary(),
		FFprobe:        cfg.FFprobeBinary(),
		VideoCodec:     cfg.Encoder.VideoCodec,
		Preset:         cfg.Encoder.Preset,
		CRF:            cfg.Encoder.CRF,
		PixelFormat:    cfg.Encoder.PixelFormat,
		AudioCodec:     cfg.Encoder.AudioCodec,
		AudioBitrate:   cfg.Encoder.AudioBitrate,
		FPS:            cfg.Render.FPS,
		VerifyDuration: cfg.Render.VerifyDuration,
	}
}

func configurationError(operation string, err error) error {
	return services.Wrap(services.ErrConfiguration, "workflow", operation, "", err)
}
