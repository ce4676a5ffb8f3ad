package config

import (
	"slices"
)

const (
	defaultConfigPath        = "~/.config/audiogram/config.toml"
	defaultOutputDir         = "./output"
	defaultLogDir            = "~/.local/share/audiogram/logs"
	defaultHistoryFile       = "history.db"
	defaultUserAgent         = "audiogram/dev (+https://podcastindex.org/namespace/1.0)"
	defaultFeedTimeout       = 30
	defaultEpisodeSelection  = "last"
	defaultFPS               = 24
	defaultHeaderTitleSource = "auto"
	defaultHeaderLabel       = "PODCAST"
	defaultWaveformMethod    = "peak"
	defaultNormalization     = "global"
	defaultRollingWindow     = 2.0
	defaultBarWidth          = 12
	defaultBarSpacing        = 3
	defaultEpisodePrefix     = "Episode"
	defaultListenFullPrefix  = "Listen to the full episode"
	defaultSoundbiteWorkers  = 2
	defaultFormatWorkers     = 3
	defaultVideoCodec        = "libx264"
	defaultPreset            = "veryfast"
	defaultCRF               = 23
	defaultPixelFormat       = "yuv420p"
	defaultAudioCodec        = "aac"
	defaultAudioBitrate      = "192k"
	defaultSampleRate        = 44100
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"

	FormatVertical   = "vertical"
	FormatSquare     = "square"
	FormatHorizontal = "horizontal"
)

var (
	defaultPrimary      = []int{242, 101, 34}
	defaultBackground   = []int{235, 213, 197}
	defaultText         = []int{255, 255, 255}
	defaultTranscriptBG = []int{0, 0, 0}
)

// builtinFormats lists the three shapes every config knows about, in render order.
var builtinFormats = []string{FormatVertical, FormatSquare, FormatHorizontal}

func defaultFormats() map[string]Format {
	return map[string]Format{
		FormatVertical:   {Width: 1080, Height: 1920, Description: "Vertical 9:16 (1080x1920) - Reels, Stories, Shorts, TikTok"},
		FormatSquare:     {Width: 1080, Height: 1080, Description: "Square 1:1 (1080x1080) - Instagram, Mastodon, LinkedIn"},
		FormatHorizontal: {Width: 1920, Height: 1080, Description: "Horizontal 16:9 (1920x1080) - YouTube"},
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Feed: Feed{
			UserAgent:      defaultUserAgent,
			TimeoutSeconds: defaultFeedTimeout,
		},
		Selection: Selection{
			Episodes: defaultEpisodeSelection,
		},
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			CacheDir:  defaultCacheDir(),
		},
		Render: Render{
			FPS:               defaultFPS,
			ShowSubtitles:     true,
			UseEpisodeCover:   false,
			HeaderTitleSource: defaultHeaderTitleSource,
			HeaderLabel:       defaultHeaderLabel,
			StripPunctuation:  true,
			ExportAudio:       true,
			WriteCaption:      true,
			WriteSRT:          true,
			VerifyDuration:    true,
		},
		Waveform: Waveform{
			Method:               defaultWaveformMethod,
			Normalization:        defaultNormalization,
			RollingWindowSeconds: defaultRollingWindow,
			BarWidth:             defaultBarWidth,
			BarSpacing:           defaultBarSpacing,
			Mirror:               true,
		},
		Colors: Colors{
			Primary:      slices.Clone(defaultPrimary),
			Background:   slices.Clone(defaultBackground),
			Text:         slices.Clone(defaultText),
			TranscriptBG: slices.Clone(defaultTranscriptBG),
		},
		Formats: defaultFormats(),
		Captions: Captions{
			EpisodePrefix:    defaultEpisodePrefix,
			ListenFullPrefix: defaultListenFullPrefix,
		},
		Concurrency: Concurrency{
			Soundbites: defaultSoundbiteWorkers,
			Formats:    defaultFormatWorkers,
		},
		Encoder: Encoder{
			FFmpeg:       "ffmpeg",
			FFprobe:      "ffprobe",
			VideoCodec:   defaultVideoCodec,
			Preset:       defaultPreset,
			CRF:          defaultCRF,
			PixelFormat:  defaultPixelFormat,
			AudioCodec:   defaultAudioCodec,
			AudioBitrate: defaultAudioBitrate,
			SampleRate:   defaultSampleRate,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func sortedFormatNames(formats map[string]Format) []string {
	names := make([]string, 0, len(formats))
	for _, name := range builtinFormats {
		if _, ok := formats[name]; ok {
			names = append(names, name)
		}
	}
	extra := make([]string, 0, len(formats))
	for name := range formats {
		if !slices.Contains(builtinFormats, name) {
			extra = append(extra, name)
		}
	}
	slices.Sort(extra)
	return append(names, extra...)
}
