package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// FeedURLEnv names the environment variable consulted when feed.url is empty.
const FeedURLEnv = "AUDIOGRAM_FEED_URL"

func (c *Config) normalize() error {
	c.normalizeFeed()
	c.normalizeSelection()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRender()
	c.normalizeWaveform()
	c.normalizeColors()
	if err := c.normalizeFonts(); err != nil {
		return err
	}
	c.normalizeFormats()
	c.normalizeCaptions()
	c.normalizeConcurrency()
	c.normalizeEncoder()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeFeed() {
	c.Feed.URL = strings.TrimSpace(c.Feed.URL)
	if c.Feed.URL == "" {
		if value, ok := os.LookupEnv(FeedURLEnv); ok {
			c.Feed.URL = strings.TrimSpace(value)
		}
	}
	c.Feed.UserAgent = strings.TrimSpace(c.Feed.UserAgent)
	if c.Feed.UserAgent == "" {
		c.Feed.UserAgent = defaultUserAgent
	}
	if c.Feed.TimeoutSeconds <= 0 {
		c.Feed.TimeoutSeconds = defaultFeedTimeout
	}
}

func (c *Config) normalizeSelection() {
	c.Selection.Episodes = strings.ToLower(strings.TrimSpace(c.Selection.Episodes))
	if c.Selection.Episodes == "" {
		c.Selection.Episodes = defaultEpisodeSelection
	}
	c.Selection.Soundbites = strings.ToLower(strings.TrimSpace(c.Selection.Soundbites))
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir()
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryPath) == "" {
		c.Paths.HistoryPath = filepath.Join(c.Paths.LogDir, defaultHistoryFile)
	}
	if c.Paths.HistoryPath, err = expandPath(c.Paths.HistoryPath); err != nil {
		return fmt.Errorf("paths.history_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeRender() {
	if c.Render.FPS <= 0 {
		c.Render.FPS = defaultFPS
	}
	c.Render.HeaderTitleSource = strings.ToLower(strings.TrimSpace(c.Render.HeaderTitleSource))
	if c.Render.HeaderTitleSource == "" {
		c.Render.HeaderTitleSource = defaultHeaderTitleSource
	}
	c.Render.HeaderLabel = strings.TrimSpace(c.Render.HeaderLabel)
}

func (c *Config) normalizeWaveform() {
	c.Waveform.Method = strings.ToLower(strings.TrimSpace(c.Waveform.Method))
	if c.Waveform.Method == "" {
		c.Waveform.Method = defaultWaveformMethod
	}
	c.Waveform.Normalization = strings.ToLower(strings.TrimSpace(c.Waveform.Normalization))
	if c.Waveform.Normalization == "" {
		c.Waveform.Normalization = defaultNormalization
	}
	if c.Waveform.RollingWindowSeconds <= 0 {
		c.Waveform.RollingWindowSeconds = defaultRollingWindow
	}
	if c.Waveform.BarWidth <= 0 {
		c.Waveform.BarWidth = defaultBarWidth
	}
	if c.Waveform.BarSpacing < 0 {
		c.Waveform.BarSpacing = defaultBarSpacing
	}
}

func (c *Config) normalizeColors() {
	if len(c.Colors.Primary) == 0 {
		c.Colors.Primary = slices.Clone(defaultPrimary)
	}
	if len(c.Colors.Background) == 0 {
		c.Colors.Background = slices.Clone(defaultBackground)
	}
	if len(c.Colors.Text) == 0 {
		c.Colors.Text = slices.Clone(defaultText)
	}
	if len(c.Colors.TranscriptBG) == 0 {
		c.Colors.TranscriptBG = slices.Clone(defaultTranscriptBG)
	}
}

func (c *Config) normalizeFonts() error {
	var err error
	if c.Fonts.Header, err = expandPath(strings.TrimSpace(c.Fonts.Header)); err != nil {
		return fmt.Errorf("fonts.header: %w", err)
	}
	if c.Fonts.Transcript, err = expandPath(strings.TrimSpace(c.Fonts.Transcript)); err != nil {
		return fmt.Errorf("fonts.transcript: %w", err)
	}
	return nil
}

func (c *Config) normalizeFormats() {
	if c.Formats == nil {
		c.Formats = defaultFormats()
		return
	}
	defaults := defaultFormats()
	normalized := make(map[string]Format, len(c.Formats))
	for name, format := range c.Formats {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if def, ok := defaults[key]; ok {
			if format.Width <= 0 {
				format.Width = def.Width
			}
			if format.Height <= 0 {
				format.Height = def.Height
			}
			if strings.TrimSpace(format.Description) == "" {
				format.Description = def.Description
			}
		}
		format.Description = strings.TrimSpace(format.Description)
		if format.Description == "" {
			format.Description = fmt.Sprintf("%s (%dx%d)", key, format.Width, format.Height)
		}
		normalized[key] = format
	}
	c.Formats = normalized
}

func (c *Config) normalizeCaptions() {
	c.Captions.EpisodePrefix = strings.TrimSpace(c.Captions.EpisodePrefix)
	if c.Captions.EpisodePrefix == "" {
		c.Captions.EpisodePrefix = defaultEpisodePrefix
	}
	c.Captions.ListenFullPrefix = strings.TrimSpace(c.Captions.ListenFullPrefix)
	if c.Captions.ListenFullPrefix == "" {
		c.Captions.ListenFullPrefix = defaultListenFullPrefix
	}
	tags := make([]string, 0, len(c.Captions.Hashtags))
	for _, tag := range c.Captions.Hashtags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	c.Captions.Hashtags = tags
}

func (c *Config) normalizeConcurrency() {
	if c.Concurrency.Soundbites <= 0 {
		c.Concurrency.Soundbites = 1
	}
	if c.Concurrency.Formats <= 0 {
		c.Concurrency.Formats = 1
	}
}

func (c *Config) normalizeEncoder() {
	c.Encoder.FFmpeg = strings.TrimSpace(c.Encoder.FFmpeg)
	if c.Encoder.FFmpeg == "" {
		c.Encoder.FFmpeg = "ffmpeg"
	}
	c.Encoder.FFprobe = strings.TrimSpace(c.Encoder.FFprobe)
	if c.Encoder.FFprobe == "" {
		c.Encoder.FFprobe = "ffprobe"
	}
	if c.Encoder.VideoCodec = strings.TrimSpace(c.Encoder.VideoCodec); c.Encoder.VideoCodec == "" {
		c.Encoder.VideoCodec = defaultVideoCodec
	}
	if c.Encoder.Preset = strings.TrimSpace(c.Encoder.Preset); c.Encoder.Preset == "" {
		c.Encoder.Preset = defaultPreset
	}
	if c.Encoder.CRF <= 0 {
		c.Encoder.CRF = defaultCRF
	}
	if c.Encoder.PixelFormat = strings.TrimSpace(c.Encoder.PixelFormat); c.Encoder.PixelFormat == "" {
		c.Encoder.PixelFormat = defaultPixelFormat
	}
	if c.Encoder.AudioCodec = strings.TrimSpace(c.Encoder.AudioCodec); c.Encoder.AudioCodec == "" {
		c.Encoder.AudioCodec = defaultAudioCodec
	}
	if c.Encoder.AudioBitrate = strings.TrimSpace(c.Encoder.AudioBitrate); c.Encoder.AudioBitrate == "" {
		c.Encoder.AudioBitrate = defaultAudioBitrate
	}
	if c.Encoder.SampleRate <= 0 {
		c.Encoder.SampleRate = defaultSampleRate
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
