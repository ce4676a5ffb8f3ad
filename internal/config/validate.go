package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. The feed URL is not required
// here because CLI flags may still supply it; callers that need a feed call
// RequireFeedURL.
func (c *Config) Validate() error {
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateWaveform(); err != nil {
		return err
	}
	if err := c.validateColors(); err != nil {
		return err
	}
	if err := c.validateFormats(); err != nil {
		return err
	}
	if err := c.validateManualSoundbites(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

// RequireFeedURL reports a helpful error when no feed URL is configured.
func (c *Config) RequireFeedURL() error {
	if strings.TrimSpace(c.Feed.URL) != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return fmt.Errorf("feed.url is required. Pass --feed-url, set %s, or edit %s (create with 'audiogram config init')", FeedURLEnv, defaultPath)
}

func (c *Config) validateRender() error {
	if c.Render.FPS > 120 {
		return errors.New("render.fps must be between 1 and 120")
	}
	switch c.Render.HeaderTitleSource {
	case "auto", "podcast", "episode", "soundbite", "none":
	default:
		return fmt.Errorf("render.header_title_source must be one of auto, podcast, episode, soundbite, none (got %q)", c.Render.HeaderTitleSource)
	}
	return nil
}

func (c *Config) validateWaveform() error {
	switch c.Waveform.Method {
	case "peak", "rms":
	default:
		return fmt.Errorf("waveform.method must be peak or rms (got %q)", c.Waveform.Method)
	}
	switch c.Waveform.Normalization {
	case "global", "rolling":
	default:
		return fmt.Errorf("waveform.normalization must be global or rolling (got %q)", c.Waveform.Normalization)
	}
	return nil
}

func (c *Config) validateColors() error {
	checks := []struct {
		key   string
		value []int
	}{
		{"colors.primary", c.Colors.Primary},
		{"colors.background", c.Colors.Background},
		{"colors.text", c.Colors.Text},
		{"colors.transcript_bg", c.Colors.TranscriptBG},
	}
	for _, check := range checks {
		if len(check.value) != 3 {
			return fmt.Errorf("%s must have exactly 3 components (got %d)", check.key, len(check.value))
		}
		for _, component := range check.value {
			if component < 0 || component > 255 {
				return fmt.Errorf("%s components must be between 0 and 255 (got %d)", check.key, component)
			}
		}
	}
	return nil
}

func (c *Config) validateFormats() error {
	enabled := 0
	for name, format := range c.Formats {
		if format.Width <= 0 || format.Height <= 0 {
			return fmt.Errorf("formats.%s requires positive width and height", name)
		}
		if format.Width%2 != 0 || format.Height%2 != 0 {
			return fmt.Errorf("formats.%s dimensions must be even for yuv420p encoding (got %dx%d)", name, format.Width, format.Height)
		}
		if format.IsEnabled() {
			enabled++
		}
	}
	if enabled == 0 {
		return errors.New("formats: at least one format must be enabled")
	}
	return nil
}

func (c *Config) validateManualSoundbites() error {
	for key, entries := range c.ManualSoundbites {
		for i, sb := range entries {
			if sb.Duration == nil && sb.End == nil {
				return fmt.Errorf("manual_soundbites.%s[%d] requires duration or end", key, i)
			}
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
}
