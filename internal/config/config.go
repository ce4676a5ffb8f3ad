package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Feed describes where episodes and soundbites come from.
type Feed struct {
	URL            string `toml:"url" yaml:"url"`
	UserAgent      string `toml:"user_agent" yaml:"user_agent"`
	TimeoutSeconds int    `toml:"timeout_seconds" yaml:"timeout_seconds"`
}

// Selection holds the default episode and soundbite choices used when no
// CLI flag overrides them.
type Selection struct {
	Episodes   string `toml:"episodes" yaml:"episodes"`
	Soundbites string `toml:"soundbites" yaml:"soundbites"`
}

// Paths contains directory configuration.
type Paths struct {
	OutputDir   string `toml:"output_dir" yaml:"output_dir"`
	LogDir      string `toml:"log_dir" yaml:"log_dir"`
	CacheDir    string `toml:"cache_dir" yaml:"cache_dir"`
	HistoryPath string `toml:"history_path" yaml:"history_path"`
}

// Render contains the toggles shared by every output format.
type Render struct {
	FPS               float64 `toml:"fps" yaml:"fps"`
	ShowSubtitles     bool    `toml:"show_subtitles" yaml:"show_subtitles"`
	UseEpisodeCover   bool    `toml:"use_episode_cover" yaml:"use_episode_cover"`
	HeaderTitleSource string  `toml:"header_title_source" yaml:"header_title_source"`
	HeaderLabel       string  `toml:"header_label" yaml:"header_label"`
	StripPunctuation  bool    `toml:"strip_punctuation" yaml:"strip_punctuation"`
	ExportAudio       bool    `toml:"export_audio" yaml:"export_audio"`
	WriteCaption      bool    `toml:"write_caption" yaml:"write_caption"`
	WriteSRT          bool    `toml:"write_srt" yaml:"write_srt"`
	VerifyDuration    bool    `toml:"verify_duration" yaml:"verify_duration"`
}

// Waveform tunes the animated bar visualisation.
type Waveform struct {
	Method               string  `toml:"method" yaml:"method"`
	Normalization        string  `toml:"normalization" yaml:"normalization"`
	RollingWindowSeconds float64 `toml:"rolling_window_seconds" yaml:"rolling_window_seconds"`
	BarWidth             int     `toml:"bar_width" yaml:"bar_width"`
	BarSpacing           int     `toml:"bar_spacing" yaml:"bar_spacing"`
	Mirror               bool    `toml:"mirror" yaml:"mirror"`
}

// Colors are RGB triplets (0-255).
type Colors struct {
	Primary      []int `toml:"primary" yaml:"primary"`
	Background   []int `toml:"background" yaml:"background"`
	Text         []int `toml:"text" yaml:"text"`
	TranscriptBG []int `toml:"transcript_bg" yaml:"transcript_bg"`
}

// Fonts are optional TrueType/OpenType font paths. Empty values use the
// bundled Go fonts.
type Fonts struct {
	Header     string `toml:"header" yaml:"header"`
	Transcript string `toml:"transcript" yaml:"transcript"`
}

// Format is one output video shape.
type Format struct {
	Width       int    `toml:"width" yaml:"width"`
	Height      int    `toml:"height" yaml:"height"`
	Enabled     *bool  `toml:"enabled" yaml:"enabled"`
	Description string `toml:"description" yaml:"description"`
}

// IsEnabled reports whether the format should be rendered. Formats are
// enabled unless explicitly switched off.
func (f Format) IsEnabled() bool {
	return f.Enabled == nil || *f.Enabled
}

// Captions configures the social caption text written next to each video.
type Captions struct {
	EpisodePrefix    string   `toml:"episode_prefix" yaml:"episode_prefix"`
	ListenFullPrefix string   `toml:"listen_full_prefix" yaml:"listen_full_prefix"`
	Hashtags         []string `toml:"hashtags" yaml:"hashtags"`
}

// ManualSoundbite declares a soundbite that is missing from the feed.
type ManualSoundbite struct {
	Start    float64  `toml:"start" yaml:"start"`
	Duration *float64 `toml:"duration" yaml:"duration"`
	End      *float64 `toml:"end" yaml:"end"`
	Title    string   `toml:"title" yaml:"title"`
}

// Concurrency bounds parallel work.
type Concurrency struct {
	Soundbites int `toml:"soundbites" yaml:"soundbites"`
	Formats    int `toml:"formats" yaml:"formats"`
}

// Encoder configures the ffmpeg invocation.
type Encoder struct {
	FFmpeg       string `toml:"ffmpeg" yaml:"ffmpeg"`
	FFprobe      string `toml:"ffprobe" yaml:"ffprobe"`
	VideoCodec   string `toml:"video_codec" yaml:"video_codec"`
	Preset       string `toml:"preset" yaml:"preset"`
	CRF          int    `toml:"crf" yaml:"crf"`
	PixelFormat  string `toml:"pixel_format" yaml:"pixel_format"`
	AudioCodec   string `toml:"audio_codec" yaml:"audio_codec"`
	AudioBitrate string `toml:"audio_bitrate" yaml:"audio_bitrate"`
	SampleRate   int    `toml:"sample_rate" yaml:"sample_rate"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format" yaml:"format"`
	Level  string `toml:"level" yaml:"level"`
}

// Config encapsulates all configuration values for audiogram.
//
// Configuration sections by subsystem:
//   - Feed: RSS source and HTTP behaviour
//   - Selection: default episode/soundbite choices
//   - Paths: output, log, cache, and history locations
//   - Render, Waveform, Colors, Fonts, Formats: video composition
//   - Captions: caption text labels and hashtags
//   - ManualSoundbites: soundbites keyed by episode GUID or number
//   - Concurrency: soundbite and format worker limits
//   - Encoder: ffmpeg/ffprobe settings
//   - Logging: log format and level
type Config struct {
	Feed             Feed                         `toml:"feed" yaml:"feed"`
	Selection        Selection                    `toml:"selection" yaml:"selection"`
	Paths            Paths                        `toml:"paths" yaml:"paths"`
	Render           Render                       `toml:"render" yaml:"render"`
	Waveform         Waveform                     `toml:"waveform" yaml:"waveform"`
	Colors           Colors                       `toml:"colors" yaml:"colors"`
	Fonts            Fonts                        `toml:"fonts" yaml:"fonts"`
	Formats          map[string]Format            `toml:"formats" yaml:"formats"`
	Captions         Captions                     `toml:"captions" yaml:"captions"`
	ManualSoundbites map[string][]ManualSoundbite `toml:"manual_soundbites" yaml:"manual_soundbites"`
	Concurrency      Concurrency                  `toml:"concurrency" yaml:"concurrency"`
	Encoder          Encoder                      `toml:"encoder" yaml:"encoder"`
	Logging          Logging                      `toml:"logging" yaml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. Files ending in .yaml or .yml are decoded as YAML,
// accepting both the nested schema and the older flat config.yml keys. Everything else is TOML.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		data, err := os.ReadFile(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defaults := cfg.Formats
		cfg.Formats = nil
		if err := decode(resolvedPath, data, &cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
		cfg.Formats = mergeFormats(defaults, cfg.Formats)
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// mergeFormats overlays formats declared in a file onto the defaults so a
// file that only tweaks one format keeps the others.
func mergeFormats(defaults, declared map[string]Format) map[string]Format {
	merged := make(map[string]Format, len(defaults)+len(declared))
	for name, format := range defaults {
		merged[name] = format
	}
	for name, format := range declared {
		merged[strings.ToLower(strings.TrimSpace(name))] = format
	}
	return merged
}

func decode(path string, data []byte, cfg *Config) error {
	if isYAML(path) {
		return decodeYAML(data, cfg)
	}
	decoder := toml.NewDecoder(bytes.NewReader(data))
	return decoder.Decode(cfg)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	candidates := []string{defaultPath}
	for _, name := range []string{"audiogram.toml", "config.yml", "config.yaml"} {
		projectPath, err := filepath.Abs(name)
		if err != nil {
			return "", false, err
		}
		candidates = append(candidates, projectPath)
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output, log, and cache directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.LogDir, c.Paths.CacheDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable used for decoding and encoding.
func (c *Config) FFmpegBinary() string {
	if v := strings.TrimSpace(c.Encoder.FFmpeg); v != "" {
		return v
	}
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable used for media inspection.
func (c *Config) FFprobeBinary() string {
	if v := strings.TrimSpace(c.Encoder.FFprobe); v != "" {
		return v
	}
	return "ffprobe"
}

// EnabledFormats returns the names of enabled formats in a stable order:
// vertical, square, horizontal first, then any custom formats alphabetically.
func (c *Config) EnabledFormats() []string {
	names := make([]string, 0, len(c.Formats))
	for _, name := range sortedFormatNames(c.Formats) {
		if c.Formats[name].IsEnabled() {
			names = append(names, name)
		}
	}
	return names
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "audiogram")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/audiogram"
	}
	return filepath.Join(home, ".cache", "audiogram")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
