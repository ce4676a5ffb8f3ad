package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// legacyConfig holds the flat top-level keys of the original config.yml
// layout. Keys shared with the nested schema (colors, fonts, formats,
// manual_soundbites) decode straight into Config.
type legacyConfig struct {
	FeedURL           *string        `yaml:"feed_url"`
	OutputDir         *string        `yaml:"output_dir"`
	Episode           *yamlScalar    `yaml:"episode"`
	Soundbites        *yamlScalar    `yaml:"soundbites"`
	ShowSubtitles     *bool          `yaml:"show_subtitles"`
	UseEpisodeCover   *bool          `yaml:"use_episode_cover"`
	HeaderTitleSource *string        `yaml:"header_title_source"`
	CaptionLabels     *legacyCaption `yaml:"caption_labels"`
}

type legacyCaption struct {
	EpisodePrefix    *string `yaml:"episode_prefix"`
	ListenFullPrefix *string `yaml:"listen_full_prefix"`
}

// decodeYAML reads the nested schema first, then overlays any flat keys.
func decodeYAML(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}
	var legacy legacyConfig
	if err := yaml.Unmarshal(data, &legacy); err != nil {
		return err
	}
	legacy.apply(cfg)
	return nil
}

func (l legacyConfig) apply(cfg *Config) {
	if l.FeedURL != nil {
		cfg.Feed.URL = *l.FeedURL
	}
	if l.OutputDir != nil {
		cfg.Paths.OutputDir = *l.OutputDir
	}
	if l.Episode != nil {
		cfg.Selection.Episodes = string(*l.Episode)
	}
	if l.Soundbites != nil {
		cfg.Selection.Soundbites = string(*l.Soundbites)
	}
	if l.ShowSubtitles != nil {
		cfg.Render.ShowSubtitles = *l.ShowSubtitles
	}
	if l.UseEpisodeCover != nil {
		cfg.Render.UseEpisodeCover = *l.UseEpisodeCover
	}
	if l.HeaderTitleSource != nil {
		cfg.Render.HeaderTitleSource = *l.HeaderTitleSource
	}
	if l.CaptionLabels != nil {
		if v := l.CaptionLabels.EpisodePrefix; v != nil {
			cfg.Captions.EpisodePrefix = *v
		}
		if v := l.CaptionLabels.ListenFullPrefix; v != nil {
			cfg.Captions.ListenFullPrefix = *v
		}
	}
}

// yamlScalar keeps a number or string scalar as text.
type yamlScalar string

func (s *yamlScalar) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a single value", node.Line)
	}
	*s = yamlScalar(node.Value)
	return nil
}

// yamlNumber accepts both 20 and '20'.
type yamlNumber float64

func (n *yamlNumber) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a number", node.Line)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(node.Value), 64)
	if err != nil {
		return fmt.Errorf("line %d: %q is not a number", node.Line, node.Value)
	}
	*n = yamlNumber(v)
	return nil
}

// UnmarshalYAML lets manual soundbites use quoted numbers and the older
// text key in place of title.
func (m *ManualSoundbite) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Start    yamlNumber  `yaml:"start"`
		Duration *yamlNumber `yaml:"duration"`
		End      *yamlNumber `yaml:"end"`
		Title    string      `yaml:"title"`
		Text     string      `yaml:"text"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*m = ManualSoundbite{Start: float64(raw.Start), Title: raw.Title}
	if m.Title == "" {
		m.Title = raw.Text
	}
	if raw.Duration != nil {
		v := float64(*raw.Duration)
		m.Duration = &v
	}
	if raw.End != nil {
		v := float64(*raw.End)
		m.End = &v
	}
	return nil
}
