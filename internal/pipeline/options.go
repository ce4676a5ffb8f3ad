package pipeline

import (
	"fmt"

	"audiogram/internal/config"
	"audiogram/internal/output"
	"audiogram/internal/render"
	"audiogram/internal/waveform"
)

// settings is the run configuration resolved once at construction.
type settings struct {
	fps            float64
	formats        []render.FormatSpec
	titleSource    render.TitleSource
	label          string
	palette        render.Palette
	fonts          render.FontData
	showSubtitles  bool
	stripPunct     bool
	barWidth       int
	barSpacing     int
	wave           waveform.Options
	soundbiteLimit int
	formatLimit    int
	exportAudio    bool
	writeCaption   bool
	writeSRT       bool
	hashtags       []string
}

func newSettings(cfg *config.Config) (settings, error) {
	source, err := render.ParseTitleSource(cfg.Render.HeaderTitleSource)
	if err != nil {
		return settings{}, err
	}
	fonts, err := render.LoadFontData(cfg.Fonts.Header, cfg.Fonts.Transcript)
	if err != nil {
		return settings{}, fmt.Errorf("load fonts: %w", err)
	}
	formats := FormatSpecs(cfg)
	if len(formats) == 0 {
		return settings{}, fmt.Errorf("no output formats enabled")
	}
	fps := cfg.Render.FPS
	if fps <= 0 {
		fps = 24
	}
	return settings{
		fps:         fps,
		formats:     formats,
		titleSource: source,
		label:       cfg.Render.HeaderLabel,
		palette: render.Palette{
			Primary:      render.RGB(cfg.Colors.Primary),
			Background:   render.RGB(cfg.Colors.Background),
			Text:         render.RGB(cfg.Colors.Text),
			TranscriptBG: render.RGB(cfg.Colors.TranscriptBG),
		},
		fonts:         fonts,
		showSubtitles: cfg.Render.ShowSubtitles,
		stripPunct:    cfg.Render.StripPunctuation,
		barWidth:      cfg.Waveform.BarWidth,
		barSpacing:    cfg.Waveform.BarSpacing,
		wave: waveform.Options{
			FPS:           fps,
			Method:        waveform.Method(cfg.Waveform.Method),
			Normalization: waveform.Normalization(cfg.Waveform.Normalization),
			RollingWindow: cfg.Waveform.RollingWindowSeconds,
			Mirror:        cfg.Waveform.Mirror,
		},
		soundbiteLimit: max(cfg.Concurrency.Soundbites, 1),
		formatLimit:    max(cfg.Concurrency.Formats, 1),
		exportAudio:    cfg.Render.ExportAudio,
		writeCaption:   cfg.Render.WriteCaption,
		writeSRT:       cfg.Render.WriteSRT,
		hashtags:       cfg.Captions.Hashtags,
	}, nil
}

// FormatSpecs lists the enabled formats in configuration order.
func FormatSpecs(cfg *config.Config) []render.FormatSpec {
	names := cfg.EnabledFormats()
	specs := make([]render.FormatSpec, 0, len(names))
	for _, name := range names {
		f := cfg.Formats[name]
		specs = append(specs, render.FormatSpec{
			Name:        name,
			Width:       f.Width,
			Height:      f.Height,
			Enabled:     true,
			Description: f.Description,
		})
	}
	return specs
}

// CaptionLabels returns the caption labels from configuration.
func CaptionLabels(cfg *config.Config) output.Labels {
	return output.Labels{
		EpisodePrefix:    cfg.Captions.EpisodePrefix,
		ListenFullPrefix: cfg.Captions.ListenFullPrefix,
	}
}

func (s settings) style(title string) render.Style {
	return render.Style{
		Palette:          s.palette,
		Label:            s.label,
		Title:            title,
		ShowSubtitles:    s.showSubtitles,
		StripPunctuation: s.stripPunct,
		BarWidth:         s.barWidth,
		BarSpacing:       s.barSpacing,
		Fonts:            s.fonts,
	}
}
