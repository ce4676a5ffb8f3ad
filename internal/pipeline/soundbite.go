package pipeline

import (
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"audiogram/internal/encoding"
	"audiogram/internal/logging"
	"audiogram/internal/media/audio"
	"audiogram/internal/output"
	"audiogram/internal/podcast"
	"audiogram/internal/render"
	"audiogram/internal/services"
	"audiogram/internal/timerange"
	"audiogram/internal/transcript"
	"audiogram/internal/waveform"
)

func (p *Pipeline) soundbite(ctx context.Context, req Request, sb podcast.Soundbite, script *transcript.Transcript) SoundbiteResult {
	ctx = services.WithSoundbite(ctx, sb.Number)
	logger := logging.WithContext(ctx, p.logger)
	started := time.Now()
	res := SoundbiteResult{Number: sb.Number, Title: sb.DisplayTitle()}

	r, warnings, err := p.resolve(ctx, sb, episodeDuration(req))
	res.Range, res.Warnings = r, warnings
	if err != nil {
		return p.failSoundbite(ctx, res, err)
	}

	track, err := req.Audio.Extract(services.WithStage(ctx, "slice"), r)
	if err != nil {
		return p.failSoundbite(ctx, res, err)
	}
	cues := slices.Collect(transcript.Align(script, r, res.Title))

	title := render.ResolveTitle(p.settings.titleSource, render.Titles{
		Podcast:   req.Podcast.Title,
		Episode:   req.Episode.Title,
		Soundbite: sb.Title,
	})
	res.Renders = p.renderFormats(ctx, req, sb.Number, title, track, cues, r)
	res.Status = StatusFailed
	if res.Succeeded() > 0 {
		res.Status = StatusSucceeded
	}
	if res.Status == StatusFailed {
		res.Err = firstRenderError(res.Renders)
	}

	p.writeSidecars(ctx, req, &res, track, cues)

	logger.Info("soundbite finished",
		logging.String("status", string(res.Status)),
		logging.Int("formats_ok", res.Succeeded()),
		logging.Int("formats_total", len(res.Renders)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return res
}

func (p *Pipeline) resolve(ctx context.Context, sb podcast.Soundbite, duration float64) (timerange.Range, []timerange.Warning, error) {
	r, warnings, err := timerange.Resolve(sb, duration)
	logger := logging.WithContext(services.WithStage(ctx, "resolve"), p.logger)
	for _, w := range warnings {
		logging.WarnWithContext(logger, "soundbite range adjusted", "range_"+string(w.Kind),
			logging.String("detail", w.Message),
			logging.String(logging.FieldErrorHint, "check the soundbite timing in the feed"),
			logging.String(logging.FieldImpact, "the excerpt is shorter than declared"),
		)
	}
	if err == nil {
		logger.Debug("soundbite range resolved",
			logging.Seconds("start_seconds", r.Start),
			logging.Seconds("end_seconds", r.End),
		)
	}
	return r, warnings, err
}

func (p *Pipeline) failSoundbite(ctx context.Context, res SoundbiteResult, err error) SoundbiteResult {
	res.Status = StatusFailed
	res.Err = err
	if services.FailureScope(err) < services.ScopeRun {
		logging.ErrorWithContext(logging.WithContext(ctx, p.logger), "soundbite failed", "soundbite_failed",
			logging.Error(err),
			logging.String("scope", services.FailureScope(err).String()),
		)
	}
	return res
}

func (p *Pipeline) renderFormats(ctx context.Context, req Request, number int, title string, track *audio.Track, cues []transcript.AlignedCue, r timerange.Range) []RenderResult {
	renders := make([]RenderResult, len(p.settings.formats))
	var group errgroup.Group
	group.SetLimit(p.settings.formatLimit)
	for i, spec := range p.settings.formats {
		group.Go(func() error {
			renders[i] = p.renderFormat(services.WithFormat(ctx, spec.Name), req, number, spec, title, track, cues, r)
			return nil
		})
	}
	_ = group.Wait()
	return renders
}

func (p *Pipeline) renderFormat(ctx context.Context, req Request, number int, spec render.FormatSpec, title string, track *audio.Track, cues []transcript.AlignedCue, r timerange.Range) RenderResult {
	out := RenderResult{Format: spec.Name, Status: StatusFailed}
	logger := logging.WithContext(ctx, p.logger)
	if p.writer == nil {
		out.Err = services.Wrap(services.ErrConfiguration, "pipeline", "render", "no output writer configured", nil)
		return out
	}
	out.Path = p.writer.Path(output.VideoName(req.Episode.Number, number, spec.Name, p.settings.showSubtitles))

	composer, err := render.NewComposer(spec, req.Cover, p.settings.style(title))
	if err != nil {
		out.Err = services.Wrap(services.ErrEncode, "compose", spec.Name, "", err)
		return out
	}
	opts := p.settings.wave
	opts.Bars = composer.BarCount()
	wave, err := waveform.New(track, opts)
	if err != nil {
		out.Err = services.Wrap(services.ErrEncode, "waveform", spec.Name, "", err)
		return out
	}

	result, err := p.encoder.Encode(services.WithStage(ctx, "encode"), encoding.Job{
		Width:            spec.Width,
		Height:           spec.Height,
		Frames:           composer.Frames(wave.Frames(), cues),
		Audio:            track,
		OutputPath:       out.Path,
		ExpectedDuration: r.Duration(),
	})
	if err != nil {
		out.Err = err
		if services.FailureScope(err) < services.ScopeRun {
			logging.ErrorWithContext(logger, "format render failed", "format_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "inspect the ffmpeg output in the error and the encoder settings"),
			)
		}
		return out
	}
	out.Status = StatusSucceeded
	out.Path = result.Path
	out.Duration = result.Duration
	out.Frames = result.Frames
	logger.Info("format rendered",
		logging.String("path", out.Path),
		logging.Seconds("duration_seconds", out.Duration),
		logging.Int("frames", out.Frames),
	)
	return out
}

func firstRenderError(renders []RenderResult) error {
	for _, r := range renders {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}

// writeSidecars produces the caption text, SRT, and MP3 next to the videos.
func (p *Pipeline) writeSidecars(ctx context.Context, req Request, res *SoundbiteResult, track *audio.Track, cues []transcript.AlignedCue) {
	caption := output.CaptionData{
		EpisodeNumber:  req.Episode.Number,
		EpisodeTitle:   req.Episode.Title,
		EpisodeLink:    req.Episode.Link,
		SoundbiteTitle: res.Title,
		Transcript:     transcript.FullText(slices.Values(cues)),
		Hashtags:       output.NormalizeHashtags(req.Podcast.Keywords, req.Episode.Keywords, p.settings.hashtags),
	}
	res.Caption = &caption
	if p.writer == nil {
		return
	}

	var errs []error
	record := func(kind string, err error) {
		errs = append(errs, fmt.Errorf("%s: %w", kind, err))
		logging.WarnWithContext(logging.WithContext(ctx, p.logger), "sidecar not written", "sidecar_failed",
			logging.String("kind", kind),
			logging.Error(err),
			logging.String(logging.FieldImpact, "videos are unaffected"),
		)
	}

	if p.settings.writeCaption {
		if path, err := p.writer.WriteCaption(ctx, caption, res.Number); err != nil {
			record("caption", err)
		} else {
			res.CaptionPath = path
		}
	}
	if p.settings.writeSRT {
		if path, err := p.writer.WriteSRT(ctx, req.Episode.Number, res.Number, slices.Values(cues)); err != nil {
			record("srt", err)
		} else {
			res.SRTPath = path
		}
	}
	if p.settings.exportAudio && p.encoder != nil {
		path := p.writer.Path(output.AudioName(req.Episode.Number, res.Number))
		if err := p.encoder.ExportAudio(services.WithStage(ctx, "export"), track, path); err != nil {
			record("audio", err)
		} else {
			res.AudioPath = path
		}
	}
	res.SidecarErrors = errs
}
