package workflow

import (
	"context"
	"image"

	"audiogram/internal/assets"
	"audiogram/internal/feed"
	"audiogram/internal/logging"
	"audiogram/internal/media/audio"
	"audiogram/internal/pipeline"
	"audiogram/internal/podcast"
	"audiogram/internal/services"
	"audiogram/internal/transcript"
)

// prepare gathers the optional inputs of an episode. Only audio failures are
// returned; a missing cover or transcript degrades the render instead.
func (m *Manager) prepare(ctx context.Context, f *feed.Feed, ep podcast.Episode, soundbites []int, dryRun bool) (pipeline.Request, error) {
	req := pipeline.Request{
		Podcast:    f.Podcast,
		Episode:    ep,
		Soundbites: soundbites,
		DryRun:     dryRun,
	}
	req.Cues = m.loadTranscript(services.WithStage(ctx, "transcript"), ep)
	if err := ctx.Err(); err != nil {
		return req, err
	}
	if dryRun {
		return req, nil
	}
	req.Cover = m.loadCover(services.WithStage(ctx, "cover"), f.Podcast, ep)

	src, err := m.openAudio(services.WithStage(ctx, "audio"), ep)
	if err != nil {
		return req, err
	}
	req.Audio = src
	return req, nil
}

func (m *Manager) openAudio(ctx context.Context, ep podcast.Episode) (audio.Source, error) {
	if ep.AudioURL == "" {
		return nil, services.Wrap(services.ErrAudioDecode, "workflow", "audio", "episode has no audio enclosure", nil)
	}
	path, err := m.fetcher.Fetch(ctx, ep.AudioURL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, services.Wrap(services.ErrAudioDecode, "workflow", "download audio", ep.AudioURL, err)
	}
	src, err := m.decoder.Open(ctx, path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	logging.WithContext(ctx, m.logger).Info("episode audio ready",
		logging.String("path", path),
		logging.Seconds("duration_seconds", src.Duration()),
	)
	return src, nil
}

func (m *Manager) loadTranscript(ctx context.Context, ep podcast.Episode) []transcript.Cue {
	if !ep.HasTranscript() {
		return nil
	}
	logger := logging.WithContext(ctx, m.logger)
	res, err := m.fetcher.Get(ctx, ep.TranscriptURL)
	if err != nil {
		logging.WarnWithContext(logger, "transcript unavailable", "transcript_unavailable",
			logging.String("url", ep.TranscriptURL),
			logging.Error(err),
			logging.String(logging.FieldImpact, "captions show soundbite titles instead of transcript text"),
		)
		return nil
	}
	mimeType := ep.TranscriptType
	if mimeType == "" {
		mimeType = res.ContentType
	}
	cues, err := transcript.Parse(res.Data, mimeType)
	if err != nil {
		logging.WarnWithContext(logger, "transcript unreadable", "transcript_unreadable",
			logging.String("url", ep.TranscriptURL),
			logging.String("type", mimeType),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "publish the transcript as SRT, WebVTT, or podcast JSON"),
			logging.String(logging.FieldImpact, "captions show soundbite titles instead of transcript text"),
		)
		return nil
	}
	logger.Debug("transcript loaded", logging.Int("cues", len(cues)))
	return cues
}

// loadCover resolves the artwork once per episode. When the preferred image
// cannot be loaded the other one is tried before giving up.
func (m *Manager) loadCover(ctx context.Context, show podcast.Podcast, ep podcast.Episode) image.Image {
	logger := logging.WithContext(ctx, m.logger)
	choice := assets.ChooseCover(m.cfg.Render.UseEpisodeCover, ep.ImageURL, show.ImageURL)
	cover, err := m.fetcher.LoadCover(ctx, choice)
	if err == nil {
		return cover.Image
	}

	fallback := assets.CoverArt{Source: assets.CoverPodcast, URL: show.ImageURL}
	if choice.Source == assets.CoverPodcast {
		fallback = assets.CoverArt{Source: assets.CoverEpisode, URL: ep.ImageURL}
	}
	if fallback.URL != "" && fallback.URL != choice.URL {
		alt, altErr := m.fetcher.LoadCover(ctx, fallback)
		if altErr == nil {
			logger.Info("using fallback cover",
				logging.String("source", string(alt.Source)),
				logging.String("unavailable_source", string(choice.Source)),
				logging.Error(err),
			)
			return alt.Image
		}
		logger.Debug("fallback cover unavailable", logging.String("url", fallback.URL), logging.Error(altErr))
	}

	logging.WarnWithContext(logger, "cover unavailable", "cover_unavailable",
		logging.String("source", string(choice.Source)),
		logging.String("url", choice.URL),
		logging.Error(err),
		logging.String(logging.FieldImpact, "videos render without artwork"),
	)
	return nil
}
