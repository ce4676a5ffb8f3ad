package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"audiogram/internal/feed"
	"audiogram/internal/logging"
	"audiogram/internal/output"
	"audiogram/internal/pipeline"
	"audiogram/internal/selection"
	"audiogram/internal/services"
)

// Run renders the selected episodes. The returned error covers run-level
// failures only (configuration, feed, lock, cancellation); episode and
// soundbite failures are reported in the Summary.
func (m *Manager) Run(ctx context.Context, opts RunOptions) (*Summary, error) {
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, m.logger)

	summary := &Summary{RunID: runID, FeedURL: m.cfg.Feed.URL, DryRun: opts.DryRun, Started: m.now()}
	defer func() { summary.Elapsed = m.now().Sub(summary.Started) }()

	f, err := m.LoadFeed(services.WithStage(ctx, "feed"))
	if err != nil {
		return summary, err
	}
	summary.Podcast = f.Podcast

	episodes, err := selection.ParseEpisodes(firstNonEmpty(opts.Episodes, m.cfg.Selection.Episodes), f.Latest())
	if err != nil {
		return summary, err
	}

	var writer *output.Writer
	if !opts.DryRun {
		if err := m.runPreflightChecks(ctx, logger); err != nil {
			return summary, err
		}
		writer = output.NewWriter(m.cfg.Paths.OutputDir, pipeline.CaptionLabels(m.cfg), m.logger)
		unlock, err := writer.Lock()
		if err != nil {
			return summary, err
		}
		defer unlock()
	}

	p, err := pipeline.New(m.cfg, m.encoder, writer, m.logger)
	if err != nil {
		return summary, err
	}

	logger.Info("run started",
		logging.String("podcast", f.Podcast.Title),
		logging.Any("episodes", episodes),
		logging.Bool("dry_run", opts.DryRun),
	)
	for _, number := range episodes {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		result, err := m.runEpisode(ctx, p, f, number, opts)
		summary.Episodes = append(summary.Episodes, result)
		if !opts.DryRun {
			m.record(ctx, summary, result)
		}
		if err != nil {
			return summary, err
		}
	}

	counts := summary.Counts()
	logger.Info("run finished",
		logging.Int("episodes", counts.Episodes),
		logging.Int("soundbites_ok", counts.SoundbitesOK),
		logging.Int("soundbites_failed", counts.SoundbitesFailed),
		logging.Int("renders_ok", counts.RendersOK),
		logging.Int("renders_failed", counts.RendersFailed),
	)
	return summary, nil
}

func (m *Manager) runEpisode(ctx context.Context, p *pipeline.Pipeline, f *feed.Feed, number int, opts RunOptions) (pipeline.EpisodeResult, error) {
	ctx = services.WithEpisode(ctx, number)
	logger := logging.WithContext(ctx, m.logger)

	ep, ok := f.Episode(number)
	if !ok {
		err := services.Wrap(services.ErrNotFound, "workflow", "episode", fmt.Sprintf("episode %d is not in the feed", number), nil)
		return pipeline.EpisodeResult{Episode: number, Err: err}, nil
	}
	if len(ep.Soundbites) == 0 {
		logging.WarnWithContext(logger, "episode has no soundbites", "episode_without_soundbites",
			logging.String("title", ep.Title),
			logging.String(logging.FieldErrorHint, "add podcast:soundbite tags or manual_soundbites for this episode"),
			logging.String(logging.FieldImpact, "nothing is rendered for this episode"),
		)
		return pipeline.EpisodeResult{Episode: number, Title: ep.Title}, nil
	}

	soundbites, err := selection.ParseSoundbites(firstNonEmpty(opts.Soundbites, m.cfg.Selection.Soundbites), len(ep.Soundbites))
	if err != nil {
		return pipeline.EpisodeResult{Episode: number, Title: ep.Title, Err: err}, nil
	}

	req, err := m.prepare(ctx, f, ep, soundbites, opts.DryRun)
	if err != nil {
		if services.FailureScope(err) == services.ScopeRun {
			return pipeline.EpisodeResult{Episode: number, Title: ep.Title, Err: err}, err
		}
		return abandonedEpisode(req, err), nil
	}
	return p.Run(ctx, req)
}

// abandonedEpisode reports every requested soundbite as skipped when the
// episode could not be prepared.
func abandonedEpisode(req pipeline.Request, err error) pipeline.EpisodeResult {
	result := pipeline.EpisodeResult{Episode: req.Episode.Number, Title: req.Episode.Title, Err: err}
	for _, n := range req.Soundbites {
		sb := req.Episode.Soundbites[n-1]
		result.Soundbites = append(result.Soundbites, pipeline.SoundbiteResult{
			Number: sb.Number,
			Title:  sb.DisplayTitle(),
			Status: pipeline.StatusSkipped,
			Err:    err,
		})
	}
	return result
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
