package pipeline

import (
	"context"
	"errors"
	"image"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"audiogram/internal/config"
	"audiogram/internal/encoding"
	"audiogram/internal/logging"
	"audiogram/internal/media/audio"
	"audiogram/internal/output"
	"audiogram/internal/podcast"
	"audiogram/internal/services"
	"audiogram/internal/transcript"
)

// Encoder is the video backend.
type Encoder interface {
	Encode(ctx context.Context, job encoding.Job) (encoding.Result, error)
	ExportAudio(ctx context.Context, track *audio.Track, path string) error
}

// Request is one episode's worth of work. Optional inputs are resolved by
// the caller before Run: Cover is already the chosen artwork, Audio is an
// opened source, and Cues is the parsed but unvalidated transcript.
type Request struct {
	Podcast    podcast.Podcast
	Episode    podcast.Episode
	Soundbites []int
	Cues       []transcript.Cue
	Audio      audio.Source
	Cover      image.Image
	DryRun     bool
}

// Pipeline renders episodes.
type Pipeline struct {
	settings settings
	encoder  Encoder
	writer   *output.Writer
	logger   *slog.Logger
}

// New builds a Pipeline from configuration. writer may be nil for dry runs.
func New(cfg *config.Config, encoder Encoder, writer *output.Writer, logger *slog.Logger) (*Pipeline, error) {
	s, err := newSettings(cfg)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "configure", "", err)
	}
	return &Pipeline{
		settings: s,
		encoder:  encoder,
		writer:   writer,
		logger:   logging.NewComponentLogger(logger, "pipeline"),
	}, nil
}

// Run processes the selected soundbites of req.Episode. The returned result
// lists soundbites in selection order. Run only returns a non-nil error for
// cancellation of ctx; episode-level failures are reported in the result.
func (p *Pipeline) Run(ctx context.Context, req Request) (EpisodeResult, error) {
	ctx = services.WithEpisode(ctx, req.Episode.Number)
	logger := logging.WithContext(ctx, p.logger)

	result := EpisodeResult{Episode: req.Episode.Number, Title: req.Episode.Title}
	script := p.loadTranscript(ctx, req.Cues, &result)

	selected := p.selectSoundbites(req)
	result.Soundbites = make([]SoundbiteResult, len(selected))

	if req.DryRun {
		for i, sb := range selected {
			result.Soundbites[i] = p.dryRun(ctx, req, sb, script)
		}
		return result, ctx.Err()
	}
	if req.Audio == nil {
		result.Err = services.Wrap(services.ErrAudioDecode, "pipeline", "audio", "no audio source for episode", nil)
		for i, sb := range selected {
			result.Soundbites[i] = SoundbiteResult{Number: sb.Number, Title: sb.DisplayTitle(), Status: StatusSkipped, Err: result.Err}
		}
		return result, nil
	}

	logger.Info("episode rendering started",
		logging.Int("soundbites", len(selected)),
		logging.Int("formats", len(p.settings.formats)),
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.settings.soundbiteLimit)
	for i, sb := range selected {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				result.Soundbites[i] = SoundbiteResult{Number: sb.Number, Title: sb.DisplayTitle(), Status: StatusSkipped, Err: err}
				return nil
			}
			res := p.soundbite(groupCtx, req, sb, script)
			result.Soundbites[i] = res
			if scope := services.FailureScope(res.Err); scope >= services.ScopeEpisode {
				return res.Err
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		result.Err = err
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	if result.Err != nil {
		// Soundbites abandoned after the failure carry the group's
		// cancellation; report the cause instead.
		for i := range result.Soundbites {
			if errors.Is(result.Soundbites[i].Err, context.Canceled) {
				result.Soundbites[i].Status = StatusSkipped
				result.Soundbites[i].Err = result.Err
			}
		}
		logging.ErrorWithContext(logger, "episode aborted", "episode_failed",
			logging.Error(result.Err),
			logging.String(logging.FieldErrorHint, "check that the episode audio is reachable and decodable"),
		)
	} else {
		logger.Info("episode rendering finished", logging.Int("soundbites", len(selected)))
	}
	return result, nil
}

// loadTranscript validates cues. A malformed transcript is dropped with a
// warning and captions fall back to soundbite titles.
func (p *Pipeline) loadTranscript(ctx context.Context, cues []transcript.Cue, result *EpisodeResult) *transcript.Transcript {
	if len(cues) == 0 {
		return nil
	}
	script, err := transcript.New(cues)
	if err != nil {
		result.TranscriptDiscarded = true
		logging.WarnWithContext(logging.WithContext(ctx, p.logger), "transcript discarded", "transcript_malformed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix cue ordering in the published transcript"),
			logging.String(logging.FieldImpact, "captions show soundbite titles instead of transcript text"),
		)
		return nil
	}
	if tag := transcript.DetectLanguage(script); !tag.IsRoot() {
		result.Language = tag.String()
	}
	return script
}

func (p *Pipeline) selectSoundbites(req Request) []podcast.Soundbite {
	if len(req.Soundbites) == 0 {
		return req.Episode.Soundbites
	}
	out := make([]podcast.Soundbite, 0, len(req.Soundbites))
	for _, n := range req.Soundbites {
		if n >= 1 && n <= len(req.Episode.Soundbites) {
			out = append(out, req.Episode.Soundbites[n-1])
		}
	}
	return out
}

// episodeDuration prefers the decoded audio length over the feed's
// declaration.
func episodeDuration(req Request) float64 {
	if req.Audio != nil {
		if d := req.Audio.Duration(); d > 0 {
			return d
		}
	}
	return req.Episode.Duration
}
