package pipeline

import (
	"context"

	"audiogram/internal/podcast"
	"audiogram/internal/services"
	"audiogram/internal/transcript"
)

// dryRun resolves and aligns a soundbite without touching audio or video.
func (p *Pipeline) dryRun(ctx context.Context, req Request, sb podcast.Soundbite, script *transcript.Transcript) SoundbiteResult {
	ctx = services.WithSoundbite(ctx, sb.Number)
	res := SoundbiteResult{Number: sb.Number, Title: sb.DisplayTitle()}

	r, warnings, err := p.resolve(ctx, sb, episodeDuration(req))
	res.Range, res.Warnings = r, warnings
	if err != nil {
		return p.failSoundbite(ctx, res, err)
	}
	res.Status = StatusSucceeded
	res.DryRun = &DryRunRecord{
		Soundbite: sb.Number,
		Start:     r.Start,
		End:       r.End,
		Duration:  r.Duration(),
		Text:      transcript.FullText(transcript.Align(script, r, res.Title)),
	}
	return res
}
