package workflow

import (
	"context"

	"audiogram/internal/history"
	"audiogram/internal/logging"
	"audiogram/internal/pipeline"
)

func (m *Manager) record(ctx context.Context, summary *Summary, result pipeline.EpisodeResult) {
	if m.history == nil {
		return
	}
	records := historyRecords(summary, result, m.cfg.Render.ShowSubtitles)
	if err := m.history.Add(ctx, records...); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, m.logger), "history not recorded", "history_write_failed",
			logging.String("path", m.history.Path()),
			logging.Error(err),
			logging.String(logging.FieldImpact, "renders are missing from 'audiogram history'"),
		)
	}
}

// historyRecords flattens an episode into ledger rows: one per render, one
// per soundbite that never reached rendering, and one for an episode that
// failed before any soundbite was attempted.
func historyRecords(summary *Summary, ep pipeline.EpisodeResult, subtitles bool) []*history.Record {
	base := history.Record{
		RunID:        summary.RunID,
		FeedURL:      summary.FeedURL,
		Episode:      ep.Episode,
		EpisodeTitle: ep.Title,
		Subtitles:    subtitles,
		Language:     ep.Language,
	}
	var records []*history.Record
	if len(ep.Soundbites) == 0 && ep.Err != nil {
		rec := base
		rec.Status = history.StatusFailed
		rec.Error = ep.Err.Error()
		return append(records, &rec)
	}
	for _, sb := range ep.Soundbites {
		row := base
		row.Soundbite = sb.Number
		row.Start = sb.Range.Start
		row.End = sb.Range.End
		row.Duration = sb.Range.Duration()
		if len(sb.Renders) == 0 {
			rec := row
			rec.Status = historyStatus(sb.Status)
			rec.Error = errorText(sb.Err)
			records = append(records, &rec)
			continue
		}
		for _, r := range sb.Renders {
			rec := row
			rec.Format = r.Format
			rec.Path = r.Path
			rec.Status = historyStatus(r.Status)
			rec.Error = errorText(r.Err)
			if r.Duration > 0 {
				rec.Duration = r.Duration
			}
			records = append(records, &rec)
		}
	}
	return records
}

func historyStatus(s pipeline.Status) history.Status {
	switch s {
	case pipeline.StatusSucceeded:
		return history.StatusSucceeded
	case pipeline.StatusSkipped:
		return history.StatusSkipped
	default:
		return history.StatusFailed
	}
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
