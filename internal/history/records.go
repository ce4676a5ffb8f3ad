package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Status is the outcome of one render.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Record is one ledger row.
type Record struct {
	ID           int64
	RunID        string
	FeedURL      string
	Episode      int
	EpisodeTitle string
	Soundbite    int
	Format       string
	Path         string
	Start        float64
	End          float64
	Duration     float64
	Subtitles    bool
	Language     string
	Status       Status
	Error        string
	CreatedAt    time.Time
}

const recordColumns = `id, run_id, feed_url, episode, episode_title, soundbite, format, path,
	start_seconds, end_seconds, duration_seconds, subtitles, language, status, error, created_at`

// Add inserts records in one transaction and fills in their IDs.
func (s *Store) Add(ctx context.Context, records ...*Record) error {
	if len(records) == 0 {
		return nil
	}
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO renders (
			run_id, feed_url, episode, episode_title, soundbite, format, path,
			start_seconds, end_seconds, duration_seconds, subtitles, language, status, error, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		now := time.Now().UTC()
		for _, rec := range records {
			if rec.CreatedAt.IsZero() {
				rec.CreatedAt = now
			}
			res, err := stmt.ExecContext(ctx,
				rec.RunID, rec.FeedURL, rec.Episode, rec.EpisodeTitle, rec.Soundbite, rec.Format, rec.Path,
				rec.Start, rec.End, rec.Duration, rec.Subtitles, rec.Language, string(rec.Status), rec.Error,
				rec.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("insert render record: %w", err)
			}
			if rec.ID, err = res.LastInsertId(); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
}

// Filter narrows List.
type Filter struct {
	RunID    string
	Episode  int
	Statuses []Status
	Limit    int
}

// List returns records newest first.
func (s *Store) List(ctx context.Context, filter Filter) ([]Record, error) {
	var (
		where []string
		args  []any
	)
	if filter.RunID != "" {
		where = append(where, "run_id = ?")
		args = append(args, filter.RunID)
	}
	if filter.Episode > 0 {
		where = append(where, "episode = ?")
		args = append(args, filter.Episode)
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			placeholders[i] = "?"
			args = append(args, string(status))
		}
		where = append(where, "status IN ("+strings.Join(placeholders, ", ")+")")
	}
	query := "SELECT " + recordColumns + " FROM renders"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query renders: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Clear deletes every record and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	var removed int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx, "DELETE FROM renders")
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	return removed, err
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var (
		rec    Record
		status string
	)
	if err := rows.Scan(
		&rec.ID, &rec.RunID, &rec.FeedURL, &rec.Episode, &rec.EpisodeTitle, &rec.Soundbite, &rec.Format, &rec.Path,
		&rec.Start, &rec.End, &rec.Duration, &rec.Subtitles, &rec.Language, &status, &rec.Error, &rec.CreatedAt,
	); err != nil {
		return Record{}, fmt.Errorf("scan render record: %w", err)
	}
	rec.Status = Status(status)
	return rec, nil
}
