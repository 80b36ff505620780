package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"dossier/internal/idea"
	"dossier/internal/logging"
)

const ideaColumns = `owner_id, idea_id, title, raw_input, status, confidence_score,
	swot_json, latest_report_json, report_viewed, created_at, last_updated_at, last_viewed_at`

// PutIdea inserts or replaces an idea record.
func (s *Store) PutIdea(ctx context.Context, it *idea.Idea) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return putIdea(ctx, s.db, it)
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func putIdea(ctx context.Context, db execer, it *idea.Idea) error {
	swotJSON, err := json.Marshal(it.SWOT)
	if err != nil {
		return fmt.Errorf("failed to marshal swot: %w", err)
	}

	var reportJSON sql.NullString
	if it.LatestReport != nil {
		data, err := json.Marshal(it.LatestReport)
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		reportJSON = sql.NullString{String: string(data), Valid: true}
	}

	viewed := 0
	if it.ReportViewed {
		viewed = 1
	}

	_, err = db.ExecContext(ctx, `
		INSERT OR REPLACE INTO ideas (`+ideaColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		it.OwnerID, it.ID, it.Title, it.RawInput, string(it.Status), it.ConfidenceScore,
		string(swotJSON), reportJSON, viewed,
		it.CreatedAt.UnixNano(), it.LastUpdatedAt.UnixNano(), it.LastViewedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to store idea: %w", err)
	}
	return nil
}

// Idea loads a single idea record.
func (s *Store) Idea(ctx context.Context, ownerID, ideaID string) (*idea.Idea, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT `+ideaColumns+` FROM ideas
		WHERE owner_id = ? AND idea_id = ?`,
		ownerID, ideaID,
	)
	it, err := scanIdea(row)
	if err == sql.ErrNoRows {
		return nil, ErrIdeaNotFound
	}
	return it, err
}

// IdeasByOwner lists all of an owner's ideas, oldest first.
func (s *Store) IdeasByOwner(ctx context.Context, ownerID string) ([]*idea.Idea, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+ideaColumns+` FROM ideas
		WHERE owner_id = ?
		ORDER BY created_at ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query ideas: %w", err)
	}
	defer rows.Close()
	return collectIdeas(rows)
}

// IdeasByStatus lists ideas in any of the given statuses across all
// owners, oldest first. Each matching idea appears exactly once.
func (s *Store) IdeasByStatus(ctx context.Context, statuses ...idea.Status) ([]*idea.Idea, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	placeholders := make([]string, len(statuses))
	args := make([]any, len(statuses))
	for i, st := range statuses {
		placeholders[i] = "?"
		args[i] = string(st)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+ideaColumns+` FROM ideas
		WHERE status IN (`+strings.Join(placeholders, ", ")+`)
		ORDER BY created_at ASC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query ideas by status: %w", err)
	}
	defer rows.Close()
	return collectIdeas(rows)
}

// SaveIdeaWithEvent updates an idea record and appends an event in one
// transaction. An event with an empty ID is assigned a fresh ULID.
func (s *Store) SaveIdeaWithEvent(ctx context.Context, it *idea.Idea, ev *idea.Event) error {
	timer := logging.StartTimer(logging.CategoryStore, "SaveIdeaWithEvent")
	defer timer.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := putIdea(ctx, tx, it); err != nil {
		return err
	}
	if err := appendEvent(ctx, tx, ev); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit idea update: %w", err)
	}

	logging.StoreDebug("saved idea %s/%s with %s event", it.OwnerID, it.ID, ev.Type)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdea(row rowScanner) (*idea.Idea, error) {
	var (
		it            idea.Idea
		status        string
		swotJSON      string
		reportJSON    sql.NullString
		reportViewed  sql.NullInt64
		createdAt     int64
		lastUpdatedAt int64
		lastViewedAt  int64
	)
	err := row.Scan(
		&it.OwnerID, &it.ID, &it.Title, &it.RawInput, &status, &it.ConfidenceScore,
		&swotJSON, &reportJSON, &reportViewed, &createdAt, &lastUpdatedAt, &lastViewedAt,
	)
	if err != nil {
		return nil, err
	}

	it.Status = idea.Status(status)
	if err := json.Unmarshal([]byte(swotJSON), &it.SWOT); err != nil {
		return nil, fmt.Errorf("failed to unmarshal swot for %s: %w", it.ID, err)
	}
	if reportJSON.Valid && reportJSON.String != "" {
		var report idea.Report
		if err := json.Unmarshal([]byte(reportJSON.String), &report); err != nil {
			return nil, fmt.Errorf("failed to unmarshal report for %s: %w", it.ID, err)
		}
		it.LatestReport = &report
	}
	// Rows written before the viewed flag existed count as viewed.
	it.ReportViewed = !reportViewed.Valid || reportViewed.Int64 != 0
	it.CreatedAt = time.Unix(0, createdAt)
	it.LastUpdatedAt = time.Unix(0, lastUpdatedAt)
	it.LastViewedAt = time.Unix(0, lastViewedAt)
	return &it, nil
}

func collectIdeas(rows *sql.Rows) ([]*idea.Idea, error) {
	var ideas []*idea.Idea
	for rows.Next() {
		it, err := scanIdea(rows)
		if err != nil {
			return nil, err
		}
		ideas = append(ideas, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ideas: %w", err)
	}
	return ideas, nil
}
