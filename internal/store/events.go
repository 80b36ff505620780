package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"dossier/internal/idea"
)

// NewEventID generates a ULID for an event. ULIDs sort by creation time,
// which keeps the event log naturally ordered.
func NewEventID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// AppendEvent appends a single event to an idea's log.
func (s *Store) AppendEvent(ctx context.Context, ev *idea.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendEvent(ctx, s.db, ev)
}

func appendEvent(ctx context.Context, db execer, ev *idea.Event) error {
	if ev.ID == "" {
		id, err := NewEventID()
		if err != nil {
			return fmt.Errorf("failed to generate event id: %w", err)
		}
		ev.ID = id
	}

	var delta sql.NullFloat64
	if ev.ConfidenceDelta != nil {
		delta = sql.NullFloat64{Float64: *ev.ConfidenceDelta, Valid: true}
	}
	var sources sql.NullInt64
	if ev.NewSourceCount != nil {
		sources = sql.NullInt64{Int64: int64(*ev.NewSourceCount), Valid: true}
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO events (event_id, idea_id, ts, type, summary, confidence_delta, new_source_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.IdeaID, ev.Timestamp.UnixNano(), string(ev.Type), ev.Summary, delta, sources,
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

// EventsSince returns an idea's events strictly after since, oldest first.
func (s *Store) EventsSince(ctx context.Context, ideaID string, since time.Time) ([]*idea.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT event_id, idea_id, ts, type, summary, confidence_delta, new_source_count
		FROM events
		WHERE idea_id = ? AND ts > ?
		ORDER BY ts ASC`,
		ideaID, since.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*idea.Event
	for rows.Next() {
		var (
			ev      idea.Event
			ts      int64
			evType  string
			delta   sql.NullFloat64
			sources sql.NullInt64
		)
		if err := rows.Scan(&ev.ID, &ev.IdeaID, &ts, &evType, &ev.Summary, &delta, &sources); err != nil {
			return nil, err
		}
		ev.Timestamp = time.Unix(0, ts)
		ev.Type = idea.EventType(evType)
		if delta.Valid {
			d := delta.Float64
			ev.ConfidenceDelta = &d
		}
		if sources.Valid {
			n := int(sources.Int64)
			ev.NewSourceCount = &n
		}
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}
