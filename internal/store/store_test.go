package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"dossier/internal/idea"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testIdea(owner, id string) *idea.Idea {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	return &idea.Idea{
		OwnerID:         owner,
		ID:              id,
		Title:           "AI meal planner",
		RawInput:        "an app that plans meals for diabetics",
		Status:          idea.StatusActive,
		ConfidenceScore: 0.52,
		SWOT: idea.SWOT{
			Strengths:  []string{"clear niche"},
			Weaknesses: []string{"regulatory exposure"},
			Threats:    []string{"incumbent platforms"},
		},
		ReportViewed:  true,
		CreatedAt:     now,
		LastUpdatedAt: now,
		LastViewedAt:  now,
	}
}

func TestNewCreatesSchemaOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dossier.db")
	s, err := New(path)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer s.Close()

	if err := s.PutIdea(context.Background(), testIdea("o1", "i1")); err != nil {
		t.Fatalf("PutIdea on fresh schema failed: %v", err)
	}
}

func TestIdeaNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Idea(context.Background(), "o1", "missing")
	if !errors.Is(err, ErrIdeaNotFound) {
		t.Errorf("Expected ErrIdeaNotFound, got %v", err)
	}
}

func TestPutIdeaRoundtrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := testIdea("o1", "i1")
	in.LatestReport = &idea.Report{
		Headline:           "Competitor raised a round",
		ViabilityDirection: idea.DirectionDown,
		Discoveries: []idea.Discovery{
			{Finding: "Rival raised $20M", Impact: "Funding gap widens"},
		},
		ActionPlan:      "Differentiate on clinical integrations.",
		GeneratedAt:     time.Date(2026, 2, 11, 8, 30, 0, 0, time.UTC),
		ConfidenceDelta: -0.07,
		NewSourceCount:  9,
	}
	in.ReportViewed = false

	if err := s.PutIdea(ctx, in); err != nil {
		t.Fatalf("PutIdea failed: %v", err)
	}

	out, err := s.Idea(ctx, "o1", "i1")
	if err != nil {
		t.Fatalf("Idea failed: %v", err)
	}

	if out.OwnerID != in.OwnerID || out.ID != in.ID || out.Title != in.Title {
		t.Errorf("Identity fields mismatch: %+v", out)
	}
	if out.Status != idea.StatusActive {
		t.Errorf("Status = %s, want active", out.Status)
	}
	if out.ConfidenceScore != in.ConfidenceScore {
		t.Errorf("ConfidenceScore = %f, want %f", out.ConfidenceScore, in.ConfidenceScore)
	}
	if diff := cmp.Diff(in.SWOT, out.SWOT); diff != "" {
		t.Errorf("SWOT mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(in.LatestReport, out.LatestReport); diff != "" {
		t.Errorf("Report mismatch (-want +got):\n%s", diff)
	}
	if out.ReportViewed {
		t.Error("ReportViewed should stay false")
	}
	if !out.CreatedAt.Equal(in.CreatedAt) || !out.LastViewedAt.Equal(in.LastViewedAt) {
		t.Errorf("Timestamps not preserved: %+v", out)
	}
}

func TestPutIdeaReplacesExisting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := testIdea("o1", "i1")
	if err := s.PutIdea(ctx, in); err != nil {
		t.Fatalf("PutIdea failed: %v", err)
	}

	in.ConfidenceScore = 0.61
	in.Status = idea.StatusStasis
	if err := s.PutIdea(ctx, in); err != nil {
		t.Fatalf("Second PutIdea failed: %v", err)
	}

	out, err := s.Idea(ctx, "o1", "i1")
	if err != nil {
		t.Fatalf("Idea failed: %v", err)
	}
	if out.ConfidenceScore != 0.61 || out.Status != idea.StatusStasis {
		t.Errorf("Replace did not stick: %+v", out)
	}

	all, err := s.IdeasByOwner(ctx, "o1")
	if err != nil {
		t.Fatalf("IdeasByOwner failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("Expected 1 idea after replace, got %d", len(all))
	}
}

func TestIdeasByStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	active := testIdea("o1", "active-idea")
	stasis := testIdea("o2", "stasis-idea")
	stasis.Status = idea.StatusStasis
	stasis.CreatedAt = stasis.CreatedAt.Add(time.Hour)
	archived := testIdea("o1", "archived-idea")
	archived.Status = idea.StatusArchived

	for _, it := range []*idea.Idea{active, stasis, archived} {
		if err := s.PutIdea(ctx, it); err != nil {
			t.Fatalf("PutIdea failed: %v", err)
		}
	}

	got, err := s.IdeasByStatus(ctx, idea.SweepStatuses()...)
	if err != nil {
		t.Fatalf("IdeasByStatus failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 sweepable ideas, got %d", len(got))
	}
	if got[0].ID != "active-idea" || got[1].ID != "stasis-idea" {
		t.Errorf("Unexpected order or membership: %s, %s", got[0].ID, got[1].ID)
	}

	none, err := s.IdeasByStatus(ctx)
	if err != nil {
		t.Fatalf("IdeasByStatus with no statuses failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Expected empty result for no statuses, got %d", len(none))
	}
}

func TestIdeasByOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mine := testIdea("o1", "mine")
	theirs := testIdea("o2", "theirs")
	for _, it := range []*idea.Idea{mine, theirs} {
		if err := s.PutIdea(ctx, it); err != nil {
			t.Fatalf("PutIdea failed: %v", err)
		}
	}

	got, err := s.IdeasByOwner(ctx, "o1")
	if err != nil {
		t.Fatalf("IdeasByOwner failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "mine" {
		t.Errorf("Unexpected result: %+v", got)
	}
}

func TestSaveIdeaWithEvent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := testIdea("o1", "i1")
	if err := s.PutIdea(ctx, in); err != nil {
		t.Fatalf("PutIdea failed: %v", err)
	}

	in.ConfidenceScore = 0.44
	delta := -0.08
	sources := 12
	ev := &idea.Event{
		IdeaID:          in.ID,
		Timestamp:       time.Date(2026, 2, 12, 6, 0, 0, 0, time.UTC),
		Type:            idea.EventSurveillance,
		Summary:         "competitive pressure increased",
		ConfidenceDelta: &delta,
		NewSourceCount:  &sources,
	}
	if err := s.SaveIdeaWithEvent(ctx, in, ev); err != nil {
		t.Fatalf("SaveIdeaWithEvent failed: %v", err)
	}
	if ev.ID == "" {
		t.Error("Event was not assigned an ID")
	}

	out, err := s.Idea(ctx, "o1", "i1")
	if err != nil {
		t.Fatalf("Idea failed: %v", err)
	}
	if out.ConfidenceScore != 0.44 {
		t.Errorf("Idea update did not land: %f", out.ConfidenceScore)
	}

	events, err := s.EventsSince(ctx, in.ID, time.Time{})
	if err != nil {
		t.Fatalf("EventsSince failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	got := events[0]
	if got.Type != idea.EventSurveillance || got.Summary != ev.Summary {
		t.Errorf("Event fields mismatch: %+v", got)
	}
	if got.ConfidenceDelta == nil || *got.ConfidenceDelta != delta {
		t.Errorf("ConfidenceDelta not preserved: %v", got.ConfidenceDelta)
	}
	if got.NewSourceCount == nil || *got.NewSourceCount != sources {
		t.Errorf("NewSourceCount not preserved: %v", got.NewSourceCount)
	}
}

func TestEventsSinceIsExclusive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 2, 12, 6, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		ev := &idea.Event{
			IdeaID:    "i1",
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Type:      idea.EventViewed,
			Summary:   "checked in",
		}
		if err := s.AppendEvent(ctx, ev); err != nil {
			t.Fatalf("AppendEvent failed: %v", err)
		}
	}

	events, err := s.EventsSince(ctx, "i1", base)
	if err != nil {
		t.Fatalf("EventsSince failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Expected 2 events strictly after base, got %d", len(events))
	}
	if !events[0].Timestamp.Before(events[1].Timestamp) {
		t.Error("Events not in ascending order")
	}
}

func TestLegacyNullViewedFlagLoadsAsViewed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := testIdea("o1", "legacy")
	in.ReportViewed = false
	if err := s.PutIdea(ctx, in); err != nil {
		t.Fatalf("PutIdea failed: %v", err)
	}

	// Simulate a row written before the viewed flag existed.
	if _, err := s.db.Exec(`UPDATE ideas SET report_viewed = NULL WHERE idea_id = ?`, "legacy"); err != nil {
		t.Fatalf("Failed to null out flag: %v", err)
	}

	out, err := s.Idea(ctx, "o1", "legacy")
	if err != nil {
		t.Fatalf("Idea failed: %v", err)
	}
	if !out.ReportViewed {
		t.Error("NULL report_viewed should load as viewed")
	}
}

func TestNewEventIDsAreSortable(t *testing.T) {
	a, err := NewEventID()
	if err != nil {
		t.Fatalf("NewEventID failed: %v", err)
	}
	b, err := NewEventID()
	if err != nil {
		t.Fatalf("NewEventID failed: %v", err)
	}
	if a == b {
		t.Error("Expected distinct IDs")
	}
	if len(a) != 26 || len(b) != 26 {
		t.Errorf("Expected 26-char ULIDs, got %d and %d", len(a), len(b))
	}
}
