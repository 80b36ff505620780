// Package idea defines the domain model shared by intake, surveillance,
// and the read path:
//   - Idea: the tracked record, keyed by (owner, id)
//   - Report: the consolidated intelligence briefing attached to an idea
//   - Event: the append-only audit timeline
//   - Analysis: the intake-produced artifact surveillance reads
//
// The package is dependency-free; persistence and AI concerns live in
// internal/store, internal/objstore, and internal/gateway.
package idea

import (
	"fmt"
	"strings"
	"time"
)

// Status represents an idea's lifecycle state. Only StatusStasis and
// StatusActive ideas are picked up by the surveillance sweep.
type Status string

const (
	StatusStasis   Status = "stasis"   // Tracked, awaiting user attention
	StatusActive   Status = "active"   // Tracked, user engaged
	StatusArchived Status = "archived" // Terminal, never swept
)

// SweepStatuses lists the statuses eligible for surveillance.
func SweepStatuses() []Status {
	return []Status{StatusStasis, StatusActive}
}

// Direction represents the viability trend a report asserts.
type Direction string

const (
	DirectionUp     Direction = "up"
	DirectionDown   Direction = "down"
	DirectionStable Direction = "stable"
)

// directionThreshold is the confidence-delta magnitude below which a
// defaulted direction is considered stable rather than a real move.
const directionThreshold = 0.05

// DirectionFromDelta derives a viability direction from a confidence
// delta, used whenever the model omits an explicit direction.
func DirectionFromDelta(delta float64) Direction {
	switch {
	case delta > directionThreshold:
		return DirectionUp
	case delta < -directionThreshold:
		return DirectionDown
	default:
		return DirectionStable
	}
}

// ValidDirection reports whether s is one of the three wire values.
func ValidDirection(s string) bool {
	switch Direction(s) {
	case DirectionUp, DirectionDown, DirectionStable:
		return true
	}
	return false
}

// SWOT holds the four ordered analysis lists. Entries are short strings.
type SWOT struct {
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	Opportunities []string `json:"opportunities"`
	Threats       []string `json:"threats"`
}

// IsZero reports whether no list has any entries.
func (s SWOT) IsZero() bool {
	return len(s.Strengths) == 0 && len(s.Weaknesses) == 0 &&
		len(s.Opportunities) == 0 && len(s.Threats) == 0
}

// Discovery is one real-world finding plus its interpreted effect on the idea.
type Discovery struct {
	Finding string `json:"finding"`
	Impact  string `json:"impact"`
}

// Report is the consolidated intelligence briefing attached to an idea.
// It is always overwritten wholesale, never appended to as a list: fresh
// surveillance replaces it, stacked surveillance replaces it with a
// consolidation of itself plus new findings.
type Report struct {
	Headline           string      `json:"headline"`           // <=10 words
	ViabilityDirection Direction   `json:"viabilityDirection"` // up | down | stable
	Discoveries        []Discovery `json:"discoveries"`        // 3-6 fresh, 3-4 stacked
	ActionPlan         string      `json:"actionPlan"`
	GeneratedAt        time.Time   `json:"generatedAt"`
	ConfidenceDelta    float64     `json:"confidenceDelta"` // vs. score at last fresh computation
	NewSourceCount     int         `json:"newSourceCount"`  // cumulative while unread
}

// Idea is the unit of tracking. Identity (OwnerID, ID) is immutable, as
// are Title and RawInput after creation. ConfidenceScore and SWOT are
// written only by intake and fresh-mode surveillance.
type Idea struct {
	OwnerID  string `json:"ownerId"`
	ID       string `json:"ideaId"`
	Title    string `json:"title"`
	RawInput string `json:"rawInput,omitempty"`
	Status   Status `json:"status"`

	ConfidenceScore float64 `json:"confidenceScore"` // 0.0-1.0, most recently computed
	SWOT            SWOT    `json:"swot"`

	LatestReport *Report `json:"latestReport,omitempty"`
	ReportViewed bool    `json:"reportViewed"` // false while a report is pending

	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastViewedAt  time.Time `json:"lastViewedAt"`
}

// ReportState is the tagged surveillance state derived from the record.
// It is computed exactly once at the start of a surveillance run and
// fixes the update mode for the remainder of that run.
type ReportState int

const (
	ReportStateNone   ReportState = iota // no report yet: forces a fresh update
	ReportStateUnread                    // report pending: stack onto it
	ReportStateRead                      // report seen: fresh update
)

// String returns the state name for logs.
func (s ReportState) String() string {
	switch s {
	case ReportStateNone:
		return "none"
	case ReportStateUnread:
		return "unread"
	case ReportStateRead:
		return "read"
	default:
		return fmt.Sprintf("ReportState(%d)", int(s))
	}
}

// ReportState derives the tagged state from the presence of a report and
// the viewed flag.
func (i *Idea) ReportState() ReportState {
	if i.LatestReport == nil {
		return ReportStateNone
	}
	if i.ReportViewed {
		return ReportStateRead
	}
	return ReportStateUnread
}

// Sweepable reports whether the idea's status makes it eligible for the sweep.
func (i *Idea) Sweepable() bool {
	return i.Status == StatusStasis || i.Status == StatusActive
}

// EventType classifies timeline events.
type EventType string

const (
	EventCreation            EventType = "creation"
	EventSurveillance        EventType = "surveillance"
	EventSurveillanceStacked EventType = "surveillance-stacked"
	EventViewed              EventType = "viewed"
)

// Event is one immutable audit record on an idea's timeline. Events are
// append-only and never drive state transitions; the driving state lives
// on the Idea record itself.
type Event struct {
	ID              string    `json:"eventId"`
	IdeaID          string    `json:"ideaId"`
	Timestamp       time.Time `json:"timestamp"`
	Type            EventType `json:"type"`
	Summary         string    `json:"summary"`
	ConfidenceDelta *float64  `json:"confidenceDelta,omitempty"`
	NewSourceCount  *int      `json:"newSourceCount,omitempty"`
}

// Analysis is the intake-produced artifact stored alongside an idea in the
// object store. Surveillance reads it on every run and never regenerates it.
type Analysis struct {
	EnrichedDescription string   `json:"enrichedDescription"`
	Domain              string   `json:"domain,omitempty"`
	SearchQueries       []string `json:"searchQueries"`
}

// SWOTDocument renders the SWOT as the formatted markdown document kept in
// the object store next to the structured record.
func SWOTDocument(title string, s SWOT, score float64, generatedAt time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# SWOT Analysis: %s\n\n", title)
	fmt.Fprintf(&b, "Confidence: %.2f\n", score)
	fmt.Fprintf(&b, "Generated: %s\n\n", generatedAt.UTC().Format(time.RFC3339))
	writeSection(&b, "Strengths", s.Strengths)
	writeSection(&b, "Weaknesses", s.Weaknesses)
	writeSection(&b, "Opportunities", s.Opportunities)
	writeSection(&b, "Threats", s.Threats)
	return b.String()
}

func writeSection(b *strings.Builder, heading string, items []string) {
	fmt.Fprintf(b, "## %s\n\n", heading)
	if len(items) == 0 {
		b.WriteString("- (none identified)\n\n")
		return
	}
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

// Clamp01 bounds a confidence score to [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
