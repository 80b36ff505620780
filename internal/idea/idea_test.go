package idea

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportState(t *testing.T) {
	report := &Report{Headline: "test"}

	tests := []struct {
		name   string
		idea   Idea
		expect ReportState
	}{
		{"no report", Idea{ReportViewed: false}, ReportStateNone},
		{"no report viewed true", Idea{ReportViewed: true}, ReportStateNone},
		{"unread report", Idea{LatestReport: report, ReportViewed: false}, ReportStateUnread},
		{"read report", Idea{LatestReport: report, ReportViewed: true}, ReportStateRead},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.idea.ReportState())
		})
	}
}

func TestReportStateString(t *testing.T) {
	assert.Equal(t, "none", ReportStateNone.String())
	assert.Equal(t, "unread", ReportStateUnread.String())
	assert.Equal(t, "read", ReportStateRead.String())
}

func TestDirectionFromDelta(t *testing.T) {
	tests := []struct {
		delta  float64
		expect Direction
	}{
		{0.30, DirectionUp},
		{0.06, DirectionUp},
		{0.05, DirectionStable}, // boundary is exclusive
		{0.00, DirectionStable},
		{-0.05, DirectionStable},
		{-0.06, DirectionDown},
		{-0.30, DirectionDown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expect, DirectionFromDelta(tt.delta), "delta=%v", tt.delta)
	}
}

func TestValidDirection(t *testing.T) {
	assert.True(t, ValidDirection("up"))
	assert.True(t, ValidDirection("down"))
	assert.True(t, ValidDirection("stable"))
	assert.False(t, ValidDirection(""))
	assert.False(t, ValidDirection("sideways"))
}

func TestSweepable(t *testing.T) {
	assert.True(t, (&Idea{Status: StatusStasis}).Sweepable())
	assert.True(t, (&Idea{Status: StatusActive}).Sweepable())
	assert.False(t, (&Idea{Status: StatusArchived}).Sweepable())
}

func TestSWOTDocument(t *testing.T) {
	s := SWOT{
		Strengths:  []string{"first mover", "low capital cost"},
		Weaknesses: []string{"no moat"},
	}
	doc := SWOTDocument("Solar kiosks", s, 0.55, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	require.True(t, strings.HasPrefix(doc, "# SWOT Analysis: Solar kiosks"))
	assert.Contains(t, doc, "Confidence: 0.55")
	assert.Contains(t, doc, "- first mover")
	assert.Contains(t, doc, "- no moat")
	// empty sections render a placeholder instead of vanishing
	assert.Contains(t, doc, "## Opportunities\n\n- (none identified)")
	assert.Contains(t, doc, "## Threats")
}

func TestSWOTIsZero(t *testing.T) {
	assert.True(t, SWOT{}.IsZero())
	assert.False(t, SWOT{Threats: []string{"regulation"}}.IsZero())
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-0.2))
	assert.Equal(t, 1.0, Clamp01(1.7))
	assert.Equal(t, 0.42, Clamp01(0.42))
}
