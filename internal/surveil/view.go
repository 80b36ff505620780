package surveil

import (
	"context"
	"fmt"

	"dossier/internal/idea"
	"dossier/internal/logging"
)

// ViewResult is what a read of a single idea returns: the idea after
// the view transition, plus how long the owner had been away.
type ViewResult struct {
	Idea     *idea.Idea `json:"idea"`
	DaysAway int        `json:"daysAway"`
}

// ViewIdea records that the owner looked at an idea. Viewing marks the
// latest report read, which is what flips the next surveillance pass
// from stacked back to fresh. The days-away figure is measured against
// the previous view, or creation when the idea was never viewed.
//
// Viewing never touches LastUpdatedAt; that clock belongs to the
// surveillance passes.
func (e *Engine) ViewIdea(ctx context.Context, ownerID, ideaID string) (*ViewResult, error) {
	it, err := e.ideas.Idea(ctx, ownerID, ideaID)
	if err != nil {
		return nil, err
	}

	now := e.now().UTC()
	anchor := it.LastViewedAt
	if anchor.IsZero() {
		anchor = it.CreatedAt
	}
	daysAway := int(now.Sub(anchor).Hours() / 24)
	if daysAway < 0 {
		daysAway = 0
	}

	it.LastViewedAt = now
	if it.LatestReport != nil && !it.ReportViewed {
		it.ReportViewed = true
	}

	ev := &idea.Event{
		IdeaID:    it.ID,
		Timestamp: now,
		Type:      idea.EventViewed,
		Summary:   fmt.Sprintf("viewed after %d days away", daysAway),
	}
	if err := e.ideas.SaveIdeaWithEvent(ctx, it, ev); err != nil {
		return nil, err
	}

	logging.Surveil("idea %s viewed by %s (%d days away)", it.ID, ownerID, daysAway)
	return &ViewResult{Idea: it, DaysAway: daysAway}, nil
}
