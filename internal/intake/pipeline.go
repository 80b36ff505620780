// Package intake turns a raw idea submission into a tracked record: one
// enrichment call to produce the reusable analysis artifact, one
// research pass, one initial assessment under the confidence rubric.
// The chain runs exactly once per idea; surveillance reuses its
// artifacts forever after.
package intake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"dossier/internal/gateway"
	"dossier/internal/idea"
	"dossier/internal/logging"
	"dossier/internal/objstore"
	"dossier/internal/prompt"
)

// Gateway is the slice of the AI gateway intake needs.
type Gateway interface {
	Generate(ctx context.Context, userPrompt string) (string, error)
	GenerateWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Research(ctx context.Context, topic string, queries []string) (*gateway.Research, error)
}

// ObjectStore is the slice of the blob store intake needs.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte) error
	PutJSON(ctx context.Context, key string, v any) error
}

// IdeaStore is the slice of the idea repository intake needs.
type IdeaStore interface {
	SaveIdeaWithEvent(ctx context.Context, it *idea.Idea, ev *idea.Event) error
}

// Pipeline runs the intake chain.
type Pipeline struct {
	gateway Gateway
	objects ObjectStore
	ideas   IdeaStore
	now     func() time.Time
}

// New creates a pipeline.
func New(gw Gateway, objects ObjectStore, ideas IdeaStore) *Pipeline {
	return &Pipeline{
		gateway: gw,
		objects: objects,
		ideas:   ideas,
		now:     time.Now,
	}
}

// CreateIdea runs enrich, research, and the initial assessment, then
// commits the record with its creation event. Enrichment output that
// cannot be decoded degrades to the raw input and generic queries; a
// failed research call or an undecodable assessment aborts intake, the
// record needs a real initial state.
func (p *Pipeline) CreateIdea(ctx context.Context, ownerID, title, rawInput string) (*idea.Idea, error) {
	timer := logging.StartTimer(logging.CategoryIntake, "CreateIdea")
	defer timer.StopWithInfo()

	ownerID = strings.TrimSpace(ownerID)
	title = strings.TrimSpace(title)
	rawInput = strings.TrimSpace(rawInput)
	if ownerID == "" {
		return nil, errors.New("intake: owner required")
	}
	if title == "" {
		return nil, errors.New("intake: title required")
	}

	ideaID := uuid.NewString()
	now := p.now().UTC()
	logging.Intake("idea %s (%q): intake started for %s", ideaID, title, ownerID)

	analysis, err := p.enrich(ctx, title, rawInput)
	if err != nil {
		return nil, err
	}
	if err := p.putJSONBoth(ctx, objstore.AnalysisKey(ideaID), objstore.AnalysisSnapshotKey(ideaID, now), analysis); err != nil {
		return nil, fmt.Errorf("persist analysis for %s: %w", ideaID, err)
	}

	research, err := p.gateway.Research(ctx, analysis.EnrichedDescription, analysis.SearchQueries)
	if err != nil {
		return nil, fmt.Errorf("research for %s: %w", ideaID, err)
	}
	if err := p.putJSONBoth(ctx, objstore.ResearchKey(ideaID), objstore.ResearchSnapshotKey(ideaID, now), research); err != nil {
		return nil, fmt.Errorf("persist research for %s: %w", ideaID, err)
	}

	raw, err := p.gateway.GenerateWithSystem(ctx, prompt.SystemAnalyst,
		prompt.InitialSWOTPrompt(toJSON(analysis), toJSON(research)))
	if err != nil {
		return nil, fmt.Errorf("initial assessment for %s: %w", ideaID, err)
	}
	assessment, err := prompt.DecodeInitialSWOT(raw, title)
	if err != nil {
		return nil, fmt.Errorf("decode initial assessment for %s: %w", ideaID, err)
	}

	doc := idea.SWOTDocument(title, assessment.SWOT, assessment.ConfidenceScore, now)
	if err := p.putBoth(ctx, objstore.SWOTKey(ideaID), objstore.SWOTSnapshotKey(ideaID, now), []byte(doc)); err != nil {
		return nil, fmt.Errorf("persist swot for %s: %w", ideaID, err)
	}

	it := &idea.Idea{
		OwnerID:         ownerID,
		ID:              ideaID,
		Title:           title,
		RawInput:        rawInput,
		Status:          idea.StatusActive,
		ConfidenceScore: assessment.ConfidenceScore,
		SWOT:            assessment.SWOT,
		ReportViewed:    true,
		CreatedAt:       now,
		LastUpdatedAt:   now,
		LastViewedAt:    now,
	}
	sources := len(research.Sources)
	ev := &idea.Event{
		IdeaID:         ideaID,
		Timestamp:      now,
		Type:           idea.EventCreation,
		Summary:        assessment.ChangeSummary,
		NewSourceCount: &sources,
	}
	if err := p.ideas.SaveIdeaWithEvent(ctx, it, ev); err != nil {
		return nil, fmt.Errorf("commit intake for %s: %w", ideaID, err)
	}

	logging.Intake("idea %s (%q): tracked with score=%.2f sources=%d", ideaID, title, it.ConfidenceScore, sources)
	return it, nil
}

// enrich asks for the analysis artifact. A transport failure aborts
// intake (research needs the gateway anyway); output that cannot be
// decoded degrades to the raw submission.
func (p *Pipeline) enrich(ctx context.Context, title, rawInput string) (*idea.Analysis, error) {
	raw, err := p.gateway.Generate(ctx, prompt.EnrichmentPrompt(title, rawInput))
	if err != nil {
		return nil, fmt.Errorf("enrichment: %w", err)
	}
	analysis, err := prompt.DecodeEnrichment(raw, title, rawInput)
	if err != nil {
		logging.IntakeWarn("enrichment for %q undecodable, degrading to raw input: %v", title, err)
		description := rawInput
		if description == "" {
			description = title
		}
		return &idea.Analysis{
			EnrichedDescription: description,
			SearchQueries:       prompt.FallbackQueries(title),
		}, nil
	}
	return analysis, nil
}

// putJSONBoth writes the latest and snapshot copies concurrently.
func (p *Pipeline) putJSONBoth(ctx context.Context, latestKey, snapshotKey string, v any) error {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error { return p.objects.PutJSON(egCtx, latestKey, v) })
	eg.Go(func() error { return p.objects.PutJSON(egCtx, snapshotKey, v) })
	return eg.Wait()
}

// putBoth writes the latest and snapshot copies concurrently.
func (p *Pipeline) putBoth(ctx context.Context, latestKey, snapshotKey string, data []byte) error {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error { return p.objects.Put(egCtx, latestKey, data) })
	eg.Go(func() error { return p.objects.Put(egCtx, snapshotKey, data) })
	return eg.Wait()
}

func toJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}
