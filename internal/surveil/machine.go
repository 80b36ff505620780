// Package surveil implements the surveillance core: the per-idea state
// machine that turns fresh research into reports, the bounded worker
// pool that sweeps every tracked idea, and the return-read transition.
package surveil

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"dossier/internal/gateway"
	"dossier/internal/idea"
	"dossier/internal/logging"
	"dossier/internal/objstore"
	"dossier/internal/prompt"
)

// Gateway is the slice of the AI gateway surveillance needs.
type Gateway interface {
	GenerateWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Research(ctx context.Context, topic string, queries []string) (*gateway.Research, error)
}

// IdeaStore is the slice of the idea repository surveillance needs.
type IdeaStore interface {
	IdeasByStatus(ctx context.Context, statuses ...idea.Status) ([]*idea.Idea, error)
	Idea(ctx context.Context, ownerID, ideaID string) (*idea.Idea, error)
	SaveIdeaWithEvent(ctx context.Context, it *idea.Idea, ev *idea.Event) error
}

// ObjectStore is the slice of the blob store surveillance needs.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	PutJSON(ctx context.Context, key string, v any) error
	GetJSON(ctx context.Context, key string, v any) (bool, error)
}

// DefaultWorkers is the sweep's concurrency bound.
const DefaultWorkers = 3

// Config tunes the engine.
type Config struct {
	Workers int // sweep concurrency; DefaultWorkers when <= 0
}

// Engine drives surveillance for all tracked ideas.
type Engine struct {
	gateway Gateway
	objects ObjectStore
	ideas   IdeaStore
	workers int
	now     func() time.Time
}

// New creates an engine. Zero-value config fields get defaults.
func New(gw Gateway, objects ObjectStore, ideas IdeaStore, cfg Config) *Engine {
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Engine{
		gateway: gw,
		objects: objects,
		ideas:   ideas,
		workers: workers,
		now:     time.Now,
	}
}

// Surveil runs one surveillance pass for a single idea. The update mode
// is fixed by the report state at entry: no report or a read report
// means a fresh re-assessment; an unread report means consolidation
// that leaves the SWOT and confidence score untouched. An error means
// this idea's pass failed; the record is left unmodified.
func (e *Engine) Surveil(ctx context.Context, it *idea.Idea) error {
	timer := logging.StartTimer(logging.CategorySurveil, "Surveil "+it.ID)
	defer timer.StopWithInfo()

	state := it.ReportState()
	needsFresh := state != idea.ReportStateUnread
	logging.Surveil("idea %s (%q): state=%s mode=%s", it.ID, it.Title, state, modeName(needsFresh))

	analysis := e.loadAnalysis(ctx, it)

	// Research and (in fresh mode) the previous SWOT document are
	// independent reads; fetch them concurrently.
	var (
		research *gateway.Research
		swotText string
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		r, err := e.gateway.Research(egCtx, analysis.EnrichedDescription, analysis.SearchQueries)
		if err != nil {
			return fmt.Errorf("research for %s: %w", it.ID, err)
		}
		research = r
		return nil
	})
	if needsFresh {
		eg.Go(func() error {
			data, ok, err := e.objects.Get(egCtx, objstore.SWOTKey(it.ID))
			if err != nil {
				return fmt.Errorf("load swot document for %s: %w", it.ID, err)
			}
			if ok {
				swotText = string(data)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	// The research artifact is persisted before any synthesis happens:
	// if the model call fails, the next pass still has today's research
	// trail on disk.
	now := e.now().UTC()
	if err := e.putJSONBoth(ctx, objstore.ResearchKey(it.ID), objstore.ResearchSnapshotKey(it.ID, now), research); err != nil {
		return fmt.Errorf("persist research for %s: %w", it.ID, err)
	}

	if needsFresh {
		return e.surveilFresh(ctx, it, analysis, research, swotText, now)
	}
	return e.surveilStacked(ctx, it, analysis, research, now)
}

// surveilFresh re-derives the SWOT and confidence score from the new
// research and replaces the report.
func (e *Engine) surveilFresh(ctx context.Context, it *idea.Idea, analysis *idea.Analysis, research *gateway.Research, swotText string, now time.Time) error {
	var prevReportJSON string
	if it.LatestReport != nil {
		prevReportJSON = toJSON(it.LatestReport)
	}

	raw, err := e.gateway.GenerateWithSystem(ctx, prompt.SystemAnalyst, prompt.SynthesisPrompt(prompt.SynthesisInput{
		Title:              it.Title,
		AnalysisJSON:       toJSON(analysis),
		SWOTText:           swotText,
		Confidence:         it.ConfidenceScore,
		PreviousReportJSON: prevReportJSON,
		ResearchJSON:       toJSON(research),
	}))
	if err != nil {
		return fmt.Errorf("synthesis for %s: %w", it.ID, err)
	}

	syn, err := prompt.DecodeSynthesis(raw, it, research.Summary)
	if err != nil {
		return fmt.Errorf("decode synthesis for %s: %w", it.ID, err)
	}

	discoveries := e.ensureDiscoveries(ctx, it, syn.Report.Discoveries, research, 6)

	doc := idea.SWOTDocument(it.Title, syn.SWOT, syn.ConfidenceScore, now)
	if err := e.putBoth(ctx, objstore.SWOTKey(it.ID), objstore.SWOTSnapshotKey(it.ID, now), []byte(doc)); err != nil {
		return fmt.Errorf("persist swot for %s: %w", it.ID, err)
	}

	report := &idea.Report{
		Headline:           syn.Report.Headline,
		ViabilityDirection: syn.Report.Direction,
		Discoveries:        discoveries,
		ActionPlan:         syn.Report.ActionPlan,
		GeneratedAt:        now,
		ConfidenceDelta:    syn.ConfidenceDelta,
		NewSourceCount:     len(research.Sources),
	}
	if err := e.putJSONBoth(ctx, objstore.ReportKey(it.ID), objstore.ReportSnapshotKey(it.ID, now), report); err != nil {
		return fmt.Errorf("persist report for %s: %w", it.ID, err)
	}

	it.SWOT = syn.SWOT
	it.ConfidenceScore = syn.ConfidenceScore
	it.LatestReport = report
	it.ReportViewed = false
	it.LastUpdatedAt = now

	delta := syn.ConfidenceDelta
	sources := report.NewSourceCount
	ev := &idea.Event{
		IdeaID:          it.ID,
		Timestamp:       now,
		Type:            idea.EventSurveillance,
		Summary:         syn.ChangeSummary,
		ConfidenceDelta: &delta,
		NewSourceCount:  &sources,
	}
	if err := e.ideas.SaveIdeaWithEvent(ctx, it, ev); err != nil {
		return fmt.Errorf("commit surveillance for %s: %w", it.ID, err)
	}

	logging.Surveil("idea %s: fresh report %q score=%.2f delta=%+.2f sources=%d",
		it.ID, report.Headline, syn.ConfidenceScore, delta, sources)
	return nil
}

// surveilStacked consolidates the unread report with the new findings.
// The SWOT and confidence score are not touched in this mode.
func (e *Engine) surveilStacked(ctx context.Context, it *idea.Idea, analysis *idea.Analysis, research *gateway.Research, now time.Time) error {
	prior := it.LatestReport

	raw, err := e.gateway.GenerateWithSystem(ctx, prompt.SystemAnalyst, prompt.ConsolidationPrompt(prompt.ConsolidationInput{
		Title:              it.Title,
		AnalysisJSON:       toJSON(analysis),
		PreviousReportJSON: toJSON(prior),
		ResearchJSON:       toJSON(research),
	}))
	if err != nil {
		return fmt.Errorf("consolidation for %s: %w", it.ID, err)
	}

	con, err := prompt.DecodeConsolidation(raw, prior, it.Title, research.Summary)
	if err != nil {
		return fmt.Errorf("decode consolidation for %s: %w", it.ID, err)
	}

	discoveries := e.ensureDiscoveries(ctx, it, con.Report.Discoveries, research, 4)

	// Unread volume accumulates until the owner reads a report.
	newSourceCount := len(research.Sources)
	if prior != nil {
		newSourceCount += prior.NewSourceCount
	}

	report := &idea.Report{
		Headline:           con.Report.Headline,
		ViabilityDirection: con.Report.Direction,
		Discoveries:        discoveries,
		ActionPlan:         con.Report.ActionPlan,
		GeneratedAt:        now,
		ConfidenceDelta:    con.ConfidenceDelta,
		NewSourceCount:     newSourceCount,
	}
	if err := e.putJSONBoth(ctx, objstore.ReportKey(it.ID), objstore.ReportSnapshotKey(it.ID, now), report); err != nil {
		return fmt.Errorf("persist report for %s: %w", it.ID, err)
	}

	it.LatestReport = report
	it.ReportViewed = false
	it.LastUpdatedAt = now

	delta := con.ConfidenceDelta
	sources := newSourceCount
	ev := &idea.Event{
		IdeaID:          it.ID,
		Timestamp:       now,
		Type:            idea.EventSurveillanceStacked,
		Summary:         con.ChangeSummary,
		ConfidenceDelta: &delta,
		NewSourceCount:  &sources,
	}
	if err := e.ideas.SaveIdeaWithEvent(ctx, it, ev); err != nil {
		return fmt.Errorf("commit stacked surveillance for %s: %w", it.ID, err)
	}

	logging.Surveil("idea %s: stacked report %q cumulative_sources=%d", it.ID, report.Headline, newSourceCount)
	return nil
}

// loadAnalysis reads the intake analysis artifact. An idea tracked from
// before intake wrote artifacts has none; that is not an error, the run
// degrades to the raw title and generic queries.
func (e *Engine) loadAnalysis(ctx context.Context, it *idea.Idea) *idea.Analysis {
	var analysis idea.Analysis
	ok, err := e.objects.GetJSON(ctx, objstore.AnalysisKey(it.ID), &analysis)
	if err != nil || !ok {
		if err != nil {
			logging.SurveilWarn("idea %s: analysis artifact unreadable: %v", it.ID, err)
		}
		return &idea.Analysis{
			EnrichedDescription: it.Title,
			SearchQueries:       prompt.FallbackQueries(it.Title),
		}
	}
	if analysis.EnrichedDescription == "" {
		analysis.EnrichedDescription = it.Title
	}
	if len(analysis.SearchQueries) == 0 {
		analysis.SearchQueries = prompt.FallbackQueries(it.Title)
	}
	return &analysis
}

// ensureDiscoveries is the report integrity guard: a decoded report
// with zero discoveries gets exactly one retry with the narrower
// discoveries-only prompt. If the retry also produces nothing, the
// empty list stands; a weak report beats no report.
func (e *Engine) ensureDiscoveries(ctx context.Context, it *idea.Idea, discoveries []idea.Discovery, research *gateway.Research, max int) []idea.Discovery {
	if len(discoveries) > 0 {
		return discoveries
	}
	logging.SurveilWarn("idea %s: report had zero discoveries, retrying once", it.ID)

	raw, err := e.gateway.GenerateWithSystem(ctx, prompt.SystemAnalyst, prompt.DiscoveriesRetryPrompt(it.Title, toJSON(research)))
	if err != nil {
		logging.SurveilWarn("idea %s: discoveries retry failed: %v", it.ID, err)
		return discoveries
	}
	retried, err := prompt.DecodeDiscoveries(raw)
	if err != nil {
		logging.SurveilWarn("idea %s: discoveries retry undecodable: %v", it.ID, err)
		return discoveries
	}
	if len(retried) > max {
		retried = retried[:max]
	}
	return retried
}

// putJSONBoth writes the latest and snapshot copies concurrently.
func (e *Engine) putJSONBoth(ctx context.Context, latestKey, snapshotKey string, v any) error {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error { return e.objects.PutJSON(egCtx, latestKey, v) })
	eg.Go(func() error { return e.objects.PutJSON(egCtx, snapshotKey, v) })
	return eg.Wait()
}

// putBoth writes the latest and snapshot copies concurrently.
func (e *Engine) putBoth(ctx context.Context, latestKey, snapshotKey string, data []byte) error {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error { return e.objects.Put(egCtx, latestKey, data) })
	eg.Go(func() error { return e.objects.Put(egCtx, snapshotKey, data) })
	return eg.Wait()
}

func toJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func modeName(fresh bool) string {
	if fresh {
		return "fresh"
	}
	return "stacked"
}
