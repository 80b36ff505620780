package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"dossier/internal/gateway"
	"dossier/internal/idea"
)

var (
	// ErrNoJSON means the response contained no balanced JSON object.
	ErrNoJSON = errors.New("prompt: no JSON object in model response")
	// ErrMissingReport means the response parsed but had no report object.
	ErrMissingReport = errors.New("prompt: response missing report object")
	// ErrMissingSWOT means an initial assessment came back without a SWOT.
	ErrMissingSWOT = errors.New("prompt: response missing swot")
	// ErrMissingScore means an initial assessment came back unscored.
	ErrMissingScore = errors.New("prompt: response missing confidence score")
)

const (
	maxFreshDiscoveries   = 6
	maxStackedDiscoveries = 4
	maxSearchQueries      = 5
)

// Envelope types use pointer fields so a missing key is distinguishable
// from a zero value. Fallbacks are applied per field, never wholesale.

type discoveryEnvelope struct {
	Finding string `json:"finding"`
	Impact  string `json:"impact"`
}

type reportEnvelope struct {
	Headline           *string             `json:"headline"`
	ViabilityDirection *string             `json:"viabilityDirection"`
	Discoveries        []discoveryEnvelope `json:"discoveries"`
	ActionPlan         *string             `json:"actionPlan"`
}

type synthesisEnvelope struct {
	SWOT            *idea.SWOT      `json:"swot"`
	ConfidenceScore *float64        `json:"confidenceScore"`
	ChangeSummary   *string         `json:"changeSummary"`
	Report          *reportEnvelope `json:"report"`
}

type consolidationEnvelope struct {
	ConfidenceDelta *float64        `json:"confidenceDelta"`
	ChangeSummary   *string         `json:"changeSummary"`
	Report          *reportEnvelope `json:"report"`
}

type enrichmentEnvelope struct {
	EnrichedDescription *string  `json:"enrichedDescription"`
	Domain              *string  `json:"domain"`
	SearchQueries       []string `json:"searchQueries"`
}

type initialEnvelope struct {
	SWOT            *idea.SWOT `json:"swot"`
	ConfidenceScore *float64   `json:"confidenceScore"`
	ChangeSummary   *string    `json:"changeSummary"`
}

type discoveriesEnvelope struct {
	Discoveries []discoveryEnvelope `json:"discoveries"`
}

// ReportDraft is a decoded report before the caller stamps GeneratedAt,
// ConfidenceDelta, and NewSourceCount.
type ReportDraft struct {
	Headline    string
	Direction   idea.Direction
	Discoveries []idea.Discovery
	ActionPlan  string
}

// Synthesis is the decoded fresh-mode response.
type Synthesis struct {
	SWOT            idea.SWOT
	ConfidenceScore float64
	ConfidenceDelta float64 // new score minus the idea's previous score
	ChangeSummary   string
	Report          ReportDraft
}

// DecodeSynthesis interprets a fresh-mode response against the idea
// being re-assessed. A missing SWOT keeps the existing one; a missing
// score keeps the existing score; a missing report object is an error.
func DecodeSynthesis(raw string, existing *idea.Idea, researchSummary string) (*Synthesis, error) {
	extracted := gateway.ExtractJSON(raw)
	if extracted == "" {
		return nil, ErrNoJSON
	}
	var env synthesisEnvelope
	if err := json.Unmarshal([]byte(extracted), &env); err != nil {
		return nil, fmt.Errorf("prompt: malformed synthesis response: %w", err)
	}
	if env.Report == nil {
		return nil, ErrMissingReport
	}

	swot := existing.SWOT
	if env.SWOT != nil && !env.SWOT.IsZero() {
		swot = *env.SWOT
	}

	score := existing.ConfidenceScore
	if env.ConfidenceScore != nil {
		score = idea.Clamp01(*env.ConfidenceScore)
	}
	delta := score - existing.ConfidenceScore

	summary := fallbackSummary(env.ChangeSummary, existing.Title)

	return &Synthesis{
		SWOT:            swot,
		ConfidenceScore: score,
		ConfidenceDelta: delta,
		ChangeSummary:   summary,
		Report: decodeReport(env.Report, reportDefaults{
			title:           existing.Title,
			changeSummary:   summary,
			delta:           delta,
			researchSummary: researchSummary,
			maxDiscoveries:  maxFreshDiscoveries,
		}),
	}, nil
}

// Consolidation is the decoded stacked-mode response.
type Consolidation struct {
	ConfidenceDelta float64
	ChangeSummary   string
	Report          ReportDraft
}

// DecodeConsolidation interprets a stacked-mode response. A missing
// confidenceDelta carries the prior report's delta forward; discoveries
// are capped at four.
func DecodeConsolidation(raw string, prior *idea.Report, title, researchSummary string) (*Consolidation, error) {
	extracted := gateway.ExtractJSON(raw)
	if extracted == "" {
		return nil, ErrNoJSON
	}
	var env consolidationEnvelope
	if err := json.Unmarshal([]byte(extracted), &env); err != nil {
		return nil, fmt.Errorf("prompt: malformed consolidation response: %w", err)
	}
	if env.Report == nil {
		return nil, ErrMissingReport
	}

	var delta float64
	if env.ConfidenceDelta != nil {
		delta = *env.ConfidenceDelta
	} else if prior != nil {
		delta = prior.ConfidenceDelta
	}

	summary := fallbackSummary(env.ChangeSummary, title)

	return &Consolidation{
		ConfidenceDelta: delta,
		ChangeSummary:   summary,
		Report: decodeReport(env.Report, reportDefaults{
			title:           title,
			changeSummary:   summary,
			delta:           delta,
			researchSummary: researchSummary,
			maxDiscoveries:  maxStackedDiscoveries,
		}),
	}, nil
}

// DecodeEnrichment interprets an intake enrichment response. Partial
// output degrades per field: description falls back to the raw input,
// queries to the generic fallback set.
func DecodeEnrichment(raw, title, rawInput string) (*idea.Analysis, error) {
	extracted := gateway.ExtractJSON(raw)
	if extracted == "" {
		return nil, ErrNoJSON
	}
	var env enrichmentEnvelope
	if err := json.Unmarshal([]byte(extracted), &env); err != nil {
		return nil, fmt.Errorf("prompt: malformed enrichment response: %w", err)
	}

	description := strDeref(env.EnrichedDescription)
	if description == "" {
		description = rawInput
	}
	if description == "" {
		description = title
	}

	queries := make([]string, 0, len(env.SearchQueries))
	for _, q := range env.SearchQueries {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		queries = append(queries, q)
		if len(queries) == maxSearchQueries {
			break
		}
	}
	if len(queries) == 0 {
		queries = FallbackQueries(title)
	}

	return &idea.Analysis{
		EnrichedDescription: description,
		Domain:              strDeref(env.Domain),
		SearchQueries:       queries,
	}, nil
}

// InitialAssessment is the decoded intake assessment.
type InitialAssessment struct {
	SWOT            idea.SWOT
	ConfidenceScore float64
	ChangeSummary   string
}

// DecodeInitialSWOT interprets the intake assessment response. The
// record needs a real initial state, so a missing SWOT or score is an
// error rather than a fallback.
func DecodeInitialSWOT(raw, title string) (*InitialAssessment, error) {
	extracted := gateway.ExtractJSON(raw)
	if extracted == "" {
		return nil, ErrNoJSON
	}
	var env initialEnvelope
	if err := json.Unmarshal([]byte(extracted), &env); err != nil {
		return nil, fmt.Errorf("prompt: malformed assessment response: %w", err)
	}
	if env.SWOT == nil || env.SWOT.IsZero() {
		return nil, ErrMissingSWOT
	}
	if env.ConfidenceScore == nil {
		return nil, ErrMissingScore
	}

	summary := strDeref(env.ChangeSummary)
	if summary == "" {
		summary = fmt.Sprintf("initial assessment of %s", title)
	}

	return &InitialAssessment{
		SWOT:            *env.SWOT,
		ConfidenceScore: idea.Clamp01(*env.ConfidenceScore),
		ChangeSummary:   summary,
	}, nil
}

// DecodeDiscoveries interprets a discoveries-retry response.
func DecodeDiscoveries(raw string) ([]idea.Discovery, error) {
	extracted := gateway.ExtractJSON(raw)
	if extracted == "" {
		return nil, ErrNoJSON
	}
	var env discoveriesEnvelope
	if err := json.Unmarshal([]byte(extracted), &env); err != nil {
		return nil, fmt.Errorf("prompt: malformed discoveries response: %w", err)
	}
	return collectDiscoveries(env.Discoveries, maxFreshDiscoveries), nil
}

type reportDefaults struct {
	title           string
	changeSummary   string
	delta           float64
	researchSummary string
	maxDiscoveries  int
}

func decodeReport(env *reportEnvelope, d reportDefaults) ReportDraft {
	headline := strDeref(env.Headline)
	if headline == "" {
		headline = firstSentence(d.changeSummary)
	}
	if headline == "" {
		headline = d.title
	}

	direction := idea.DirectionFromDelta(d.delta)
	if env.ViabilityDirection != nil {
		if v := strings.ToLower(strings.TrimSpace(*env.ViabilityDirection)); idea.ValidDirection(v) {
			direction = idea.Direction(v)
		}
	}

	plan := strDeref(env.ActionPlan)
	if plan == "" {
		plan = d.changeSummary
	}
	if plan == "" {
		plan = d.researchSummary
	}

	return ReportDraft{
		Headline:    headline,
		Direction:   direction,
		Discoveries: collectDiscoveries(env.Discoveries, d.maxDiscoveries),
		ActionPlan:  plan,
	}
}

func collectDiscoveries(envs []discoveryEnvelope, max int) []idea.Discovery {
	discoveries := make([]idea.Discovery, 0, len(envs))
	for _, de := range envs {
		finding := strings.TrimSpace(de.Finding)
		if finding == "" {
			continue
		}
		discoveries = append(discoveries, idea.Discovery{
			Finding: finding,
			Impact:  strings.TrimSpace(de.Impact),
		})
		if len(discoveries) == max {
			break
		}
	}
	return discoveries
}

func strDeref(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func fallbackSummary(p *string, title string) string {
	if s := strDeref(p); s != "" {
		return s
	}
	return fmt.Sprintf("surveillance update for %s", title)
}

// firstSentence returns the text up to the first sentence break.
func firstSentence(s string) string {
	s = strings.TrimSpace(s)
	for i, r := range s {
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			return strings.TrimSpace(s[:i])
		}
	}
	return s
}
