package prompt

import (
	"fmt"
	"strings"
)

// FallbackQueries returns the four generic research angles used when an
// idea has no stored analysis (or enrichment failed at intake).
func FallbackQueries(title string) []string {
	return []string{
		fmt.Sprintf("%s market trends", title),
		fmt.Sprintf("%s competitors", title),
		fmt.Sprintf("%s industry news", title),
		fmt.Sprintf("%s technology developments", title),
	}
}

// EnrichmentPrompt asks the model to expand a raw idea into a reusable
// analysis artifact: enriched description, domain, and search queries.
func EnrichmentPrompt(title, rawInput string) string {
	return fmt.Sprintf(`A user wants to track this business idea over time.

TITLE: %s
RAW DESCRIPTION:
%s

Produce the analysis artifact that future automated research runs will reuse:
1. enrichedDescription: the idea restated precisely in 2-4 sentences, naming the customer, the problem, and the mechanism. Sharpen, do not embellish.
2. domain: the industry/category in a few words.
3. searchQueries: 3-5 web search queries that would surface the developments most likely to change this idea's viability (competitors, demand signals, regulation, enabling technology).

Return JSON only:
{
  "enrichedDescription": "...",
  "domain": "...",
  "searchQueries": ["...", "..."]
}`, title, rawInput)
}

// InitialSWOTPrompt asks for the first SWOT and confidence score at
// intake, scored under the shared rubric.
func InitialSWOTPrompt(analysisJSON, researchJSON string) string {
	return fmt.Sprintf(`Assess this business idea from its analysis and the research findings below.

IDEA ANALYSIS:
%s

RESEARCH FINDINGS:
%s

%s

Build the initial assessment:
1. swot: strengths, weaknesses, opportunities, threats. Each entry one concrete sentence grounded in the analysis or research, not a platitude.
2. confidenceScore: score the idea against the rubric above.
3. changeSummary: one or two sentences on what most shaped the assessment.

Return JSON only:
{
  "swot": {"strengths": ["..."], "weaknesses": ["..."], "opportunities": ["..."], "threats": ["..."]},
  "confidenceScore": 0.0,
  "changeSummary": "..."
}`, analysisJSON, researchJSON, ConfidenceRubric)
}

// SynthesisInput carries everything the fresh-mode surveillance prompt
// folds together.
type SynthesisInput struct {
	Title              string
	AnalysisJSON       string
	SWOTText           string // formatted document, may be empty
	Confidence         float64
	PreviousReportJSON string // may be empty
	ResearchJSON       string
}

// SynthesisPrompt builds the fresh-mode prompt: re-derive the SWOT and
// rescore confidence from scratch against the new research.
func SynthesisPrompt(in SynthesisInput) string {
	swotText := in.SWOTText
	if strings.TrimSpace(swotText) == "" {
		swotText = "(no previous analysis on file)"
	}
	prevReport := in.PreviousReportJSON
	if strings.TrimSpace(prevReport) == "" {
		prevReport = "(none; this is the first surveillance pass)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `You are re-assessing a tracked business idea against fresh intelligence.

IDEA: %s

IDEA ANALYSIS:
%s

CURRENT SWOT:
%s

CURRENT CONFIDENCE SCORE: %.2f

PREVIOUS SURVEILLANCE REPORT (already read by the owner):
%s

NEW RESEARCH FINDINGS:
%s

`, in.Title, in.AnalysisJSON, swotText, in.Confidence, prevReport, in.ResearchJSON)

	b.WriteString(ConfidenceRubric)
	b.WriteString(`

Your tasks:
1. swot: rebuild the SWOT. Keep entries the new research still supports, add entries for what it revealed, drop entries it contradicts. Fold in anything from the previous report that remains material.
2. confidenceScore: rescore from first principles against the rubric and the evidence in front of you. Do NOT anchor on the current score or nudge it by a token amount; if the evidence says the idea moved bands, move it.
3. report: what the owner must know.
   - headline: at most 10 words, the single most important development.
   - viabilityDirection: "up", "down", or "stable".
   - discoveries: 3 to 6 entries; each pairs a concrete finding (who/what/when) with its impact on this idea.
   - actionPlan: at least 200 words of specific, sequenced guidance for the owner's next moves given these findings.
4. changeSummary: one or two sentences describing how the assessment moved and why.

Return JSON only:
{
  "swot": {"strengths": ["..."], "weaknesses": ["..."], "opportunities": ["..."], "threats": ["..."]},
  "confidenceScore": 0.0,
  "changeSummary": "...",
  "report": {
    "headline": "...",
    "viabilityDirection": "up|down|stable",
    "discoveries": [{"finding": "...", "impact": "..."}],
    "actionPlan": "..."
  }
}`)
	return b.String()
}

// ConsolidationInput carries the stacked-mode prompt inputs: the unread
// report plus the new research, no SWOT.
type ConsolidationInput struct {
	Title              string
	AnalysisJSON       string
	PreviousReportJSON string
	ResearchJSON       string
}

// ConsolidationPrompt builds the stacked-mode prompt: merge the unread
// report with the new findings into one current report. The SWOT and
// confidence score are deliberately absent; stacked mode never touches
// them.
func ConsolidationPrompt(in ConsolidationInput) string {
	return fmt.Sprintf(`A tracked business idea has an UNREAD surveillance report, and new research has just come in. The owner will see only one report, so consolidate.

IDEA: %s

IDEA ANALYSIS:
%s

UNREAD PREVIOUS REPORT:
%s

NEW RESEARCH FINDINGS:
%s

Your tasks:
1. Merge the unread report's discoveries with the new findings. Select only the 3 to 4 MOST significant items across both; when a new finding updates or supersedes an old one, keep the newer version.
2. report: headline (at most 10 words), viabilityDirection ("up", "down", or "stable"), the selected discoveries, and an actionPlan rewritten for the full consolidated picture.
3. confidenceDelta: if the new findings clearly move the idea's trajectory, estimate the shift as a signed number (e.g. -0.05); omit the field to keep the previous report's delta.
4. changeSummary: one or two sentences on what changed across this consolidation.

Return JSON only:
{
  "confidenceDelta": 0.0,
  "changeSummary": "...",
  "report": {
    "headline": "...",
    "viabilityDirection": "up|down|stable",
    "discoveries": [{"finding": "...", "impact": "..."}],
    "actionPlan": "..."
  }
}`, in.Title, in.AnalysisJSON, in.PreviousReportJSON, in.ResearchJSON)
}

// DiscoveriesRetryPrompt is the narrower prompt used when a decoded
// report came back with zero discoveries: same research, one job.
func DiscoveriesRetryPrompt(title, researchJSON string) string {
	return fmt.Sprintf(`Extract the concrete discoveries about this business idea from the research below.

IDEA: %s

RESEARCH FINDINGS:
%s

List 3 to 6 discoveries. Each pairs one concrete, recent finding (a company, launch, funding event, regulation, or technology shift) with its impact on this specific idea. If the research genuinely contains fewer than 3, return what it contains.

Return JSON only:
{
  "discoveries": [{"finding": "...", "impact": "..."}]
}`, title, researchJSON)
}
