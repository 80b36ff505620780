// Package prompt is the control-flow contract around AI calls: the
// prompts sent to the gateway and the tolerant decode of what comes
// back. Surveillance and intake never parse model output themselves;
// everything crosses this boundary as typed values with per-field
// fallbacks.
package prompt

// SystemAnalyst is the system prompt for every assessment call. The
// register matters: the model is asked to behave like a skeptical
// analyst, not a cheerleader.
const SystemAnalyst = `You are a ruthless, evidence-driven startup analyst. You evaluate business ideas against current market reality, not against their founder's enthusiasm. You cite concrete findings, you change your mind when the evidence changes, and you consider a harsh but accurate assessment more useful than a kind one. You respond with JSON exactly matching the requested schema, with no commentary outside it.`

// ConfidenceRubric anchors confidence scores to behavior. It is
// included verbatim in every prompt that produces a confidenceScore so
// intake and surveillance score against the same scale.
const ConfidenceRubric = `CONFIDENCE RUBRIC (score the idea's current viability, 0.00 to 1.00):
- 0.00-0.15  Dead on arrival. A fatal flaw exists: the market is gone, the approach is illegal, or a dominant player has already won.
- 0.15-0.30  Deeply troubled. Multiple severe problems with no credible path around them.
- 0.30-0.45  Major unresolved hurdles. The idea could work, but something load-bearing (demand, unit economics, regulation, technology) is unproven and trending badly.
- 0.45-0.60  Plausible but unproven. Real opportunity, real obstacles, no strong evidence either way. Most ideas land here.
- 0.60-0.70  Promising. Concrete signals of demand or differentiation that a skeptic would accept.
- 0.70-0.85  Strong and defensible. Clear demand, credible moat, and the recent evidence keeps confirming it.
- 0.85-0.95  Exceptional. Rare, overwhelming evidence across demand, economics, and timing.
- 0.95-1.00  Almost never appropriate. Reserve for ideas that are effectively already winning.

Scoring rules:
1. Score from the rubric, not from politeness. Do not default into the 0.45-0.60 band to stay safe; pick the band the evidence actually supports.
2. Use the full range. Scores below 0.30 and above 0.70 are expected outcomes, not anomalies.
3. A harsh score is the helpful outcome: it tells the owner where the idea really stands.`
