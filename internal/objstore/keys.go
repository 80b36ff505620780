package objstore

import (
	"fmt"
	"time"
)

// timestampLayout is the compact UTC form used in snapshot key names.
const timestampLayout = "20060102T150405Z"

// Artifact keys live under ideas/{ideaId}/. Every timestamped snapshot
// has an unsuffixed "latest" sibling so readers never have to list keys.

// AnalysisKey is the latest intake analysis for an idea.
func AnalysisKey(ideaID string) string {
	return fmt.Sprintf("ideas/%s/analysis.json", ideaID)
}

// AnalysisSnapshotKey is the intake analysis as of t.
func AnalysisSnapshotKey(ideaID string, t time.Time) string {
	return fmt.Sprintf("ideas/%s/analysis-%s.json", ideaID, t.UTC().Format(timestampLayout))
}

// ResearchKey is the latest research result for an idea.
func ResearchKey(ideaID string) string {
	return fmt.Sprintf("ideas/%s/research.json", ideaID)
}

// ResearchSnapshotKey is the research result as of t.
func ResearchSnapshotKey(ideaID string, t time.Time) string {
	return fmt.Sprintf("ideas/%s/research-%s.json", ideaID, t.UTC().Format(timestampLayout))
}

// SWOTKey is the latest formatted SWOT document for an idea.
func SWOTKey(ideaID string) string {
	return fmt.Sprintf("ideas/%s/swot.md", ideaID)
}

// SWOTSnapshotKey is the SWOT document as of t.
func SWOTSnapshotKey(ideaID string, t time.Time) string {
	return fmt.Sprintf("ideas/%s/swot-%s.md", ideaID, t.UTC().Format(timestampLayout))
}

// ReportKey is the latest surveillance report for an idea.
func ReportKey(ideaID string) string {
	return fmt.Sprintf("ideas/%s/report.json", ideaID)
}

// ReportSnapshotKey is the surveillance report as of t.
func ReportSnapshotKey(ideaID string, t time.Time) string {
	return fmt.Sprintf("ideas/%s/report-%s.json", ideaID, t.UTC().Format(timestampLayout))
}
