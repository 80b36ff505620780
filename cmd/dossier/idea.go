package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"dossier/internal/idea"
)

var (
	ideaOwner string
	ideaTitle string
	ideaInput string
	ideaID    string
)

// ideaCmd groups the idea operations
var ideaCmd = &cobra.Command{
	Use:   "idea",
	Short: "Track, inspect, and list ideas",
}

var ideaAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Track a new idea",
	Long: `Runs the intake pipeline: the idea is enriched into a research profile,
researched once, and given its initial SWOT analysis and confidence score.

Example:
  dossier idea add --owner alice --title "solar powered bike lights" \
    --input "bike lights that trickle-charge from a hub dynamo"`,
	RunE: runIdeaAdd,
}

var ideaShowCmd = &cobra.Command{
	Use:   "show",
	Short: "View an idea and its latest report",
	Long: `Shows the idea's assessment and pending report. Viewing counts: the report
is marked read, so the next surveillance pass re-assesses from scratch instead
of stacking onto it.`,
	RunE: runIdeaShow,
}

var ideaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List an owner's tracked ideas",
	RunE:  runIdeaList,
}

func init() {
	ideaAddCmd.Flags().StringVar(&ideaOwner, "owner", "", "Owner id (required)")
	ideaAddCmd.Flags().StringVar(&ideaTitle, "title", "", "Idea title (required)")
	ideaAddCmd.Flags().StringVar(&ideaInput, "input", "", "Raw idea description")
	_ = ideaAddCmd.MarkFlagRequired("owner")
	_ = ideaAddCmd.MarkFlagRequired("title")

	ideaShowCmd.Flags().StringVar(&ideaOwner, "owner", "", "Owner id (required)")
	ideaShowCmd.Flags().StringVar(&ideaID, "id", "", "Idea id (required)")
	_ = ideaShowCmd.MarkFlagRequired("owner")
	_ = ideaShowCmd.MarkFlagRequired("id")

	ideaListCmd.Flags().StringVar(&ideaOwner, "owner", "", "Owner id (required)")
	_ = ideaListCmd.MarkFlagRequired("owner")
}

func runIdeaAdd(cmd *cobra.Command, args []string) error {
	// Three gateway calls end to end; give the chain the same budget a
	// surveillance pass gets.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	app, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	it, err := app.pipeline.CreateIdea(ctx, ideaOwner, ideaTitle, ideaInput)
	if err != nil {
		return fmt.Errorf("intake failed: %w", err)
	}

	fmt.Printf("Tracked %q for %s\n", it.Title, it.OwnerID)
	fmt.Printf("  id:         %s\n", it.ID)
	fmt.Printf("  confidence: %.2f\n", it.ConfidenceScore)
	printSWOT(&it.SWOT)
	return nil
}

func runIdeaShow(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	app, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	res, err := app.engine.ViewIdea(ctx, ideaOwner, ideaID)
	if err != nil {
		return err
	}

	it := res.Idea
	fmt.Printf("%s (%s)\n", it.Title, it.ID)
	fmt.Printf("  status:     %s\n", it.Status)
	fmt.Printf("  confidence: %.2f\n", it.ConfidenceScore)
	fmt.Printf("  away:       %d day(s)\n", res.DaysAway)
	printSWOT(&it.SWOT)

	rep := it.LatestReport
	if rep == nil {
		fmt.Println("\nNo surveillance report yet.")
		return nil
	}
	fmt.Printf("\nReport: %s\n", rep.Headline)
	fmt.Printf("  direction:   %s\n", rep.ViabilityDirection)
	fmt.Printf("  delta:       %+.2f\n", rep.ConfidenceDelta)
	fmt.Printf("  new sources: %d\n", rep.NewSourceCount)
	fmt.Printf("  generated:   %s\n", rep.GeneratedAt.Local().Format(time.RFC822))
	for _, d := range rep.Discoveries {
		fmt.Printf("  - %s\n    %s\n", d.Finding, d.Impact)
	}
	fmt.Printf("\nAction plan:\n%s\n", rep.ActionPlan)
	return nil
}

func runIdeaList(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	app, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	ideas, err := app.records.IdeasByOwner(ctx, ideaOwner)
	if err != nil {
		return err
	}
	if len(ideas) == 0 {
		fmt.Printf("No ideas tracked for %s\n", ideaOwner)
		return nil
	}

	unread := 0
	for _, it := range ideas {
		marker := " "
		if it.LatestReport != nil && !it.ReportViewed {
			marker = "*"
			unread++
		}
		fmt.Printf("%s %-36s  %.2f  %-8s  %s\n", marker, it.ID, it.ConfidenceScore, it.Status, it.Title)
	}
	if unread > 0 {
		fmt.Printf("\n%d unread report(s) (*)\n", unread)
	}
	return nil
}

func printSWOT(s *idea.SWOT) {
	sections := []struct {
		name  string
		items []string
	}{
		{"strengths", s.Strengths},
		{"weaknesses", s.Weaknesses},
		{"opportunities", s.Opportunities},
		{"threats", s.Threats},
	}
	for _, sec := range sections {
		if len(sec.items) == 0 {
			continue
		}
		fmt.Printf("  %s:\n", sec.name)
		for _, item := range sec.items {
			fmt.Printf("    - %s\n", item)
		}
	}
}
