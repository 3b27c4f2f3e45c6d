package output

import (
	"fmt"
	"sort"
	"strings"

	"persona-doc-intel/internal/textutil"
)

// Report renders a plain-text summary of a run
func Report(run Run) string {
	res := run.Result
	var b strings.Builder

	b.WriteString("Persona-Driven Document Intelligence Report\n")
	b.WriteString(strings.Repeat("=", 44) + "\n\n")

	fmt.Fprintf(&b, "Run: %s\n", run.ID)
	fmt.Fprintf(&b, "Persona: %s\n", run.Persona)
	fmt.Fprintf(&b, "Job: %s\n", run.Job)
	if pc := res.Context; pc != nil {
		fmt.Fprintf(&b, "Role: %s (domain: %s)\n", pc.Role, pc.Domain)
		fmt.Fprintf(&b, "Intent: %s, depth: %s\n", pc.JobIntent, pc.AnalysisDepth)
		if len(pc.PriorityTopics) > 0 {
			fmt.Fprintf(&b, "Priority topics: %s\n", strings.Join(pc.PriorityTopics, ", "))
		}
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Top %d sections:\n", len(res.Selected))
	for _, rs := range res.Selected {
		fmt.Fprintf(&b, "  %d. %s (%s, page %d) score %.3f\n",
			rs.Rank, rs.Title, rs.Document, rs.PageNumber, rs.FinalScore)
		if rs.Preview != "" {
			fmt.Fprintf(&b, "     %s\n", textutil.Truncate(rs.Preview, 100))
		}
	}
	b.WriteString("\n")

	stats := ComputeStats(run.Documents, res)
	b.WriteString("Processing statistics:\n")
	fmt.Fprintf(&b, "  Documents: %d\n", stats.Documents)
	fmt.Fprintf(&b, "  Pages: %d\n", stats.Pages)
	fmt.Fprintf(&b, "  Candidate sections: %d\n", stats.CandidateSections)
	fmt.Fprintf(&b, "  Average relevance: %.3f\n", stats.AverageRelevance)
	if stats.DegradedPages > 0 {
		fmt.Fprintf(&b, "  Degraded pages: %d\n", stats.DegradedPages)
	}
	fmt.Fprintf(&b, "  Processing time: %.2fs (budget %.0fs, within limit: %v)\n",
		stats.ElapsedSeconds, res.Budget.Seconds(), stats.WithinTimeLimit)

	if len(res.Summary.ByType) > 0 {
		b.WriteString("  Section types:\n")
		types := make([]string, 0, len(res.Summary.ByType))
		for t := range res.Summary.ByType {
			types = append(types, t)
		}
		sort.Strings(types)
		for _, t := range types {
			fmt.Fprintf(&b, "    %s: %d\n", t, res.Summary.ByType[t])
		}
	}

	return b.String()
}
