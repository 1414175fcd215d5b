// Package observability provides human-readable formatting of pipeline
// artifacts for verbose CLI output.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jordan/curriculum-builder/internal/clustering"
	"github.com/jordan/curriculum-builder/internal/types"
)

// Printer writes formatted pipeline artifacts to an output stream.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a printer writing to out.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// PrintClusters prints the clustering result.
func (p *Printer) PrintClusters(clusters []clustering.Cluster, items []types.ContentItem) {
	titles := make(map[string]string, len(items))
	for _, item := range items {
		titles[item.ID] = item.Title
	}

	fmt.Fprintf(p.out, "\n=== Topic Clusters (%d) ===\n", len(clusters))
	for _, cluster := range clusters {
		fmt.Fprintf(p.out, "Cluster %d:\n", cluster.ID+1)
		for _, id := range cluster.ContentIDs {
			fmt.Fprintf(p.out, "  - %s\n", titles[id])
		}
	}
}

// PrintDigests prints a compact view of the content digests.
func (p *Printer) PrintDigests(digests []types.ContentDigest) {
	fmt.Fprintf(p.out, "\n=== Content Digests (%d) ===\n", len(digests))
	for _, d := range digests {
		fmt.Fprintf(p.out, "%s [%s]\n", d.ContentTitle, d.DifficultyLevel)
		fmt.Fprintf(p.out, "  Concepts: %s\n", strings.Join(d.KeyConcepts, ", "))
		fmt.Fprintf(p.out, "  Skills:   %s\n", strings.Join(d.SkillsIntroduced, ", "))
	}
}

// PrintDraft prints the generated curriculum outline.
func (p *Printer) PrintDraft(draft *types.ProgramDraft) {
	fmt.Fprintf(p.out, "\n=== %s (%d weeks) ===\n", draft.Title, draft.DurationWeeks)
	for _, week := range draft.Weeks {
		fmt.Fprintf(p.out, "Week %d: %s\n", week.WeekNumber, week.Title)
		for _, session := range week.Sessions {
			fmt.Fprintf(p.out, "  %s\n", session.Title)
			for _, action := range session.Actions {
				fmt.Fprintf(p.out, "    [%s] %s\n", action.Type, action.Title)
			}
		}
	}
}
