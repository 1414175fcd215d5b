package synthesis

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jordan/curriculum-builder/internal/clustering"
	"github.com/jordan/curriculum-builder/internal/prompts"
	"github.com/jordan/curriculum-builder/internal/types"
)

// excerptLimit caps per-item transcript excerpts in the prompt.
const excerptLimit = 600

// buildGenerationPrompt assembles the single structured prompt for
// provider-mode synthesis: program metadata, per-cluster content
// listings, and the explicit structural requirements.
func buildGenerationPrompt(meta types.ProgramMeta, items []types.ContentItem, clusters []clustering.Cluster, digests []types.ContentDigest) string {
	template := prompts.MustGet("synthesis.json", "generate-draft")
	return prompts.Format(template, map[string]string{
		"Title":           meta.Title,
		"Description":     meta.Description,
		"PacingMode":      string(meta.PacingMode),
		"DurationWeeks":   strconv.Itoa(meta.DurationWeeks),
		"PerWeek":         strconv.Itoa(ceilDiv(len(items), meta.DurationWeeks)),
		"ClusterListings": buildClusterListings(items, clusters, digests),
	})
}

// buildRepairPrompt asks the provider for a corrected JSON-only response,
// given its previous bad output and the specific validation error.
func buildRepairPrompt(badOutput string, validationErr error) string {
	template := prompts.MustGet("synthesis.json", "repair-draft")
	return prompts.Format(template, map[string]string{
		"BadOutput": badOutput,
		"Error":     validationErr.Error(),
	})
}

func buildClusterListings(items []types.ContentItem, clusters []clustering.Cluster, digests []types.ContentDigest) string {
	byID := make(map[string]types.ContentItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	digestByID := make(map[string]types.ContentDigest, len(digests))
	for _, d := range digests {
		digestByID[d.ContentID] = d
	}

	var sb strings.Builder
	for _, cluster := range clusters {
		fmt.Fprintf(&sb, "Topic cluster %d:\n", cluster.ID+1)
		for _, id := range cluster.ContentIDs {
			item, ok := byID[id]
			if !ok {
				continue
			}
			fmt.Fprintf(&sb, "- %q (id: %s, type: %s)\n", item.Title, item.ID, item.Kind)
			if d, ok := digestByID[id]; ok {
				fmt.Fprintf(&sb, "  Concepts: %s. Difficulty: %s.\n", strings.Join(d.KeyConcepts, ", "), d.DifficultyLevel)
				if d.Summary != "" {
					fmt.Fprintf(&sb, "  Summary: %s\n", d.Summary)
				}
			}
			if excerpt := itemExcerpt(item); excerpt != "" {
				fmt.Fprintf(&sb, "  Excerpt: %s\n", excerpt)
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func itemExcerpt(item types.ContentItem) string {
	text := strings.Join(strings.Fields(item.Text()), " ")
	if len(text) > excerptLimit {
		// Cut on a rune boundary so a multi-byte character is never
		// split mid-sequence.
		cut := excerptLimit
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return text
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return a
	}
	return (a + b - 1) / b
}
