package digest

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/jordan/curriculum-builder/internal/types"
)

// maxSummaryLen caps digest summaries.
const maxSummaryLen = 500

// stopwords excluded when mining concepts from a title.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "for": true, "from": true,
	"how": true, "in": true, "into": true, "of": true, "on": true,
	"or": true, "the": true, "to": true, "with": true, "your": true,
	"what": true, "why": true, "is": true, "are": true,
}

// StubDigest derives a schema-valid digest from the item's title tokens
// with zero external calls. Output is always non-empty: generic phrasing
// fills in whenever the title yields too little signal.
func StubDigest(item types.ContentItem) types.ContentDigest {
	concepts := titleConcepts(item.Title)
	for len(concepts) < 2 {
		concepts = append(concepts, fmt.Sprintf("Core ideas of %s", fallbackTopic(item)))
	}
	if len(concepts) > 3 {
		concepts = concepts[:3]
	}

	skills := []string{fmt.Sprintf("Applying %s", strings.ToLower(concepts[0]))}
	if len(concepts) > 1 {
		skills = append(skills, fmt.Sprintf("Explaining %s in your own words", strings.ToLower(concepts[1])))
	}

	examples := []string{fmt.Sprintf("The walkthrough in %q", displayTitle(item))}

	return types.ContentDigest{
		ContentID:         item.ID,
		ContentTitle:      item.Title,
		ContentType:       item.Kind,
		KeyConcepts:       concepts,
		SkillsIntroduced:  skills,
		MemorableExamples: examples,
		DifficultyLevel:   titleDifficulty(item.Title),
		Summary:           stubSummary(item),
	}
}

// titleConcepts extracts up to three concept phrases from a title.
func titleConcepts(title string) []string {
	tokens := strings.FieldsFunc(title, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	concepts := make([]string, 0, 3)
	for _, tok := range tokens {
		if stopwords[strings.ToLower(tok)] || len(tok) < 3 {
			continue
		}
		concepts = append(concepts, capitalize(tok))
		if len(concepts) == 3 {
			break
		}
	}
	return concepts
}

// titleDifficulty guesses a difficulty label from title keywords.
func titleDifficulty(title string) types.DifficultyLevel {
	lower := strings.ToLower(title)
	switch {
	case strings.Contains(lower, "advanced") || strings.Contains(lower, "deep dive") || strings.Contains(lower, "expert"):
		return types.DifficultyAdvanced
	case strings.Contains(lower, "intro") || strings.Contains(lower, "basics") || strings.Contains(lower, "beginner") || strings.Contains(lower, "getting started") || strings.Contains(lower, "101"):
		return types.DifficultyBeginner
	default:
		return types.DifficultyIntermediate
	}
}

func stubSummary(item types.ContentItem) string {
	text := strings.TrimSpace(item.Text())
	if text == "" {
		return fmt.Sprintf("Covers %s.", fallbackTopic(item))
	}
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) > maxSummaryLen {
		// Prefer breaking at a word boundary in the back half of the
		// window; otherwise cut mid-word at the rune boundary.
		text = string(runes[:maxSummaryLen-1])
		if cut := strings.LastIndex(text, " "); cut >= len(text)/2 {
			text = text[:cut]
		}
		text += "…"
	}
	return text
}

func fallbackTopic(item types.ContentItem) string {
	if t := strings.TrimSpace(item.Title); t != "" {
		return t
	}
	return fmt.Sprintf("this %s", item.Kind)
}

func displayTitle(item types.ContentItem) string {
	if t := strings.TrimSpace(item.Title); t != "" {
		return t
	}
	return string(item.Kind)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
