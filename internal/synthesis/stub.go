package synthesis

import (
	"fmt"
	"strings"

	"github.com/jordan/curriculum-builder/internal/clustering"
	"github.com/jordan/curriculum-builder/internal/types"
)

// StubSynthesize builds a draft deterministically with no model call.
// Content items are distributed evenly across the weeks: the first
// len(items) mod durationWeeks weeks take ceil(len(items)/durationWeeks)
// items, the rest take the floor. Every week also gets exactly one do
// action and one reflect action.
func StubSynthesize(meta types.ProgramMeta, items []types.ContentItem, clusters []clustering.Cluster, digests []types.ContentDigest) *types.ProgramDraft {
	digestByID := make(map[string]types.ContentDigest, len(digests))
	for _, d := range digests {
		digestByID[d.ContentID] = d
	}

	ordered := orderByCluster(items, clusters)
	weeks := make([]types.Week, 0, meta.DurationWeeks)

	base := len(ordered) / meta.DurationWeeks
	extra := len(ordered) % meta.DurationWeeks
	cursor := 0

	for w := 0; w < meta.DurationWeeks; w++ {
		take := base
		if w < extra {
			take++
		}
		weekItems := ordered[cursor : cursor+take]
		cursor += take

		weeks = append(weeks, buildStubWeek(w+1, weekItems, digestByID, meta))
	}

	draft := &types.ProgramDraft{
		ProgramID:     meta.ProgramID,
		Title:         defaultString(meta.Title, "Learning Program"),
		Description:   defaultString(meta.Description, "A structured multi-week learning program."),
		PacingMode:    defaultPacing(meta.PacingMode),
		DurationWeeks: meta.DurationWeeks,
		Weeks:         weeks,
	}
	draft.Renumber()
	return draft
}

func buildStubWeek(number int, items []types.ContentItem, digestByID map[string]types.ContentDigest, meta types.ProgramMeta) types.Week {
	theme := weekTheme(items, digestByID)

	actions := make([]types.Action, 0, len(items)+2)
	for _, item := range items {
		actions = append(actions, contentAction(item, digestByID))
	}
	actions = append(actions, doAction(theme, items, digestByID))
	actions = append(actions, reflectAction(theme, items))

	session := types.Session{
		Title:        fmt.Sprintf("Session: %s", theme),
		Summary:      fmt.Sprintf("Work through this week's material on %s.", strings.ToLower(theme)),
		KeyTakeaways: weekTakeaways(items, digestByID),
		Actions:      actions,
	}

	title := fmt.Sprintf("Week %d: %s", number, theme)
	summary := fmt.Sprintf("This week focuses on %s.", strings.ToLower(theme))
	if len(items) == 0 {
		summary = "A practice and reflection week to consolidate what you have learned so far."
	}

	return types.Week{
		Title:      title,
		Summary:    summary,
		WeekNumber: number,
		Sessions:   []types.Session{session},
	}
}

func contentAction(item types.ContentItem, digestByID map[string]types.ContentDigest) types.Action {
	actionType := types.ActionRead
	verb := "Read"
	if item.Kind == types.ContentVideo {
		actionType = types.ActionWatch
		verb = "Watch"
	}

	instructions := fmt.Sprintf("%s %q and note the main ideas.", verb, item.Title)
	if d, ok := digestByID[item.ID]; ok && len(d.KeyConcepts) > 0 {
		instructions = fmt.Sprintf("%s %q and pay particular attention to %s.",
			verb, item.Title, joinNatural(d.KeyConcepts))
	}

	return types.Action{
		Title:        fmt.Sprintf("%s: %s", verb, item.Title),
		Type:         actionType,
		Instructions: instructions,
		ContentRef:   item.ID,
	}
}

func doAction(theme string, items []types.ContentItem, digestByID map[string]types.ContentDigest) types.Action {
	instructions := fmt.Sprintf("Apply what you learned about %s in a small exercise of your own design.", strings.ToLower(theme))
	for _, item := range items {
		if d, ok := digestByID[item.ID]; ok && len(d.SkillsIntroduced) > 0 {
			instructions = fmt.Sprintf("Practice %s. Start small and build up.", strings.ToLower(d.SkillsIntroduced[0]))
			break
		}
	}
	return types.Action{
		Title:        fmt.Sprintf("Practice: %s", theme),
		Type:         types.ActionDo,
		Instructions: instructions,
	}
}

func reflectAction(theme string, items []types.ContentItem) types.Action {
	prompt := fmt.Sprintf("What was the most surprising thing you learned about %s this week, and how does it connect to what you already knew?", strings.ToLower(theme))
	if len(items) == 0 {
		prompt = "Looking back over the program so far, which idea has changed how you think, and why?"
	}
	return types.Action{
		Title:            "Reflect on the week",
		Type:             types.ActionReflect,
		ReflectionPrompt: prompt,
	}
}

// weekTheme picks a human-readable theme: the first digest concept
// available, then the first item title, then a generic label.
func weekTheme(items []types.ContentItem, digestByID map[string]types.ContentDigest) string {
	for _, item := range items {
		if d, ok := digestByID[item.ID]; ok && len(d.KeyConcepts) > 0 {
			return d.KeyConcepts[0]
		}
	}
	if len(items) > 0 && strings.TrimSpace(items[0].Title) != "" {
		return items[0].Title
	}
	return "Review and Practice"
}

func weekTakeaways(items []types.ContentItem, digestByID map[string]types.ContentDigest) []string {
	takeaways := make([]string, 0, 5)
	for _, item := range items {
		d, ok := digestByID[item.ID]
		if !ok {
			continue
		}
		for _, concept := range d.KeyConcepts {
			takeaways = append(takeaways, concept)
			if len(takeaways) == 5 {
				return takeaways
			}
		}
	}
	return takeaways
}

// orderByCluster returns items grouped by topic cluster so that each
// week's slice of the list is topic-cohesive. Items missing from every
// cluster (never embedded) are appended at the end in input order.
func orderByCluster(items []types.ContentItem, clusters []clustering.Cluster) []types.ContentItem {
	byID := make(map[string]types.ContentItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	ordered := make([]types.ContentItem, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, cluster := range clusters {
		for _, id := range cluster.ContentIDs {
			if item, ok := byID[id]; ok && !seen[id] {
				ordered = append(ordered, item)
				seen[id] = true
			}
		}
	}
	for _, item := range items {
		if !seen[item.ID] {
			ordered = append(ordered, item)
		}
	}
	return ordered
}

func joinNatural(parts []string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	case 2:
		return parts[0] + " and " + parts[1]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + ", and " + parts[len(parts)-1]
	}
}

func defaultString(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func defaultPacing(p types.PacingMode) types.PacingMode {
	if p == "" {
		return types.PacingSelfPaced
	}
	return p
}
