// Package schemas defines the structural contract for generated program
// drafts and validates drafts against it.
package schemas

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jordan/curriculum-builder/internal/types"
)

//go:embed program_draft.json
var draftSchema string

// maxTakeaways caps keyTakeaways per session.
const maxTakeaways = 5

// maxDigestSummary caps digest summaries, mirrored here so the digest
// contract has one authoritative number.
const maxDigestSummary = 500

// ValidationError represents a schema validation failure with field paths.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field.
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// ValidateDraftJSON validates raw draft JSON against the embedded schema.
// This is the first gate for model output, before it is trusted as a
// typed draft.
func ValidateDraftJSON(jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(draftSchema)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &ValidationError{Errors: []FieldError{{
			Field:   "(root)",
			Message: fmt.Sprintf("document is not valid JSON: %v", err),
		}}}
	}
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}

// ValidateDraft validates a typed draft: the embedded schema plus the
// structural invariants the schema cannot express (week count matching
// duration, contiguous numbering, per-type field requirements).
func ValidateDraft(draft *types.ProgramDraft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}
	if err := ValidateDraftJSON(string(raw)); err != nil {
		return err
	}
	return validateStructure(draft)
}

func validateStructure(draft *types.ProgramDraft) error {
	var errs []FieldError
	addErr := func(field, format string, args ...any) {
		errs = append(errs, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if len(draft.Weeks) != draft.DurationWeeks {
		addErr("weeks", "draft has %d weeks but durationWeeks is %d", len(draft.Weeks), draft.DurationWeeks)
	}

	for i, week := range draft.Weeks {
		weekField := fmt.Sprintf("weeks.%d", i)
		if week.WeekNumber != i+1 {
			addErr(weekField+".weekNumber", "expected %d, got %d (weekNumber must run 1..durationWeeks with no gaps)", i+1, week.WeekNumber)
		}

		for j, session := range week.Sessions {
			sessField := fmt.Sprintf("%s.sessions.%d", weekField, j)
			if session.OrderIndex != j {
				addErr(sessField+".orderIndex", "expected %d, got %d (orderIndex must be a contiguous zero-based sequence)", j, session.OrderIndex)
			}
			if len(session.KeyTakeaways) > maxTakeaways {
				addErr(sessField+".keyTakeaways", "at most %d takeaways allowed, got %d", maxTakeaways, len(session.KeyTakeaways))
			}

			for k, action := range session.Actions {
				actField := fmt.Sprintf("%s.actions.%d", sessField, k)
				if action.OrderIndex != k {
					addErr(actField+".orderIndex", "expected %d, got %d (orderIndex must be a contiguous zero-based sequence)", k, action.OrderIndex)
				}
				switch action.Type {
				case types.ActionReflect:
					if strings.TrimSpace(action.ReflectionPrompt) == "" {
						addErr(actField+".reflectionPrompt", "reflect actions require a reflectionPrompt")
					}
				case types.ActionWatch, types.ActionRead:
					if strings.TrimSpace(action.ContentRef) == "" {
						addErr(actField+".contentRef", "%s actions require a contentRef", action.Type)
					}
				case types.ActionDo:
				default:
					addErr(actField+".type", "unknown action type %q", action.Type)
				}
			}
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// ValidateDigest checks the digestion output contract. Digestion callers
// fall back to the stub digest rather than failing on a violation.
func ValidateDigest(d *types.ContentDigest) error {
	var errs []FieldError
	if n := len(d.KeyConcepts); n < 2 || n > 3 {
		errs = append(errs, FieldError{Field: "keyConcepts", Message: fmt.Sprintf("expected 2-3 entries, got %d", n)})
	}
	if n := len(d.SkillsIntroduced); n < 1 || n > 2 {
		errs = append(errs, FieldError{Field: "skillsIntroduced", Message: fmt.Sprintf("expected 1-2 entries, got %d", n)})
	}
	if len(d.MemorableExamples) == 0 {
		errs = append(errs, FieldError{Field: "memorableExamples", Message: "at least one example is required"})
	}
	if utf8.RuneCountInString(d.Summary) > maxDigestSummary {
		errs = append(errs, FieldError{Field: "summary", Message: fmt.Sprintf("summary exceeds %d characters", maxDigestSummary)})
	}
	switch d.DifficultyLevel {
	case types.DifficultyBeginner, types.DifficultyIntermediate, types.DifficultyAdvanced:
	default:
		errs = append(errs, FieldError{Field: "difficultyLevel", Message: fmt.Sprintf("unknown difficulty %q", d.DifficultyLevel)})
	}
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}
