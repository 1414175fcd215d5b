package types

// DifficultyLevel labels how advanced a piece of content is.
type DifficultyLevel string

// Difficulty levels recognized by the digestion service
const (
	DifficultyBeginner     DifficultyLevel = "beginner"
	DifficultyIntermediate DifficultyLevel = "intermediate"
	DifficultyAdvanced     DifficultyLevel = "advanced"
)

// ContentDigest is the structured per-item summary produced by the
// digestion stage and consumed by draft synthesis. It is derived data:
// the pipeline never depends on a digest outliving the run that made it.
type ContentDigest struct {
	ContentID         string          `json:"contentId"`
	ContentTitle      string          `json:"contentTitle"`
	ContentType       ContentKind     `json:"contentType"`
	KeyConcepts       []string        `json:"keyConcepts"`
	SkillsIntroduced  []string        `json:"skillsIntroduced"`
	MemorableExamples []string        `json:"memorableExamples"`
	DifficultyLevel   DifficultyLevel `json:"difficultyLevel"`
	Summary           string          `json:"summary"`
}
