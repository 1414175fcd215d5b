package types

// PacingMode controls how a program releases its weeks to learners.
type PacingMode string

// Pacing modes
const (
	PacingSelfPaced PacingMode = "self_paced"
	PacingWeekly    PacingMode = "weekly"
)

// ActionType identifies what a learner does for a single action.
type ActionType string

// Action types
const (
	ActionWatch   ActionType = "watch"
	ActionRead    ActionType = "read"
	ActionDo      ActionType = "do"
	ActionReflect ActionType = "reflect"
)

// ProgramMeta is the program-level input to draft synthesis.
type ProgramMeta struct {
	ProgramID     string     `json:"programId"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	PacingMode    PacingMode `json:"pacingMode"`
	DurationWeeks int        `json:"durationWeeks"`
}

// ProgramDraft is the synthesis target: a complete multi-week curriculum
// awaiting persistence. A draft is only considered terminal after it
// passes schema validation.
type ProgramDraft struct {
	ProgramID     string     `json:"programId"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	PacingMode    PacingMode `json:"pacingMode"`
	DurationWeeks int        `json:"durationWeeks"`
	Weeks         []Week     `json:"weeks"`
}

// Week is one week of the curriculum. WeekNumber runs 1..durationWeeks,
// unique and contiguous across the draft.
type Week struct {
	Title      string    `json:"title"`
	Summary    string    `json:"summary"`
	WeekNumber int       `json:"weekNumber"`
	Sessions   []Session `json:"sessions"`
}

// Session groups actions within a week. OrderIndex values are a
// contiguous zero-based sequence within the week.
type Session struct {
	Title        string   `json:"title"`
	Summary      string   `json:"summary,omitempty"`
	KeyTakeaways []string `json:"keyTakeaways,omitempty"`
	OrderIndex   int      `json:"orderIndex"`
	Actions      []Action `json:"actions"`
}

// Action is a single learner task. ReflectionPrompt is required for
// reflect actions; ContentRef is required for watch and read actions.
type Action struct {
	Title            string     `json:"title"`
	Type             ActionType `json:"type"`
	Instructions     string     `json:"instructions,omitempty"`
	ReflectionPrompt string     `json:"reflectionPrompt,omitempty"`
	ContentRef       string     `json:"contentRef,omitempty"`
	OrderIndex       int        `json:"orderIndex"`
}

// Renumber rewrites weekNumber and orderIndex sequences in document
// order. Model output that is topologically correct but numerically
// inconsistent is fixed here instead of being bounced through a repair
// cycle for cosmetic indexing errors.
func (d *ProgramDraft) Renumber() {
	for i := range d.Weeks {
		d.Weeks[i].WeekNumber = i + 1
		for j := range d.Weeks[i].Sessions {
			d.Weeks[i].Sessions[j].OrderIndex = j
			for k := range d.Weeks[i].Sessions[j].Actions {
				d.Weeks[i].Sessions[j].Actions[k].OrderIndex = k
			}
		}
	}
}

// ActionCount returns the total number of actions in the draft.
func (d *ProgramDraft) ActionCount() int {
	n := 0
	for _, w := range d.Weeks {
		for _, s := range w.Sessions {
			n += len(s.Actions)
		}
	}
	return n
}
