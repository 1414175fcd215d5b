package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgramDraft_Renumber(t *testing.T) {
	draft := &ProgramDraft{
		Weeks: []Week{
			{
				WeekNumber: 7,
				Sessions: []Session{
					{
						OrderIndex: 3,
						Actions: []Action{
							{Type: ActionWatch, OrderIndex: 9},
							{Type: ActionDo, OrderIndex: 9},
						},
					},
					{OrderIndex: 3},
				},
			},
			{WeekNumber: 7},
		},
	}

	draft.Renumber()

	assert.Equal(t, 1, draft.Weeks[0].WeekNumber)
	assert.Equal(t, 2, draft.Weeks[1].WeekNumber)
	assert.Equal(t, 0, draft.Weeks[0].Sessions[0].OrderIndex)
	assert.Equal(t, 1, draft.Weeks[0].Sessions[1].OrderIndex)
	assert.Equal(t, 0, draft.Weeks[0].Sessions[0].Actions[0].OrderIndex)
	assert.Equal(t, 1, draft.Weeks[0].Sessions[0].Actions[1].OrderIndex)
}

func TestProgramDraft_ActionCount(t *testing.T) {
	draft := &ProgramDraft{
		Weeks: []Week{
			{Sessions: []Session{{Actions: []Action{{}, {}}}, {Actions: []Action{{}}}}},
			{Sessions: []Session{{Actions: []Action{{}}}}},
		},
	}

	assert.Equal(t, 4, draft.ActionCount())
}

func TestJobStatus_Terminal(t *testing.T) {
	assert.False(t, JobPending.Terminal())
	assert.False(t, JobProcessing.Terminal())
	assert.True(t, JobCompleted.Terminal())
	assert.True(t, JobFailed.Terminal())
}

func TestGenerationJob_Active(t *testing.T) {
	job := &GenerationJob{Status: JobPending}
	assert.True(t, job.Active())
	job.Status = JobProcessing
	assert.True(t, job.Active())
	job.Status = JobCompleted
	assert.False(t, job.Active())
	job.Status = JobFailed
	assert.False(t, job.Active())
}

func TestContentItem_Text(t *testing.T) {
	item := ContentItem{SourceText: "body", Transcript: "spoken"}
	assert.Equal(t, "spoken", item.Text())

	item.Transcript = ""
	assert.Equal(t, "body", item.Text())
}
