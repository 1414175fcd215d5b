package types

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of a generation job.
type JobStatus string

// Job statuses. A job is terminal once completed or failed.
const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Terminal reports whether the status will never change again.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// JobStage is the internal cursor within a processing job. It moves
// monotonically forward; it never revisits an earlier stage.
type JobStage string

// Pipeline stages in execution order
const (
	StageEmbedding  JobStage = "embedding"
	StageClustering JobStage = "clustering"
	StageAnalyzing  JobStage = "analyzing"
	StageGenerating JobStage = "generating"
	StageValidating JobStage = "validating"
	StagePersisting JobStage = "persisting"
	StageComplete   JobStage = "complete"
)

// GenerationJob is the single point of truth for one generation run.
// It is owned exclusively by the job controller and mutated only through
// atomic snapshot updates, so a polling reader never observes a torn
// stage/progress combination.
type GenerationJob struct {
	JobID       uuid.UUID     `json:"jobId"`
	ProgramID   string        `json:"programId"`
	Status      JobStatus     `json:"status"`
	Stage       JobStage      `json:"stage,omitempty"`
	Progress    int           `json:"progress"`
	Error       string        `json:"error,omitempty"`
	Result      *ProgramDraft `json:"result,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	CompletedAt *time.Time    `json:"completedAt,omitempty"`
}

// Active reports whether the job still occupies its program's single
// generation slot.
func (j *GenerationJob) Active() bool {
	return j.Status == JobPending || j.Status == JobProcessing
}
