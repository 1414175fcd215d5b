package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jordan/curriculum-builder/internal/job"
	"github.com/jordan/curriculum-builder/internal/types"
)

// JobStore implements job.Store on PostgreSQL. Each snapshot publish is
// a single UPDATE, so a concurrently polling reader never observes a
// torn stage/progress combination.
type JobStore struct {
	db *DB
}

// NewJobStore creates a pgx-backed job store.
func NewJobStore(db *DB) *JobStore {
	return &JobStore{db: db}
}

// Create inserts a new job record.
func (s *JobStore) Create(ctx context.Context, j *types.GenerationJob) error {
	result, err := marshalResult(j)
	if err != nil {
		return err
	}
	_, err = s.db.pool.Exec(ctx,
		`INSERT INTO generation_jobs
		 (job_id, program_id, status, stage, progress, error, result, created_at, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		j.JobID, j.ProgramID, j.Status, nullString(string(j.Stage)), j.Progress,
		nullString(j.Error), result, j.CreatedAt, j.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// Update replaces the stored record in one statement. Records that
// already reached a terminal status are left untouched so a stale
// snapshot from a superseded pipeline cannot resurrect them.
func (s *JobStore) Update(ctx context.Context, j *types.GenerationJob) error {
	result, err := marshalResult(j)
	if err != nil {
		return err
	}
	tag, err := s.db.pool.Exec(ctx,
		`UPDATE generation_jobs
		 SET status = $2, stage = $3, progress = $4, error = $5, result = $6, completed_at = $7
		 WHERE job_id = $1 AND status NOT IN ('completed', 'failed')`,
		j.JobID, j.Status, nullString(string(j.Stage)), j.Progress,
		nullString(j.Error), result, j.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var status types.JobStatus
		err := s.db.pool.QueryRow(ctx,
			`SELECT status FROM generation_jobs WHERE job_id = $1`, j.JobID).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return job.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to update job: %w", err)
		}
		return job.ErrJobTerminal
	}
	return nil
}

// Get returns the job with the given id.
func (s *JobStore) Get(ctx context.Context, jobID uuid.UUID) (*types.GenerationJob, error) {
	row := s.db.pool.QueryRow(ctx,
		`SELECT job_id, program_id, status, stage, progress, error, result, created_at, completed_at
		 FROM generation_jobs WHERE job_id = $1`, jobID)
	return scanJob(row)
}

// GetByProgram returns the program's most recent job.
func (s *JobStore) GetByProgram(ctx context.Context, programID string) (*types.GenerationJob, error) {
	row := s.db.pool.QueryRow(ctx,
		`SELECT job_id, program_id, status, stage, progress, error, result, created_at, completed_at
		 FROM generation_jobs WHERE program_id = $1
		 ORDER BY created_at DESC LIMIT 1`, programID)
	return scanJob(row)
}

func scanJob(row pgx.Row) (*types.GenerationJob, error) {
	var (
		j      types.GenerationJob
		stage  *string
		jobErr *string
		result []byte
	)
	err := row.Scan(&j.JobID, &j.ProgramID, &j.Status, &stage, &j.Progress, &jobErr, &result, &j.CreatedAt, &j.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, job.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan job: %w", err)
	}

	if stage != nil {
		j.Stage = types.JobStage(*stage)
	}
	if jobErr != nil {
		j.Error = *jobErr
	}
	if len(result) > 0 {
		var draft types.ProgramDraft
		if err := json.Unmarshal(result, &draft); err != nil {
			return nil, fmt.Errorf("failed to unmarshal job result: %w", err)
		}
		j.Result = &draft
	}
	return &j, nil
}

func marshalResult(j *types.GenerationJob) ([]byte, error) {
	if j.Result == nil {
		return nil, nil
	}
	result, err := json.Marshal(j.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job result: %w", err)
	}
	return result, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
