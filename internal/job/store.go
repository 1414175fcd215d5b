package job

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/jordan/curriculum-builder/internal/types"
)

// Store persists generation job records. Updates must be atomic
// snapshots: a concurrent reader sees either the previous record or the
// new one, never a mix of the two. Update must refuse to overwrite a
// record that is already terminal, returning ErrJobTerminal.
type Store interface {
	Create(ctx context.Context, job *types.GenerationJob) error
	Update(ctx context.Context, job *types.GenerationJob) error
	Get(ctx context.Context, jobID uuid.UUID) (*types.GenerationJob, error)
	// GetByProgram returns the most recent job for a program.
	GetByProgram(ctx context.Context, programID string) (*types.GenerationJob, error)
}

// MemoryStore is the in-process Store used when no database is
// configured. The full pipeline stays runnable without persistence.
type MemoryStore struct {
	mu        sync.RWMutex
	byID      map[uuid.UUID]types.GenerationJob
	byProgram map[string]uuid.UUID
}

// NewMemoryStore creates an empty in-memory job store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:      make(map[uuid.UUID]types.GenerationJob),
		byProgram: make(map[string]uuid.UUID),
	}
}

// Create stores a new job record and makes it the program's latest.
func (s *MemoryStore) Create(_ context.Context, job *types.GenerationJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[job.JobID] = *job
	s.byProgram[job.ProgramID] = job.JobID
	return nil
}

// Update replaces the stored record with a copy of job in one step.
// Records that already reached a terminal status are immutable.
func (s *MemoryStore) Update(_ context.Context, job *types.GenerationJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, exists := s.byID[job.JobID]
	if !exists {
		return ErrNotFound
	}
	if current.Status.Terminal() {
		return ErrJobTerminal
	}
	s.byID[job.JobID] = *job
	return nil
}

// Get returns a copy of the job with the given id.
func (s *MemoryStore) Get(_ context.Context, jobID uuid.UUID) (*types.GenerationJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, exists := s.byID[jobID]
	if !exists {
		return nil, ErrNotFound
	}
	return &job, nil
}

// GetByProgram returns a copy of the program's most recent job.
func (s *MemoryStore) GetByProgram(_ context.Context, programID string) (*types.GenerationJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	jobID, exists := s.byProgram[programID]
	if !exists {
		return nil, ErrNotFound
	}
	job := s.byID[jobID]
	return &job, nil
}
