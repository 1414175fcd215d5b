package job

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordan/curriculum-builder/internal/types"
)

func newJob(programID string) *types.GenerationJob {
	return &types.GenerationJob{
		JobID:     uuid.New(),
		ProgramID: programID,
		Status:    types.JobPending,
	}
}

func TestMemoryStore_CreateAndGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	created := newJob("prog-1")
	require.NoError(t, store.Create(ctx, created))

	got, err := store.Get(ctx, created.JobID)
	require.NoError(t, err)
	assert.Equal(t, created.JobID, got.JobID)
	assert.Equal(t, types.JobPending, got.Status)
}

func TestMemoryStore_GetNotFound(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.GetByProgram(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_UpdateUnknownJob(t *testing.T) {
	store := NewMemoryStore()
	err := store.Update(context.Background(), newJob("prog-1"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_TerminalRecordImmutable(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	created := newJob("prog-1")
	require.NoError(t, store.Create(ctx, created))

	failed := *created
	failed.Status = types.JobFailed
	failed.Error = "superseded by a new generation request"
	require.NoError(t, store.Update(ctx, &failed))

	// A stale snapshot from before the terminal write must be refused.
	stale := *created
	stale.Status = types.JobProcessing
	stale.Progress = 40
	assert.ErrorIs(t, store.Update(ctx, &stale), ErrJobTerminal)

	done := *created
	done.Status = types.JobCompleted
	done.Progress = 100
	assert.ErrorIs(t, store.Update(ctx, &done), ErrJobTerminal)

	got, err := store.Get(ctx, created.JobID)
	require.NoError(t, err)
	assert.Equal(t, types.JobFailed, got.Status)
	assert.Equal(t, "superseded by a new generation request", got.Error)
}

func TestMemoryStore_SnapshotIsolation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	created := newJob("prog-1")
	require.NoError(t, store.Create(ctx, created))

	// Mutating the caller's struct after Create must not leak into the
	// stored record.
	created.Status = types.JobFailed
	created.Progress = 99

	got, err := store.Get(ctx, created.JobID)
	require.NoError(t, err)
	assert.Equal(t, types.JobPending, got.Status)
	assert.Equal(t, 0, got.Progress)

	// Mutating a returned snapshot must not leak back either.
	got.Progress = 42
	again, err := store.Get(ctx, created.JobID)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Progress)
}

func TestMemoryStore_LatestJobPerProgram(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first := newJob("prog-1")
	require.NoError(t, store.Create(ctx, first))
	second := newJob("prog-1")
	require.NoError(t, store.Create(ctx, second))

	got, err := store.GetByProgram(ctx, "prog-1")
	require.NoError(t, err)
	assert.Equal(t, second.JobID, got.JobID)

	// The first job is still reachable by id.
	old, err := store.Get(ctx, first.JobID)
	require.NoError(t, err)
	assert.Equal(t, first.JobID, old.JobID)
}
