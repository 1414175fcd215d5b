// Package job coordinates the asynchronous generation pipeline: it owns
// the GenerationJob record, sequences the pipeline stages, and publishes
// stage/progress snapshots for polling clients.
package job

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jordan/curriculum-builder/internal/clustering"
	"github.com/jordan/curriculum-builder/internal/digest"
	"github.com/jordan/curriculum-builder/internal/embedding"
	"github.com/jordan/curriculum-builder/internal/schemas"
	"github.com/jordan/curriculum-builder/internal/synthesis"
	"github.com/jordan/curriculum-builder/internal/types"
)

// Stage progress bands. Progress within a stage interpolates between its
// band's bounds and is published after each internal step, so pollers
// see continuous motion rather than flat plateaus.
const (
	progressStart     = 5
	progressEmbedded  = 25
	progressClustered = 35
	progressAnalyzed  = 60
	progressGenerated = 85
	progressValidated = 95
	progressComplete  = 100
)

// Persister receives pipeline artifacts for durable storage. A nil
// Persister runs the pipeline entirely in memory.
type Persister interface {
	SaveEmbeddings(ctx context.Context, programID, model string, results []embedding.Result) error
	ReplaceClusterAssignments(ctx context.Context, programID string, assignments []types.ClusterAssignment) error
	SaveDraft(ctx context.Context, draft *types.ProgramDraft) error
}

// StartOptions controls how a new job interacts with an existing one.
type StartOptions struct {
	// Force supersedes an active job for the same program instead of
	// rejecting the request. The prior job record is failed with a
	// superseded message; two jobs never run concurrently for one
	// program.
	Force bool
}

// Controller runs generation jobs. One controller serves all programs;
// each job runs as a single long-lived goroutine with its stages
// executing sequentially.
type Controller struct {
	store    Store
	embedder embedding.Provider
	digester *digest.Service
	engine   *synthesis.Engine
	persist  Persister

	// mu serializes the active-job check against job creation so two
	// simultaneous requests for one program cannot both claim the slot.
	mu     sync.Mutex
	active map[string]activeRun
}

// activeRun holds the cancel handle for a program's in-flight pipeline.
type activeRun struct {
	jobID  uuid.UUID
	cancel context.CancelFunc
}

// NewController wires the pipeline stages into a controller.
func NewController(store Store, embedder embedding.Provider, digester *digest.Service, engine *synthesis.Engine, persist Persister) *Controller {
	return &Controller{
		store:    store,
		embedder: embedder,
		digester: digester,
		engine:   engine,
		persist:  persist,
		active:   make(map[string]activeRun),
	}
}

// Start creates a job for the program and launches the pipeline
// asynchronously. The returned snapshot is the freshly created pending
// job; callers poll Status for progress. The job runs to completion or
// failure even if every client stops polling.
func (c *Controller) Start(ctx context.Context, meta types.ProgramMeta, items []types.ContentItem, opts StartOptions) (*types.GenerationJob, error) {
	if meta.DurationWeeks < 1 || meta.DurationWeeks > 52 {
		return nil, fmt.Errorf("durationWeeks must be within 1..52, got %d", meta.DurationWeeks)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	existing, err := c.store.GetByProgram(ctx, meta.ProgramID)
	if err == nil && existing.Active() {
		if !opts.Force {
			return nil, &ActiveJobError{ProgramID: meta.ProgramID}
		}
		now := time.Now().UTC()
		existing.Status = types.JobFailed
		existing.Error = "superseded by a new generation request"
		existing.CompletedAt = &now
		if err := c.store.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to supersede active job: %w", err)
		}
		// Stop the old pipeline; its later publishes are also refused
		// by the store once the record is terminal.
		if run, ok := c.active[meta.ProgramID]; ok && run.jobID == existing.JobID {
			run.cancel()
			delete(c.active, meta.ProgramID)
		}
	}

	created := &types.GenerationJob{
		JobID:     uuid.New(),
		ProgramID: meta.ProgramID,
		Status:    types.JobPending,
		Progress:  0,
		CreatedAt: time.Now().UTC(),
	}
	if err := c.store.Create(ctx, created); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	// The pipeline outlives the request context: the caller stopping
	// polling must not cancel the job. The cancel handle exists only
	// so a later force request can stop this pipeline.
	runCtx, cancel := context.WithCancel(context.Background())
	c.active[meta.ProgramID] = activeRun{jobID: created.JobID, cancel: cancel}
	go func() {
		defer c.release(meta.ProgramID, created.JobID, cancel)
		c.run(runCtx, *created, meta, items)
	}()

	snapshot := *created
	return &snapshot, nil
}

// release drops a finished pipeline's cancel handle unless a newer job
// already replaced it.
func (c *Controller) release(programID string, jobID uuid.UUID, cancel context.CancelFunc) {
	cancel()
	c.mu.Lock()
	defer c.mu.Unlock()
	if run, ok := c.active[programID]; ok && run.jobID == jobID {
		delete(c.active, programID)
	}
}

// Status returns the latest job snapshot for a program.
func (c *Controller) Status(ctx context.Context, programID string) (*types.GenerationJob, error) {
	return c.store.GetByProgram(ctx, programID)
}

// Get returns a job snapshot by id.
func (c *Controller) Get(ctx context.Context, jobID uuid.UUID) (*types.GenerationJob, error) {
	return c.store.Get(ctx, jobID)
}

// run executes the pipeline stages sequentially for one job.
func (c *Controller) run(ctx context.Context, job types.GenerationJob, meta types.ProgramMeta, items []types.ContentItem) {
	job.Status = types.JobProcessing
	job.Stage = types.StageEmbedding
	job.Progress = progressStart
	c.publish(ctx, &job)

	// Stage 1: embedding
	inputs := make([]embedding.Input, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, embedding.Input{ID: item.ID, Text: item.Text()})
	}
	vectors, err := c.embedder.Embed(ctx, inputs, func(done int) {
		c.advance(ctx, &job, interpolate(progressStart, progressEmbedded, done, len(inputs)))
	})
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		c.fail(ctx, &job, fmt.Errorf("content embedding failed: %w", err))
		return
	}
	if c.persist != nil {
		if err := c.persist.SaveEmbeddings(ctx, meta.ProgramID, c.embedder.Model(), vectors); err != nil {
			c.fail(ctx, &job, fmt.Errorf("content embedding failed: could not store vectors: %w", err))
			return
		}
	}
	c.transition(ctx, &job, types.StageClustering, progressEmbedded)

	// Stage 2: clustering
	if len(vectors) == 0 {
		c.fail(ctx, &job, fmt.Errorf("topic clustering failed: no embedded content items"))
		return
	}
	clusters := clustering.ClusterEmbeddings(vectors)
	if c.persist != nil {
		assignments := assignmentsFromClusters(clusters)
		if err := c.persist.ReplaceClusterAssignments(ctx, meta.ProgramID, assignments); err != nil {
			c.fail(ctx, &job, fmt.Errorf("topic clustering failed: could not store assignments: %w", err))
			return
		}
	}
	c.transition(ctx, &job, types.StageAnalyzing, progressClustered)

	// Stage 3: content analysis (digestion). Per-item failures degrade
	// to stub digests and never fail the stage.
	digests, failures := c.digester.DigestAll(ctx, items, func(done int) {
		c.advance(ctx, &job, interpolate(progressClustered, progressAnalyzed, done, len(items)))
	})
	if ctx.Err() != nil {
		return
	}
	for _, failure := range failures {
		log.Printf("job %s: digestion fell back to stub for content %s: %v", job.JobID, failure.ContentID, failure.Err)
	}
	c.transition(ctx, &job, types.StageGenerating, progressAnalyzed)

	// Stage 4: draft synthesis. One long call with no sub-progress; the
	// controller fabricates nothing while it runs.
	draft, err := c.engine.Synthesize(ctx, meta, items, clusters, digests)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		c.fail(ctx, &job, fmt.Errorf("draft generation failed: %w", err))
		return
	}
	c.transition(ctx, &job, types.StageValidating, progressGenerated)

	// Stage 5: final validation before anything is persisted.
	if err := schemas.ValidateDraft(draft); err != nil {
		c.fail(ctx, &job, fmt.Errorf("draft validation failed: %w", err))
		return
	}
	c.transition(ctx, &job, types.StagePersisting, progressValidated)

	// Stage 6: persistence. Failures here leave no partial draft: the
	// store either commits the whole draft or the job fails.
	if c.persist != nil {
		if err := c.persist.SaveDraft(ctx, draft); err != nil {
			c.fail(ctx, &job, fmt.Errorf("draft persistence failed: %w", err))
			return
		}
	}

	now := time.Now().UTC()
	job.Status = types.JobCompleted
	job.Stage = types.StageComplete
	job.Progress = progressComplete
	job.Result = draft
	job.CompletedAt = &now
	c.publish(ctx, &job)
}

// transition moves the stage cursor forward and publishes the snapshot.
func (c *Controller) transition(ctx context.Context, job *types.GenerationJob, stage types.JobStage, progress int) {
	job.Stage = stage
	c.advance(ctx, job, progress)
}

// advance raises progress monotonically; a late or duplicate step can
// never move the published value backwards.
func (c *Controller) advance(ctx context.Context, job *types.GenerationJob, progress int) {
	if progress > job.Progress {
		job.Progress = progress
	}
	c.publish(ctx, job)
}

func (c *Controller) fail(ctx context.Context, job *types.GenerationJob, err error) {
	now := time.Now().UTC()
	job.Status = types.JobFailed
	job.Error = err.Error()
	job.CompletedAt = &now
	c.publish(ctx, job)
	log.Printf("job %s failed: %v", job.JobID, err)
}

// publish writes the job snapshot atomically to the store. A refused
// write against a terminal record means this pipeline was superseded;
// the snapshot is simply dropped.
func (c *Controller) publish(ctx context.Context, job *types.GenerationJob) {
	if err := c.store.Update(ctx, job); err != nil && !errors.Is(err, ErrJobTerminal) {
		log.Printf("job %s: failed to publish snapshot: %v", job.JobID, err)
	}
}

// interpolate maps done/total onto the [from, to] progress band.
func interpolate(from, to, done, total int) int {
	if total <= 0 {
		return to
	}
	if done > total {
		done = total
	}
	return from + (to-from)*done/total
}

func assignmentsFromClusters(clusters []clustering.Cluster) []types.ClusterAssignment {
	now := time.Now().UTC()
	var assignments []types.ClusterAssignment
	for _, cluster := range clusters {
		for _, id := range cluster.ContentIDs {
			assignments = append(assignments, types.ClusterAssignment{
				ContentID: id,
				ClusterID: cluster.ID,
				CreatedAt: now,
			})
		}
	}
	return assignments
}
