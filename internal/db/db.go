// Package db provides PostgreSQL storage for pipeline artifacts:
// embeddings, cluster assignments, generation jobs, and validated
// drafts. The pipeline runs fully in memory when no database is
// configured; everything here is optional wiring.
package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jordan/curriculum-builder/internal/embedding"
	"github.com/jordan/curriculum-builder/internal/types"
)

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Ping verifies the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Close closes the connection pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Migrate creates the artifact tables if they do not exist.
func (db *DB) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS content_embeddings (
			content_id TEXT NOT NULL,
			program_id TEXT NOT NULL,
			model      TEXT NOT NULL,
			vector     JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (content_id, model)
		)`,
		`CREATE TABLE IF NOT EXISTS cluster_assignments (
			content_id TEXT NOT NULL,
			program_id TEXT NOT NULL,
			cluster_id INT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (content_id)
		)`,
		`CREATE TABLE IF NOT EXISTS generation_jobs (
			job_id       UUID PRIMARY KEY,
			program_id   TEXT NOT NULL,
			status       TEXT NOT NULL,
			stage        TEXT,
			progress     INT NOT NULL DEFAULT 0,
			error        TEXT,
			result       JSONB,
			created_at   TIMESTAMPTZ NOT NULL,
			completed_at TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_generation_jobs_program
			ON generation_jobs (program_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS program_drafts (
			program_id TEXT PRIMARY KEY,
			draft      JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// SaveEmbeddings inserts one row per (contentId, model). Existing rows
// are left untouched: embeddings are never mutated, only superseded by
// rows under a new model name.
func (db *DB) SaveEmbeddings(ctx context.Context, programID, model string, results []embedding.Result) error {
	for _, result := range results {
		vector, err := json.Marshal(result.Vector)
		if err != nil {
			return fmt.Errorf("failed to marshal vector for %s: %w", result.ID, err)
		}
		_, err = db.pool.Exec(ctx,
			`INSERT INTO content_embeddings (content_id, program_id, model, vector)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (content_id, model) DO NOTHING`,
			result.ID, programID, model, vector,
		)
		if err != nil {
			return fmt.Errorf("failed to save embedding for %s: %w", result.ID, err)
		}
	}
	return nil
}

// ReplaceClusterAssignments supersedes the program's prior clustering
// run inside one transaction, so every embedded item has at most one
// active assignment.
func (db *DB) ReplaceClusterAssignments(ctx context.Context, programID string, assignments []types.ClusterAssignment) error {
	return pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM cluster_assignments WHERE program_id = $1`, programID,
		); err != nil {
			return fmt.Errorf("failed to clear prior assignments: %w", err)
		}
		for _, assignment := range assignments {
			if _, err := tx.Exec(ctx,
				`INSERT INTO cluster_assignments (content_id, program_id, cluster_id, created_at)
				 VALUES ($1, $2, $3, $4)`,
				assignment.ContentID, programID, assignment.ClusterID, assignment.CreatedAt,
			); err != nil {
				return fmt.Errorf("failed to save assignment for %s: %w", assignment.ContentID, err)
			}
		}
		return nil
	})
}

// SaveDraft stores the validated draft as a single JSONB document. The
// write is one upsert: either the whole draft lands or nothing does.
func (db *DB) SaveDraft(ctx context.Context, draft *types.ProgramDraft) error {
	doc, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO program_drafts (program_id, draft)
		 VALUES ($1, $2)
		 ON CONFLICT (program_id) DO UPDATE SET draft = $2, created_at = NOW()`,
		draft.ProgramID, doc,
	)
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}
