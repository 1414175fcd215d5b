// Package synthesis turns program metadata, topic clusters, and content
// digests into a validated ProgramDraft, either through a pluggable
// generation provider with a bounded repair loop or through a
// deterministic stub that needs no model at all.
package synthesis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jordan/curriculum-builder/internal/clustering"
	"github.com/jordan/curriculum-builder/internal/llm"
	"github.com/jordan/curriculum-builder/internal/retry"
	"github.com/jordan/curriculum-builder/internal/schemas"
	"github.com/jordan/curriculum-builder/internal/types"
)

// MaxRepairAttempts bounds the repair loop: the initial call plus this
// many corrective re-invocations.
const MaxRepairAttempts = 2

// Engine synthesizes program drafts. A nil client selects stub mode.
type Engine struct {
	client llm.Client
	policy retry.Policy
}

// NewEngine builds an engine around a generation client. Pass nil for
// deterministic stub mode.
func NewEngine(client llm.Client) *Engine {
	policy := retry.DefaultPolicy()
	policy.Retryable = llm.IsTransient
	return &Engine{client: client, policy: policy}
}

// StubMode reports whether the engine synthesizes without a provider.
func (e *Engine) StubMode() bool {
	return e.client == nil
}

// Synthesize produces a schema-valid draft. In provider mode a failed
// generation is reported as an error, never silently replaced with stub
// content: the creator explicitly chose model generation.
func (e *Engine) Synthesize(ctx context.Context, meta types.ProgramMeta, items []types.ContentItem, clusters []clustering.Cluster, digests []types.ContentDigest) (*types.ProgramDraft, error) {
	if meta.DurationWeeks < 1 {
		return nil, fmt.Errorf("durationWeeks must be at least 1, got %d", meta.DurationWeeks)
	}

	if e.client == nil {
		return StubSynthesize(meta, items, clusters, digests), nil
	}
	return e.providerSynthesize(ctx, meta, items, clusters, digests)
}

// providerSynthesize runs the generate → parse → validate → repair loop.
func (e *Engine) providerSynthesize(ctx context.Context, meta types.ProgramMeta, items []types.ContentItem, clusters []clustering.Cluster, digests []types.ContentDigest) (*types.ProgramDraft, error) {
	prompt := buildGenerationPrompt(meta, items, clusters, digests)

	var lastErr error
	for attempt := 0; attempt <= MaxRepairAttempts; attempt++ {
		raw, err := e.generate(ctx, prompt)
		if err != nil {
			// Provider failures are not repairable by re-prompting.
			return nil, err
		}

		draft, parseErr := parseDraft(raw, meta)
		if parseErr == nil {
			return draft, nil
		}
		lastErr = parseErr

		if attempt == MaxRepairAttempts {
			break
		}
		prompt = buildRepairPrompt(raw, parseErr)
	}

	return nil, &RepairExhaustedError{Attempts: MaxRepairAttempts, LastErr: lastErr}
}

// generate performs one logical provider call, retrying transient
// failures per the retry policy. Retries here do not consume repair
// attempts; repairs are only for schema-invalid output.
func (e *Engine) generate(ctx context.Context, prompt string) (string, error) {
	var raw string
	err := retry.Do(ctx, e.policy, func(ctx context.Context) error {
		var callErr error
		raw, callErr = e.client.GenerateJSON(ctx, prompt)
		return callErr
	})
	if err != nil {
		return "", fmt.Errorf("generation provider call failed: %w", err)
	}
	return raw, nil
}

// parseDraft turns raw model output into a validated typed draft:
// fence stripping and outermost-object scanning, JSON parse, defensive
// renumbering, then schema validation. The renumbering leniency applies
// uniformly to initial and repaired outputs.
func parseDraft(raw string, meta types.ProgramMeta) (*types.ProgramDraft, error) {
	jsonText := llm.ExtractJSONObject(llm.CleanJSONBlock(raw))

	var draft types.ProgramDraft
	if err := json.Unmarshal([]byte(jsonText), &draft); err != nil {
		return nil, &schemas.ValidationError{Errors: []schemas.FieldError{{
			Field:   "(root)",
			Message: fmt.Sprintf("response is not valid JSON: %v", err),
		}}}
	}

	// The model owns curriculum content; the caller owns identity and
	// pacing. Overwrite rather than trust echoed metadata.
	draft.ProgramID = meta.ProgramID
	draft.DurationWeeks = meta.DurationWeeks
	draft.PacingMode = defaultPacing(meta.PacingMode)
	if draft.Title == "" {
		draft.Title = meta.Title
	}
	if draft.Description == "" {
		draft.Description = meta.Description
	}

	draft.Renumber()

	if err := schemas.ValidateDraft(&draft); err != nil {
		return nil, err
	}
	return &draft, nil
}
