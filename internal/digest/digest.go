// Package digest produces structured per-item content summaries for the
// synthesis stage. Digestion degrades per item: a failing item falls
// back to the deterministic stub digest and never aborts the batch.
package digest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/jordan/curriculum-builder/internal/config"
	"github.com/jordan/curriculum-builder/internal/llm"
	"github.com/jordan/curriculum-builder/internal/prompts"
	"github.com/jordan/curriculum-builder/internal/retry"
	"github.com/jordan/curriculum-builder/internal/types"
)

// Concurrency is the bounded width for per-item digestion work.
const Concurrency = 16

// excerptLimit caps how much content text is sent per digestion call.
const excerptLimit = 6000

// ItemFailure records a digestion failure that was absorbed by falling
// back to the stub digest for that item.
type ItemFailure struct {
	ContentID string
	Err       error
}

// Service digests content items. With a nil client it runs entirely on
// the deterministic stub path.
type Service struct {
	client llm.Client
	policy retry.Policy
}

// NewService builds a digestion service. When no credential is
// configured the service is stub-only and makes no network calls.
func NewService(ctx context.Context, cfg config.ProviderConfig) (*Service, error) {
	if !cfg.Configured() {
		return &Service{}, nil
	}

	client, err := llm.NewGeminiClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	policy := retry.DefaultPolicy()
	policy.Retryable = llm.IsTransient
	return &Service{client: client, policy: policy}, nil
}

// NewServiceWithClient builds a service around an existing client.
// Used by tests and by callers that share one provider connection.
func NewServiceWithClient(client llm.Client) *Service {
	policy := retry.DefaultPolicy()
	policy.Retryable = llm.IsTransient
	return &Service{client: client, policy: policy}
}

// Digest produces a digest for a single item, falling back to the stub
// on any model failure. The returned error is the recorded failure, if
// any; the digest itself is always usable.
func (s *Service) Digest(ctx context.Context, item types.ContentItem) (types.ContentDigest, error) {
	if s.client == nil {
		return StubDigest(item), nil
	}

	digest, err := s.modelDigest(ctx, item)
	if err != nil {
		return StubDigest(item), err
	}
	return digest, nil
}

// DigestAll digests all items with bounded concurrency. The batch always
// succeeds: per-item failures are returned alongside the digests, with
// the failing items carrying stub digests. OnItem, when non-nil, is
// called after each finished item with the number done so far.
func (s *Service) DigestAll(ctx context.Context, items []types.ContentItem, onItem func(done int)) ([]types.ContentDigest, []ItemFailure) {
	digests := make([]types.ContentDigest, len(items))
	var (
		mu       sync.Mutex
		failures []ItemFailure
		done     int
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(Concurrency)

	for i, item := range items {
		g.Go(func() error {
			digest, err := s.Digest(gCtx, item)
			mu.Lock()
			digests[i] = digest
			if err != nil {
				failures = append(failures, ItemFailure{ContentID: item.ID, Err: err})
			}
			done++
			current := done
			mu.Unlock()
			if onItem != nil {
				onItem(current)
			}
			return nil
		})
	}
	// Workers never return errors; failures degrade to stub digests.
	_ = g.Wait()

	sort.Slice(failures, func(a, b int) bool { return failures[a].ContentID < failures[b].ContentID })
	return digests, failures
}

func (s *Service) modelDigest(ctx context.Context, item types.ContentItem) (types.ContentDigest, error) {
	prompt := buildDigestPrompt(item)

	var raw string
	err := retry.Do(ctx, s.policy, func(ctx context.Context) error {
		var callErr error
		raw, callErr = s.client.GenerateJSON(ctx, prompt)
		return callErr
	})
	if err != nil {
		return types.ContentDigest{}, fmt.Errorf("digestion of %q failed: %w", item.Title, err)
	}

	return parseDigest(item, raw)
}

func buildDigestPrompt(item types.ContentItem) string {
	excerpt := truncateRunes(item.Text(), excerptLimit)
	template := prompts.MustGet("digestion.json", "digest-content")
	return prompts.Format(template, map[string]string{
		"Title":   item.Title,
		"Kind":    string(item.Kind),
		"Excerpt": excerpt,
	})
}

// truncateRunes caps text at limit bytes without splitting a rune.
func truncateRunes(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit]
}

// parseDigest parses the model response and rejects shapes that would
// not survive draft validation; the caller substitutes the stub.
func parseDigest(item types.ContentItem, raw string) (types.ContentDigest, error) {
	var parsed struct {
		KeyConcepts       []string              `json:"keyConcepts"`
		SkillsIntroduced  []string              `json:"skillsIntroduced"`
		MemorableExamples []string              `json:"memorableExamples"`
		DifficultyLevel   types.DifficultyLevel `json:"difficultyLevel"`
		Summary           string                `json:"summary"`
	}
	if err := json.Unmarshal([]byte(llm.ExtractJSONObject(raw)), &parsed); err != nil {
		return types.ContentDigest{}, fmt.Errorf("digestion returned unparseable JSON: %w", err)
	}

	if len(parsed.KeyConcepts) == 0 || len(parsed.SkillsIntroduced) == 0 || len(parsed.MemorableExamples) == 0 {
		return types.ContentDigest{}, fmt.Errorf("digestion returned empty concept, skill, or example lists")
	}
	if len(parsed.KeyConcepts) > 3 {
		parsed.KeyConcepts = parsed.KeyConcepts[:3]
	}
	if len(parsed.SkillsIntroduced) > 2 {
		parsed.SkillsIntroduced = parsed.SkillsIntroduced[:2]
	}
	switch parsed.DifficultyLevel {
	case types.DifficultyBeginner, types.DifficultyIntermediate, types.DifficultyAdvanced:
	default:
		parsed.DifficultyLevel = types.DifficultyIntermediate
	}
	if utf8.RuneCountInString(parsed.Summary) > maxSummaryLen {
		parsed.Summary = string([]rune(parsed.Summary)[:maxSummaryLen])
	}

	return types.ContentDigest{
		ContentID:         item.ID,
		ContentTitle:      item.Title,
		ContentType:       item.Kind,
		KeyConcepts:       parsed.KeyConcepts,
		SkillsIntroduced:  parsed.SkillsIntroduced,
		MemorableExamples: parsed.MemorableExamples,
		DifficultyLevel:   parsed.DifficultyLevel,
		Summary:           parsed.Summary,
	}, nil
}
