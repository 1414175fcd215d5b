package synthesis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordan/curriculum-builder/internal/llm"
	"github.com/jordan/curriculum-builder/internal/schemas"
	"github.com/jordan/curriculum-builder/internal/types"
)

// scriptedClient replays canned responses and counts calls.
type scriptedClient struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (c *scriptedClient) GenerateJSON(_ context.Context, prompt string) (string, error) {
	i := c.calls
	c.calls++
	c.prompts = append(c.prompts, prompt)
	if i < len(c.errs) && c.errs[i] != nil {
		return "", c.errs[i]
	}
	if i < len(c.responses) {
		return c.responses[i], nil
	}
	return "", nil
}

func (c *scriptedClient) Name() string { return "scripted" }
func (c *scriptedClient) Close() error { return nil }

// validDraftJSON renders a schema-valid draft for the given meta.
func validDraftJSON(t *testing.T, meta types.ProgramMeta) string {
	t.Helper()
	draft := StubSynthesize(meta, stubItems(4), nil, nil)
	raw, err := json.Marshal(draft)
	require.NoError(t, err)
	return string(raw)
}

func TestEngine_StubMode(t *testing.T) {
	engine := NewEngine(nil)
	assert.True(t, engine.StubMode())

	draft, err := engine.Synthesize(context.Background(), stubMeta(3), stubItems(6), nil, nil)
	require.NoError(t, err)
	require.NoError(t, schemas.ValidateDraft(draft))
}

func TestEngine_RejectsBadDuration(t *testing.T) {
	engine := NewEngine(nil)
	_, err := engine.Synthesize(context.Background(), stubMeta(0), stubItems(2), nil, nil)
	assert.Error(t, err)
}

func TestEngine_ProviderFirstCallSucceeds(t *testing.T) {
	meta := stubMeta(2)
	client := &scriptedClient{responses: []string{validDraftJSON(t, meta)}}
	engine := NewEngine(client)

	draft, err := engine.Synthesize(context.Background(), meta, stubItems(4), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, client.calls)
	assert.Equal(t, meta.ProgramID, draft.ProgramID)
	assert.Equal(t, meta.DurationWeeks, draft.DurationWeeks)
}

func TestEngine_RepairAfterInvalidOutput(t *testing.T) {
	meta := stubMeta(2)
	client := &scriptedClient{responses: []string{
		"this is not json at all",
		validDraftJSON(t, meta),
	}}
	engine := NewEngine(client)

	draft, err := engine.Synthesize(context.Background(), meta, stubItems(4), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, client.calls)
	require.NoError(t, schemas.ValidateDraft(draft))

	// The second prompt is a repair prompt carrying the bad output.
	require.Len(t, client.prompts, 2)
	assert.Contains(t, client.prompts[1], "this is not json at all")
}

func TestEngine_RepairExhausted(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"weeks": "wrong shape"}`,
		`still not valid`,
		`{"weeks": []}`,
	}}
	engine := NewEngine(client)

	_, err := engine.Synthesize(context.Background(), stubMeta(2), stubItems(4), nil, nil)
	require.Error(t, err)

	// Initial call plus exactly two repair attempts.
	assert.Equal(t, 3, client.calls)
	var exhausted *RepairExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, MaxRepairAttempts, exhausted.Attempts)
	assert.NotNil(t, exhausted.LastErr)
}

func TestEngine_ProviderErrorNotRepaired(t *testing.T) {
	permanent := &llm.PermanentError{Op: "generate", Cause: assert.AnError}
	client := &scriptedClient{errs: []error{permanent}}
	engine := NewEngine(client)

	_, err := engine.Synthesize(context.Background(), stubMeta(2), stubItems(4), nil, nil)
	require.Error(t, err)

	// Permanent provider failures stop immediately: no retry, no repair.
	assert.Equal(t, 1, client.calls)
	var exhausted *RepairExhaustedError
	assert.False(t, errors.As(err, &exhausted))
}

func TestEngine_FencedOutputAccepted(t *testing.T) {
	meta := stubMeta(2)
	client := &scriptedClient{responses: []string{
		"```json\n" + validDraftJSON(t, meta) + "\n```",
	}}
	engine := NewEngine(client)

	draft, err := engine.Synthesize(context.Background(), meta, stubItems(4), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, client.calls)
	assert.Len(t, draft.Weeks, 2)
}

func TestEngine_MisnumberedOutputRenumbered(t *testing.T) {
	meta := stubMeta(2)
	draft := StubSynthesize(meta, stubItems(4), nil, nil)
	draft.Weeks[0].WeekNumber = 9
	draft.Weeks[1].WeekNumber = 9
	raw, err := json.Marshal(draft)
	require.NoError(t, err)

	client := &scriptedClient{responses: []string{string(raw)}}
	engine := NewEngine(client)

	fixed, err := engine.Synthesize(context.Background(), meta, stubItems(4), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, client.calls)
	assert.Equal(t, 1, fixed.Weeks[0].WeekNumber)
	assert.Equal(t, 2, fixed.Weeks[1].WeekNumber)
}
