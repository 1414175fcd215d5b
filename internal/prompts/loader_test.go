package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_KnownPrompts(t *testing.T) {
	tests := []struct {
		filename string
		key      string
	}{
		{"digestion.json", "digest-content"},
		{"synthesis.json", "generate-draft"},
		{"synthesis.json", "repair-draft"},
	}

	for _, tt := range tests {
		t.Run(tt.filename+"/"+tt.key, func(t *testing.T) {
			prompt, err := Get(tt.filename, tt.key)
			require.NoError(t, err)
			assert.NotEmpty(t, prompt)
		})
	}
}

func TestGet_UnknownKey(t *testing.T) {
	_, err := Get("synthesis.json", "no-such-key")
	assert.Error(t, err)
}

func TestGet_UnknownFile(t *testing.T) {
	_, err := Get("missing.json", "any")
	assert.Error(t, err)
}

func TestMustGet_PanicsOnMissing(t *testing.T) {
	assert.Panics(t, func() {
		MustGet("synthesis.json", "no-such-key")
	})
}

func TestFormat(t *testing.T) {
	template := "Build a {{.DurationWeeks}}-week program titled {{.Title}}."
	result := Format(template, map[string]string{
		"DurationWeeks": "4",
		"Title":         "Go Fundamentals",
	})
	assert.Equal(t, "Build a 4-week program titled Go Fundamentals.", result)
}

func TestFormat_UnusedPlaceholderLeftIntact(t *testing.T) {
	result := Format("Hello {{.Name}}", map[string]string{"Other": "x"})
	assert.Equal(t, "Hello {{.Name}}", result)
}

func TestPromptsCarryPlaceholders(t *testing.T) {
	generate := MustGet("synthesis.json", "generate-draft")
	for _, placeholder := range []string{"{{.Title}}", "{{.DurationWeeks}}", "{{.ClusterListings}}"} {
		assert.Contains(t, generate, placeholder)
	}

	repair := MustGet("synthesis.json", "repair-draft")
	assert.Contains(t, repair, "{{.BadOutput}}")
	assert.Contains(t, repair, "{{.Error}}")

	digest := MustGet("digestion.json", "digest-content")
	assert.Contains(t, digest, "{{.Excerpt}}")
}
