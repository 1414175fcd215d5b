package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GEMINI_API_KEY", "EMBEDDING_MODEL", "DIGESTION_MODEL",
		"GENERATION_API_KEY", "GENERATION_MODEL", "GENERATION_BASE_URL",
		"GENERATION_BACKEND", "PORT", "DATABASE_URL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Embedding.Configured())
	assert.False(t, cfg.Digestion.Configured())
	assert.False(t, cfg.Generation.Configured())
	assert.Equal(t, DefaultEmbeddingModel, cfg.Embedding.Model)
	assert.Equal(t, DefaultDigestionModel, cfg.Digestion.Model)
	assert.Equal(t, DefaultGenerationModel, cfg.Generation.Model)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoad_SharedGeminiKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "key-123")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Embedding.Configured())
	assert.True(t, cfg.Digestion.Configured())
	assert.Equal(t, "key-123", cfg.Generation.APIKey)
}

func TestLoad_GenerationKeyOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "shared")
	t.Setenv("GENERATION_API_KEY", "generation-only")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "generation-only", cfg.Generation.APIKey)
	assert.Equal(t, "shared", cfg.Embedding.APIKey)
}

func TestLoad_Port(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
}

func TestLoad_InvalidPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate_Backend(t *testing.T) {
	cfg := &Config{Port: 8080}
	for _, backend := range []string{"", "gemini", "stub"} {
		cfg.GenerationBackend = backend
		assert.NoError(t, cfg.Validate(), "backend %q", backend)
	}

	cfg.GenerationBackend = "anthropic"
	assert.Error(t, cfg.Validate())
}

func TestValidate_OpenAIRequiresBaseURL(t *testing.T) {
	cfg := &Config{Port: 8080, GenerationBackend: "openai"}
	assert.Error(t, cfg.Validate())

	cfg.Generation.BaseURL = "https://openrouter.ai/api/v1"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_PortRange(t *testing.T) {
	cfg := &Config{Port: 0}
	assert.Error(t, cfg.Validate())

	cfg.Port = 70000
	assert.Error(t, cfg.Validate())
}
