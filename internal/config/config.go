// Package config provides explicit configuration structs for the
// pipeline. All environment reads happen once, in Load; nothing deeper
// in the call stack touches os.Getenv.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// ProviderConfig holds the credentials and model selection for one
// model-backed stage. An empty APIKey is not an error: it selects the
// deterministic stub path for that stage.
type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Configured reports whether a real provider credential is present.
func (p ProviderConfig) Configured() bool {
	return p.APIKey != ""
}

// Config is the resolved process configuration.
type Config struct {
	// Per-stage provider settings. Each stage may point at a different
	// backend; absence of a credential selects the stub for that stage.
	Embedding  ProviderConfig
	Digestion  ProviderConfig
	Generation ProviderConfig

	// GenerationBackend selects the synthesis provider implementation:
	// "gemini", "openai" or "stub". Empty means: gemini when a key is
	// configured, stub otherwise.
	GenerationBackend string

	Port        int
	DatabaseURL string
}

// Defaults used when the corresponding env vars are unset
const (
	DefaultEmbeddingModel  = "text-embedding-004"
	DefaultDigestionModel  = "gemini-2.5-flash"
	DefaultGenerationModel = "gemini-2.5-pro"
	DefaultPort            = 8080
)

// Load resolves configuration from the environment. Every field has a
// usable zero-credential default so the pipeline can run fully offline.
func Load() (*Config, error) {
	cfg := &Config{
		Embedding: ProviderConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
			Model:  envOr("EMBEDDING_MODEL", DefaultEmbeddingModel),
		},
		Digestion: ProviderConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
			Model:  envOr("DIGESTION_MODEL", DefaultDigestionModel),
		},
		Generation: ProviderConfig{
			APIKey:  firstNonEmpty(os.Getenv("GENERATION_API_KEY"), os.Getenv("GEMINI_API_KEY")),
			Model:   envOr("GENERATION_MODEL", DefaultGenerationModel),
			BaseURL: os.Getenv("GENERATION_BASE_URL"),
		},
		GenerationBackend: os.Getenv("GENERATION_BACKEND"),
		Port:              DefaultPort,
		DatabaseURL:       os.Getenv("DATABASE_URL"),
	}

	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("config error: invalid PORT %q: %w", port, err)
		}
		cfg.Port = p
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config error: port %d out of range", c.Port)
	}
	switch c.GenerationBackend {
	case "", "gemini", "openai", "stub":
	default:
		return fmt.Errorf("config error: unknown generation backend %q", c.GenerationBackend)
	}
	if c.GenerationBackend == "openai" && c.Generation.BaseURL == "" {
		return fmt.Errorf("config error: GENERATION_BASE_URL is required for the openai backend")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
