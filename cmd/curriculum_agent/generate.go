package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jordan/curriculum-builder/internal/clustering"
	"github.com/jordan/curriculum-builder/internal/config"
	"github.com/jordan/curriculum-builder/internal/digest"
	"github.com/jordan/curriculum-builder/internal/embedding"
	"github.com/jordan/curriculum-builder/internal/ingestion"
	"github.com/jordan/curriculum-builder/internal/llm"
	"github.com/jordan/curriculum-builder/internal/observability"
	"github.com/jordan/curriculum-builder/internal/schemas"
	"github.com/jordan/curriculum-builder/internal/synthesis"
	"github.com/jordan/curriculum-builder/internal/types"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run the full generation pipeline end-to-end",
	Long: `Runs the entire curriculum generation process in the foreground:
ingestion -> embedding -> clustering -> digestion -> synthesis -> validation.

Without provider credentials every stage falls back to its deterministic
local implementation, so the pipeline is runnable offline.`,
	RunE: runGenerate,
}

var (
	genContentDir  string
	genProgramID   string
	genTitle       string
	genDescription string
	genPacing      string
	genWeeks       int
	genOutput      string
	genVerbose     bool
)

func init() {
	generateCmd.Flags().StringVarP(&genContentDir, "content-dir", "c", "", "Directory of content files (.txt, .transcript.txt, .html)")
	generateCmd.Flags().StringVar(&genProgramID, "program-id", "", "Program identifier (defaults to a new UUID)")
	generateCmd.Flags().StringVarP(&genTitle, "title", "t", "", "Program title")
	generateCmd.Flags().StringVar(&genDescription, "description", "", "Program description")
	generateCmd.Flags().StringVar(&genPacing, "pacing", "self_paced", "Pacing mode: self_paced or weekly")
	generateCmd.Flags().IntVarP(&genWeeks, "weeks", "w", 4, "Program duration in weeks (1..52)")
	generateCmd.Flags().StringVarP(&genOutput, "out", "o", "", "Write the draft JSON to this file instead of stdout")
	generateCmd.Flags().BoolVarP(&genVerbose, "verbose", "v", false, "Print intermediate pipeline artifacts")

	if err := generateCmd.MarkFlagRequired("content-dir"); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if genWeeks < 1 || genWeeks > 52 {
		return fmt.Errorf("--weeks must be within 1..52, got %d", genWeeks)
	}

	items, err := ingestion.LoadDirectory(genContentDir)
	if err != nil {
		return fmt.Errorf("failed to load content: %w", err)
	}
	if len(items) == 0 {
		return fmt.Errorf("no content files found in %s", genContentDir)
	}

	printer := observability.NewPrinter(os.Stderr)
	if genVerbose {
		fmt.Fprintf(os.Stderr, "Loaded %d content items from %s\n", len(items), genContentDir)
	}

	// Embedding
	embedder, err := embedding.NewProvider(ctx, cfg.Embedding)
	if err != nil {
		return fmt.Errorf("failed to create embedding provider: %w", err)
	}
	inputs := make([]embedding.Input, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, embedding.Input{ID: item.ID, Text: item.Text()})
	}
	vectors, err := embedder.Embed(ctx, inputs, nil)
	if err != nil {
		return fmt.Errorf("content embedding failed: %w", err)
	}

	// Clustering
	clusters := clustering.ClusterEmbeddings(vectors)
	if genVerbose {
		printer.PrintClusters(clusters, items)
	}

	// Digestion
	digester, err := digest.NewService(ctx, cfg.Digestion)
	if err != nil {
		return fmt.Errorf("failed to create digestion service: %w", err)
	}
	digests, failures := digester.DigestAll(ctx, items, nil)
	for _, failure := range failures {
		fmt.Fprintf(os.Stderr, "Warning: digestion fell back to stub for %s: %v\n", failure.ContentID, failure.Err)
	}
	if genVerbose {
		printer.PrintDigests(digests)
	}

	// Synthesis
	var client llm.Client
	if cfg.GenerationBackend != "stub" && cfg.Generation.Configured() {
		client, err = llm.NewClient(ctx, cfg.GenerationBackend, cfg.Generation)
		if err != nil {
			return fmt.Errorf("failed to create generation client: %w", err)
		}
		defer client.Close() //nolint:errcheck
	}
	engine := synthesis.NewEngine(client)

	meta := types.ProgramMeta{
		ProgramID:     genProgramID,
		Title:         genTitle,
		Description:   genDescription,
		PacingMode:    types.PacingMode(genPacing),
		DurationWeeks: genWeeks,
	}
	if meta.ProgramID == "" {
		meta.ProgramID = uuid.New().String()
	}

	draft, err := engine.Synthesize(ctx, meta, items, clusters, digests)
	if err != nil {
		return fmt.Errorf("draft generation failed: %w", err)
	}
	if err := schemas.ValidateDraft(draft); err != nil {
		return fmt.Errorf("draft validation failed: %w", err)
	}
	if genVerbose {
		printer.PrintDraft(draft)
	}

	encoded, err := json.MarshalIndent(draft, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}

	if genOutput != "" {
		if err := os.WriteFile(genOutput, append(encoded, '\n'), 0o644); err != nil {
			return fmt.Errorf("failed to write draft: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Draft written to %s\n", genOutput)
		return nil
	}

	fmt.Println(string(encoded))
	return nil
}
