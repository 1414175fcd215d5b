// Package main provides the entry point for the Curriculum Builder CLI and API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "curriculum_agent",
	Short: "Curriculum Builder generation pipeline",
	Long:  "Curriculum Builder turns uploaded course content into structured multi-week curriculum drafts: embedding, topic clustering, content digestion, and LLM draft synthesis behind an async job API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
