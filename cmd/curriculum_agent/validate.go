package main

import (
	"fmt"
	"os"

	"github.com/jordan/curriculum-builder/internal/schemas"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <draft.json>",
	Short: "Validate a curriculum draft JSON file",
	Long:  `Checks a draft file against the ProgramDraft schema and structural rules without calling any provider.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read draft: %w", err)
	}

	if err := schemas.ValidateDraftJSON(string(raw)); err != nil {
		return fmt.Errorf("draft is invalid: %w", err)
	}

	fmt.Println("Draft is valid.")
	return nil
}
