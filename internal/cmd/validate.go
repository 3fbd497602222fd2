package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrison/proctor/internal/scenario"
)

// NewValidateCommand creates and returns the validate subcommand
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenarios-dir|scenario-file>",
		Short: "Validate scenario definitions",
		Long: `Parse and validate scenario definitions, checking for:
  - A scenario name and at least one success criterion
  - Required parameters for each criterion type
  - Non-negative rubric point values

Supports two input modes:
  - Scenarios directory: proctor validate evals/scenarios
  - Single definition:   proctor validate evals/scenarios/basic/scenario.yaml

Exit code: 0 if valid, 1 if errors found`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateScenarios(args[0], cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}

	return cmd
}

// validateScenarios validates a scenarios directory or a single definition
// file with a custom output writer (for testing)
func validateScenarios(path string, output io.Writer) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to access path: %w", err)
	}

	// Single definition file
	if !info.IsDir() {
		if _, err := scenario.Load(path); err != nil {
			fmt.Fprintf(output, "✗ %s\n", path)
			fmt.Fprintf(output, "  Error: %v\n", err)
			return fmt.Errorf("validation failed with 1 error(s)")
		}
		fmt.Fprintf(output, "✓ %s\n", path)
		fmt.Fprintf(output, "\n✓ Scenario is valid!\n")
		return nil
	}

	entries, err := scenario.Discover(path)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no scenario definitions found in %s", path)
	}

	fmt.Fprintf(output, "Validating %d scenario(s) from %s:\n", len(entries), path)

	var errors []string
	for _, entry := range entries {
		if _, err := scenario.Load(entry.Path); err != nil {
			errors = append(errors, err.Error())
			fmt.Fprintf(output, "✗ %s\n", entry.Name)
			continue
		}
		fmt.Fprintf(output, "✓ %s\n", entry.Name)
	}

	if len(errors) == 0 {
		fmt.Fprintf(output, "\n✓ All scenarios are valid!\n")
		return nil
	}

	// Report all validation errors
	fmt.Fprintf(output, "\n✗ Validation failed\n")
	for _, errMsg := range errors {
		fmt.Fprintf(output, "  ✗ %s\n", errMsg)
	}
	fmt.Fprintf(output, "\nFound %d validation error(s)!\n", len(errors))

	return fmt.Errorf("validation failed with %d error(s)", len(errors))
}
