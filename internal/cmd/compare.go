package cmd

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/harrison/proctor/internal/compare"
	"github.com/harrison/proctor/internal/report"
	"github.com/harrison/proctor/internal/results"
)

// NewCompareCommand creates the compare command
func NewCompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <baseline.json> <with-plugin.json>",
		Short: "Compare baseline and with-plugin result documents",
		Long: `Compare two persisted result documents for the same scenario and
report per-category improvements, regressions, and unchanged entries.

The verdict does not affect the exit status; compare fails only when a
result document cannot be read or a report cannot be written.

Examples:
  # Print the comparison
  proctor compare results/demo-baseline.json results/demo-with-plugin.json

  # Persist the report as JSON, Markdown, and HTML
  proctor compare results/demo-baseline.json results/demo-with-plugin.json \
    --output results/demo-comparison.json \
    --markdown results/demo-comparison.md \
    --html results/demo-comparison.html`,
		Args: cobra.ExactArgs(2),
		RunE: runCompare,
	}

	// Add flags
	cmd.Flags().String("output", "", "Path to save the comparison report as JSON")
	cmd.Flags().String("markdown", "", "Path to save the comparison report as Markdown")
	cmd.Flags().String("html", "", "Path to save the comparison report as HTML")

	return cmd
}

// runCompare implements the compare command logic
func runCompare(cmd *cobra.Command, args []string) error {
	baseline, err := results.LoadDocument(args[0])
	if err != nil {
		return fmt.Errorf("failed to load baseline results: %w", err)
	}
	withPlugin, err := results.LoadDocument(args[1])
	if err != nil {
		return fmt.Errorf("failed to load with-plugin results: %w", err)
	}

	rep := compare.Compare(baseline, withPlugin)

	out := cmd.OutOrStdout()
	colorOutput := isatty.IsTerminal(os.Stdout.Fd())
	for _, line := range report.Comparison(rep, colorOutput) {
		fmt.Fprintln(out, line)
	}

	if outputPath, _ := cmd.Flags().GetString("output"); outputPath != "" {
		if err := results.SaveReport(rep, outputPath); err != nil {
			return fmt.Errorf("failed to save comparison: %w", err)
		}
		fmt.Fprintf(out, "\nComparison saved to: %s\n", outputPath)
	}

	if markdownPath, _ := cmd.Flags().GetString("markdown"); markdownPath != "" {
		if err := os.WriteFile(markdownPath, []byte(report.Markdown(rep)), 0644); err != nil {
			return fmt.Errorf("failed to save markdown report: %w", err)
		}
		fmt.Fprintf(out, "Markdown report saved to: %s\n", markdownPath)
	}

	if htmlPath, _ := cmd.Flags().GetString("html"); htmlPath != "" {
		data, err := report.HTML(rep)
		if err != nil {
			return err
		}
		if err := os.WriteFile(htmlPath, data, 0644); err != nil {
			return fmt.Errorf("failed to save html report: %w", err)
		}
		fmt.Fprintf(out, "HTML report saved to: %s\n", htmlPath)
	}

	return nil
}
