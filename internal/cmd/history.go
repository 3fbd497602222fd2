package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/proctor/internal/config"
	"github.com/harrison/proctor/internal/history"
)

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [scenario]",
		Short: "Show recent runs from the history database",
		Long: `Display recent verification runs recorded in the history database,
most recent first, optionally filtered to one scenario.

Examples:
  # Last 20 runs across all scenarios
  proctor history

  # Last 5 runs of one scenario
  proctor history integration-with-prompt --limit 5`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistory,
	}

	// Add flags
	cmd.Flags().Int("limit", 20, "Maximum number of runs to show")
	cmd.Flags().String("history-db", "", "Path to the run history database")

	return cmd
}

// runHistory implements the history command logic
func runHistory(cmd *cobra.Command, args []string) error {
	scenarioName := ""
	if len(args) == 1 {
		scenarioName = args[0]
	}

	limit, _ := cmd.Flags().GetInt("limit")
	output := cmd.OutOrStdout()

	cfg, err := config.Load(".proctor.yaml")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("history-db") {
		cfg.Harness.HistoryDB, _ = cmd.Flags().GetString("history-db")
	}

	dbPath, err := resolveHistoryDB(cfg.Harness)
	if err != nil {
		return err
	}

	// A missing database just means nothing has run yet
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintf(output, "No runs recorded yet.\n")
		return nil
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	runs, err := store.RecentRuns(cmd.Context(), scenarioName, limit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	if len(runs) == 0 {
		if scenarioName != "" {
			fmt.Fprintf(output, "No runs recorded for scenario %s\n", scenarioName)
		} else {
			fmt.Fprintf(output, "No runs recorded yet.\n")
		}
		return nil
	}

	printRunHistory(output, scenarioName, runs)

	return nil
}

// resolveHistoryDB picks the run-history database path: the merged harness
// value when set, otherwise the default under the proctor home.
func resolveHistoryDB(h config.Harness) (string, error) {
	if h.HistoryDB != "" {
		return h.HistoryDB, nil
	}
	return config.HistoryDBPath()
}

// printRunHistory formats and prints recorded runs, most recent first
func printRunHistory(w io.Writer, scenarioName string, runs []*history.Run) {
	// Colors
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	gray := color.New(color.FgHiBlack)

	// Header
	if scenarioName != "" {
		cyan.Fprintf(w, "\n=== Run History: %s ===\n\n", scenarioName)
	} else {
		cyan.Fprintf(w, "\n=== Run History ===\n\n")
	}
	fmt.Fprintf(w, "Showing %d run(s)\n\n", len(runs))

	for i, run := range runs {
		cyan.Fprintf(w, "Run #%d\n", run.ID)

		fmt.Fprintf(w, "  Time: %s ", formatTimestamp(run.CreatedAt))
		gray.Fprintf(w, "(%s ago)\n", formatDuration(time.Since(run.CreatedAt)))

		if scenarioName == "" {
			fmt.Fprintf(w, "  Scenario: %s\n", run.Scenario)
		}
		fmt.Fprintf(w, "  Mode: %s\n", run.Mode)
		fmt.Fprintf(w, "  Score: %d/%d (%.1f%%)\n", run.Total, run.MaxTotal, run.Percentage)

		fmt.Fprintf(w, "  Checks: ")
		if run.Satisfied {
			green.Fprintf(w, "all passed or skipped\n")
		} else {
			red.Fprintf(w, "failures recorded\n")
		}

		if run.ProjectDir != "" {
			fmt.Fprintf(w, "  Project: %s\n", run.ProjectDir)
		}

		// Separator between runs
		if i < len(runs)-1 {
			fmt.Fprintln(w)
		}
	}
}

// formatTimestamp formats a timestamp for display
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// formatDuration formats a duration for human-readable display
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%.1fh", d.Hours())
	}
	days := int(d.Hours() / 24)
	return fmt.Sprintf("%dd", days)
}
