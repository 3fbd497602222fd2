package cmd

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/harrison/proctor/internal/config"
	"github.com/harrison/proctor/internal/history"
	"github.com/harrison/proctor/internal/logger"
	"github.com/harrison/proctor/internal/models"
	"github.com/harrison/proctor/internal/report"
	"github.com/harrison/proctor/internal/results"
	"github.com/harrison/proctor/internal/runner"
	"github.com/harrison/proctor/internal/scenario"
)

// NewVerifyCommand creates the verify command
func NewVerifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <scenario> <project-dir> [baseline|with-plugin]",
		Short: "Run a scenario's checks against a project and score it",
		Long: `Run a scenario's success criteria against a project directory and
score the outcome.

The scenario argument is resolved against the scenarios directory unless
it names a definition file or a scenario directory. Platform credentials
and the evaluation window come from the environment (FREEPLAY_API_KEY,
FREEPLAY_PROJECT_ID, EVAL_START_TIME, ...); API checks are skipped when
credentials are absent. Harness options are loaded from .proctor.yaml if
present, and CLI flags override them.

The result document is written to the results directory as
<scenario>-<mode>.json unless --output is given, and a summary row is
appended to the run history database.

Examples:
  # Baseline run
  proctor verify integration-with-prompt ./work/baseline

  # With-plugin run with an explicit output path
  proctor verify integration-with-prompt ./work/plugin with-plugin --output results/plugin.json

  # Scenario definition given directly, without a history row
  proctor verify evals/scenarios/basic/scenario.yaml ./project --no-history

Exit code: 0 if every check passed or was skipped, 1 otherwise`,
		Args: cobra.RangeArgs(2, 3),
		RunE: runVerify,
	}

	// Add flags
	cmd.Flags().String("output", "", "Path for the result document (default: <results-dir>/<scenario>-<mode>.json)")
	cmd.Flags().String("scenarios-dir", "", "Directory scenario names are resolved against")
	cmd.Flags().String("config", "", "Path to harness options file (default: .proctor.yaml)")
	cmd.Flags().String("history-db", "", "Path to the run history database")
	cmd.Flags().Bool("no-history", false, "Do not record this run in the history database")
	cmd.Flags().Bool("verbose", false, "Show detailed progress information")

	return cmd
}

// runVerify implements the verify command logic
func runVerify(cmd *cobra.Command, args []string) error {
	scenarioArg := args[0]
	projectDir := args[1]

	mode := models.ModeBaseline
	if len(args) == 3 {
		mode = args[2]
	}
	if mode != models.ModeBaseline && mode != models.ModeWithPlugin {
		return fmt.Errorf("invalid mode %q (want %s or %s)", mode, models.ModeBaseline, models.ModeWithPlugin)
	}

	// Load configuration: environment plus the optional options file
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = ".proctor.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Get flag values
	scenariosDirFlag, _ := cmd.Flags().GetString("scenarios-dir")
	historyDBFlag, _ := cmd.Flags().GetString("history-db")
	outputFlag, _ := cmd.Flags().GetString("output")
	noHistory, _ := cmd.Flags().GetBool("no-history")
	verbose, _ := cmd.Flags().GetBool("verbose")

	// Build flag pointers for merge (only changed values)
	var scenariosDirPtr *string
	if cmd.Flags().Changed("scenarios-dir") {
		scenariosDirPtr = &scenariosDirFlag
	}

	var historyDBPtr *string
	if cmd.Flags().Changed("history-db") {
		historyDBPtr = &historyDBFlag
	}

	var logLevelPtr *string
	if verbose {
		level := "debug"
		logLevelPtr = &level
	}

	// Merge CLI flags with config (flags take precedence)
	cfg.Harness.MergeFlags(scenariosDirPtr, nil, historyDBPtr, nil, logLevelPtr)

	// Resolve and load the scenario before anything runs
	definitionPath, err := scenario.Resolve(scenarioArg, cfg.Harness.ScenariosDir)
	if err != nil {
		return err
	}
	s, err := scenario.Load(definitionPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Verifying scenario: %s\n", s.Name)
	fmt.Fprintf(out, "Project directory: %s\n", projectDir)
	fmt.Fprintf(out, "Mode: %s\n", mode)
	fmt.Fprintln(out)

	// Progress goes to stderr so stdout stays a clean report
	log := logger.NewConsoleLogger(os.Stderr, cfg.Harness.LogLevel)

	r, err := runner.New(cfg, log)
	if err != nil {
		return err
	}
	doc := r.Run(cmd.Context(), s, projectDir, mode)

	colorOutput := isatty.IsTerminal(os.Stdout.Fd())
	for _, line := range report.Verify(doc, colorOutput) {
		fmt.Fprintln(out, line)
	}

	outputPath := outputFlag
	if outputPath == "" {
		outputPath = results.DefaultPath(cfg.Harness.ResultsDir, s.Name, mode)
	}
	if err := results.SaveDocument(doc, outputPath); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}
	fmt.Fprintf(out, "\nResults saved to: %s\n", outputPath)

	if !noHistory {
		if err := recordHistory(cmd, cfg.Harness, doc); err != nil {
			log.Warnf("failed to record run history: %v", err)
		}
	}

	failed := 0
	for i := range doc.Checks {
		if !doc.Checks[i].Satisfied() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}

	return nil
}

// recordHistory appends the run's summary row to the history database.
func recordHistory(cmd *cobra.Command, h config.Harness, doc *models.ResultDocument) error {
	dbPath, err := resolveHistoryDB(h)
	if err != nil {
		return err
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	return store.RecordRun(cmd.Context(), history.RunFromDocument(doc))
}
