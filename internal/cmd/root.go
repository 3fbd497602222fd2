package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for proctor
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proctor",
		Short: "Evaluation harness for Freeplay platform integrations",
		Long: `Proctor scores how well an AI-assisted change integrated a project
with the Freeplay platform.

It runs a scenario's success criteria (file contents, code execution,
remote API verification) against a project directory, computes a rubric
score, and compares baseline and with-plugin runs.`,
		Version: Version,
		// Silence usage and error echo on failures; main prints the error once
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add subcommands
	cmd.AddCommand(NewVerifyCommand())
	cmd.AddCommand(NewCompareCommand())
	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewHistoryCommand())
	cmd.AddCommand(NewVersionCommand())

	return cmd
}
