package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"filemover/pkg/filemover/core"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "filemover",
	Short: "Scan, plan, and execute rule-driven folder reorganizations",
	Long: `filemover matches folder names against user-declared rules and moves
matched folders (with their contents) to templated destinations.

The workflow is: scan → plan → dry-run → apply → (optionally) undo.`,
}

var logLevelFlag string

// Execute adds all child commands to the root command, parses flags, and
// runs the selected command. This is called by main.main(). Exit codes
// follow the engine's stable contract: 0 success, 2 input error, 3
// partial, 4 cancelled, 5 I/O fatal.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "warn", "log level: debug, info, warn, error")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(newScanCommand())
	rootCmd.AddCommand(newPlanCommand())
	rootCmd.AddCommand(newDryRunCommand())
	rootCmd.AddCommand(newApplyCommand())
	rootCmd.AddCommand(newUndoCommand())
	rootCmd.AddCommand(newValidateJournalCommand())
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("filemover version %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

func newLogger() (zerolog.Logger, error) {
	level, err := core.LogLevelFromString(logLevelFlag)
	if err != nil {
		return zerolog.Logger{}, withExitCode(exitInputError, fmt.Errorf("invalid --log-level: %w", err))
	}
	return core.NewLogger(os.Stderr, level), nil
}
