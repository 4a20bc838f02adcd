package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"filemover/pkg/filemover/exec"
	"filemover/pkg/filemover/fsx"
)

// newValidateJournalCommand is a supplemental subcommand (not named in
// the distilled CLI surface) that lets a user inspect a journal's
// outcome counts and interrupted-tail status without running undo.
func newValidateJournalCommand() *cobra.Command {
	var journalPath string

	cmd := &cobra.Command{
		Use:   "validate-journal",
		Short: "Report a journal's outcome counts and flag an interrupted tail",
		RunE: func(cmd *cobra.Command, args []string) error {
			fsys := fsx.NewOSFileSystem()
			report, err := exec.ValidateJournal(journalPath, fsys)
			if err != nil {
				return withExitCode(exitInputError, fmt.Errorf("validate journal: %w", err))
			}

			fmt.Printf("session %s: %d entries (%d ok, %d skip, %d failed)\n",
				report.Header.SessionID, report.EntryCount, report.OkCount, report.SkipCount, report.FailedCount)
			if report.Interrupted {
				fmt.Println("journal tail is interrupted: last attempt's outcome could not be resolved from filesystem state")
				return withExitCode(exitPartial, fmt.Errorf("interrupted journal"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&journalPath, "journal", "", "journal file to inspect (.jsonl)")
	cmd.MarkFlagRequired("journal")

	return cmd
}
