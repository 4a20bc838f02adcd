package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"filemover/pkg/filemover/exec"
	"filemover/pkg/filemover/fsx"
)

func newUndoCommand() *cobra.Command {
	var journalPath string

	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Replay a completed journal in reverse, restoring every Ok entry",
		Long:  "Attempts to restore every Ok-result entry in the journal, reverse-chronologically. Never stops on the first failure; failures are reported at the end.",
		RunE: func(cmd *cobra.Command, args []string) error {
			fsys := fsx.NewOSFileSystem()
			result, err := exec.Undo(context.Background(), journalPath, fsys)
			if err != nil {
				return withExitCode(exitInputError, fmt.Errorf("undo: %w", err))
			}

			fmt.Printf("Restored %d entries, %d failed\n", result.Restored, len(result.Failed))
			for _, f := range result.Failed {
				fmt.Printf("  %s\n", f.Error())
			}

			if len(result.Failed) > 0 {
				return withExitCode(exitPartial, fmt.Errorf("%d entries could not be restored", len(result.Failed)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&journalPath, "journal", "", "journal file to replay (.jsonl)")
	cmd.MarkFlagRequired("journal")

	return cmd
}
