package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"filemover/pkg/filemover/exec"
	"filemover/pkg/filemover/fsx"
	"filemover/pkg/filemover/plan"
)

func newApplyCommand() *cobra.Command {
	var (
		planPath    string
		journalPath string
		threads     int
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Execute a move plan, journaling every attempt",
		Long:  "Execute a move plan's nodes against the filesystem. Ctrl-C requests a graceful cancellation: operations already under way finish, and no further operation is started.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}

			data, err := os.ReadFile(planPath)
			if err != nil {
				return withExitCode(exitInputError, fmt.Errorf("read plan %s: %w", planPath, err))
			}
			mp, err := plan.UnmarshalPlan(data)
			if err != nil {
				return withExitCode(exitInputError, fmt.Errorf("decode plan: %w", err))
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			progress := make(chan exec.Progress, 8)
			done := make(chan struct{})
			go func() {
				defer close(done)
				for p := range progress {
					fmt.Printf("\r%d/%d ops, %d/%d bytes", p.CompletedOps, p.TotalOps, p.BytesProcessed, p.TotalBytes)
				}
			}()

			executor := exec.New(fsx.NewOSFileSystem(), logger)
			result, err := executor.Run(ctx, mp, exec.Options{
				JournalPath:     journalPath,
				ParallelThreads: threads,
				Progress:        progress,
			})
			close(progress)
			<-done
			fmt.Println()

			if err != nil && result == nil {
				return withExitCode(exitIOFatal, fmt.Errorf("execute plan: %w", err))
			}

			fmt.Printf("Execution %s: %d completed, %d failed, %d skipped (%v)\n",
				result.Status, result.CompletedOps, result.FailedOps, result.SkippedOps, result.Duration)

			switch result.Status {
			case exec.StatusOk:
				return nil
			case exec.StatusPartial:
				return withExitCode(exitPartial, fmt.Errorf("%d of %d operations failed", result.FailedOps, result.CompletedOps+result.FailedOps))
			case exec.StatusCancelled:
				return withExitCode(exitCancelled, fmt.Errorf("execution cancelled"))
			default:
				return withExitCode(exitIOFatal, fmt.Errorf("execution failed fatally: %w", err))
			}
		},
	}

	cmd.Flags().StringVar(&planPath, "plan", "", "move plan produced by the plan command")
	cmd.Flags().StringVar(&journalPath, "journal", "", "where to write the execution journal (.jsonl)")
	cmd.Flags().IntVar(&threads, "parallel-threads", 0, "execution worker pool size (default min(8, cpu_count))")
	cmd.MarkFlagRequired("plan")
	cmd.MarkFlagRequired("journal")

	return cmd
}
