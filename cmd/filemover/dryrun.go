package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"filemover/pkg/filemover/exec"
	"filemover/pkg/filemover/plan"
)

func newDryRunCommand() *cobra.Command {
	var planPath string

	cmd := &cobra.Command{
		Use:   "dry-run",
		Short: "Estimate a plan's cost and required permissions without touching the filesystem",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(planPath)
			if err != nil {
				return withExitCode(exitInputError, fmt.Errorf("read plan %s: %w", planPath, err))
			}
			mp, err := plan.UnmarshalPlan(data)
			if err != nil {
				return withExitCode(exitInputError, fmt.Errorf("decode plan: %w", err))
			}

			report := exec.BuildSimReport(mp)
			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return withExitCode(exitIOFatal, fmt.Errorf("marshal report: %w", err))
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&planPath, "plan", "", "move plan produced by the plan command")
	cmd.MarkFlagRequired("plan")

	return cmd
}
