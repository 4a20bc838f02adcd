package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"filemover/pkg/filemover/config"
	"filemover/pkg/filemover/fsx"
	"filemover/pkg/filemover/match"
	"filemover/pkg/filemover/plan"
	"filemover/pkg/filemover/scan"
)

func newPlanCommand() *cobra.Command {
	var (
		inputPath   string
		rulesPath   string
		outputPath  string
		crossVolume bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Build a move plan from a hit list and a rule set",
		Long:  "Read a FolderHit list and a standalone rules file, materialize a MovePlan with every conflict and warning recorded on its nodes, and write it to disk.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}

			hitsData, err := os.ReadFile(inputPath)
			if err != nil {
				return withExitCode(exitInputError, fmt.Errorf("read hits %s: %w", inputPath, err))
			}
			var hits []scan.FolderHit
			if err := json.Unmarshal(hitsData, &hits); err != nil {
				return withExitCode(exitInputError, fmt.Errorf("decode hits: %w", err))
			}

			rules, err := config.LoadRules(rulesPath)
			if err != nil {
				return withExitCode(exitInputError, err)
			}
			matchRules, err := config.ToMatchRules(rules)
			if err != nil {
				return withExitCode(exitInputError, err)
			}
			ruleSet, err := match.Compile(matchRules)
			if err != nil {
				return withExitCode(exitInputError, err)
			}

			fsys := fsx.NewOSFileSystem()
			planner := plan.New(fsys, ruleSet, logger)

			mp, err := planner.Build(context.Background(), hits, plan.BuildOptions{EnableCrossVolume: crossVolume})
			if err != nil {
				return withExitCode(exitInputError, fmt.Errorf("build plan: %w", err))
			}

			data, err := plan.MarshalPlan(mp, "")
			if err != nil {
				return withExitCode(exitIOFatal, fmt.Errorf("marshal plan: %w", err))
			}
			if err := os.WriteFile(outputPath, data, 0o644); err != nil {
				return withExitCode(exitIOFatal, fmt.Errorf("write plan %s: %w", outputPath, err))
			}

			fmt.Printf("Plan written to %s: %d nodes, %d conflicts\n", outputPath, len(mp.Nodes), mp.Summary.Conflicts)
			return nil
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "hit list produced by scan (JSON)")
	cmd.Flags().StringVar(&rulesPath, "rules", "", "standalone rules file (JSON array)")
	cmd.Flags().StringVar(&outputPath, "output", "plan.json", "where to write the move plan")
	cmd.Flags().BoolVar(&crossVolume, "cross-volume", false, "allow CopyDelete across volumes instead of skipping cross-volume moves")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("rules")

	return cmd
}
