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
	"filemover/pkg/filemover/scan"
)

func newScanCommand() *cobra.Command {
	var (
		configPath string
		profile    string
		output     string
		roots      []string
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Enumerate roots and emit matched folder hits as JSON",
		Long:  "Walk the configured roots, evaluate the rule set against every folder name, and emit the resulting hit stream as JSON.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}

			doc, err := config.LoadDocument(configPath)
			if err != nil {
				return withExitCode(exitInputError, err)
			}
			resolved, err := doc.ResolveProfile(profile)
			if err != nil {
				return withExitCode(exitInputError, err)
			}

			if len(roots) > 0 {
				resolved.Roots = roots
			}

			matchRules, err := config.ToMatchRules(resolved.Rules)
			if err != nil {
				return withExitCode(exitInputError, err)
			}
			ruleSet, err := match.Compile(matchRules)
			if err != nil {
				return withExitCode(exitInputError, err)
			}

			fsys := fsx.NewOSFileSystem()
			scanner := scan.New(resolved.Options.ToScanOptions(), ruleSet, fsys, logger)

			hits, err := scanner.Scan(context.Background(), resolved.Roots)
			if err != nil {
				return withExitCode(exitIOFatal, fmt.Errorf("scan: %w", err))
			}

			data, err := json.MarshalIndent(hits, "", "  ")
			if err != nil {
				return withExitCode(exitIOFatal, fmt.Errorf("marshal hits: %w", err))
			}

			if output == "" {
				_, err = os.Stdout.Write(append(data, '\n'))
			} else {
				err = os.WriteFile(output, data, 0o644)
			}
			if err != nil {
				return withExitCode(exitIOFatal, fmt.Errorf("write hits: %w", err))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "configuration document (JSON)")
	cmd.Flags().StringVar(&profile, "profile", "", "named profile to resolve from the configuration document")
	cmd.Flags().StringVar(&output, "output", "", "write hits to this file instead of stdout")
	cmd.Flags().StringSliceVar(&roots, "roots", nil, "override the configuration document's roots")
	cmd.MarkFlagRequired("config")

	return cmd
}
