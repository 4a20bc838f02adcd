package main

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestRootCmdSetup(t *testing.T) {
	var _ *cobra.Command = rootCmd

	if rootCmd == nil {
		t.Fatal("rootCmd is nil after init")
	}

	expectedUse := "filemover"
	if rootCmd.Use != expectedUse {
		t.Errorf("expected command Use %q, got %q", expectedUse, rootCmd.Use)
	}

	expectedSubcommands := []string{"version", "scan", "plan", "dry-run", "apply", "undo", "validate-journal"}
	found := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		found[cmd.Name()] = true
	}
	for _, name := range expectedSubcommands {
		if !found[name] {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestExitCodeForUsesTaggedCode(t *testing.T) {
	err := withExitCode(exitPartial, errTestSentinel)
	if got := exitCodeFor(err); got != exitPartial {
		t.Errorf("expected exit code %d, got %d", exitPartial, got)
	}
}

func TestExitCodeForDefaultsToInputError(t *testing.T) {
	if got := exitCodeFor(errTestSentinel); got != exitInputError {
		t.Errorf("expected default exit code %d, got %d", exitInputError, got)
	}
}

var errTestSentinel = &sentinelErr{"boom"}

type sentinelErr struct{ msg string }

func (e *sentinelErr) Error() string { return e.msg }
