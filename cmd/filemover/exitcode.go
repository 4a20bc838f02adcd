package main

import "errors"

// Exit codes per the engine's CLI contract: 0 success, 2 input error
// (bad config/rule/plan), 3 partial (some ops failed), 4 cancelled, 5
// I/O fatal.
const (
	exitOK         = 0
	exitInputError = 2
	exitPartial    = 3
	exitCancelled  = 4
	exitIOFatal    = 5
)

// exitCodeErr wraps an error with the exit code a RunE failure should
// produce, since cobra only gives Execute() the error itself.
type exitCodeErr struct {
	code int
	err  error
}

func (e *exitCodeErr) Error() string { return e.err.Error() }
func (e *exitCodeErr) Unwrap() error { return e.err }

// withExitCode tags err with the exit code its cobra command should
// terminate with. Returns nil unchanged so callers can wrap in place.
func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitCodeErr{code: code, err: err}
}

// exitCodeFor unwraps the code tagged by withExitCode, defaulting to
// exitInputError for plain errors — most RunE failures in this CLI are
// bad config, bad rules, or a bad plan file.
func exitCodeFor(err error) int {
	var tagged *exitCodeErr
	if errors.As(err, &tagged) {
		return tagged.code
	}
	return exitInputError
}
