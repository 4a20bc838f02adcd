package core

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds a console-formatted logger at the given level, the way
// the teacher's log.go wires zerolog for CLI-attended runs.
func NewLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}
	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Str("component", "filemover").
		Logger()
}

// LogLevelFromString parses a --log-level flag value.
func LogLevelFromString(levelStr string) (zerolog.Level, error) {
	return zerolog.ParseLevel(strings.ToLower(levelStr))
}

// DefaultLogger returns a logger at warn level writing to stderr, used
// when no explicit logger is configured (e.g. library callers).
func DefaultLogger() zerolog.Logger {
	return NewLogger(os.Stderr, zerolog.WarnLevel)
}
