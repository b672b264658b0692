// Package logger builds the zerolog logger used by the locpatch CLI.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Options configures the logger
type Options struct {
	Level  string    // trace, debug, info, warn, error (default info)
	Format string    // console or json (default console)
	Writer io.Writer // default os.Stderr
	RunID  string    // attached to every event; generated when empty
}

// Logger is the project-wide logging type
type Logger = zerolog.Logger

// New builds a logger. Every event carries a run_id so that the lines of
// one run can be told apart in a shared log.
func New(opt Options) Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	var w io.Writer = os.Stderr
	if opt.Writer != nil {
		w = opt.Writer
	}
	if strings.ToLower(opt.Format) != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	runID := opt.RunID
	if runID == "" {
		runID = NewRunID()
	}

	return zerolog.New(w).
		Level(ParseLevel(opt.Level)).
		With().
		Timestamp().
		Str("run_id", runID).
		Logger()
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// ParseLevel supports string-only levels
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Named returns a child logger with a component field
func Named(l Logger, component string) Logger {
	if component == "" {
		return l
	}
	return l.With().Str("component", component).Logger()
}
