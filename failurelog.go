package locpatch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// DefaultFailureLog is the failure log file name.
const DefaultFailureLog = "translation_errors.log"

// FailureLog appends failed units to a text file, one line each.
type FailureLog struct {
	path string
}

// NewFailureLog creates a failure log at path.
func NewFailureLog(path string) *FailureLog {
	if path == "" {
		path = DefaultFailureLog
	}
	return &FailureLog{path: path}
}

// Path returns the log file path.
func (l *FailureLog) Path() string {
	return l.path
}

// Reset removes the log. A missing file is not an error.
func (l *FailureLog) Reset() error {
	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &FileError{Op: "delete", Path: l.path, Cause: err}
	}
	return nil
}

// Append implements FailureSink.
func (l *FailureLog) Append(rec FailureRecord) error {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return &FileError{Op: "write", Path: l.path, Cause: err}
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, FormatFailure(rec)); err != nil {
		return &FileError{Op: "write", Path: l.path, Cause: err}
	}
	return nil
}

// Exists reports whether anything was logged.
func (l *FailureLog) Exists() bool {
	_, err := os.Stat(l.path)
	return err == nil
}

// FormatFailure renders a record as a log line.
func FormatFailure(rec FailureRecord) string {
	return fmt.Sprintf("File: %s, Line: %d, Text: %s", rec.File, rec.Line, rec.Text)
}

// Verify FailureLog implements FailureSink
var _ FailureSink = (*FailureLog)(nil)
