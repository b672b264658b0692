package locpatch

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// RenameReport summarizes a rename run.
type RenameReport struct {
	Renamed []string // new paths
	Skipped []string // files whose header did not match
	Errors  []error
}

// RenameTree turns every "<name>_<from>.yml" under root into
// "<name>_<to>.yml", rewriting the "l_<from>:" header to "l_<to>:". The new
// file is written with a byte-order mark before the old one is removed.
// Files without the expected header are left alone.
func RenameTree(root, from, to string, log zerolog.Logger) (*RenameReport, error) {
	fromSuffix, toSuffix := FileSuffix(from), FileSuffix(to)
	fromHeader, toHeader := Header(from), Header(to)

	files, walkErr := WalkFiles(root, HasSuffix(fromSuffix))
	if files == nil && walkErr != nil {
		return nil, walkErr
	}

	report := &RenameReport{}
	if walkErr != nil {
		report.Errors = append(report.Errors, walkErr)
	}

	for _, oldPath := range files {
		newPath, err := renameFile(oldPath, fromSuffix, toSuffix, fromHeader, toHeader)
		switch {
		case errors.Is(err, errHeaderMismatch):
			log.Debug().Str("file", oldPath).Msg("header mismatch, skipping")
			report.Skipped = append(report.Skipped, oldPath)
		case err != nil:
			log.Error().Err(err).Str("file", oldPath).Msg("rename failed")
			report.Errors = append(report.Errors, err)
		default:
			log.Info().Str("from", oldPath).Str("to", newPath).Msg("renamed")
			report.Renamed = append(report.Renamed, newPath)
		}
	}

	return report, nil
}

var errHeaderMismatch = errors.New("header mismatch")

func renameFile(oldPath, fromSuffix, toSuffix, fromHeader, toHeader string) (string, error) {
	lines, err := ReadLines(oldPath)
	if err != nil {
		return "", err
	}
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != fromHeader {
		return "", errHeaderMismatch
	}

	_, eol := splitEOL(lines[0])
	if eol == "" {
		eol = "\n"
	}
	lines[0] = toHeader + eol

	dir, name := filepath.Split(oldPath)
	newPath := filepath.Join(dir, strings.TrimSuffix(name, fromSuffix)+toSuffix)

	if err := WriteLines(newPath, lines); err != nil {
		return "", err
	}
	if err := os.Remove(oldPath); err != nil {
		return newPath, &FileError{Op: "delete", Path: oldPath, Cause: err}
	}
	return newPath, nil
}
