package locpatch

import (
	"os"
	"path/filepath"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReadLines reads a UTF-8 file, dropping a leading byte-order mark, and
// splits it into lines that keep their terminators.
func ReadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path) // #nosec G304 - paths come from the walked tree
	if err != nil {
		return nil, &FileError{Op: "read", Path: path, Cause: err}
	}
	decoded, _, err := transform.Bytes(unicode.UTF8BOM.NewDecoder(), data)
	if err != nil {
		return nil, &FileError{Op: "read", Path: path, Cause: err}
	}
	return SplitLines(string(decoded)), nil
}

// WriteLines writes lines as UTF-8 with a byte-order mark. The content goes
// to a temporary file in the same directory which then replaces path, so a
// failed write never leaves a half-written file behind.
func WriteLines(path string, lines []string) error {
	var content []byte
	for _, l := range lines {
		content = append(content, l...)
	}
	encoded, _, err := transform.Bytes(unicode.UTF8BOM.NewEncoder(), content)
	if err != nil {
		return &FileError{Op: "write", Path: path, Cause: err}
	}

	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".locpatch-*")
	if err != nil {
		return &FileError{Op: "write", Path: path, Cause: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(encoded); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &FileError{Op: "write", Path: path, Cause: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &FileError{Op: "write", Path: path, Cause: err}
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return &FileError{Op: "write", Path: path, Cause: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &FileError{Op: "rename", Path: path, Cause: err}
	}
	return nil
}
