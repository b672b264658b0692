package locpatch

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
)

// WalkFiles returns every regular file under root whose base name satisfies
// match, in lexical order. Unreadable directories are skipped and reported
// in the joined error; the files found elsewhere are still returned.
func WalkFiles(root string, match func(name string) bool) ([]string, error) {
	var files []string
	var errs []error

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			errs = append(errs, &FileError{Op: "walk", Path: path, Cause: err})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && match(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, &FileError{Op: "walk", Path: root, Cause: err}
	}

	return files, errors.Join(errs...)
}

// HasSuffix returns a matcher for names ending in suffix.
func HasSuffix(suffix string) func(string) bool {
	return func(name string) bool {
		return strings.HasSuffix(name, suffix)
	}
}
