package locpatch

import "strings"

// LineChange is one line the pipeline rewrote.
type LineChange struct {
	Line int // 1-based
	Old  string
	New  string
}

// DiffResult represents the difference between a file and its rewrite.
type DiffResult struct {
	Changes   []LineChange
	Unchanged int
}

// DiffStats contains summary statistics for a diff.
type DiffStats struct {
	Changed   int
	Unchanged int
}

// Stats returns summary statistics for the diff.
func (d *DiffResult) Stats() DiffStats {
	return DiffStats{Changed: len(d.Changes), Unchanged: d.Unchanged}
}

// HasChanges returns true if any line differs.
func (d *DiffResult) HasChanges() bool {
	return len(d.Changes) > 0
}

// DiffLines compares two versions of a file line by line. The pipeline never
// adds or removes lines, so lines are matched by position; extra lines on
// either side count as changes. Terminators are ignored.
func DiffLines(oldLines, newLines []string) *DiffResult {
	result := &DiffResult{}

	n := max(len(oldLines), len(newLines))
	for i := 0; i < n; i++ {
		var o, nw string
		if i < len(oldLines) {
			o = strings.TrimRight(oldLines[i], "\r\n")
		}
		if i < len(newLines) {
			nw = strings.TrimRight(newLines[i], "\r\n")
		}
		if o == nw && i < len(oldLines) && i < len(newLines) {
			result.Unchanged++
			continue
		}
		result.Changes = append(result.Changes, LineChange{Line: i + 1, Old: o, New: nw})
	}

	return result
}
