package locpatch

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Confirmer approves a whole list of deletions at once.
type Confirmer interface {
	Confirm(files []string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(files []string) (bool, error)

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(files []string) (bool, error) {
	return f(files)
}

// PromptConfirmer lists the files on Out and reads one answer from In.
type PromptConfirmer struct {
	In     io.Reader
	Out    io.Writer
	Accept []string // accepted answers, case-insensitive (default "ja", "yes", "y")
}

// Confirm implements Confirmer.
func (p PromptConfirmer) Confirm(files []string) (bool, error) {
	fmt.Fprintln(p.Out, "Marked for deletion:")
	for _, f := range files {
		fmt.Fprintf(p.Out, "  - %s\n", f)
	}
	fmt.Fprintf(p.Out, "Delete these %d files permanently? (ja/nein): ", len(files))

	answer, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))

	accept := p.Accept
	if len(accept) == 0 {
		accept = []string{"ja", "yes", "y"}
	}
	for _, a := range accept {
		if answer == strings.ToLower(a) {
			return true, nil
		}
	}
	return false, nil
}

// CleanupReport summarizes a cleanup.
type CleanupReport struct {
	Candidates []string
	Confirmed  bool
	Deleted    int
	Errors     []error
}

// CollectCleanup returns every file under root ending in ext whose name does
// not start with prefix.
func CollectCleanup(root, ext, prefix string) ([]string, error) {
	return WalkFiles(root, func(name string) bool {
		return strings.HasSuffix(name, ext) && !strings.HasPrefix(name, prefix)
	})
}

// Cleanup asks c once for the whole list and removes the files only on a yes.
// Deleted is the number of files actually removed.
func Cleanup(files []string, c Confirmer) (*CleanupReport, error) {
	report := &CleanupReport{Candidates: files}
	if len(files) == 0 {
		return report, nil
	}

	ok, err := c.Confirm(files)
	if err != nil {
		return report, fmt.Errorf("reading confirmation: %w", err)
	}
	if !ok {
		return report, nil
	}
	report.Confirmed = true

	for _, f := range files {
		if err := os.Remove(f); err != nil {
			report.Errors = append(report.Errors, &FileError{Op: "delete", Path: f, Cause: err})
			continue
		}
		report.Deleted++
	}

	return report, nil
}
