package locpatch

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func cleanupTree(t *testing.T) (string, []string) {
	t.Helper()
	root := t.TempDir()
	writeTemp(t, filepath.Join(root, "lotr_keep_german.yml"), "")
	writeTemp(t, filepath.Join(root, "vanilla_german.yml"), "")
	writeTemp(t, filepath.Join(root, "sub", "other_german.yml"), "")
	writeTemp(t, filepath.Join(root, "readme.txt"), "")

	files, err := CollectCleanup(root, ".yml", "lotr_")
	if err != nil {
		t.Fatal(err)
	}
	return root, files
}

func TestCollectCleanup(t *testing.T) {
	root, files := cleanupTree(t)
	want := []string{filepath.Join(root, "sub", "other_german.yml"), filepath.Join(root, "vanilla_german.yml")}
	if len(files) != 2 || files[0] != want[0] || files[1] != want[1] {
		t.Errorf("files = %v, want %v", files, want)
	}
}

func TestCleanup_Declined(t *testing.T) {
	_, files := cleanupTree(t)
	var out bytes.Buffer

	report, err := Cleanup(files, PromptConfirmer{In: strings.NewReader("nein\n"), Out: &out})
	if err != nil {
		t.Fatal(err)
	}
	if report.Confirmed || report.Deleted != 0 {
		t.Errorf("nothing should be deleted: %+v", report)
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			t.Errorf("%s was removed", f)
		}
	}
	if !strings.Contains(out.String(), "Delete these 2 files permanently?") {
		t.Errorf("unexpected prompt %q", out.String())
	}
}

func TestCleanup_Confirmed(t *testing.T) {
	root, files := cleanupTree(t)

	report, err := Cleanup(files, PromptConfirmer{In: strings.NewReader(" JA \n"), Out: &bytes.Buffer{}})
	if err != nil {
		t.Fatal(err)
	}
	if !report.Confirmed || report.Deleted != len(files) {
		t.Errorf("unexpected report: %+v", report)
	}
	if _, err := os.Stat(filepath.Join(root, "lotr_keep_german.yml")); err != nil {
		t.Error("prefixed file should be kept")
	}
}

func TestCleanup_DeleteErrorCounted(t *testing.T) {
	_, files := cleanupTree(t)
	os.Remove(files[0])

	report, _ := Cleanup(files, ConfirmFunc(func([]string) (bool, error) { return true, nil }))
	if report.Deleted != len(files)-1 || len(report.Errors) != 1 {
		t.Errorf("expected one error and %d deletions: %+v", len(files)-1, report)
	}
}

func TestCleanup_NoCandidates(t *testing.T) {
	called := false
	report, err := Cleanup(nil, ConfirmFunc(func([]string) (bool, error) {
		called = true
		return true, nil
	}))
	if err != nil || called || report.Deleted != 0 {
		t.Error("empty list should not ask")
	}
}

func TestCleanup_ConfirmError(t *testing.T) {
	_, files := cleanupTree(t)
	_, err := Cleanup(files, ConfirmFunc(func([]string) (bool, error) {
		return false, errors.New("closed")
	}))
	if err == nil {
		t.Error("expected an error")
	}
}

func TestPromptConfirmer_CustomAnswers(t *testing.T) {
	p := PromptConfirmer{In: strings.NewReader("oui"), Out: &bytes.Buffer{}, Accept: []string{"oui"}}
	ok, err := p.Confirm([]string{"a"})
	if err != nil || !ok {
		t.Errorf("Confirm = %v, %v", ok, err)
	}
}
