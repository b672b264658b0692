package locpatch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestReadLines_StripsBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a_german.yml")
	if err := os.WriteFile(path, []byte("\ufeffl_german:\r\n k:0 \"v\""), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadLines(path)
	if err != nil {
		t.Fatalf("ReadLines failed: %v", err)
	}
	if len(got) != 2 || got[0] != "l_german:\r\n" || got[1] != ` k:0 "v"` {
		t.Errorf("unexpected lines %q", got)
	}
}

func TestReadLines_NoBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.yml")
	os.WriteFile(path, []byte("l_german:\n"), 0o644)

	got, err := ReadLines(path)
	if err != nil || len(got) != 1 || got[0] != "l_german:\n" {
		t.Errorf("ReadLines = %q, %v", got, err)
	}
}

func TestReadLines_Missing(t *testing.T) {
	_, err := ReadLines(filepath.Join(t.TempDir(), "nope.yml"))
	var fe *FileError
	if !errors.As(err, &fe) || fe.Op != "read" {
		t.Errorf("expected read FileError, got %v", err)
	}
}

func TestWriteLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.yml")
	os.WriteFile(path, []byte("old"), 0o600)

	if err := WriteLines(path, []string{"l_german:\n", ` k:0 "v"` + "\n"}); err != nil {
		t.Fatalf("WriteLines failed: %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "\ufeffl_german:\n k:0 \"v\"\n" {
		t.Errorf("unexpected content %q", data)
	}

	info, _ := os.Stat(path)
	if info.Mode().Perm() != 0o600 {
		t.Errorf("permissions not kept: %v", info.Mode().Perm())
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temporary file left behind: %d entries", len(entries))
	}

	back, _ := ReadLines(path)
	if len(back) != 2 || back[0] != "l_german:\n" {
		t.Errorf("round trip failed: %q", back)
	}
}

func TestWriteLines_SingleBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.yml")
	lines, _ := ReadLines(writeTemp(t, path, "\ufeffl_german:\n"))

	if err := WriteLines(path, lines); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "\ufeffl_german:\n" {
		t.Errorf("BOM should appear once, got %q", data)
	}
}
