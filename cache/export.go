package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"
)

// FormatVersion is the translation memory file format version.
const FormatVersion = "1.0"

// ExportFormat represents the JSON structure of a translation memory file.
type ExportFormat struct {
	Version    string            `json:"version"`
	ExportedAt string            `json:"exported_at"`
	Entries    []ExportEntry     `json:"entries"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ExportEntry represents a single stored translation.
type ExportEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Snapshotter is a cache whose live contents can be listed.
type Snapshotter interface {
	Snapshot() map[string]string
}

// Export writes the contents of c as JSON. Entries are sorted by key so
// that repeated exports of the same memory diff cleanly.
func Export(w io.Writer, c Snapshotter, metadata map[string]string) error {
	data := c.Snapshot()
	entries := make([]ExportEntry, 0, len(data))
	for k, v := range data {
		entries = append(entries, ExportEntry{Key: k, Value: v})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })

	export := ExportFormat{
		Version:    FormatVersion,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Entries:    entries,
		Metadata:   metadata,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(export); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// ExportToFile exports c to path.
func ExportToFile(path string, c Snapshotter, metadata map[string]string) error {
	f, err := os.Create(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	if err := Export(f, c, metadata); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ImportResult contains statistics about the import operation.
type ImportResult struct {
	Version  string
	Metadata map[string]string
	Imported int
	Failed   int
}

// Import reads a translation memory file and loads its entries into c.
func Import(ctx context.Context, r io.Reader, c TranslationCache) (*ImportResult, error) {
	var export ExportFormat
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}
	if export.Version != "" && export.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported translation memory version %q", export.Version)
	}

	result := &ImportResult{
		Version:  export.Version,
		Metadata: export.Metadata,
	}

	for _, entry := range export.Entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := c.Set(ctx, entry.Key, entry.Value); err != nil {
			result.Failed++
			continue
		}
		result.Imported++
	}

	return result, nil
}

// ImportFromFile imports a translation memory file. A missing file is not
// an error and imports nothing.
func ImportFromFile(ctx context.Context, path string, c TranslationCache) (*ImportResult, error) {
	f, err := os.Open(path) // #nosec G304 - path is intentionally user-provided
	if os.IsNotExist(err) {
		return &ImportResult{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return Import(ctx, f, c)
}
