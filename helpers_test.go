package locpatch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// fakeGateway is a scripted Gateway. Without hooks it prefixes every text
// with "de:".
type fakeGateway struct {
	batch func(BatchRequest) ([]string, error)
	one   func(SingleRequest) (string, error)

	mu       sync.Mutex
	batches  []BatchRequest
	singles  []SingleRequest
	batchErr error
}

func (g *fakeGateway) TranslateBatch(ctx context.Context, req BatchRequest) ([]string, error) {
	g.mu.Lock()
	g.batches = append(g.batches, req)
	g.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if g.batch != nil {
		return g.batch(req)
	}
	if g.batchErr != nil {
		return nil, g.batchErr
	}
	out := make([]string, len(req.Texts))
	for i, text := range req.Texts {
		out[i] = "de:" + text
	}
	return out, nil
}

func (g *fakeGateway) TranslateOne(ctx context.Context, req SingleRequest) (string, error) {
	g.mu.Lock()
	g.singles = append(g.singles, req)
	g.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if g.one != nil {
		return g.one(req)
	}
	return "de:" + req.Text, nil
}

func (g *fakeGateway) calls() (batch, single int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.batches), len(g.singles)
}

// memorySink collects failure records.
type memorySink struct {
	records []FailureRecord
}

func (s *memorySink) Append(rec FailureRecord) error {
	s.records = append(s.records, rec)
	return nil
}

// lines builds raw lines with "\n" terminators.
func lines(ls ...string) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l + "\n"
	}
	return out
}

func joined(ls []string) string {
	return strings.Join(ls, "")
}

func writeTemp(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readTemp(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}
