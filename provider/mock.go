package provider

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ZaguanLabs/locpatch"
)

// MockProvider is a scripted gateway for tests and dry runs.
type MockProvider struct {
	Translations map[string]string // source text -> translation
	Articles     map[string]string // localization key -> article
	Article      string            // article used when a key is not in Articles (default "der")

	FailBatch  bool            // every batch call fails
	ShortBatch bool            // batch calls return one result too few
	FailOne    map[string]bool // single calls for these texts fail

	mu          sync.Mutex
	BatchCalls  int
	SingleCalls int
	Batches     []BatchRequest
	Singles     []SingleRequest
}

// NewMockProvider creates a new mock provider with default translations.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"Hello":               "Hallo",
			"World":               "Welt",
			"The King":            "Der König",
			"Frodo Baggins":       "Frodo Beutlin",
			"Swear fealty":        "Lehnseid leisten",
			"Ruler of [GetTitle]": "Herrscher von [GetTitle]",
		},
		Articles: map[string]string{},
		FailOne:  map[string]bool{},
	}
}

// TranslateBatch returns mock results for every text.
func (m *MockProvider) TranslateBatch(ctx context.Context, req BatchRequest) ([]string, error) {
	m.mu.Lock()
	m.BatchCalls++
	m.Batches = append(m.Batches, req)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.FailBatch {
		return nil, &locpatch.ProviderError{Message: "mock batch failure", Retryable: false}
	}

	results := make([]string, len(req.Texts))
	for i := range req.Texts {
		results[i] = m.answer(req.Single(i))
	}
	if m.ShortBatch && len(results) > 0 {
		results = results[:len(results)-1]
	}
	return results, nil
}

// TranslateOne returns the mock result for one text.
func (m *MockProvider) TranslateOne(ctx context.Context, req SingleRequest) (string, error) {
	m.mu.Lock()
	m.SingleCalls++
	m.Singles = append(m.Singles, req)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.FailOne[req.Text] {
		return "", &locpatch.ProviderError{Message: "mock single failure", Retryable: false}
	}
	return m.answer(req), nil
}

func (m *MockProvider) answer(req SingleRequest) string {
	switch req.Mode {
	case locpatch.ModeArticle:
		if a, ok := m.Articles[req.Key]; ok {
			return a
		}
		return m.article()
	case locpatch.ModePhrase:
		rest := strings.TrimSpace(strings.Replace(req.Text, locpatch.ArticlePlaceholder, "", 1))
		if t, ok := m.Translations[rest]; ok {
			rest = t
		}
		return m.article() + " " + rest
	}

	if t, ok := m.Translations[req.Text]; ok {
		return t
	}
	// Return bracketed text for unknown translations
	return fmt.Sprintf("[%s]", req.Text)
}

func (m *MockProvider) article() string {
	if m.Article != "" {
		return m.Article
	}
	return "der"
}

// Calls returns the number of batch and single calls so far.
func (m *MockProvider) Calls() (batch, single int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.BatchCalls, m.SingleCalls
}

// Reset clears call counters and recorded requests.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BatchCalls = 0
	m.SingleCalls = 0
	m.Batches = nil
	m.Singles = nil
}

// Verify MockProvider implements Gateway
var _ Gateway = (*MockProvider)(nil)
