package locpatch

import "context"

// Mode tells the gateway what to do with the texts.
type Mode string

const (
	// ModeTranslate translates the full text.
	ModeTranslate Mode = "translate"
	// ModeArticle picks the article for a bare placeholder, using the key
	// to infer the noun.
	ModeArticle Mode = "article"
	// ModePhrase replaces the placeholder inside a phrase and keeps the rest.
	ModePhrase Mode = "phrase"
)

// modeFor maps a gateway route to its mode.
func modeFor(r Route) Mode {
	switch r {
	case RouteArticle:
		return ModeArticle
	case RoutePhrase:
		return ModePhrase
	}
	return ModeTranslate
}

// Gateway is the interface for AI translation backends. Implementations
// keep no state between calls.
type Gateway interface {
	// TranslateBatch returns one result per text, in order. Any failure,
	// including a result count mismatch, fails the whole batch.
	TranslateBatch(ctx context.Context, req BatchRequest) ([]string, error)

	// TranslateOne handles a single text. It is the recovery path for
	// failed batches.
	TranslateOne(ctx context.Context, req SingleRequest) (string, error)
}

// BatchRequest contains the parameters for a batch call.
type BatchRequest struct {
	Mode       Mode
	File       string   // file the texts come from, for context
	Texts      []string // texts in file order
	Keys       []string // localization key of each text
	SourceLang string
	TargetLang string
}

// SingleRequest contains the parameters for a single-text call.
type SingleRequest struct {
	Mode       Mode
	File       string
	Text       string
	Key        string
	SourceLang string
	TargetLang string
}

// Single returns the request for the i-th text of the batch.
func (r BatchRequest) Single(i int) SingleRequest {
	req := SingleRequest{
		Mode:       r.Mode,
		File:       r.File,
		Text:       r.Texts[i],
		SourceLang: r.SourceLang,
		TargetLang: r.TargetLang,
	}
	if i < len(r.Keys) {
		req.Key = r.Keys[i]
	}
	return req
}
