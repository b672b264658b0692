package locpatch

// Default markers used in Paradox localization files.
const (
	// ProcessedMarker is appended to every rewritten line. A line carrying it
	// is never sent to the gateway again.
	ProcessedMarker = "#~TR~"

	// ArticlePlaceholder marks a German definite article that still has to
	// be chosen ("$the_$ King of Gondor").
	ArticlePlaceholder = "$the_$"

	// VariableDelimiter wraps in-text variable references ("$ROOT$").
	VariableDelimiter = "$"
)

// Route is the outcome of classifying a value.
type Route string

const (
	// RouteSkipEmpty means the value is empty; nothing to translate.
	RouteSkipEmpty Route = "skip_empty"
	// RouteSkipVariable means the value is a pure variable reference.
	RouteSkipVariable Route = "skip_variable"
	// RouteArticle means the value is the bare article placeholder and the
	// key is used to infer the noun's gender.
	RouteArticle Route = "article"
	// RoutePhrase means the placeholder sits inside a longer phrase.
	RoutePhrase Route = "phrase"
	// RouteTranslate means the value is translated as a whole.
	RouteTranslate Route = "translate"
)

// Sends reports whether values with this route go to the gateway.
func (r Route) Sends() bool {
	switch r {
	case RouteArticle, RoutePhrase, RouteTranslate:
		return true
	}
	return false
}

// sendRoutes lists the gateway routes in flush order.
var sendRoutes = []Route{RouteTranslate, RouteArticle, RoutePhrase}

// Line is one parsed localization line.
type Line struct {
	Index      int    // 0-based position in the file
	Raw        string // original text without the line terminator
	EOL        string // original terminator ("\n", "\r\n" or "")
	KeyPart    string // key, optional ":version" and trailing whitespace
	Key        string // bare key, without version
	Value      string // unescaped value text
	HasValue   bool
	Comment    string // trailing comment with its leading whitespace, marker removed
	HasComment bool
	Processed  bool // line carried ProcessedMarker
}

// Unit is a single value scheduled for the gateway.
type Unit struct {
	Line  Line
	Text  string // text sent to the gateway
	Key   string // context key
	File  string // context file name
	Route Route
}

// FailureRecord describes a unit that could not be translated.
type FailureRecord struct {
	File string
	Line int // 1-based
	Text string
}

// FileResult is the outcome of running the pipeline over one file's lines.
type FileResult struct {
	Lines      []string // output lines including terminators
	Changed    bool
	Units      int // values scheduled for the gateway
	Translated int
	Failed     int
	Skipped    int // values skipped by the classifier or the marker
	Batches    int // TranslateBatch calls made
	Failures   []FailureRecord
}
