package locpatch

import "strings"

// Classifier decides what happens to a value. The zero value uses
// ArticlePlaceholder and VariableDelimiter.
type Classifier struct {
	Placeholder string
	Delimiter   string
}

// DefaultClassifier returns a classifier with the default markers.
func DefaultClassifier() Classifier {
	return Classifier{Placeholder: ArticlePlaceholder, Delimiter: VariableDelimiter}
}

// Classify routes a value. It is pure: the same value and key always give
// the same route.
func (c Classifier) Classify(value, key string) Route {
	placeholder := c.Placeholder
	if placeholder == "" {
		placeholder = ArticlePlaceholder
	}
	delim := c.Delimiter
	if delim == "" {
		delim = VariableDelimiter
	}

	// The placeholder itself has the variable shape, so it is checked first.
	switch {
	case value == "":
		return RouteSkipEmpty
	case strings.TrimSpace(value) == placeholder && key != "":
		return RouteArticle
	case strings.Contains(value, placeholder):
		return RoutePhrase
	case isPureVariable(value, delim):
		return RouteSkipVariable
	}
	return RouteTranslate
}

// isPureVariable reports whether value is "$NAME$": wrapped by the delimiter
// on both sides with no other delimiter inside.
func isPureVariable(value, delim string) bool {
	if len(value) < 2*len(delim) {
		return false
	}
	return strings.HasPrefix(value, delim) &&
		strings.HasSuffix(value, delim) &&
		strings.Count(value, delim) == 2
}
