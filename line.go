package locpatch

import (
	"regexp"
	"strings"
)

// linePattern matches `key[:version] "value" #comment`.
//
// Groups: 1 key and version, 2 whitespace before the value, 3 quoted value,
// 4 trailing comment. A comment never contains a double quote, so the value
// runs up to the last quote that is followed by nothing but an optional
// quote-free comment.
var linePattern = regexp.MustCompile(`^(\s*[^#\s"][^"]*?:\d*)(\s*)("(?:.*?)")?(\s*#[^"]*)?$`)

// ParseLine parses one raw line. The terminator, if present, is kept in EOL.
// It returns false when the line does not follow the key/value shape.
func ParseLine(index int, raw string) (Line, bool) {
	body, eol := splitEOL(raw)
	line := Line{
		Index:     index,
		Raw:       body,
		EOL:       eol,
		Processed: strings.Contains(body, ProcessedMarker),
	}

	m := linePattern.FindStringSubmatch(body)
	if m == nil {
		return line, false
	}

	line.KeyPart = m[1] + m[2]
	line.Key = bareKey(m[1])

	if m[3] != "" {
		line.HasValue = true
		line.Value = UnescapeValue(m[3][1 : len(m[3])-1])
	}

	if comment := stripMarker(m[4]); comment != "" {
		line.Comment = comment
		line.HasComment = true
	}

	return line, true
}

// ParseLines parses every line of a file. Non-matching lines are returned
// with ok=false in the parallel slice.
func ParseLines(raw []string) ([]Line, []bool) {
	lines := make([]Line, len(raw))
	ok := make([]bool, len(raw))
	for i, r := range raw {
		lines[i], ok[i] = ParseLine(i, r)
	}
	return lines, ok
}

// SplitLines splits content into lines, keeping each terminator.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.SplitAfter(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func splitEOL(raw string) (string, string) {
	switch {
	case strings.HasSuffix(raw, "\r\n"):
		return raw[:len(raw)-2], "\r\n"
	case strings.HasSuffix(raw, "\n"):
		return raw[:len(raw)-1], "\n"
	}
	return raw, ""
}

// bareKey drops indentation and the ":version" suffix.
func bareKey(keyPart string) string {
	key := strings.TrimSpace(keyPart)
	if idx := strings.LastIndex(key, ":"); idx >= 0 {
		key = key[:idx]
	}
	return strings.TrimSpace(key)
}

// stripMarker removes a trailing processed marker from a comment. It returns
// "" when nothing but whitespace is left.
func stripMarker(comment string) string {
	c := strings.TrimRight(comment, " \t")
	if strings.HasSuffix(c, ProcessedMarker) {
		c = strings.TrimRight(strings.TrimSuffix(c, ProcessedMarker), " \t")
	}
	if strings.TrimSpace(c) == "" {
		return ""
	}
	return c
}
