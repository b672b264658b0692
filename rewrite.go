package locpatch

import "strings"

var (
	valueEscaper   = strings.NewReplacer(`"`, `""`, "\r\n", `\n`, "\n", `\n`)
	valueUnescaper = strings.NewReplacer(`""`, `"`)
)

// EscapeValue prepares text for a quoted value: quotes are doubled and
// newlines become the two-character sequence \n.
func EscapeValue(text string) string {
	return valueEscaper.Replace(text)
}

// UnescapeValue reverses quote doubling.
func UnescapeValue(quoted string) string {
	return valueUnescaper.Replace(quoted)
}

// Rewrite rebuilds a line around a new value. Key, version and comment are
// kept verbatim and the processed marker is appended exactly once.
func Rewrite(line Line, text string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(line.KeyPart, " \t"))
	b.WriteString(` "`)
	b.WriteString(EscapeValue(text))
	b.WriteByte('"')
	if line.HasComment {
		b.WriteString(line.Comment)
	}
	b.WriteString("  ")
	b.WriteString(ProcessedMarker)
	b.WriteString(line.EOL)
	return b.String()
}

// keepSpacing wraps corrected in the leading and trailing whitespace of
// original. Article and phrase corrections replace words, not spacing.
func keepSpacing(original, corrected string) string {
	trimmed := strings.TrimSpace(corrected)
	lead := original[:len(original)-len(strings.TrimLeft(original, " \t"))]
	trail := original[len(strings.TrimRight(original, " \t")):]
	return lead + trimmed + trail
}
