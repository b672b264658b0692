package locpatch

import "strings"

// LanguageNames maps Paradox language identifiers (as used in file suffixes
// and "l_<lang>:" headers) to names for AI prompts.
var LanguageNames = map[string]string{
	"english":      "English",
	"german":       "German",
	"french":       "French",
	"spanish":      "Spanish",
	"russian":      "Russian",
	"polish":       "Polish",
	"braz_por":     "Brazilian Portuguese",
	"korean":       "Korean",
	"japanese":     "Japanese",
	"simp_chinese": "Simplified Chinese",
	"turkish":      "Turkish",
}

// ShortCodeToLanguage maps ISO codes to Paradox language identifiers.
var ShortCodeToLanguage = map[string]string{
	"en": "english",
	"de": "german",
	"fr": "french",
	"es": "spanish",
	"ru": "russian",
	"pl": "polish",
	"pt": "braz_por",
	"ko": "korean",
	"ja": "japanese",
	"zh": "simp_chinese",
	"tr": "turkish",
}

// NormalizeLanguage returns the Paradox identifier for lang. It accepts
// identifiers ("german"), "l_german" headers and ISO codes ("de", "de_DE").
func NormalizeLanguage(lang string) string {
	l := strings.ToLower(strings.TrimSpace(lang))
	l = strings.TrimSuffix(strings.TrimPrefix(l, "l_"), ":")
	if _, ok := LanguageNames[l]; ok {
		return l
	}
	base := strings.Split(strings.ReplaceAll(l, "-", "_"), "_")[0]
	if id, ok := ShortCodeToLanguage[base]; ok {
		return id
	}
	return l
}

// GetLanguageName returns the human-readable name for a language.
// Falls back to the input if not found.
func GetLanguageName(lang string) string {
	if name, ok := LanguageNames[NormalizeLanguage(lang)]; ok {
		return name
	}
	return lang
}

// IsKnownLanguage reports whether lang maps to a Paradox language.
func IsKnownLanguage(lang string) bool {
	_, ok := LanguageNames[NormalizeLanguage(lang)]
	return ok
}

// FileSuffix returns the localization file suffix for a language
// ("german" → "_german.yml").
func FileSuffix(lang string) string {
	return "_" + NormalizeLanguage(lang) + ".yml"
}

// Header returns the first-line header for a language ("german" → "l_german:").
func Header(lang string) string {
	return "l_" + NormalizeLanguage(lang) + ":"
}
