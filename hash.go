package locpatch

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashText computes the SHA-256 hash of text. Whitespace is significant:
// Paradox values often carry meaningful leading or trailing spaces.
func HashText(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:])
}

// CacheKey builds the translation memory key for one text. Article results
// depend on the localization key, so it is part of the key in that mode.
func CacheKey(mode Mode, text, key, targetLang string) string {
	if mode == ModeArticle {
		return string(mode) + ":" + targetLang + ":" + HashText(key+"\x00"+text)
	}
	return string(mode) + ":" + targetLang + ":" + HashText(text)
}
