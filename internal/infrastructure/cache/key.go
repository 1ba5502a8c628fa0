package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Key builds a content-addressed cache key from an operation name and its raw
// input text. The input is normalized (lowercased, whitespace collapsed) so
// that cosmetic differences in crawled text still hit the same entry.
func Key(operation, input string) string {
	normalized := whitespaceRegex.ReplaceAllString(strings.ToLower(strings.TrimSpace(input)), " ")

	h := sha256.New()
	h.Write([]byte(operation))
	h.Write([]byte{0})
	h.Write([]byte(normalized))
	return operation + ":" + hex.EncodeToString(h.Sum(nil))
}
