package utils

import (
	"strings"
	"unicode"
)

// CountWords counts whitespace-separated tokens in text.
// Empty and whitespace-only text has zero words.
func CountWords(text string) int {
	return len(strings.FieldsFunc(text, unicode.IsSpace))
}
