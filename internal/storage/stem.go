package storage

import (
	"regexp"
	"strings"
)

var (
	nonWordChars   = regexp.MustCompile(`[^\w\s]`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// Stem derives a filesystem-safe name stem from a story title: every
// character that is not a word character or whitespace is dropped, then
// whitespace runs collapse to a single underscore.
func Stem(title string) string {
	cleaned := nonWordChars.ReplaceAllString(title, "")
	cleaned = strings.TrimSpace(cleaned)
	return whitespaceRuns.ReplaceAllString(cleaned, "_")
}
