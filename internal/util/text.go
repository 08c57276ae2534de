package util

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// SafeFileName replaces every character outside [a-zA-Z0-9._-] with '_'
func SafeFileName(name string) string {
	if name == "" {
		return "upload"
	}
	return unsafeFileChars.ReplaceAllString(name, "_")
}

// CharLen counts characters rather than bytes
func CharLen(s string) int {
	return utf8.RuneCountInString(s)
}

// TrimmedWithin trims s and reports whether the result has 1..max characters
func TrimmedWithin(s string, max int) (string, bool) {
	s = strings.TrimSpace(s)
	n := CharLen(s)
	return s, n > 0 && n <= max
}
