package helpers

import "strings"

// TruncateRunes returns at most n runes of s.
func TruncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// CollapseWhitespace replaces every run of whitespace with a single
// space and trims the result.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
