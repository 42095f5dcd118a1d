package utils

import (
	"strings"
	"unicode/utf8"
)

// Truncate shortens s to at most maxLen characters (runes, not bytes).
// A maxLen of zero or less means unlimited.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen])
}

// CollapseWhitespace replaces every run of whitespace in s with sep and trims
// leading and trailing whitespace.
func CollapseWhitespace(s, sep string) string {
	return strings.Join(strings.Fields(s), sep)
}

// SplitFields splits s on whitespace and drops duplicates, keeping first occurrence order.
func SplitFields(s string) []string {
	fields := strings.Fields(s)
	seen := make(map[string]struct{}, len(fields))
	out := fields[:0]
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
