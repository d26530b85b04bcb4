package grading

import "strings"

// normalizeShortAnswer trims first (when asked) and then lower-cases unless the
// question is case sensitive.
func normalizeShortAnswer(s string, trim, caseSensitive bool) string {
	if trim {
		s = strings.TrimSpace(s)
	}
	if !caseSensitive {
		s = strings.ToLower(s)
	}
	return s
}

// normalizeBlank lower-cases unless the blank is case sensitive, then trims.
func normalizeBlank(s string, caseSensitive bool) string {
	if !caseSensitive {
		s = strings.ToLower(s)
	}
	return strings.TrimSpace(s)
}
