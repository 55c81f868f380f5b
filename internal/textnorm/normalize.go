// Package textnorm provides whitespace normalization and noise detection for
// text scraped from profile pages.
package textnorm

import (
	"regexp"
	"strings"
)

// Normalize collapses runs of whitespace into a single space and trims both ends.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// IsNoise reports whether text matches any of the supplied patterns.
func IsNoise(text string, patterns ...*regexp.Regexp) bool {
	for _, p := range patterns {
		if p != nil && p.MatchString(text) {
			return true
		}
	}
	return false
}

// Lines splits rendered text on line breaks and returns the normalized,
// non-empty lines in order.
func Lines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if n := Normalize(line); n != "" {
			lines = append(lines, n)
		}
	}
	return lines
}

// EqualFold compares two strings after normalization, ignoring case.
func EqualFold(a, b string) bool {
	return strings.EqualFold(Normalize(a), Normalize(b))
}
