// Package normalize holds the equivalence normalizations shared by the aligner and
// the comparator rules.
package normalize

import (
	"strings"
	"unicode"
)

// Model trims surrounding whitespace. Model numbers are otherwise compared exactly.
func Model(s string) string {
	return strings.TrimSpace(s)
}

// Tag strips dashes and whitespace and folds case, so "SR1-01-XT-9025B" and
// "sr1 01 xt 9025b" normalize identically.
func Tag(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.Is(unicode.Pd, r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// Whitespace collapses runs of whitespace to single spaces and trims the ends.
func Whitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// PONumber drops a leading factory order segment ending in delim, then trims.
// "FO-88213/4500012345" becomes "4500012345". An empty delim disables stripping.
func PONumber(s, delim string) string {
	s = strings.TrimSpace(s)
	if delim == "" {
		return s
	}
	if i := strings.Index(s, delim); i > 0 {
		s = s[i+len(delim):]
	}
	return strings.TrimSpace(s)
}

// TagSet returns the distinct normalized tags in first-seen order.
func TagSet(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	var out []string
	for _, t := range tags {
		n := Tag(t)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
