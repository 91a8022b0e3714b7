package classify

import (
	"sort"
	"strings"

	"ordercheck/internal/domain"
)

type candidate struct {
	role     domain.FieldRole
	keyword  string
	start    int
	end      int
	value    string
	hasValue bool
	order    int
}

// Match finds the role hits in text. Candidates are taken left to right; at the same
// position the longest wins and anything overlapping an accepted hit is discarded.
// Each hit's value runs from its end to the start of the next accepted hit.
func (c *Classifier) Match(text string) []domain.RoleMatch {
	lower := asciiLower(text)
	var cands []candidate

	for _, kw := range c.vocab.Keywords() {
		for from := 0; from < len(lower); {
			i := strings.Index(lower[from:], kw.Text)
			if i < 0 {
				break
			}
			start := from + i
			end := start + len(kw.Text)
			if atBoundary(lower, start, end) {
				cands = append(cands, candidate{role: kw.Role, keyword: kw.Text, start: start, end: end, order: len(cands)})
			}
			from = start + 1
		}
	}

	for _, p := range c.vocab.Patterns() {
		for _, loc := range p.Expr.FindAllStringSubmatchIndex(text, -1) {
			if loc[1] == loc[0] {
				continue
			}
			cand := candidate{role: p.Role, keyword: text[loc[0]:loc[1]], start: loc[0], end: loc[1], order: len(cands)}
			if len(loc) >= 4 && loc[2] >= 0 {
				cand.value = strings.TrimSpace(text[loc[2]:loc[3]])
				cand.hasValue = true
			}
			cands = append(cands, cand)
		}
	}

	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.start != b.start {
			return a.start < b.start
		}
		if la, lb := a.end-a.start, b.end-b.start; la != lb {
			return la > lb
		}
		return a.order < b.order
	})

	var accepted []candidate
	for _, cand := range cands {
		if len(accepted) > 0 && cand.start < accepted[len(accepted)-1].end {
			continue
		}
		accepted = append(accepted, cand)
	}

	matches := make([]domain.RoleMatch, 0, len(accepted))
	for i, cand := range accepted {
		value := cand.value
		if !cand.hasValue {
			stop := len(text)
			if i+1 < len(accepted) {
				stop = accepted[i+1].start
			}
			value = cleanValue(text[cand.end:stop])
		}
		matches = append(matches, domain.RoleMatch{
			Role:    cand.role,
			Keyword: cand.keyword,
			Value:   value,
			Start:   cand.start,
			End:     cand.end,
		})
	}
	if len(matches) == 0 {
		return nil
	}
	return matches
}

// atBoundary reports whether s[start:end] is not glued to a neighbouring letter or digit.
// Keyword edges that are punctuation ("po #") need no boundary.
func atBoundary(s string, start, end int) bool {
	if isAlnum(s[start]) && start > 0 && isAlnum(s[start-1]) {
		return false
	}
	if isAlnum(s[end-1]) && end < len(s) && isAlnum(s[end]) {
		return false
	}
	return true
}

func isAlnum(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b >= 0x80
}

// asciiLower lowercases ASCII letters only so byte offsets stay valid for the original text.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func cleanValue(s string) string {
	s = strings.TrimLeft(s, " \t:#.=|")
	return strings.TrimRight(s, " \t,;|")
}
