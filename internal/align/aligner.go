package align

import (
	"fmt"

	"ordercheck/internal/domain"
	"ordercheck/internal/normalize"
)

// Mode names the strategy used for one alignment.
type Mode string

const (
	ModeNumbered   Mode = "numbered"
	ModePositional Mode = "positional"
)

// Result is an ordered pairing of two item lists.
type Result struct {
	Mode     Mode
	Pairs    []domain.AlignedPair
	Warnings []domain.Warning
}

// Aligner pairs OA items with PO items. Every item lands in exactly one pair and
// pairs never cross.
type Aligner struct {
	window int
}

// NewAligner creates an Aligner. Items whose line ranges are at most window numbers
// apart may still be paired; zero requires overlapping ranges.
func NewAligner(window int) *Aligner {
	if window < 0 {
		window = 0
	}
	return &Aligner{window: window}
}

// Align pairs oa with po. When both sides carry strictly increasing line numbers it
// runs a weighted longest-common-subsequence over them; otherwise it pairs by position.
func (a *Aligner) Align(oa, po []*domain.LineItem) Result {
	if len(oa) == 0 || len(po) == 0 {
		return Result{Mode: ModeNumbered, Pairs: leftovers(oa, po, true)}
	}

	var warnings []domain.Warning
	oaNumbered, oaWarn := numberedOrder(domain.RoleOA, oa)
	poNumbered, poWarn := numberedOrder(domain.RolePO, po)
	warnings = append(warnings, oaWarn...)
	warnings = append(warnings, poWarn...)

	if oaNumbered && poNumbered {
		pairs, matched := a.alignNumbered(oa, po)
		if matched > 0 {
			return Result{Mode: ModeNumbered, Pairs: pairs}
		}
		warnings = append(warnings, domain.Warning{
			Kind:    domain.WarnAmbiguousAlignment,
			Lines:   fmt.Sprintf("OA %s / PO %s", span(oa), span(po)),
			Message: ambiguous("OA and PO share no line numbers"),
		})
	} else if len(warnings) == 0 && len(oa) != len(po) {
		warnings = append(warnings, domain.Warning{
			Kind:    domain.WarnAmbiguousAlignment,
			Message: ambiguous(fmt.Sprintf("line numbers unavailable and item counts differ (OA %d, PO %d)", len(oa), len(po))),
		})
	}

	return Result{Mode: ModePositional, Pairs: positional(oa, po), Warnings: warnings}
}

func ambiguous(reason string) string {
	return fmt.Sprintf("%v: %s; items aligned by position", domain.ErrAmbiguousAlignment, reason)
}

// numberedOrder reports whether every item has a line range and starts increase
// strictly. Items without ranges are not an error; out of order ranges are.
func numberedOrder(role domain.DocumentRole, items []*domain.LineItem) (bool, []domain.Warning) {
	for i, it := range items {
		if it.Range == nil {
			return false, nil
		}
		if i > 0 && it.Range.Start <= items[i-1].Range.Start {
			return false, []domain.Warning{{
				Kind:    domain.WarnAmbiguousAlignment,
				Role:    role,
				Lines:   fmt.Sprintf("%s after %s", it.Range, items[i-1].Range),
				Message: ambiguous("line numbers are not in increasing order"),
			}}
		}
	}
	return true, nil
}

// score ranks alignments: more pairs first, then closer line numbers, then more agreeing fields.
type score struct {
	pairs int
	exact int
	agree int
}

func (s score) less(o score) bool {
	if s.pairs != o.pairs {
		return s.pairs < o.pairs
	}
	if s.exact != o.exact {
		return s.exact < o.exact
	}
	return s.agree < o.agree
}

func (s score) plus(o score) score {
	return score{pairs: s.pairs + o.pairs, exact: s.exact + o.exact, agree: s.agree + o.agree}
}

// weight scores pairing x with y, or reports that they may not be paired.
func (a *Aligner) weight(x, y *domain.LineItem) (score, bool) {
	rx, ry := *x.Range, *y.Range
	var exact int
	switch {
	case rx == ry:
		exact = 3
	case rx.Overlaps(ry):
		exact = 2
	case rx.Gap(ry) <= a.window:
		exact = 1
	default:
		return score{}, false
	}
	return score{pairs: 1, exact: exact, agree: Agreement(x, y)}, true
}

func (a *Aligner) alignNumbered(oa, po []*domain.LineItem) ([]domain.AlignedPair, int) {
	n, m := len(oa), len(po)
	table := make([][]score, n+1)
	for i := range table {
		table[i] = make([]score, m+1)
	}

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			best := table[i-1][j]
			if best.less(table[i][j-1]) {
				best = table[i][j-1]
			}
			if w, ok := a.weight(oa[i-1], po[j-1]); ok {
				if diag := table[i-1][j-1].plus(w); best.less(diag) {
					best = diag
				}
			}
			table[i][j] = best
		}
	}

	type match struct{ i, j int }
	var matches []match
	for i, j := n, m; i > 0 && j > 0; {
		if w, ok := a.weight(oa[i-1], po[j-1]); ok && table[i][j] == table[i-1][j-1].plus(w) {
			matches = append(matches, match{i - 1, j - 1})
			i--
			j--
			continue
		}
		if table[i][j] == table[i-1][j] {
			i--
		} else {
			j--
		}
	}

	var pairs []domain.AlignedPair
	i, j := 0, 0
	for k := len(matches) - 1; k >= 0; k-- {
		mt := matches[k]
		pairs = append(pairs, leftovers(oa[i:mt.i], po[j:mt.j], true)...)
		pairs = append(pairs, domain.AlignedPair{OA: oa[mt.i], PO: po[mt.j]})
		i, j = mt.i+1, mt.j+1
	}
	pairs = append(pairs, leftovers(oa[i:], po[j:], true)...)
	return pairs, len(matches)
}

func positional(oa, po []*domain.LineItem) []domain.AlignedPair {
	n := min(len(oa), len(po))
	pairs := make([]domain.AlignedPair, 0, max(len(oa), len(po)))
	for i := 0; i < n; i++ {
		pairs = append(pairs, domain.AlignedPair{OA: oa[i], PO: po[i]})
	}
	return append(pairs, leftovers(oa[n:], po[n:], false)...)
}

// leftovers emits one-sided pairs. When byNumber is set and both sides carry ranges,
// they interleave in line-number order with OA first on ties.
func leftovers(oa, po []*domain.LineItem, byNumber bool) []domain.AlignedPair {
	pairs := make([]domain.AlignedPair, 0, len(oa)+len(po))
	i, j := 0, 0
	for byNumber && i < len(oa) && j < len(po) && oa[i].Range != nil && po[j].Range != nil {
		if oa[i].Range.Start <= po[j].Range.Start {
			pairs = append(pairs, domain.AlignedPair{OA: oa[i]})
			i++
		} else {
			pairs = append(pairs, domain.AlignedPair{PO: po[j]})
			j++
		}
	}
	for ; i < len(oa); i++ {
		pairs = append(pairs, domain.AlignedPair{OA: oa[i]})
	}
	for ; j < len(po); j++ {
		pairs = append(pairs, domain.AlignedPair{PO: po[j]})
	}
	return pairs
}

func span(items []*domain.LineItem) string {
	first, last := items[0].Range, items[len(items)-1].Range
	if first == nil || last == nil {
		return "?"
	}
	return first.Span(*last).String()
}

// Agreement counts the fields present on both items that are equivalent under the
// comparator's normalizations. Tags agree when the items share any tag.
func Agreement(x, y *domain.LineItem) int {
	n := 0
	if x.Model != nil && y.Model != nil && normalize.Model(*x.Model) == normalize.Model(*y.Model) {
		n++
	}
	if x.Quantity != nil && y.Quantity != nil && *x.Quantity == *y.Quantity {
		n++
	}
	if x.UnitPrice != nil && y.UnitPrice != nil && x.UnitPrice.Equal(*y.UnitPrice) {
		n++
	}
	if x.ExtendedPrice != nil && y.ExtendedPrice != nil && x.ExtendedPrice.Equal(*y.ExtendedPrice) {
		n++
	}
	if x.ShipDate != nil && y.ShipDate != nil && x.ShipDate.Equal(*y.ShipDate) {
		n++
	}
	if x.Calibration != nil && y.Calibration != nil && normalize.Whitespace(*x.Calibration) == normalize.Whitespace(*y.Calibration) {
		n++
	}
	if sharesTag(x.Tags, y.Tags) {
		n++
	}
	return n
}

func sharesTag(a, b []string) bool {
	set := make(map[string]bool, len(a))
	for _, t := range normalize.TagSet(a) {
		set[t] = true
	}
	for _, t := range normalize.TagSet(b) {
		if set[t] {
			return true
		}
	}
	return false
}
