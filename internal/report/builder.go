// Package report turns comparison findings into the reviewer-facing discrepancy report.
package report

import (
	"fmt"

	"ordercheck/internal/domain"
)

// headerLines labels date table cells that come from a document header.
const headerLines = "header"

// Input is what the builder needs from one comparison.
type Input struct {
	RunID      string
	LeftLabel  string
	RightLabel string
	// Findings in pair order with header findings first. Match findings are allowed
	// and Pair should be set on item findings so date runs break at gaps.
	Findings []domain.Finding
	Total    domain.TotalSummary
	Warnings []domain.Warning
	// NothingToCompare is set when a side had no recognized fields.
	NothingToCompare bool
}

// Build assembles the report. Only non-matching findings are listed. Date findings
// move to the date table when at least one of them is a mismatch.
func Build(in Input) *domain.Report {
	r := &domain.Report{
		RunID:      in.RunID,
		LeftLabel:  labelOr(in.LeftLabel, domain.RoleOA.Label()),
		RightLabel: labelOr(in.RightLabel, domain.RolePO.Label()),
		Findings:   []domain.Finding{},
		Total:      in.Total,
		Warnings:   in.Warnings,
	}
	if in.NothingToCompare {
		r.Total.Verdict = domain.TotalNotCompared
		r.Status = domain.StatusNothingToCompare
		return r
	}

	var dates []domain.Finding
	dateMismatch := false
	for _, f := range in.Findings {
		if f.Field == domain.FieldShipDate {
			dates = append(dates, f)
			if f.Classification == domain.ClassMismatch {
				dateMismatch = true
			}
		}
		if f.Classification != domain.ClassMatch {
			r.Findings = append(r.Findings, f)
		}
	}

	if dateMismatch {
		kept := r.Findings[:0]
		for _, f := range r.Findings {
			if f.Field != domain.FieldShipDate {
				kept = append(kept, f)
			}
		}
		r.Findings = kept
		r.DateTable = dateTable(dates)
	}

	r.Status = Status(r)
	return r
}

func labelOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// Status returns the closing sentence for r.
func Status(r *domain.Report) string {
	switch {
	case r.Status == domain.StatusNothingToCompare:
		return r.Status
	case r.Total.Verdict.Differs():
		return TotalSentence(r.LeftLabel, r.RightLabel, r.Total)
	case len(r.Findings) == 0 && len(r.DateTable) == 0:
		return domain.StatusNoDiscrepancies
	default:
		return domain.StatusNoOtherDiscrepancies
	}
}

// TotalSentence describes a total price difference. It returns "" when the totals do not differ.
func TotalSentence(left, right string, t domain.TotalSummary) string {
	if !t.Verdict.Differs() || t.OATotal == nil || t.POTotal == nil {
		return ""
	}
	head := fmt.Sprintf("Total price differs by %s (%s %s, %s %s)",
		domain.FormatMoney(t.Difference),
		left, domain.FormatMoney(*t.OATotal),
		right, domain.FormatMoney(*t.POTotal),
	)
	if t.Verdict == domain.TotalTariffExplained {
		return fmt.Sprintf("%s; the difference is explained by tariff/duty lines totalling %s.", head, domain.FormatMoney(t.SurchargeSum))
	}
	return head + " and is not explained by any tariff/duty line."
}

// dateRun accumulates consecutive date findings that carry the same pair of dates.
type dateRun struct {
	row              domain.DateRow
	class            domain.Classification
	header           bool
	pair             int
	oaRange, poRange *domain.LineRange
	oaFirst, oaLast  string
	poFirst, poLast  string
}

func newRun(f domain.Finding) *dateRun {
	return &dateRun{
		row:     domain.DateRow{OADate: f.OAValue, PODate: f.POValue},
		class:   f.Classification,
		header:  isHeader(f),
		pair:    f.Pair,
		oaRange: copyRange(f.OARange),
		poRange: copyRange(f.PORange),
		oaFirst: f.OALines, oaLast: f.OALines,
		poFirst: f.POLines, poLast: f.POLines,
	}
}

func isHeader(f domain.Finding) bool {
	return f.OALines == "" && f.POLines == ""
}

func copyRange(r *domain.LineRange) *domain.LineRange {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// extends reports whether f continues the run. Findings that carry a pair position
// must come from the next pair, so a pair without a date finding ends the run.
func (d *dateRun) extends(f domain.Finding) bool {
	if d.pair != 0 || f.Pair != 0 {
		if f.Pair != d.pair+1 {
			return false
		}
	}
	return d.header == isHeader(f) && !d.header &&
		d.row.OADate == f.OAValue && d.row.PODate == f.POValue &&
		(d.oaRange == nil) == (f.OARange == nil) &&
		(d.poRange == nil) == (f.PORange == nil) &&
		(d.oaFirst == "") == (f.OALines == "") &&
		(d.poFirst == "") == (f.POLines == "")
}

func (d *dateRun) add(f domain.Finding) {
	if d.oaRange != nil {
		*d.oaRange = d.oaRange.Span(*f.OARange)
	}
	if d.poRange != nil {
		*d.poRange = d.poRange.Span(*f.PORange)
	}
	d.oaLast, d.poLast = f.OALines, f.POLines
	d.pair = f.Pair
}

func (d *dateRun) finish() domain.DateRow {
	row := d.row
	if d.header {
		row.OALines, row.POLines = headerLines, headerLines
		if row.OADate == "" {
			row.OALines = ""
		}
		if row.PODate == "" {
			row.POLines = ""
		}
		return row
	}
	row.OALines = lines(d.oaRange, d.oaFirst, d.oaLast)
	row.POLines = lines(d.poRange, d.poFirst, d.poLast)
	return row
}

func lines(r *domain.LineRange, first, last string) string {
	if r != nil {
		return r.String()
	}
	if first == last {
		return first
	}
	return first + " to " + last
}

// dateTable coalesces consecutive date findings with identical dates into one row
// whose line ranges span the run. Matches take part in the grouping so they split
// runs, then their rows are dropped.
func dateTable(findings []domain.Finding) []domain.DateRow {
	var rows []domain.DateRow
	var cur *dateRun
	flush := func() {
		if cur != nil && cur.class != domain.ClassMatch {
			rows = append(rows, cur.finish())
		}
	}
	for _, f := range findings {
		if cur != nil && cur.extends(f) {
			cur.add(f)
			continue
		}
		flush()
		cur = newRun(f)
	}
	flush()
	return rows
}
