package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RawLine is one extracted line of text. Page and Line are 1-based.
type RawLine struct {
	Page int    `json:"page"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

// Document is the ordered text of one input document.
type Document struct {
	Role       DocumentRole `json:"role"`
	Name       string       `json:"name"`
	Format     Format       `json:"format"`
	Hash       string       `json:"hash"`
	Lines      []RawLine    `json:"lines"`
	PagesRead  int          `json:"pages_read"`
	PagesTotal int          `json:"pages_total"`
}

// Truncated reports whether pages were skipped during extraction.
func (d *Document) Truncated() bool {
	return d.PagesRead < d.PagesTotal
}

// RoleMatch is one vocabulary hit inside a line. Start and End are byte offsets into the line text.
type RoleMatch struct {
	Role    FieldRole `json:"role"`
	Keyword string    `json:"keyword"`
	Value   string    `json:"value"`
	Start   int       `json:"start"`
	End     int       `json:"end"`
}

// ClassifiedLine is a RawLine annotated with the roles it matched.
type ClassifiedLine struct {
	RawLine
	Matches []RoleMatch `json:"matches"`
}

// Roles returns the distinct roles of the line in match order.
func (c ClassifiedLine) Roles() []FieldRole {
	var roles []FieldRole
	seen := make(map[FieldRole]bool)
	for _, m := range c.Matches {
		if !seen[m.Role] {
			seen[m.Role] = true
			roles = append(roles, m.Role)
		}
	}
	return roles
}

// Has reports whether the line matched role.
func (c ClassifiedLine) Has(role FieldRole) bool {
	for _, m := range c.Matches {
		if m.Role == role {
			return true
		}
	}
	return false
}

// LineRange is an inclusive range of printed item line numbers.
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (r LineRange) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("%d", r.Start)
	}
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// Gap returns the number of line numbers separating r and o. Overlapping ranges have a gap of zero or less.
func (r LineRange) Gap(o LineRange) int {
	if o.Start > r.End {
		return o.Start - r.End
	}
	if r.Start > o.End {
		return r.Start - o.End
	}
	return 0
}

// Overlaps reports whether r and o share at least one line number.
func (r LineRange) Overlaps(o LineRange) bool {
	return r.Start <= o.End && o.Start <= r.End
}

// Span returns the smallest range covering r and o.
func (r LineRange) Span(o LineRange) LineRange {
	out := r
	if o.Start < out.Start {
		out.Start = o.Start
	}
	if o.End > out.End {
		out.End = o.End
	}
	return out
}

// LineItem is one commercial line of a document. Nil fields were not found in the source lines.
type LineItem struct {
	Range         *LineRange       `json:"range,omitempty"`
	Model         *string          `json:"model,omitempty"`
	Tags          []string         `json:"tags,omitempty"`
	Quantity      *int             `json:"quantity,omitempty"`
	UnitPrice     *decimal.Decimal `json:"unit_price,omitempty"`
	ExtendedPrice *decimal.Decimal `json:"extended_price,omitempty"`
	ShipDate      *time.Time       `json:"ship_date,omitempty"`
	Calibration   *string          `json:"calibration,omitempty"`
	Sources       []RawLine        `json:"sources"`
}

// Ref returns the printed line reference, or the first source location for unnumbered items.
func (it *LineItem) Ref() string {
	if it == nil {
		return ""
	}
	if it.Range != nil {
		return it.Range.String()
	}
	if len(it.Sources) > 0 {
		return fmt.Sprintf("p%d:l%d", it.Sources[0].Page, it.Sources[0].Line)
	}
	return "?"
}

// Surcharge is a tariff, duty or similar amount added to a document total.
type Surcharge struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
	Source RawLine         `json:"source"`
}

// DocumentTotal holds the final total price and surcharge lines of one document.
type DocumentTotal struct {
	Final      *decimal.Decimal `json:"final,omitempty"`
	Surcharges []Surcharge      `json:"surcharges,omitempty"`
}

// SurchargeSum adds up all surcharge amounts.
func (t DocumentTotal) SurchargeSum() decimal.Decimal {
	sum := decimal.Zero
	for _, s := range t.Surcharges {
		sum = sum.Add(s.Amount)
	}
	return sum
}

// ParsedDocument is a document reduced to header fields, line items and totals.
// ShipDate is a date printed before the first line item.
type ParsedDocument struct {
	Role     DocumentRole  `json:"role"`
	PONumber *string       `json:"po_number,omitempty"`
	ShipDate *time.Time    `json:"ship_date,omitempty"`
	Items    []*LineItem   `json:"items"`
	Total    DocumentTotal `json:"total"`
}

// AlignedPair couples an OA item with a PO item. Either side may be nil, never both.
type AlignedPair struct {
	OA *LineItem `json:"oa,omitempty"`
	PO *LineItem `json:"po,omitempty"`
}

// Finding is the comparison outcome of one field. Empty values mean the field was absent on that side.
type Finding struct {
	Field          FieldRole      `json:"field"`
	FieldName      string         `json:"field_name"`
	Rule           string         `json:"rule"`
	Classification Classification `json:"classification"`
	OAValue        string         `json:"oa_value,omitempty"`
	POValue        string         `json:"po_value,omitempty"`
	OARange        *LineRange     `json:"oa_range,omitempty"`
	PORange        *LineRange     `json:"po_range,omitempty"`
	OALines        string         `json:"oa_lines,omitempty"`
	POLines        string         `json:"po_lines,omitempty"`
	// Pair is the 1-based position of the aligned pair the finding came from, 0 for
	// header and total findings.
	Pair int `json:"pair,omitempty"`
}

// LineRef returns a human line reference for the finding.
func (f Finding) LineRef(left, right string) string {
	var parts []string
	if f.OALines != "" {
		parts = append(parts, fmt.Sprintf("%s line %s", left, f.OALines))
	}
	if f.POLines != "" {
		parts = append(parts, fmt.Sprintf("%s line %s", right, f.POLines))
	}
	if len(parts) == 0 {
		return "document"
	}
	return strings.Join(parts, " / ")
}

// DateRow is one row of the date comparison table.
type DateRow struct {
	OALines string `json:"oa_lines"`
	OADate  string `json:"oa_date"`
	POLines string `json:"po_lines"`
	PODate  string `json:"po_date"`
}

// TotalSummary is the outcome of document-level total reconciliation.
type TotalSummary struct {
	Verdict      TotalVerdict     `json:"verdict"`
	OATotal      *decimal.Decimal `json:"oa_total,omitempty"`
	POTotal      *decimal.Decimal `json:"po_total,omitempty"`
	Difference   decimal.Decimal  `json:"difference"`
	SurchargeSum decimal.Decimal  `json:"surcharge_sum"`
}

// Warning is a non-fatal data quality problem tied to a location.
type Warning struct {
	Kind    WarningKind  `json:"kind"`
	Role    DocumentRole `json:"role,omitempty"`
	Page    int          `json:"page,omitempty"`
	Line    int          `json:"line,omitempty"`
	Lines   string       `json:"lines,omitempty"`
	Message string       `json:"message"`
}

func (w Warning) String() string {
	var loc []string
	if w.Role != "" {
		loc = append(loc, w.Role.Label())
	}
	if w.Page > 0 {
		loc = append(loc, fmt.Sprintf("page %d", w.Page))
	}
	if w.Line > 0 {
		loc = append(loc, fmt.Sprintf("line %d", w.Line))
	}
	if w.Lines != "" {
		loc = append(loc, "items "+w.Lines)
	}
	if len(loc) == 0 {
		return fmt.Sprintf("[%s] %s", w.Kind, w.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", w.Kind, strings.Join(loc, " "), w.Message)
}

// Report is the final discrepancy report of one comparison.
type Report struct {
	RunID      string       `json:"run_id"`
	LeftLabel  string       `json:"left_label"`
	RightLabel string       `json:"right_label"`
	Findings   []Finding    `json:"findings"`
	DateTable  []DateRow    `json:"date_table,omitempty"`
	Total      TotalSummary `json:"total"`
	Warnings   []Warning    `json:"warnings,omitempty"`
	Status     string       `json:"status"`
}

// Clean reports whether the report surfaced nothing for a reviewer to act on.
func (r *Report) Clean() bool {
	return len(r.Findings) == 0 && len(r.DateTable) == 0 && !r.Total.Verdict.Differs()
}
