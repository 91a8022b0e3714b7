package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"ordercheck/internal/report"
)

// PDF renders reports as a printable A4 document.
type PDF struct{}

func (PDF) Format() string      { return "pdf" }
func (PDF) ContentType() string { return "application/pdf" }
func (PDF) Extension() string   { return "pdf" }

const (
	pdfLineHeight = 5.0
	pdfColWidth   = 45.0
)

func (PDF) Render(w io.Writer, in Input) error {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetMargins(15, 15, 15)
	doc.SetAutoPageBreak(true, 15)
	// Core fonts are cp1252; translate so dashes and accents survive.
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.AddPage()

	heading := func(size float64, s string) {
		doc.SetFont("Helvetica", "B", size)
		doc.MultiCell(0, pdfLineHeight+2, tr(s), "", "L", false)
		doc.Ln(1)
	}
	para := func(s string) {
		doc.SetFont("Helvetica", "", 10)
		doc.MultiCell(0, pdfLineHeight, tr(s), "", "L", false)
	}

	for i, r := range in.Reports {
		if i > 0 {
			doc.Ln(4)
		}
		heading(14, report.Title(r))

		if len(r.DateTable) > 0 {
			doc.SetFont("Helvetica", "B", 9)
			for _, h := range []string{r.LeftLabel + " lines", r.LeftLabel + " date", r.RightLabel + " lines", r.RightLabel + " date"} {
				doc.CellFormat(pdfColWidth, pdfLineHeight+1, tr(h), "1", 0, "L", false, 0, "")
			}
			doc.Ln(-1)
			doc.SetFont("Helvetica", "", 9)
			for _, row := range r.DateTable {
				for _, c := range []string{row.OALines, row.OADate, row.POLines, row.PODate} {
					doc.CellFormat(pdfColWidth, pdfLineHeight+1, tr(orDash(c)), "1", 0, "L", false, 0, "")
				}
				doc.Ln(-1)
			}
			doc.Ln(2)
		}

		for n, f := range r.Findings {
			para(fmt.Sprintf("%d. %s", n+1, report.Describe(f, r.LeftLabel, r.RightLabel)))
		}
		doc.Ln(2)
		doc.SetFont("Helvetica", "B", 10)
		doc.MultiCell(0, pdfLineHeight, tr(r.Status), "", "L", false)

		if len(r.Warnings) > 0 {
			doc.Ln(2)
			heading(11, "Warnings")
			for _, wn := range r.Warnings {
				para("- " + wn.String())
			}
		}
	}

	if in.Summary != nil && strings.TrimSpace(in.Summary.Text) != "" {
		doc.Ln(4)
		heading(12, "Summary")
		para(strings.TrimSpace(in.Summary.Text))
	}

	for _, t := range in.Texts {
		doc.Ln(4)
		heading(11, fmt.Sprintf("%s (%s)", t.Role.Label(), t.Name))
		doc.SetFont("Courier", "", 8)
		for _, line := range t.Lines {
			doc.MultiCell(0, pdfLineHeight-1, tr(line), "", "L", false)
		}
	}

	if err := doc.Error(); err != nil {
		return fmt.Errorf("pdf render: %w", err)
	}
	return doc.Output(w)
}
