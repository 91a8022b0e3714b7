package render

import (
	"encoding/csv"
	"io"

	"ordercheck/internal/domain"
	"ordercheck/internal/report"
)

// BOM is the UTF-8 byte order mark Excel on Windows needs to detect the encoding.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row.
var columns = []string{
	"Comparison",
	"Section",
	"Left Lines",
	"Right Lines",
	"Field",
	"Classification",
	"Left Value",
	"Right Value",
	"Message",
}

// Writer wraps csv.Writer for exporting reports as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteReport writes one row per date row, finding and warning, then a status row.
func (w *Writer) WriteReport(r *domain.Report) error {
	for _, row := range reportRows(r) {
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// reportRows flattens a report to rows shaped like columns.
func reportRows(r *domain.Report) [][]string {
	title := report.Title(r)
	rows := make([][]string, 0, len(r.DateTable)+len(r.Findings)+len(r.Warnings)+1)

	for _, d := range r.DateTable {
		rows = append(rows, []string{
			title, "date", d.OALines, d.POLines, domain.FieldNames[domain.FieldShipDate],
			string(domain.ClassMismatch), d.OADate, d.PODate, "",
		})
	}
	for _, f := range r.Findings {
		rows = append(rows, []string{
			title, "finding", f.OALines, f.POLines, f.FieldName,
			string(f.Classification), f.OAValue, f.POValue,
			report.Describe(f, r.LeftLabel, r.RightLabel),
		})
	}
	for _, wn := range r.Warnings {
		rows = append(rows, []string{
			title, "warning", wn.Lines, "", "", string(wn.Kind), "", "", wn.String(),
		})
	}

	total := []string{title, "status", "", "", "", string(r.Total.Verdict), "", "", r.Status}
	if r.Total.OATotal != nil {
		total[6] = domain.FormatMoney(*r.Total.OATotal)
	}
	if r.Total.POTotal != nil {
		total[7] = domain.FormatMoney(*r.Total.POTotal)
	}
	return append(rows, total)
}

// CSV renders reports as one flat table with a leading BOM.
type CSV struct{}

func (CSV) Format() string      { return "csv" }
func (CSV) ContentType() string { return "text/csv; charset=utf-8" }
func (CSV) Extension() string   { return "csv" }

func (CSV) Render(w io.Writer, in Input) error {
	if _, err := w.Write(BOM); err != nil {
		return err
	}
	cw := NewWriter(w)
	if err := cw.WriteHeader(); err != nil {
		return err
	}
	for _, r := range in.Reports {
		if err := cw.WriteReport(r); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
