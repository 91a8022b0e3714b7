package render

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"ordercheck/internal/report"
)

// XLSX renders one workbook. The findings sheet holds the flat CSV rows; dates,
// summary and filtered text get their own sheets when present.
type XLSX struct{}

func (XLSX) Format() string { return "xlsx" }
func (XLSX) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
func (XLSX) Extension() string { return "xlsx" }

const findingsSheet = "Findings"

func (XLSX) Render(w io.Writer, in Input) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// NewFile starts with "Sheet1".
	if err := f.SetSheetName("Sheet1", findingsSheet); err != nil {
		return fmt.Errorf("xlsx rename sheet: %w", err)
	}

	sheets := map[string][][]string{findingsSheet: {columns}}
	order := []string{findingsSheet}
	add := func(sheet string, rows ...[]string) {
		if _, ok := sheets[sheet]; !ok {
			order = append(order, sheet)
		}
		sheets[sheet] = append(sheets[sheet], rows...)
	}

	for _, r := range in.Reports {
		add(findingsSheet, reportRows(r)...)
		if len(r.DateTable) > 0 {
			if _, ok := sheets["Dates"]; !ok {
				add("Dates", []string{"Comparison", "Left Lines", "Left Date", "Right Lines", "Right Date"})
			}
			for _, d := range r.DateTable {
				add("Dates", []string{report.Title(r), d.OALines, d.OADate, d.POLines, d.PODate})
			}
		}
	}
	if in.Summary != nil && in.Summary.Text != "" {
		add("Summary", []string{"Model", in.Summary.ModelUsed}, []string{"Summary", in.Summary.Text})
	}
	if len(in.Texts) > 0 {
		add("Text", []string{"Document", "Name", "Line"})
		for _, t := range in.Texts {
			for _, line := range t.Lines {
				add("Text", []string{t.Role.Label(), t.Name, line})
			}
		}
	}

	for _, sheet := range order {
		if sheet != findingsSheet {
			if _, err := f.NewSheet(sheet); err != nil {
				return fmt.Errorf("xlsx new sheet %s: %w", sheet, err)
			}
		}
		if err := writeRows(f, sheet, sheets[sheet]); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(findingsSheet, "A", "A", 22)
	_ = f.SetColWidth(findingsSheet, "I", "I", 80)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}

func writeRows(f *excelize.File, sheet string, rows [][]string) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("xlsx %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
