package extract

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"ordercheck/internal/domain"
)

// extractXLSX treats every sheet as a page and every non-empty row as a line.
func extractXLSX(data []byte, maxPages int) (*pageSet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptDocument, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	set := &pageSet{total: len(sheets)}
	for i, sheet := range sheets {
		page := i + 1
		if maxPages > 0 && page > maxPages {
			break
		}
		set.read++

		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, &domain.DocumentError{Page: page, Err: fmt.Errorf("%w: sheet %q: %v", domain.ErrCorruptDocument, sheet, err)}
		}
		set.addRows(page, rows)
	}
	return set, nil
}

// extractCSV reads a single-page table. Ragged rows are accepted.
func extractCSV(data []byte) (*pageSet, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrCorruptDocument, err)
		}
		rows = append(rows, rec)
	}

	set := &pageSet{total: 1, read: 1}
	set.addRows(1, rows)
	return set, nil
}

// extractText splits plain text into lines, treating form feeds as page breaks.
func extractText(data []byte, maxPages int) *pageSet {
	pages := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\f")
	set := &pageSet{total: len(pages)}
	for i, body := range pages {
		page := i + 1
		if maxPages > 0 && page > maxPages {
			break
		}
		set.read++

		n := 0
		for _, raw := range strings.Split(body, "\n") {
			text := normalizeSpace(raw)
			if text == "" {
				continue
			}
			n++
			set.lines = append(set.lines, domain.RawLine{Page: page, Line: n, Text: text})
		}
	}
	return set
}

// addRows emits one line per non-empty row. Once a header row is seen (two or more
// cells, none containing a digit) each later row is emitted as "Header: value" pairs
// so column labels travel with their values.
func (s *pageSet) addRows(page int, rows [][]string) {
	var header []string
	n := 0
	for _, row := range rows {
		if isHeaderRow(row) {
			header = make([]string, len(row))
			for i, c := range row {
				header[i] = normalizeSpace(c)
			}
			continue
		}

		cells := make([]string, 0, len(row))
		for i, c := range row {
			c = normalizeSpace(c)
			if c == "" {
				continue
			}
			if i < len(header) && header[i] != "" {
				c = header[i] + ": " + c
			}
			cells = append(cells, c)
		}
		text := strings.Join(cells, " ")
		if text == "" {
			continue
		}
		n++
		s.lines = append(s.lines, domain.RawLine{Page: page, Line: n, Text: text})
	}
}

func isHeaderRow(row []string) bool {
	filled := 0
	for _, c := range row {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if strings.ContainsAny(c, "0123456789") {
			return false
		}
		filled++
	}
	return filled >= 2
}
