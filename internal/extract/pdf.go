package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"ordercheck/internal/domain"
)

// extractPDF reads pages in order and each page's rows top to bottom. Text runs of a
// row are joined left to right with single spaces.
func extractPDF(data []byte, maxPages int) (*pageSet, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptDocument, err)
	}

	set := &pageSet{total: r.NumPage()}
	for i := 1; i <= set.total; i++ {
		if maxPages > 0 && i > maxPages {
			break
		}
		set.read++

		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return nil, &domain.DocumentError{Page: i, Err: fmt.Errorf("%w: %v", domain.ErrCorruptDocument, err)}
		}

		n := 0
		for _, row := range rows {
			parts := make([]string, 0, len(row.Content))
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			text := normalizeSpace(strings.Join(parts, " "))
			if text == "" {
				continue
			}
			n++
			set.lines = append(set.lines, domain.RawLine{Page: i, Line: n, Text: text})
		}
	}
	return set, nil
}
