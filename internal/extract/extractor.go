package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"ordercheck/internal/domain"
	"ordercheck/internal/port"
)

// pageSet is the raw output of one format reader.
type pageSet struct {
	lines []domain.RawLine
	read  int
	total int
}

// Extractor turns PDF, spreadsheet, CSV and plain-text documents into ordered raw lines.
type Extractor struct {
	timeout  time.Duration
	maxPages int
	log      *logrus.Logger
	reader   func(domain.Format, []byte) (*pageSet, error)
}

// New creates an Extractor. A zero timeout disables the per-document deadline and a
// zero maxPages reads every page.
func New(timeout time.Duration, maxPages int, log *logrus.Logger) *Extractor {
	e := &Extractor{timeout: timeout, maxPages: maxPages, log: log}
	e.reader = e.read
	return e
}

var _ port.TextExtractor = (*Extractor)(nil)

// Extract reads input under the configured timeout. Identical bytes always yield
// identical lines.
func (e *Extractor) Extract(ctx context.Context, input port.ExtractInput) (*domain.Document, error) {
	fail := func(err error) error {
		var de *domain.DocumentError
		if errors.As(err, &de) {
			de.Role, de.Name = input.Role, input.Name
			return de
		}
		return &domain.DocumentError{Role: input.Role, Name: input.Name, Err: err}
	}

	format, err := DetectFormat(input.Name, input.Format, input.Data)
	if err != nil {
		return nil, fail(err)
	}
	if !allowedFor(input.Role, format) {
		return nil, fail(fmt.Errorf("%w: %s is not accepted for %s", domain.ErrUnsupportedFormat, format, input.Role.Label()))
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return nil, fail(fmt.Errorf("%w: %v", domain.ErrExtractionTimeout, err))
	}

	type result struct {
		set *pageSet
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			// The PDF reader panics on some malformed streams.
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("%w: %v", domain.ErrCorruptDocument, r)}
			}
		}()
		set, err := e.reader(format, input.Data)
		done <- result{set: set, err: err}
	}()

	var res result
	select {
	case <-ctx.Done():
		return nil, fail(fmt.Errorf("%w: %v", domain.ErrExtractionTimeout, ctx.Err()))
	case res = <-done:
	}
	if res.err != nil {
		return nil, fail(res.err)
	}

	doc := &domain.Document{
		Role:       input.Role,
		Name:       input.Name,
		Format:     format,
		Hash:       ContentHash(input.Data),
		Lines:      res.set.lines,
		PagesRead:  res.set.read,
		PagesTotal: res.set.total,
	}
	if doc.Lines == nil {
		doc.Lines = []domain.RawLine{}
	}

	e.log.WithFields(logrus.Fields{
		"role":   input.Role,
		"name":   input.Name,
		"format": format,
		"pages":  doc.PagesRead,
		"lines":  len(doc.Lines),
	}).Debug("extract.Extractor: document extracted")
	return doc, nil
}

func (e *Extractor) read(format domain.Format, data []byte) (*pageSet, error) {
	switch format {
	case domain.FormatPDF:
		return extractPDF(data, e.maxPages)
	case domain.FormatXLSX:
		return extractXLSX(data, e.maxPages)
	case domain.FormatCSV:
		return extractCSV(data)
	case domain.FormatText:
		return extractText(data, e.maxPages), nil
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, format)
	}
}

// ContentHash returns the hex SHA-256 of data.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
