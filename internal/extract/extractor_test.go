package extract_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"ordercheck/internal/domain"
	"ordercheck/internal/extract"
	"ordercheck/internal/logging"
	"ordercheck/internal/port"
)

func buildPDF(t *testing.T, pages ...[]string) []byte {
	t.Helper()
	doc := gofpdf.New("P", "mm", "A4", "")
	for _, lines := range pages {
		doc.AddPage()
		doc.SetFont("Helvetica", "", 11)
		for i, line := range lines {
			doc.Text(20, float64(20+i*10), line)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func buildXLSX(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func newExtractor(maxPages int) *extract.Extractor {
	return extract.New(0, maxPages, logging.Discard())
}

func texts(lines []domain.RawLine) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}

func TestExtract_PDFReadingOrder(t *testing.T) {
	data := buildPDF(t,
		[]string{"Order Acknowledgement", "Line 10 Model: 3051CD2A", "Qty: 2 Unit Price: $3,499.61"},
		[]string{"Order Total: $10,452.00"},
	)

	doc, err := newExtractor(0).Extract(context.Background(), port.ExtractInput{
		Role: domain.RoleOA, Name: "oa.pdf", Data: data,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.FormatPDF, doc.Format)
	assert.Equal(t, []string{
		"Order Acknowledgement",
		"Line 10 Model: 3051CD2A",
		"Qty: 2 Unit Price: $3,499.61",
		"Order Total: $10,452.00",
	}, texts(doc.Lines))
	assert.Equal(t, domain.RawLine{Page: 1, Line: 2, Text: "Line 10 Model: 3051CD2A"}, doc.Lines[1])
	assert.Equal(t, 2, doc.Lines[3].Page)
	assert.Equal(t, 1, doc.Lines[3].Line)
	assert.False(t, doc.Truncated())
}

func TestExtract_Deterministic(t *testing.T) {
	data := buildPDF(t, []string{"Tag: SR1-01-XT-9025B", "Ship Date: 2025-07-28"})
	ex := newExtractor(0)
	input := port.ExtractInput{Role: domain.RolePO, Name: "po.pdf", Data: data}

	first, err := ex.Extract(context.Background(), input)
	require.NoError(t, err)
	second, err := ex.Extract(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, first.Lines, second.Lines)
	assert.Equal(t, first.Hash, second.Hash)
}

func TestExtract_MaxPagesRecordsTruncation(t *testing.T) {
	data := buildPDF(t, []string{"page one"}, []string{"page two"})

	doc, err := newExtractor(1).Extract(context.Background(), port.ExtractInput{
		Role: domain.RoleOA, Name: "oa.pdf", Data: data,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"page one"}, texts(doc.Lines))
	assert.Equal(t, 1, doc.PagesRead)
	assert.Equal(t, 2, doc.PagesTotal)
	assert.True(t, doc.Truncated())
}

func TestExtract_CorruptPDF(t *testing.T) {
	_, err := newExtractor(0).Extract(context.Background(), port.ExtractInput{
		Role: domain.RoleOA, Name: "oa.pdf", Data: []byte("%PDF-1.4 this is not a pdf"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCorruptDocument)

	var de *domain.DocumentError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, domain.RoleOA, de.Role)
	assert.Equal(t, "oa.pdf", de.Name)
}

func TestExtract_UnsupportedExtension(t *testing.T) {
	_, err := newExtractor(0).Extract(context.Background(), port.ExtractInput{
		Role: domain.RolePO, Name: "po.docx", Data: []byte("PK\x03\x04"),
	})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestExtract_FormatNotAcceptedForRole(t *testing.T) {
	data := buildXLSX(t, []any{"Line", "Model"}, []any{10, "3051CD"})

	_, err := newExtractor(0).Extract(context.Background(), port.ExtractInput{
		Role: domain.RoleOA, Name: "oa.xlsx", Data: data,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), "OA (oa.xlsx)")
}

func TestExtract_XLSXPairsHeadersWithValues(t *testing.T) {
	data := buildXLSX(t,
		[]any{"Purchase Order", "4500012345"},
		[]any{"Line", "Model", "Qty", "Unit Price"},
		[]any{10, "3051CD2A", 2, "3499.61"},
		[]any{20, "", 1, "120.00"},
	)

	doc, err := newExtractor(0).Extract(context.Background(), port.ExtractInput{
		Role: domain.RolePO, Name: "po.xlsx", Data: data,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Purchase Order 4500012345",
		"Line: 10 Model: 3051CD2A Qty: 2 Unit Price: 3499.61",
		"Line: 20 Qty: 1 Unit Price: 120.00",
	}, texts(doc.Lines))
	assert.Equal(t, 1, doc.PagesTotal)
}

func TestExtract_CSV(t *testing.T) {
	data := []byte("Line,Model,Tag\n10,3051CD2A,\"SR1-01-XT-9025B, SR1-01-XT-9026B\"\n")

	doc, err := newExtractor(0).Extract(context.Background(), port.ExtractInput{
		Role: domain.RoleCustomerPO, Name: "customer.csv", Data: data,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Line: 10 Model: 3051CD2A Tag: SR1-01-XT-9025B, SR1-01-XT-9026B"}, texts(doc.Lines))
}

func TestExtract_TextPagesSplitOnFormFeed(t *testing.T) {
	data := []byte("Line 10\r\n  Model:   ABC  \n\n\fOrder Total: $1.00\n")

	doc, err := newExtractor(0).Extract(context.Background(), port.ExtractInput{
		Role: domain.RoleOA, Name: "oa.txt", Data: data,
	})
	require.NoError(t, err)

	assert.Equal(t, []domain.RawLine{
		{Page: 1, Line: 1, Text: "Line 10"},
		{Page: 1, Line: 2, Text: "Model: ABC"},
		{Page: 2, Line: 1, Text: "Order Total: $1.00"},
	}, doc.Lines)
}

func TestExtract_CancelledContextTimesOut(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newExtractor(0).Extract(ctx, port.ExtractInput{Role: domain.RoleOA, Name: "oa.txt", Data: []byte("Line 10 Qty: 2")})

	assert.True(t, errors.Is(err, domain.ErrExtractionTimeout))
	var docErr *domain.DocumentError
	require.ErrorAs(t, err, &docErr)
	assert.Equal(t, domain.RoleOA, docErr.Role)
	assert.Equal(t, "oa.txt", docErr.Name)
}

func TestExtract_SlowReaderHitsDeadline(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	e := extract.NewBlocking(20*time.Millisecond, release, logging.Discard())

	start := time.Now()
	_, err := e.Extract(context.Background(), port.ExtractInput{Role: domain.RolePO, Name: "po.txt", Data: []byte("Line 10 Qty: 2")})

	assert.ErrorIs(t, err, domain.ErrExtractionTimeout)
	var docErr *domain.DocumentError
	require.ErrorAs(t, err, &docErr)
	assert.Equal(t, domain.RolePO, docErr.Role)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		declared domain.Format
		data     []byte
		want     domain.Format
		wantErr  bool
	}{
		{name: "declared wins", file: "a.txt", declared: domain.FormatPDF, want: domain.FormatPDF},
		{name: "unknown declared", declared: "docx", wantErr: true},
		{name: "extension", file: "PO.XLSX", want: domain.FormatXLSX},
		{name: "pdf magic", data: []byte("%PDF-1.7\n"), want: domain.FormatPDF},
		{name: "zip magic", data: []byte("PK\x03\x04rest"), want: domain.FormatXLSX},
		{name: "plain text", data: []byte("Line 10"), want: domain.FormatText},
		{name: "binary", data: []byte{0x00, 0x01, 0x02}, wantErr: true},
		{name: "unsupported extension", file: "scan.png", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extract.DetectFormat(tt.file, tt.declared, tt.data)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
