package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ordercheck/internal/compare"
	"ordercheck/internal/domain"
	"ordercheck/internal/extract"
	"ordercheck/internal/logging"
	"ordercheck/internal/port"
	"ordercheck/internal/service"
	"ordercheck/internal/summarize"
	"ordercheck/internal/vocabulary"
	"ordercheck/mocks"
)

const oaText = `Acme Instruments Order Acknowledgement
PO Number: 4500123
Line 10 Model: 3051CD2A1 Qty: 2 Unit Price: $3,499.61
Line 10 Tag: FT-101
Line 20 Model: EJA110E Qty: 1 Unit Price: $1,200.00
Order Total: $8,199.22`

const poText = `PO Number: 4500123
Line 10 Model: 3051CD2A1 Qty: 2 Unit Price: $3,499.60
Line 10 Tag: FT101
Line 20 Model: EJA110E Qty: 1 Unit Price: $1,200.00
Order Total: $8,199.20`

func doc(name, text string) *service.DocumentInput {
	return &service.DocumentInput{Name: name, Format: domain.FormatText, Data: []byte(text)}
}

func newService(summarizer port.Summarizer) service.ComparisonService {
	return newServiceWith(extract.New(5*time.Second, 0, logging.Discard()), summarizer)
}

func newServiceWith(extractor port.TextExtractor, summarizer port.Summarizer) service.ComparisonService {
	settings := service.Settings{
		Vocabulary: vocabulary.Default(),
		Registry:   compare.DefaultRegistry("/"),
		Tolerance:  compare.DefaultTolerance,
		RunTimeout: 10 * time.Second,
	}
	return service.NewComparisonService(extractor, summarizer, settings, nil, logging.Discard())
}

func warningKinds(ws []domain.Warning) []domain.WarningKind {
	out := make([]domain.WarningKind, len(ws))
	for i, w := range ws {
		out[i] = w.Kind
	}
	return out
}

func TestCompare_MissingDocument(t *testing.T) {
	svc := newService(nil)

	_, err := svc.Compare(context.Background(), &service.CompareInput{PO: doc("po.txt", poText)})
	assert.ErrorIs(t, err, domain.ErrMissingDocument)
	assert.Contains(t, err.Error(), "OA")

	_, err = svc.Compare(context.Background(), &service.CompareInput{OA: doc("oa.txt", oaText)})
	assert.ErrorIs(t, err, domain.ErrMissingDocument)
	assert.Contains(t, err.Error(), "PO")
}

func TestCompare_PriceBoundaryAndUnexplainedTotal(t *testing.T) {
	res, err := newService(nil).Compare(context.Background(), &service.CompareInput{
		OA: doc("oa.txt", oaText),
		PO: doc("po.txt", poText),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, res.RunID, res.Report.RunID)
	assert.Nil(t, res.Secondary)

	r := res.Report
	require.Len(t, r.Findings, 1)
	assert.Equal(t, domain.FieldUnitPrice, r.Findings[0].Field)
	assert.Equal(t, domain.ClassMismatch, r.Findings[0].Classification)
	assert.Equal(t, "$3,499.61", r.Findings[0].OAValue)
	assert.Equal(t, "$3,499.60", r.Findings[0].POValue)

	assert.Equal(t, domain.TotalUnexplained, r.Total.Verdict)
	assert.Equal(t, "Total price differs by $0.02 (OA $8,199.22, PO $8,199.20) and is not explained by any tariff/duty line.", r.Status)

	// The OA heading matched no role.
	require.Contains(t, warningKinds(r.Warnings), domain.WarnTruncation)
	assert.Equal(t, domain.RoleOA, r.Warnings[0].Role)
	assert.Contains(t, r.Warnings[0].Message, "1 of 6 lines")

	require.Len(t, res.Texts, 2)
	assert.Equal(t, domain.RoleOA, res.Texts[0].Role)
	assert.Len(t, res.Texts[0].Lines, 5)
	assert.Len(t, res.Texts[1].Lines, 5)
}

func TestCompare_DocumentAgainstItself(t *testing.T) {
	res, err := newService(nil).Compare(context.Background(), &service.CompareInput{
		OA: doc("oa.txt", poText),
		PO: doc("po.txt", poText),
	})
	require.NoError(t, err)

	assert.Empty(t, res.Report.Findings)
	assert.Empty(t, res.Report.DateTable)
	assert.Equal(t, domain.TotalMatch, res.Report.Total.Verdict)
	assert.Equal(t, domain.StatusNoDiscrepancies, res.Report.Status)
}

func TestCompare_NothingToCompare(t *testing.T) {
	res, err := newService(nil).Compare(context.Background(), &service.CompareInput{
		OA: doc("oa.txt", oaText),
		PO: doc("po.txt", "Thank you for your business"),
	})
	require.NoError(t, err)

	assert.Empty(t, res.Report.Findings)
	assert.Equal(t, domain.TotalNotCompared, res.Report.Total.Verdict)
	assert.Equal(t, domain.StatusNothingToCompare, res.Report.Status)

	var found bool
	for _, w := range res.Report.Warnings {
		if w.Kind == domain.WarnNoRecognizedFields {
			found = true
			assert.Equal(t, domain.RolePO, w.Role)
		}
	}
	assert.True(t, found)
}

func TestCompare_CustomerPOSecondaryReport(t *testing.T) {
	customer := strings.Replace(poText, "Qty: 1", "Qty: 3", 1)

	res, err := newService(nil).Compare(context.Background(), &service.CompareInput{
		OA:         doc("oa.txt", oaText),
		PO:         doc("po.txt", poText),
		CustomerPO: doc("customer.txt", customer),
	})
	require.NoError(t, err)

	require.NotNil(t, res.Secondary)
	assert.Equal(t, "PO", res.Secondary.LeftLabel)
	assert.Equal(t, "Customer PO", res.Secondary.RightLabel)

	findings := res.Secondary.Findings
	require.NotEmpty(t, findings)
	assert.Equal(t, domain.FieldQuantity, findings[0].Field)
	assert.Equal(t, "1", findings[0].OAValue)
	assert.Equal(t, "3", findings[0].POValue)

	assert.Len(t, res.Reports(), 2)
	assert.Len(t, res.Texts, 3)
	assert.Equal(t, domain.RoleCustomerPO, res.Texts[2].Role)
}

func TestCompare_VocabularyOverride(t *testing.T) {
	oa := "Line 10 Qty: 2\nUnit Price: $5.00"
	po := "Line 10 Qty: 2\nUnit Price: $6.00"
	svc := newService(nil)

	withDefault, err := svc.Compare(context.Background(), &service.CompareInput{OA: doc("oa.txt", oa), PO: doc("po.txt", po)})
	require.NoError(t, err)
	require.Len(t, withDefault.Report.Findings, 1)
	assert.Equal(t, domain.FieldUnitPrice, withDefault.Report.Findings[0].Field)

	vocab, err := vocabulary.Parse([]byte(`{"roles":{"line":{"keywords":["line"]},"quantity":{"keywords":["qty"]}}}`))
	require.NoError(t, err)

	narrow, err := svc.Compare(context.Background(), &service.CompareInput{OA: doc("oa.txt", oa), PO: doc("po.txt", po), Vocabulary: vocab})
	require.NoError(t, err)
	assert.Empty(t, narrow.Report.Findings)
	assert.Equal(t, domain.StatusNoDiscrepancies, narrow.Report.Status)
}

func TestCompare_SummarizerReceivesReportAndTexts(t *testing.T) {
	summarizer := new(mocks.MockSummarizer)
	summarizer.On("Summarize", mock.Anything, mock.MatchedBy(func(in port.SummaryInput) bool {
		return strings.Contains(in.ReportText, "# OA vs PO") &&
			strings.Contains(in.ReportText, "unit price differs") &&
			len(in.Documents) == 3 &&
			in.Documents[2].Role == domain.RoleDatasheet
	})).Return(&port.SummaryOutput{Text: "Line 10 unit price needs a corrected OA.", ModelUsed: "stub"}, nil)

	res, err := newService(summarizer).Compare(context.Background(), &service.CompareInput{
		OA:        doc("oa.txt", oaText),
		PO:        doc("po.txt", poText),
		Datasheet: doc("ds.txt", "Model: 3051CD2A1\nCalibration: 0 to 100 inH2O"),
		Summarize: true,
	})
	require.NoError(t, err)

	require.NotNil(t, res.Summary)
	assert.Equal(t, "Line 10 unit price needs a corrected OA.", res.Summary.Text)
	summarizer.AssertExpectations(t)
}

func TestCompare_SummarizerFailureKeepsRuleReport(t *testing.T) {
	summarizer := new(mocks.MockSummarizer)
	summarizer.On("Summarize", mock.Anything, mock.Anything).
		Return(nil, summarize.NewRateLimitError("all", errors.New("all summarizers rate limited"), 30))

	res, err := newService(summarizer).Compare(context.Background(), &service.CompareInput{
		OA:        doc("oa.txt", oaText),
		PO:        doc("po.txt", poText),
		Summarize: true,
	})
	require.NoError(t, err)

	assert.Nil(t, res.Summary)
	assert.Len(t, res.Report.Findings, 1)
	last := res.Report.Warnings[len(res.Report.Warnings)-1]
	assert.Equal(t, domain.WarnBackendUnavailable, last.Kind)
	assert.Contains(t, last.Message, "rate limited")
}

func TestCompare_SummarizeWithoutBackend(t *testing.T) {
	res, err := newService(nil).Compare(context.Background(), &service.CompareInput{
		OA:        doc("oa.txt", poText),
		PO:        doc("po.txt", poText),
		Summarize: true,
	})
	require.NoError(t, err)

	assert.Nil(t, res.Summary)
	assert.Contains(t, warningKinds(res.Report.Warnings), domain.WarnBackendUnavailable)
}

func TestCompare_ExtractionFailureIsFatal(t *testing.T) {
	extractor := new(mocks.MockTextExtractor)
	extractor.On("Extract", mock.Anything, mock.MatchedBy(func(in port.ExtractInput) bool {
		return in.Role == domain.RoleOA
	})).Return(nil, &domain.DocumentError{Role: domain.RoleOA, Name: "oa.pdf", Err: domain.ErrCorruptDocument})

	_, err := newServiceWith(extractor, nil).Compare(context.Background(), &service.CompareInput{
		OA: &service.DocumentInput{Name: "oa.pdf", Data: []byte("%PDF-broken")},
		PO: doc("po.txt", poText),
	})

	assert.ErrorIs(t, err, domain.ErrCorruptDocument)
	var docErr *domain.DocumentError
	require.ErrorAs(t, err, &docErr)
	assert.Equal(t, domain.RoleOA, docErr.Role)
	extractor.AssertNumberOfCalls(t, "Extract", 1)
}
