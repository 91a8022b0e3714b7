package align_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordercheck/internal/align"
	"ordercheck/internal/classify"
	"ordercheck/internal/domain"
	"ordercheck/internal/vocabulary"
)

func classified(role domain.DocumentRole, lines ...string) *classify.Result {
	doc := &domain.Document{Role: role, Name: "doc.pdf"}
	for i, l := range lines {
		doc.Lines = append(doc.Lines, domain.RawLine{Page: 1, Line: i + 1, Text: l})
	}
	return classify.New(vocabulary.Default()).Classify(doc)
}

func kinds(ws []domain.Warning) []domain.WarningKind {
	out := make([]domain.WarningKind, len(ws))
	for i, w := range ws {
		out[i] = w.Kind
	}
	return out
}

func TestGroup_NumberedItemsAndTotals(t *testing.T) {
	doc, warnings := align.Group(classified(domain.RoleOA,
		"Line 10 Model: 3051CD2A1 Qty: 2 Unit Price: $3,499.61",
		"Tag: SR1-01-XT-9025B",
		"Line 20 Model: 644HANJ6",
		"Order Total: $10,452.00",
		"Tariff: $252.00",
	))

	assert.Empty(t, warnings)
	require.Len(t, doc.Items, 2)

	first := doc.Items[0]
	assert.Equal(t, "10", first.Ref())
	assert.Equal(t, "3051CD2A1", *first.Model)
	assert.Equal(t, 2, *first.Quantity)
	assert.Equal(t, "3499.61", first.UnitPrice.String())
	assert.Equal(t, []string{"SR1-01-XT-9025B"}, first.Tags)
	assert.Len(t, first.Sources, 2)

	assert.Equal(t, "644HANJ6", *doc.Items[1].Model)

	require.NotNil(t, doc.Total.Final)
	assert.Equal(t, "10452", doc.Total.Final.String())
	assert.Equal(t, "252", doc.Total.SurchargeSum().String())
	assert.Equal(t, "Tariff: $252.00", doc.Total.Surcharges[0].Label)
}

func TestGroup_LineRange(t *testing.T) {
	doc, _ := align.Group(classified(domain.RolePO, "Line 10-30 Model: 3051CD2A1"))

	require.Len(t, doc.Items, 1)
	assert.Equal(t, domain.LineRange{Start: 10, End: 30}, *doc.Items[0].Range)
}

func TestGroup_RevisitedLineRejoinsItem(t *testing.T) {
	doc, _ := align.Group(classified(domain.RoleOA,
		"Line 10 Qty: 2",
		"Line 20 Qty: 1",
		"Line 10 Tag: FT-101",
	))

	require.Len(t, doc.Items, 2)
	assert.Equal(t, []string{"FT-101"}, doc.Items[0].Tags)
	assert.Nil(t, doc.Items[1].Tags)
}

func TestGroup_SubLinesStayOutOfItems(t *testing.T) {
	doc, warnings := align.Group(classified(domain.RoleOA,
		"Line 10 Qty: 2 Unit Price: $5.00",
		"Line 10.1 Qty: 4 Unit Price: $1.00",
		"Line 20 Qty: 1",
	))

	assert.Empty(t, warnings)
	require.Len(t, doc.Items, 2)
	assert.Equal(t, 2, *doc.Items[0].Quantity)
	assert.Equal(t, "5", doc.Items[0].UnitPrice.String())
	assert.Equal(t, "20", doc.Items[1].Ref())
}

func TestGroup_HeaderFields(t *testing.T) {
	doc, warnings := align.Group(classified(domain.RoleOA,
		"PO Number: FO-88213/4500012345 dated today",
		"Requested Ship Date: 2025-07-28",
		"Model: 3051CD2A1",
		"Line 10 Qty: 1",
	))

	require.NotNil(t, doc.PONumber)
	assert.Equal(t, "FO-88213/4500012345", *doc.PONumber)
	require.NotNil(t, doc.ShipDate)
	assert.Equal(t, "2025-07-28", domain.FormatDate(*doc.ShipDate))

	// Item fields before the first line number have no item to land on.
	assert.Equal(t, []domain.WarningKind{domain.WarnTruncation}, kinds(warnings))
	require.Len(t, doc.Items, 1)
	assert.Nil(t, doc.Items[0].Model)
}

func TestGroup_UnnumberedRepeatStartsNewItem(t *testing.T) {
	doc, warnings := align.Group(classified(domain.RolePO,
		"Model: 3051CD2A1",
		"Qty: 1",
		"Tag: FT-101",
		"Model: 644HANJ6",
		"Qty: 2",
	))

	assert.Empty(t, warnings)
	require.Len(t, doc.Items, 2)
	assert.Nil(t, doc.Items[0].Range)
	assert.Equal(t, "p1:l1", doc.Items[0].Ref())
	assert.Equal(t, 1, *doc.Items[0].Quantity)
	assert.Equal(t, "644HANJ6", *doc.Items[1].Model)
	assert.Equal(t, 2, *doc.Items[1].Quantity)
}

func TestGroup_ConflictingValueKeepsFirst(t *testing.T) {
	doc, warnings := align.Group(classified(domain.RoleOA,
		"Line 10 Qty: 2",
		"Qty: 3",
	))

	require.Len(t, doc.Items, 1)
	assert.Equal(t, 2, *doc.Items[0].Quantity)
	require.Len(t, warnings, 1)
	assert.Equal(t, domain.WarnConflictingValue, warnings[0].Kind)
	assert.Equal(t, "10", warnings[0].Lines)
	assert.Equal(t, 2, warnings[0].Line)
}

func TestGroup_UnparsedValue(t *testing.T) {
	doc, warnings := align.Group(classified(domain.RoleOA, "Line 10 Qty: two"))

	require.Len(t, doc.Items, 1)
	assert.Nil(t, doc.Items[0].Quantity)
	assert.Equal(t, []domain.WarningKind{domain.WarnUnparsedValue}, kinds(warnings))
}

func TestGroup_UnparsedValueOnUnnumberedDocCreatesNoItem(t *testing.T) {
	doc, warnings := align.Group(classified(domain.RolePO, "Qty: many"))

	assert.Empty(t, doc.Items)
	assert.Equal(t, []domain.WarningKind{domain.WarnUnparsedValue}, kinds(warnings))
}

func TestGroup_PricesOnTotalLineStayDocumentLevel(t *testing.T) {
	doc, warnings := align.Group(classified(domain.RoleOA, "Order Total Amount: $10,452.00"))

	assert.Empty(t, warnings)
	assert.Empty(t, doc.Items)
	require.NotNil(t, doc.Total.Final)
	assert.Equal(t, "10452", doc.Total.Final.String())
}

func TestGroup_LastTotalWins(t *testing.T) {
	doc, _ := align.Group(classified(domain.RolePO,
		"Order Total: $100.00",
		"Grand Total: $110.00",
	))

	assert.Equal(t, "110", doc.Total.Final.String())
}
