package align_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordercheck/internal/align"
	"ordercheck/internal/domain"
)

func numbered(start, end int) *domain.LineItem {
	return &domain.LineItem{Range: &domain.LineRange{Start: start, End: end}}
}

func items(starts ...int) []*domain.LineItem {
	out := make([]*domain.LineItem, len(starts))
	for i, s := range starts {
		out[i] = numbered(s, s)
	}
	return out
}

func withModel(it *domain.LineItem, model string) *domain.LineItem {
	it.Model = &model
	return it
}

// refs renders pairs as "oa|po" with "-" for a missing side.
func refs(pairs []domain.AlignedPair) []string {
	out := make([]string, len(pairs))
	for i, p := range pairs {
		l, r := "-", "-"
		if p.OA != nil {
			l = p.OA.Ref()
		}
		if p.PO != nil {
			r = p.PO.Ref()
		}
		out[i] = l + "|" + r
	}
	return out
}

// assertPartition checks that every item appears in exactly one pair.
func assertPartition(t *testing.T, oa, po []*domain.LineItem, pairs []domain.AlignedPair) {
	t.Helper()
	seen := make(map[*domain.LineItem]int)
	for _, p := range pairs {
		require.False(t, p.OA == nil && p.PO == nil, "empty pair")
		if p.OA != nil {
			seen[p.OA]++
		}
		if p.PO != nil {
			seen[p.PO]++
		}
	}
	for _, it := range append(append([]*domain.LineItem{}, oa...), po...) {
		assert.Equal(t, 1, seen[it], "item %s", it.Ref())
	}
	assert.Len(t, seen, len(oa)+len(po))
}

func TestAlign_IdenticalNumbering(t *testing.T) {
	oa, po := items(10, 20, 30), items(10, 20, 30)

	res := align.NewAligner(0).Align(oa, po)

	assert.Equal(t, align.ModeNumbered, res.Mode)
	assert.Equal(t, []string{"10|10", "20|20", "30|30"}, refs(res.Pairs))
	assert.Empty(t, res.Warnings)
}

func TestAlign_MissingLinesInterleaveByNumber(t *testing.T) {
	oa, po := items(10, 30, 40, 420), items(10, 20, 30, 40)

	res := align.NewAligner(0).Align(oa, po)

	assert.Equal(t, []string{"10|10", "-|20", "30|30", "40|40", "420|-"}, refs(res.Pairs))
	assertPartition(t, oa, po, res.Pairs)
}

func TestAlign_RangeOverlapPrefersAgreeingItem(t *testing.T) {
	oa := []*domain.LineItem{withModel(numbered(10, 30), "3051CD2A1")}
	po := []*domain.LineItem{
		withModel(numbered(10, 10), "644HANJ6"),
		withModel(numbered(20, 20), "3051CD2A1"),
	}

	res := align.NewAligner(0).Align(oa, po)

	assert.Equal(t, []string{"-|10", "10-30|20"}, refs(res.Pairs))
}

func TestAlign_ExactRangeBeatsOverlap(t *testing.T) {
	oa := items(10)
	po := []*domain.LineItem{numbered(5, 15), numbered(10, 10)}

	res := align.NewAligner(0).Align(oa, po)

	assert.Equal(t, []string{"-|5-15", "10|10"}, refs(res.Pairs))
}

func TestAlign_Window(t *testing.T) {
	oa, po := items(10), items(12)

	assert.Equal(t, align.ModePositional, align.NewAligner(0).Align(oa, po).Mode)

	res := align.NewAligner(5).Align(oa, po)
	assert.Equal(t, align.ModeNumbered, res.Mode)
	assert.Equal(t, []string{"10|12"}, refs(res.Pairs))
}

func TestAlign_NoSharedNumbersFallsBackToPosition(t *testing.T) {
	oa, po := items(10, 20), items(1, 2, 3)

	res := align.NewAligner(0).Align(oa, po)

	assert.Equal(t, align.ModePositional, res.Mode)
	assert.Equal(t, []string{"10|1", "20|2", "-|3"}, refs(res.Pairs))
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, domain.WarnAmbiguousAlignment, res.Warnings[0].Kind)
	assert.Equal(t, "OA 10-20 / PO 1-3", res.Warnings[0].Lines)
	assert.Equal(t, "ambiguous alignment: OA and PO share no line numbers; items aligned by position", res.Warnings[0].Message)
}

func TestAlign_OutOfOrderNumbersFallBackToPosition(t *testing.T) {
	oa, po := items(20, 10), items(10, 20)

	res := align.NewAligner(0).Align(oa, po)

	assert.Equal(t, align.ModePositional, res.Mode)
	assert.Equal(t, []string{"20|10", "10|20"}, refs(res.Pairs))
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, domain.RoleOA, res.Warnings[0].Role)
	assert.Equal(t, "10 after 20", res.Warnings[0].Lines)
}

func TestAlign_UnnumberedPositional(t *testing.T) {
	oa := []*domain.LineItem{{}, {}}
	po := []*domain.LineItem{{}, {}}

	res := align.NewAligner(0).Align(oa, po)
	assert.Equal(t, align.ModePositional, res.Mode)
	assert.Len(t, res.Pairs, 2)
	assert.Empty(t, res.Warnings)

	res = align.NewAligner(0).Align(oa, po[:1])
	assert.Len(t, res.Pairs, 2)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, domain.WarnAmbiguousAlignment, res.Warnings[0].Kind)
	assertPartition(t, oa, po[:1], res.Pairs)
}

func TestAlign_EmptySide(t *testing.T) {
	res := align.NewAligner(0).Align(nil, items(10, 20))
	assert.Equal(t, []string{"-|10", "-|20"}, refs(res.Pairs))

	res = align.NewAligner(0).Align(nil, nil)
	assert.Empty(t, res.Pairs)
}

func TestAlign_Partition(t *testing.T) {
	cases := [][2][]int{
		{{10, 20, 30}, {20}},
		{{5}, {1, 5, 9, 13}},
		{{1, 2, 3, 4, 5}, {2, 4, 6}},
		{{100, 200}, {100, 150, 200, 250}},
	}
	for _, c := range cases {
		oa, po := items(c[0]...), items(c[1]...)
		res := align.NewAligner(0).Align(oa, po)
		assertPartition(t, oa, po, res.Pairs)
	}
}

func TestAgreement(t *testing.T) {
	x := withModel(numbered(10, 10), " 3051CD2A1 ")
	y := withModel(numbered(10, 10), "3051CD2A1")
	x.Tags = []string{"FT-101", "FT-102"}
	y.Tags = []string{"ft 102"}
	q := 2
	x.Quantity, y.Quantity = &q, &q

	assert.Equal(t, 3, align.Agreement(x, y))
}
