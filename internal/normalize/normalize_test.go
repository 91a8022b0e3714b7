package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ordercheck/internal/normalize"
)

func TestTag(t *testing.T) {
	assert.Equal(t, normalize.Tag("SR1-01-XT-9025B"), normalize.Tag("SR1 01 XT 9025B"))
	assert.Equal(t, normalize.Tag("SR1-01-XT-9025B"), normalize.Tag("sr1–01–xt–9025b"))
	assert.NotEqual(t, normalize.Tag("SR1-01-XT-9025B"), normalize.Tag("SR1-01-XT-9025C"))
	assert.Equal(t, "SR101XT9025B", normalize.Tag(" SR1-01 XT-9025B "))
}

func TestTagSet_DedupesAfterNormalizing(t *testing.T) {
	got := normalize.TagSet([]string{"TT-101", "tt 101", "PT-202", " "})
	assert.Equal(t, []string{"TT101", "PT202"}, got)
}

func TestWhitespace(t *testing.T) {
	assert.Equal(t, "0-100 psi, 4-20 mA", normalize.Whitespace("  0-100   psi,\t4-20 mA "))
}

func TestPONumber(t *testing.T) {
	assert.Equal(t, "4500012345", normalize.PONumber("FO-88213/4500012345", "/"))
	assert.Equal(t, "4500012345", normalize.PONumber(" 4500012345 ", "/"))
	assert.Equal(t, "4500012345/A", normalize.PONumber("FO1/4500012345/A", "/"))
	assert.Equal(t, "/4500012345", normalize.PONumber("/4500012345", "/"))
	assert.Equal(t, "FO1/4500012345", normalize.PONumber("FO1/4500012345", ""))
}

func TestModel(t *testing.T) {
	assert.Equal(t, "3051CD2A", normalize.Model(" 3051CD2A\t"))
}
