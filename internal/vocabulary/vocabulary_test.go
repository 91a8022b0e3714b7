package vocabulary_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordercheck/internal/domain"
	"ordercheck/internal/vocabulary"
)

func TestDefault_CoversEveryRole(t *testing.T) {
	v := vocabulary.Default()

	for _, role := range domain.AllFieldRoles {
		assert.True(t, v.Has(role), "default vocabulary lacks role %s", role)
	}
	assert.NotEmpty(t, v.Version())
}

func TestDefault_KeywordsLongestFirst(t *testing.T) {
	kws := vocabulary.Default().Keywords()
	for i := 1; i < len(kws); i++ {
		assert.GreaterOrEqual(t, len(kws[i-1].Text), len(kws[i].Text))
	}
}

func TestParse_NormalizesKeywords(t *testing.T) {
	v, err := vocabulary.Parse([]byte(`{"roles":{"quantity":{"keywords":["  QTY   Ordered "]}}}`))
	require.NoError(t, err)
	require.Len(t, v.Keywords(), 1)
	assert.Equal(t, "qty ordered", v.Keywords()[0].Text)
	assert.Equal(t, domain.FieldQuantity, v.Keywords()[0].Role)
}

func TestParse_RejectsUnknownRole(t *testing.T) {
	_, err := vocabulary.Parse([]byte(`{"roles":{"colour":{"keywords":["colour"]}}}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidVocabulary)
}

func TestParse_RejectsRoleWithoutTriggers(t *testing.T) {
	_, err := vocabulary.Parse([]byte(`{"roles":{"tag":{}}}`))
	assert.ErrorIs(t, err, domain.ErrInvalidVocabulary)
}

func TestParse_RejectsKeywordOnTwoRoles(t *testing.T) {
	_, err := vocabulary.Parse([]byte(`{"roles":{"tag":{"keywords":["id"]},"model":{"keywords":["ID"]}}}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidVocabulary)
	assert.Contains(t, err.Error(), `"id"`)
}

func TestParse_RejectsBadPattern(t *testing.T) {
	_, err := vocabulary.Parse([]byte(`{"roles":{"tag":{"patterns":["([a-z"]}}}`))
	assert.ErrorIs(t, err, domain.ErrInvalidVocabulary)
}

func TestParse_PatternsAreCaseInsensitive(t *testing.T) {
	v, err := vocabulary.Parse([]byte(`{"roles":{"tag":{"patterns":["\\b(sr\\d-\\d{2}-xt-\\w+)"]}}}`))
	require.NoError(t, err)
	require.Len(t, v.Patterns(), 1)
	assert.True(t, v.Patterns()[0].Expr.MatchString("SR1-01-XT-9025B"))
}

func TestParse_RejectsMalformedJSON(t *testing.T) {
	_, err := vocabulary.Parse([]byte(`{"roles":`))
	assert.ErrorIs(t, err, domain.ErrInvalidVocabulary)
}

func TestLoad_EmptyPathIsDefault(t *testing.T) {
	v, err := vocabulary.Load("")
	require.NoError(t, err)
	assert.Equal(t, vocabulary.Default().Version(), v.Version())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":"custom","roles":{"model":{"keywords":["catalog"]}}}`), 0o600))

	v, err := vocabulary.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "custom", v.Version())
	assert.True(t, v.Has(domain.FieldModel))
	assert.False(t, v.Has(domain.FieldTag))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := vocabulary.Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
