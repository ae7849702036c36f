package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/agfdbk.net/internal/domain"
)

func diffLines(t *testing.T, expected, actual string, opts domain.DiffOptions) []string {
	t.Helper()
	res, err := NewLineDiffer().Diff([]byte(expected), []byte(actual), opts)
	require.NoError(t, err)
	return res.DiffContent
}

func TestDiffIdentical(t *testing.T) {
	res, err := NewLineDiffer().Diff([]byte("a\nb\n"), []byte("a\nb\n"), domain.DiffOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"  a", "  b"}, res.DiffContent)
	assert.True(t, res.DiffPass())
}

func TestDiffReplaceInsertDelete(t *testing.T) {
	assert.Equal(t,
		[]string{"  a", "- b", "+ B", "  c", "+ d"},
		diffLines(t, "a\nb\nc\n", "a\nB\nc\nd\n", domain.DiffOptions{}))

	assert.Equal(t,
		[]string{"- a", "  b"},
		diffLines(t, "a\nb\n", "b\n", domain.DiffOptions{}))
}

func TestDiffEmpty(t *testing.T) {
	res, err := NewLineDiffer().Diff(nil, nil, domain.DiffOptions{})
	require.NoError(t, err)
	assert.Empty(t, res.DiffContent)
	assert.True(t, res.DiffPass())

	assert.Equal(t, []string{"+ x"}, diffLines(t, "", "x\n", domain.DiffOptions{}))
}

func TestDiffMissingFinalNewline(t *testing.T) {
	assert.Equal(t, []string{"- a", "+ a"}, diffLines(t, "a\n", "a", domain.DiffOptions{}))
}

func TestDiffIgnoreCase(t *testing.T) {
	assert.Equal(t, []string{"  Hello"}, diffLines(t, "Hello\n", "hELLO\n", domain.DiffOptions{IgnoreCase: true}))
}

func TestDiffIgnoreWhitespace(t *testing.T) {
	lines := diffLines(t, "a b c\n", "abc\n", domain.DiffOptions{IgnoreWhitespace: true})
	assert.Equal(t, []string{"  a b c"}, lines)

	lines = diffLines(t, "a b c\n", "abc\n", domain.DiffOptions{IgnoreWhitespaceChanges: true})
	assert.Equal(t, []string{"- a b c", "+ abc"}, lines)
}

func TestDiffIgnoreWhitespaceChanges(t *testing.T) {
	lines := diffLines(t, "a  b\t c \n", "a b c\n", domain.DiffOptions{IgnoreWhitespaceChanges: true})
	assert.Equal(t, []string{"  a  b\t c "}, lines)
}

func TestDiffIgnoreBlankLines(t *testing.T) {
	opts := domain.DiffOptions{IgnoreBlankLines: true}
	assert.Equal(t, []string{"  a", "  b"}, diffLines(t, "a\n\nb\n", "a\nb\n  \n", opts))

	assert.Equal(t,
		[]string{"  a", "+ ", "  b"},
		diffLines(t, "a\nb\n", "a\n\nb\n", domain.DiffOptions{}))
}

func TestDiffNonUTF8(t *testing.T) {
	res, err := NewLineDiffer().Diff([]byte("ok\n"), []byte("ok\n\xff\xfe\\\n"), domain.DiffOptions{})
	require.NoError(t, err)
	require.Equal(t, []string{"  ok", `+ \xff\xfe\\`}, res.DiffContent)

	raw, err := UnescapeString(res.DiffContent[1][2:])
	require.NoError(t, err)
	assert.Equal(t, []byte("\xff\xfe\\"), raw)
}
