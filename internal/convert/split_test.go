package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCharSplitterDefaultDelimiter(t *testing.T) {
	sp, err := NewSplitter(DefaultDelimiter, ModeChars)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "", "c"}, sp.Split("a/b()c"))
	assert.Equal(t, []string{"a", "b", "c"}, values(sp, "a/b()c"))
	assert.True(t, sp.Contains("x(y"))
	assert.False(t, sp.Contains(`x\y`))
}

func TestCharSplitterTrailingBackslash(t *testing.T) {
	sp, err := NewSplitter(`;\`, ModeChars)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, sp.Split(`a;b\c`))
}

func TestRegexpSplitter(t *testing.T) {
	sp, err := NewSplitter(`[/()]`, ModeRegexp)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, values(sp, "a/b()c"))
	assert.True(t, sp.Contains("a)"))
}

func TestRegexpSplitterRejectsEmptyMatch(t *testing.T) {
	_, err := NewSplitter(`/*`, ModeRegexp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty string")

	_, err = NewSplitter(`(`, ModeRegexp)
	require.Error(t, err)
}

func TestLiteralSplitter(t *testing.T) {
	sp, err := NewSplitter("||", ModeLiteral)
	require.NoError(t, err)

	assert.Equal(t, []string{"a|b", "c"}, values(sp, "a|b||c"))
	assert.False(t, sp.Contains("a|b"))
}

func TestNewSplitterErrors(t *testing.T) {
	_, err := NewSplitter("", ModeChars)
	require.Error(t, err)

	_, err = NewSplitter("/", DelimiterMode("glob"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "glob")
}

func TestValuesDropsBlankSegments(t *testing.T) {
	sp, err := NewSplitter(DefaultDelimiter, ModeChars)
	require.NoError(t, err)

	assert.Empty(t, values(sp, "/ ()/"))
	assert.Equal(t, []string{" a", "b "}, values(sp, " a/ /b "))
}
