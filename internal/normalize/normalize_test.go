package normalize

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		n        int
		expected string
	}{
		{"empty", "", 5, ""},
		{"shorter", "abc", 5, "abc"},
		{"exact", "abcde", 5, "abcde"},
		{"longer", "abcdefgh", 5, "abcde"},
		{"multibyte", "héllo wörld", 4, "héll"},
		{"zero", "abc", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Truncate(tt.input, tt.n))
		})
	}
}

func TestTruncate_IsBoundedPrefix(t *testing.T) {
	inputs := []string{
		strings.Repeat("a", 5000),
		strings.Repeat("ü", 1200),
		strings.Repeat("line one.\n\n", 300),
		"short",
	}

	for _, input := range inputs {
		out := Truncate(input, MaxBodyChars)
		assert.LessOrEqual(t, utf8.RuneCountInString(out), MaxBodyChars)
		assert.True(t, strings.HasPrefix(input, out))
	}
}

func TestSanitize(t *testing.T) {
	input := "50% off\x1b[0m \x0fC:\\path\\file"
	assert.Equal(t, "50 off[0m C:pathfile", Sanitize(input))
}

func TestRemoveEmptyLines(t *testing.T) {
	input := "first\n\n   \n\tsecond\n\t\nthird\n"
	assert.Equal(t, "first\n\tsecond\nthird", RemoveEmptyLines(input))
}

func TestSplitLeadSentence_UsesLastTerminatorInWindow(t *testing.T) {
	text := "Go is fun. It is fast! Is it simple? Yes and more follows here"

	lead, rest := SplitLeadSentence(text)
	require.NotNil(t, lead)
	assert.Equal(t, "Go is fun. It is fast! Is it simple?", *lead)
	assert.Equal(t, " Yes and more follows here", rest)
}

func TestSplitLeadSentence_NoTerminator(t *testing.T) {
	text := "no sentence terminators in this text at all"

	lead, rest := SplitLeadSentence(text)
	assert.Nil(t, lead)
	assert.Equal(t, text, rest)
}

func TestSplitLeadSentence_BoundaryTooEarly(t *testing.T) {
	tests := []string{
		"J. Doe wrote a long article without more stops",
		"0123456789. and the rest goes on",
		"Mr. X",
	}

	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			lead, rest := SplitLeadSentence(text)
			assert.Nil(t, lead)
			assert.Equal(t, text, rest)
		})
	}
}

func TestSplitLeadSentence_BoundaryJustValid(t *testing.T) {
	text := "01234567890. rest"

	lead, rest := SplitLeadSentence(text)
	require.NotNil(t, lead)
	assert.Equal(t, "01234567890.", *lead)
	assert.Equal(t, " rest", rest)
}

func TestSplitLeadSentence_TerminatorOutsideWindow(t *testing.T) {
	text := strings.Repeat("a", LeadWindow) + ". tail"

	lead, rest := SplitLeadSentence(text)
	assert.Nil(t, lead)
	assert.Equal(t, text, rest)
}

func TestSplitLeadSentence_WindowCountsCharacters(t *testing.T) {
	// 199 two-byte runes, then a terminator at character position 199.
	text := strings.Repeat("é", LeadWindow-1) + ". tail"

	lead, rest := SplitLeadSentence(text)
	require.NotNil(t, lead)
	assert.Equal(t, strings.Repeat("é", LeadWindow-1)+".", *lead)
	assert.Equal(t, " tail", rest)
}

func TestPrepBody(t *testing.T) {
	input := "First 100% real sentence here.\n\n\nSecond paragraph with C:\\dir.\n"

	lead, rest := PrepBody(input)
	require.NotNil(t, lead)
	assert.Equal(t, "First 100 real sentence here.\nSecond paragraph with C:dir.", *lead)
	assert.Equal(t, "", rest)
}

func TestPrepBody_Empty(t *testing.T) {
	lead, rest := PrepBody("")
	assert.Nil(t, lead)
	assert.Equal(t, "", rest)
}

func TestPrepBody_NoLeadReturnsCleanedText(t *testing.T) {
	input := "alpha\n\nbeta\x1b\n  \ngamma"

	lead, rest := PrepBody(input)
	assert.Nil(t, lead)
	assert.Equal(t, "alpha\nbeta\ngamma", rest)
}

func TestPrepBody_TruncatesBeforeCleaning(t *testing.T) {
	input := strings.Repeat("%", MaxBodyChars) + "kept only if truncation ran late"

	lead, rest := PrepBody(input)
	assert.Nil(t, lead)
	assert.Equal(t, "", rest)
}
