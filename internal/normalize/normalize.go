// Package normalize shapes extracted body text for the typesetting target: it truncates,
// strips characters the renderer cannot take, drops blank lines and splits off a lead sentence.
package normalize

import (
	"strings"
)

const (
	// MaxBodyChars is the content budget of one story, in characters.
	MaxBodyChars = 1100
	// LeadWindow is how far into the text a lead-sentence terminator is searched for.
	LeadWindow = 200
	// MinLeadBoundary rejects terminators at or before this position (initials, abbreviations).
	MinLeadBoundary = 10
)

// unsafeChars are stripped because they break the LaTeX digest template.
var unsafeChars = strings.NewReplacer(
	"%", "",
	"\x1b", "",
	"\x0f", "",
	"\\", "",
)

// PrepBody runs the full pipeline: Truncate, Sanitize, RemoveEmptyLines, SplitLeadSentence.
// The returned lead is nil when no usable sentence boundary exists.
func PrepBody(text string) (*string, string) {
	text = Truncate(text, MaxBodyChars)
	text = Sanitize(text)
	text = RemoveEmptyLines(text)
	return SplitLeadSentence(text)
}

// Truncate returns the first n characters of text.
func Truncate(text string, n int) string {
	if n < 0 {
		n = 0
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}
	return text
}

// Sanitize removes the characters that corrupt the rendering target.
func Sanitize(text string) string {
	return unsafeChars.Replace(text)
}

// RemoveEmptyLines drops lines that are empty after trimming whitespace.
func RemoveEmptyLines(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// SplitLeadSentence splits text at the last '.', '?' or '!' among its first LeadWindow
// characters. A boundary at position MinLeadBoundary or earlier counts as no boundary,
// in which case the lead is nil and the whole text is returned.
func SplitLeadSentence(text string) (*string, string) {
	boundary, cut := -1, 0
	pos := 0
	for i, r := range text {
		if pos >= LeadWindow {
			break
		}
		if r == '.' || r == '?' || r == '!' {
			boundary, cut = pos, i+1
		}
		pos++
	}
	if boundary <= MinLeadBoundary {
		return nil, text
	}
	lead := text[:cut]
	return &lead, text[cut:]
}
