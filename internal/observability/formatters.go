// Package observability provides logging, metrics and formatted output for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/story-digest/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most width runes, marking the cut with "...".
func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

// PrintStory outputs a human-readable summary of one resolved story.
func (p *Printer) PrintStory(index types.Index, story *types.StoryRecord) {
	if story == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("URL:      %s\n", story.URL))
	sb.WriteString(fmt.Sprintf("Category: %s\n", story.Category))
	sb.WriteString(fmt.Sprintf("Image:    %s\n", story.Image))
	if story.FirstLine != nil {
		sb.WriteString(fmt.Sprintf("Lead:     %s\n", *story.FirstLine))
	}
	sb.WriteString(fmt.Sprintf("Content:  %d chars\n", len([]rune(story.Content))))

	if len(story.Properties) > 0 {
		sb.WriteString("\nProperties:\n")
		count := min(len(story.Properties), maxItemsToShow)
		for i := 0; i < count; i++ {
			prop := story.Properties[i]
			sb.WriteString(fmt.Sprintf("  • %s: %v\n", prop.Symbol, prop.Value))
		}
		if len(story.Properties) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(story.Properties)-maxItemsToShow))
		}
	}

	p.printBox(fmt.Sprintf("#%s %s", index, story.Title), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintBatchSummary outputs how many stories were resolved and how many fell back to the sentinel image.
func (p *Printer) PrintBatchSummary(stories []types.StoryRecord, sentinel string) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Stories resolved: %d\n", len(stories)))

	missing := 0
	empty := 0
	for _, s := range stories {
		if s.Image == sentinel {
			missing++
		}
		if s.Content == "" && s.FirstLine == nil {
			empty++
		}
	}
	sb.WriteString(fmt.Sprintf("Without image:    %d\n", missing))
	sb.WriteString(fmt.Sprintf("Without content:  %d", empty))

	p.printBox("BATCH SUMMARY", sb.String())
}
