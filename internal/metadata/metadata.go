// Package metadata builds the display properties of a story: vote and comment counts
// derived from the title, host symbols, and the ordered property list.
package metadata

import (
	"regexp"
	"strconv"
	"strings"
)

// Dict is the metadata mined from a page, merged with derived counts.
// Votes and Comments are non-nil only when strictly positive.
type Dict struct {
	Title       string `json:"title,omitempty"`
	Author      string `json:"author,omitempty"`
	Date        string `json:"date,omitempty"` // YYYY-MM-DD when known
	Hostname    string `json:"hostname,omitempty"`
	SiteName    string `json:"sitename,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Votes       *int   `json:"votes,omitempty"`
	Comments    *int   `json:"comments,omitempty"`
}

var digitRun = regexp.MustCompile(`\d+`)

// DeriveCounts reads votes and comments from a title such as "128 points, 45 comments".
// Exactly two digit runs are required: the first is votes, the second comments.
// Any other number of runs leaves d untouched. Zero counts are never set.
//
// This is positional, not labelled; it only holds for titles in that format.
func DeriveCounts(title string, d Dict) Dict {
	numbers := digitRun.FindAllString(title, -1)
	if len(numbers) != 2 {
		return d
	}
	if votes, err := strconv.Atoi(numbers[0]); err == nil && votes > 0 {
		d.Votes = &votes
	}
	if comments, err := strconv.Atoi(numbers[1]); err == nil && comments > 0 {
		d.Comments = &comments
	}
	return d
}

// HasText reports whether s carries a displayable value.
func HasText(s string) bool {
	return strings.TrimSpace(s) != ""
}
