// Package types provides type definitions for structured data used throughout the story-digest pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strconv"

// Reference is one input item describing a URL and its display metadata.
// The pipeline only reads it.
type Reference struct {
	Index    *Index `json:"index,omitempty"`
	MainURL  string `json:"mainurl"`
	SubURL   string `json:"suburl,omitempty"`   // Attribution link, e.g. the discussion thread
	Text     string `json:"text"`               // Display title
	Title    string `json:"title,omitempty"`    // May encode "N points, M comments"
	Category string `json:"category,omitempty"` // Display grouping
}

// Index is the stable cache key identifying one Reference across runs.
type Index string

// IndexFromInt formats a positional index.
func IndexFromInt(i int) Index {
	return Index(strconv.Itoa(i))
}

func (i Index) String() string {
	return string(i)
}

// UnmarshalJSON accepts both numeric and string indices.
func (i *Index) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return err
		}
		*i = Index(s)
		return nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return err
	}
	*i = Index(strconv.FormatInt(n, 10))
	return nil
}
