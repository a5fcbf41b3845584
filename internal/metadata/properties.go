package metadata

import (
	"github.com/jonathan/story-digest/internal/types"
)

// BuildProperties returns the ordered property list: author, date, site, then stats.
// Each entry is emitted only when its field has a value.
func BuildProperties(d Dict, attributionURL string) []types.PropertyEntry {
	props := []types.PropertyEntry{}
	if HasText(d.Author) {
		props = append(props, types.TextProperty(types.SymbolUser, d.Author))
	}
	if HasText(d.Date) {
		props = append(props, types.TextProperty(types.SymbolCalendar, d.Date))
	}
	if HasText(d.Hostname) {
		props = append(props, types.TextProperty(SymbolForHost(d.Hostname), d.Hostname))
	}
	return AddStats(props, d, attributionURL)
}

// AddStats appends the votes and comments entries, both linked to link.
func AddStats(props []types.PropertyEntry, d Dict, link string) []types.PropertyEntry {
	if d.Votes != nil {
		props = append(props, types.CountProperty(types.SymbolThumbsUp, *d.Votes, link))
	}
	if d.Comments != nil {
		props = append(props, types.CountProperty(types.SymbolComments, *d.Comments, link))
	}
	return props
}
