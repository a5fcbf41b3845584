package types

// Symbol is a display tag rendered as an icon next to a property value.
type Symbol string

const (
	SymbolUser        Symbol = "User"
	SymbolCalendar    Symbol = "Calendar"
	SymbolGlobe       Symbol = "Globe"
	SymbolGithub      Symbol = "Github"
	SymbolMedium      Symbol = "Medium"
	SymbolTwitter     Symbol = "Twitter"
	SymbolNewspaper   Symbol = "NewspaperO"
	SymbolWikipedia   Symbol = "WikipediaW"
	SymbolReddit      Symbol = "Reddit"
	SymbolYCombinator Symbol = "YCombinator"
	SymbolYoutube     Symbol = "Youtube"
	SymbolFlikr       Symbol = "Flikr"
	SymbolThumbsUp    Symbol = "ThumbsOUp"
	SymbolComments    Symbol = "Comments"
)

// PropertyEntry is a single display statistic of a story.
// Value is either a string or an int.
type PropertyEntry struct {
	Symbol Symbol      `json:"symbol"`
	Value  interface{} `json:"value"`
	URL    *string     `json:"url"`
}

// TextProperty builds an entry without a link.
func TextProperty(symbol Symbol, value string) PropertyEntry {
	return PropertyEntry{Symbol: symbol, Value: value}
}

// CountProperty builds a numeric entry linked to link. An empty link is stored as null.
func CountProperty(symbol Symbol, value int, link string) PropertyEntry {
	entry := PropertyEntry{Symbol: symbol, Value: value}
	if link != "" {
		entry.URL = &link
	}
	return entry
}

// StoryRecord is the unified, renderer-facing output for one Reference.
type StoryRecord struct {
	Title      string          `json:"title"`
	URL        string          `json:"url"`
	Image      string          `json:"image"` // Local asset path or the sentinel image
	Category   string          `json:"category"`
	FirstLine  *string         `json:"firstline"`
	Content    string          `json:"content"`
	Properties []PropertyEntry `json:"properties"`
}
