package metadata

import (
	"github.com/jonathan/story-digest/internal/types"
)

var hostSymbols = map[string]types.Symbol{
	"flikr.com":       types.SymbolFlikr,
	"medium.com":      types.SymbolMedium,
	"twitter.com":     types.SymbolTwitter,
	"wikipedia.org":   types.SymbolWikipedia,
	"reddit.com":      types.SymbolReddit,
	"ycombinator.com": types.SymbolYCombinator,

	"youtube.com": types.SymbolYoutube,
	"youtu.be":    types.SymbolYoutube,

	"github.com":  types.SymbolGithub,
	"github.io":   types.SymbolGithub,
	"github.blog": types.SymbolGithub,

	"nytimes.com":     types.SymbolNewspaper,
	"theguardian.com": types.SymbolNewspaper,
	"dev.to":          types.SymbolNewspaper,
	"techcrunch.com":  types.SymbolNewspaper,
	"wsj.com":         types.SymbolNewspaper,
	"arstechnica.com": types.SymbolNewspaper,
	"theverge.com":    types.SymbolNewspaper,
	"bbc.com":         types.SymbolNewspaper,
	"bloomberg.com":   types.SymbolNewspaper,
	"reuters.com":     types.SymbolNewspaper,
}

// SymbolForHost maps a hostname to its display symbol. Unknown hosts get the globe.
// Matching is exact on the hostname as reported by the page metadata.
func SymbolForHost(hostname string) types.Symbol {
	if symbol, ok := hostSymbols[hostname]; ok {
		return symbol
	}
	return types.SymbolGlobe
}
