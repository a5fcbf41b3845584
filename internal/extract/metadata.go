package extract

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	readability "github.com/go-shiori/go-readability"
	"github.com/jonathan/story-digest/internal/metadata"
)

// dateLayout is how dates are shown next to a story.
const dateLayout = "2006-01-02"

// ExtractMetadata mines <meta> tags, the canonical link and readability's byline for
// page metadata. It returns nil when the page yields nothing usable.
func (e *Extractor) ExtractMetadata(rawHTML string) *metadata.Dict {
	if strings.TrimSpace(rawHTML) == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}

	d := metadata.Dict{
		Title:       firstNonEmpty(metaContent(doc, "og:title", "twitter:title"), strings.TrimSpace(doc.Find("head title").First().Text())),
		Author:      metaContent(doc, "author", "article:author", "twitter:creator"),
		Description: metaContent(doc, "og:description", "description", "twitter:description"),
		Image:       metaContent(doc, "og:image", "og:image:url", "twitter:image"),
		SiteName:    metaContent(doc, "og:site_name", "application-name"),
		Hostname:    hostnameOf(firstNonEmpty(metaContent(doc, "og:url"), linkHref(doc, "canonical"))),
		Date:        formatDate(firstNonEmpty(metaContent(doc, "article:published_time", "date", "dc.date", "datePublished"), timeDatetime(doc))),
	}

	if article, err := readability.FromReader(strings.NewReader(rawHTML), nil); err == nil {
		d.Author = firstNonEmpty(d.Author, strings.TrimSpace(article.Byline))
		d.SiteName = firstNonEmpty(d.SiteName, strings.TrimSpace(article.SiteName))
		d.Image = firstNonEmpty(d.Image, strings.TrimSpace(article.Image))
		d.Title = firstNonEmpty(d.Title, strings.TrimSpace(article.Title))
		if d.Date == "" && article.PublishedTime != nil {
			d.Date = article.PublishedTime.Format(dateLayout)
		}
	}

	if d == (metadata.Dict{}) {
		return nil
	}
	return &d
}

// metaContent returns the first non-empty content of a <meta> whose name, property or itemprop matches a key.
func metaContent(doc *goquery.Document, keys ...string) string {
	for _, key := range keys {
		var value string
		doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			for _, attr := range []string{"property", "name", "itemprop"} {
				if v, ok := s.Attr(attr); ok && strings.EqualFold(strings.TrimSpace(v), key) {
					value = strings.TrimSpace(s.AttrOr("content", ""))
					if value != "" {
						return false
					}
				}
			}
			return true
		})
		if value != "" {
			return value
		}
	}
	return ""
}

func linkHref(doc *goquery.Document, rel string) string {
	var href string
	doc.Find("link[rel][href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		for _, r := range strings.Fields(s.AttrOr("rel", "")) {
			if strings.EqualFold(r, rel) {
				href = strings.TrimSpace(s.AttrOr("href", ""))
				return false
			}
		}
		return true
	})
	return href
}

func timeDatetime(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("time[datetime]").First().AttrOr("datetime", ""))
}

// hostnameOf returns the lowercase host of an absolute URL without a leading "www.".
func hostnameOf(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// formatDate normalizes a date to YYYY-MM-DD. Unparseable dates are dropped.
func formatDate(raw string) string {
	if raw == "" {
		return ""
	}
	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return ""
	}
	return t.Format(dateLayout)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
