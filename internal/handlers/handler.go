// Package handlers turns one Reference into a StoryRecord using a source-specific strategy.
package handlers

import (
	"context"

	"github.com/jonathan/story-digest/internal/assets"
	"github.com/jonathan/story-digest/internal/imaging"
	"github.com/jonathan/story-digest/internal/metadata"
	"github.com/jonathan/story-digest/internal/normalize"
	"github.com/jonathan/story-digest/internal/observability"
	"github.com/jonathan/story-digest/internal/types"
	"github.com/jonathan/story-digest/internal/video"
	"github.com/rs/zerolog"
)

// Handler is one extraction strategy. Work always produces a record; failures
// inside it degrade to placeholder text, empty content or the sentinel image.
type Handler interface {
	Name() string
	Test(ref types.Reference) bool
	Work(ctx context.Context, index types.Index, ref types.Reference, env *Env) types.StoryRecord
}

// PageFetcher downloads an HTML page. On failure it returns placeholder text and a non-nil error.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Downloader retrieves raw bytes.
type Downloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

// ContentExtractor pulls body text and metadata out of HTML.
type ContentExtractor interface {
	Extract(rawHTML string) string
	ExtractMetadata(rawHTML string) *metadata.Dict
}

// VideoInfoFetcher resolves a video URL into video information.
type VideoInfoFetcher interface {
	FetchInfo(ctx context.Context, url string) (*video.Info, error)
}

// DocumentReader reads PDF files already stored in the cache.
type DocumentReader interface {
	PageCount(ctx context.Context, path string) (int, error)
	ExtractText(ctx context.Context, page int, path string) (string, error)
	RenderFirstPage(ctx context.Context, path string) ([]byte, error)
}

// ScreenshotCapturer renders a page to PNG bytes.
type ScreenshotCapturer interface {
	Capture(ctx context.Context, url string) ([]byte, error)
}

// ImageTranscoder re-encodes an image.
type ImageTranscoder interface {
	Transcode(data []byte, format imaging.Format) ([]byte, error)
}

// Env is everything a handler may use. Screenshots may be nil to disable captures.
type Env struct {
	Cache       *assets.Cache
	Pages       PageFetcher
	Downloads   Downloader
	Extractor   ContentExtractor
	Videos      VideoInfoFetcher
	Documents   DocumentReader
	Screenshots ScreenshotCapturer
	Images      ImageTranscoder
	Metrics     *observability.Metrics
	// Sentinel is the image path used when no asset image exists.
	Sentinel string
	Logger   zerolog.Logger
}

// page returns the cached HTML of url, fetching it on a miss. A failed fetch
// yields the fetcher's placeholder text, which is not cached.
func (e *Env) page(ctx context.Context, handler string, index types.Index, url string) string {
	var placeholder string
	html, err := e.Cache.Text(ctx, index, assets.KindHTML, func(ctx context.Context) (string, error) {
		text, err := e.Pages.Fetch(ctx, url)
		if err != nil {
			placeholder = text
			return "", err
		}
		return text, nil
	})
	if err != nil {
		e.failed(err, "fetch", handler, index, url)
		return placeholder
	}
	return html
}

// download returns a fetch func that downloads url and records failures.
func (e *Env) download(handler string, index types.Index, url string) assets.FetchFunc {
	return e.logged("download", handler, index, url, func(ctx context.Context) ([]byte, error) {
		return e.Downloads.Download(ctx, url)
	})
}

// logged wraps fetch so that a failure is logged at warn and counted against adapter.
func (e *Env) logged(adapter, handler string, index types.Index, url string, fetch assets.FetchFunc) assets.FetchFunc {
	return func(ctx context.Context) ([]byte, error) {
		data, err := fetch(ctx)
		if err != nil {
			e.failed(err, adapter, handler, index, url)
		}
		return data, err
	}
}

func (e *Env) failed(err error, adapter, handler string, index types.Index, url string) {
	e.Metrics.AdapterFailed(adapter)
	e.Logger.Warn().
		Err(err).
		Str("adapter", adapter).
		Str("handler", handler).
		Str("index", index.String()).
		Str("url", url).
		Msg("adapter failed")
}

// image returns the path of the first present kind, or the sentinel.
func (e *Env) image(index types.Index, kinds ...assets.Kind) string {
	for _, kind := range kinds {
		if e.Cache.Has(index, kind) {
			return e.Cache.Path(index, kind)
		}
	}
	return e.Sentinel
}

// newStory assembles the record shared by every handler; text is normalized here.
func newStory(ref types.Reference, image, text string, props []types.PropertyEntry) types.StoryRecord {
	lead, body := normalize.PrepBody(text)
	if props == nil {
		props = []types.PropertyEntry{}
	}
	return types.StoryRecord{
		Title:      ref.Text,
		URL:        ref.MainURL,
		Image:      image,
		Category:   ref.Category,
		FirstLine:  lead,
		Content:    body,
		Properties: props,
	}
}

// pageMetadata extracts metadata from html merged with the counts derived from title.
func pageMetadata(extractor ContentExtractor, html, title string) (metadata.Dict, bool) {
	var d metadata.Dict
	md := extractor.ExtractMetadata(html)
	if md != nil {
		d = *md
	}
	return metadata.DeriveCounts(title, d), md != nil
}
