package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/jonathan/story-digest/internal/assets"
	"github.com/jonathan/story-digest/internal/imaging"
	"github.com/jonathan/story-digest/internal/metadata"
	"github.com/jonathan/story-digest/internal/observability"
	"github.com/jonathan/story-digest/internal/video"
	"github.com/rs/zerolog"
)

var errUnavailable = errors.New("unavailable")

type fakePages struct {
	pages map[string]string
	calls int
}

func (f *fakePages) Fetch(_ context.Context, url string) (string, error) {
	f.calls++
	if html, ok := f.pages[url]; ok {
		return html, nil
	}
	return "Could not download this url.", errUnavailable
}

type fakeDownloads struct {
	files map[string][]byte
	calls []string
}

func (f *fakeDownloads) Download(_ context.Context, url string) ([]byte, error) {
	f.calls = append(f.calls, url)
	if data, ok := f.files[url]; ok {
		return data, nil
	}
	return nil, errUnavailable
}

type fakeExtractor struct {
	text string
	meta *metadata.Dict
}

func (f *fakeExtractor) Extract(string) string { return f.text }

func (f *fakeExtractor) ExtractMetadata(string) *metadata.Dict {
	if f.meta == nil {
		return nil
	}
	d := *f.meta
	return &d
}

type fakeVideos struct {
	info  *video.Info
	calls int
}

func (f *fakeVideos) FetchInfo(context.Context, string) (*video.Info, error) {
	f.calls++
	if f.info == nil {
		return nil, errUnavailable
	}
	return f.info, nil
}

// fakeDocuments is a PDF with fixed page texts.
type fakeDocuments struct {
	pages     []string
	render    []byte
	pagesRead []int
}

func (f *fakeDocuments) PageCount(context.Context, string) (int, error) {
	return len(f.pages), nil
}

func (f *fakeDocuments) ExtractText(_ context.Context, page int, _ string) (string, error) {
	f.pagesRead = append(f.pagesRead, page)
	return f.pages[page-1], nil
}

func (f *fakeDocuments) RenderFirstPage(context.Context, string) ([]byte, error) {
	if f.render == nil {
		return nil, errUnavailable
	}
	return f.render, nil
}

type fakeScreens struct {
	png   []byte
	calls int
}

func (f *fakeScreens) Capture(context.Context, string) ([]byte, error) {
	f.calls++
	if f.png == nil {
		return nil, errUnavailable
	}
	return f.png, nil
}

type fakeImages struct {
	fail bool
}

func (f *fakeImages) Transcode(data []byte, format imaging.Format) ([]byte, error) {
	if f.fail {
		return nil, errUnavailable
	}
	return append([]byte(string(format)+":"), data...), nil
}

type testEnv struct {
	*Env
	pages     *fakePages
	downloads *fakeDownloads
	extractor *fakeExtractor
	videos    *fakeVideos
	documents *fakeDocuments
	screens   *fakeScreens
	images    *fakeImages
	metrics   *observability.Metrics
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	te := &testEnv{
		pages:     &fakePages{pages: map[string]string{}},
		downloads: &fakeDownloads{files: map[string][]byte{}},
		extractor: &fakeExtractor{},
		videos:    &fakeVideos{},
		documents: &fakeDocuments{},
		screens:   &fakeScreens{},
		images:    &fakeImages{},
		metrics:   observability.NewMetrics(),
	}
	te.Env = &Env{
		Cache:       assets.NewCache(assets.NewFileStore(t.TempDir()), te.metrics, zerolog.Nop()),
		Pages:       te.pages,
		Downloads:   te.downloads,
		Extractor:   te.extractor,
		Videos:      te.videos,
		Documents:   te.documents,
		Screenshots: te.screens,
		Images:      te.images,
		Metrics:     te.metrics,
		Sentinel:    "notfound.png",
		Logger:      zerolog.Nop(),
	}
	return te
}

