package handlers

import (
	"context"
	"net/url"
	"path"

	"github.com/jonathan/story-digest/internal/assets"
	"github.com/jonathan/story-digest/internal/metadata"
	"github.com/jonathan/story-digest/internal/types"
)

// PDF handles links to PDF documents.
type PDF struct{}

func (PDF) Name() string { return "pdf" }

// Test matches URLs whose path ends in ".pdf". The comparison is case-sensitive.
func (PDF) Test(ref types.Reference) bool {
	u, err := url.Parse(ref.MainURL)
	if err != nil {
		return false
	}
	return path.Ext(u.Path) == ".pdf"
}

func (h PDF) Work(ctx context.Context, index types.Index, ref types.Reference, env *Env) types.StoryRecord {
	text := ""
	if env.Cache.Ensure(ctx, index, assets.KindPDF, env.download(h.Name(), index, ref.MainURL)) {
		doc := env.Cache.Path(index, assets.KindPDF)

		env.Cache.Ensure(ctx, index, assets.KindPNG, env.logged("render", h.Name(), index, ref.MainURL, func(ctx context.Context) ([]byte, error) {
			return env.Documents.RenderFirstPage(ctx, doc)
		}))

		var err error
		text, err = h.leadingText(ctx, env, doc)
		if err != nil {
			env.failed(err, "document", h.Name(), index, ref.MainURL)
		}
	}

	counts := metadata.DeriveCounts(ref.Title, metadata.Dict{})
	props := metadata.AddStats([]types.PropertyEntry{}, counts, ref.SubURL)

	return newStory(ref, env.image(index, assets.KindPNG), text, props)
}

// leadingText returns page 1, joined with page 2 when there is one. Later pages are never read.
func (h PDF) leadingText(ctx context.Context, env *Env, doc string) (string, error) {
	pages, err := env.Documents.PageCount(ctx, doc)
	if err != nil {
		return "", err
	}
	if pages < 1 {
		return "", nil
	}

	text, err := env.Documents.ExtractText(ctx, 1, doc)
	if err != nil {
		return "", err
	}
	if pages > 1 {
		second, err := env.Documents.ExtractText(ctx, 2, doc)
		if err != nil {
			return text, err
		}
		text += " " + second
	}
	return text, nil
}
