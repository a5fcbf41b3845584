package handlers

import (
	"context"

	"github.com/jonathan/story-digest/internal/assets"
	"github.com/jonathan/story-digest/internal/metadata"
	"github.com/jonathan/story-digest/internal/types"
)

// Default handles any page: screenshot, HTML text and page metadata.
type Default struct{}

func (Default) Name() string { return "default" }

// Test always matches.
func (Default) Test(types.Reference) bool { return true }

func (h Default) Work(ctx context.Context, index types.Index, ref types.Reference, env *Env) types.StoryRecord {
	h.ensureScreenshot(ctx, index, ref.MainURL, env)

	html := env.page(ctx, h.Name(), index, ref.MainURL)
	text := env.Extractor.Extract(html)
	d, _ := pageMetadata(env.Extractor, html, ref.Title)

	image := env.image(index, assets.KindPNG, assets.KindJPG)
	return newStory(ref, image, text, metadata.BuildProperties(d, ref.SubURL))
}

// ensureScreenshot captures the page unless an image of either kind is already cached.
func (h Default) ensureScreenshot(ctx context.Context, index types.Index, url string, env *Env) {
	if env.Screenshots == nil {
		return
	}
	if env.Cache.Has(index, assets.KindPNG) || env.Cache.Has(index, assets.KindJPG) {
		return
	}
	env.Cache.Ensure(ctx, index, assets.KindPNG, env.logged("screenshot", h.Name(), index, url, func(ctx context.Context) ([]byte, error) {
		return env.Screenshots.Capture(ctx, url)
	}))
}
