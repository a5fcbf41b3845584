package handlers

import (
	"context"
	"regexp"

	"github.com/jonathan/story-digest/internal/assets"
	"github.com/jonathan/story-digest/internal/metadata"
	"github.com/jonathan/story-digest/internal/types"
)

var githubRepoURL = regexp.MustCompile(`^https?://github\.com/[\w.-]+/[\w.-]+(?:\?.*)?$`)

// GitHub handles repository landing pages.
type GitHub struct{}

func (GitHub) Name() string { return "github" }

// Test matches owner/repo URLs with an optional query and nothing deeper.
func (GitHub) Test(ref types.Reference) bool {
	return githubRepoURL.MatchString(ref.MainURL)
}

func (h GitHub) Work(ctx context.Context, index types.Index, ref types.Reference, env *Env) types.StoryRecord {
	html := env.page(ctx, h.Name(), index, ref.MainURL)

	d, found := pageMetadata(env.Extractor, html, ref.Title)
	text := env.Extractor.Extract(html)
	if found {
		text = d.Description + " " + text
	}

	// the social preview card
	if d.Image != "" {
		env.Cache.Ensure(ctx, index, assets.KindPNG, env.download(h.Name(), index, d.Image))
	}

	return newStory(ref, env.image(index, assets.KindPNG), text, metadata.BuildProperties(d, ref.SubURL))
}
