package handlers

import (
	"context"
	"strings"

	"github.com/jonathan/story-digest/internal/assets"
	"github.com/jonathan/story-digest/internal/imaging"
	"github.com/jonathan/story-digest/internal/metadata"
	"github.com/jonathan/story-digest/internal/types"
	"github.com/jonathan/story-digest/internal/video"
)

const youtubeWatchPrefix = "https://www.youtube.com/watch?v="

// YouTube handles video watch pages.
type YouTube struct{}

func (YouTube) Name() string { return "youtube" }

// Test matches canonical watch URLs only; short links fall through to Default.
func (YouTube) Test(ref types.Reference) bool {
	return strings.HasPrefix(ref.MainURL, youtubeWatchPrefix)
}

func (h YouTube) Work(ctx context.Context, index types.Index, ref types.Reference, env *Env) types.StoryRecord {
	var info video.Info
	err := env.Cache.JSON(ctx, index, assets.KindJSON, &info, func(ctx context.Context) (interface{}, error) {
		return env.Videos.FetchInfo(ctx, ref.MainURL)
	})
	if err != nil {
		env.failed(err, "video", h.Name(), index, ref.MainURL)
	}

	image := env.Sentinel
	if info.Thumbnail != "" && env.Cache.Ensure(ctx, index, assets.KindJPG, env.download(h.Name(), index, info.Thumbnail)) {
		// the typesetter rejects some thumbnail JPEGs, so a PNG copy is what gets referenced
		toPNG := env.logged("transcode", h.Name(), index, info.Thumbnail, func(ctx context.Context) ([]byte, error) {
			jpg, err := env.Cache.Store().Load(index, assets.KindJPG)
			if err != nil {
				return nil, err
			}
			return env.Images.Transcode(jpg, imaging.FormatPNG)
		})
		if env.Cache.Ensure(ctx, index, assets.KindPNG, toPNG) {
			image = env.Cache.Path(index, assets.KindPNG)
		}
	}

	props := []types.PropertyEntry{}
	if author := info.Author(); metadata.HasText(author) {
		props = append(props, types.TextProperty(types.SymbolUser, author))
	}
	if date := info.FormattedUploadDate(); metadata.HasText(date) {
		props = append(props, types.TextProperty(types.SymbolCalendar, date))
	}
	props = append(props, types.TextProperty(metadata.SymbolForHost("youtube.com"), "youtube.com"))

	counts := metadata.DeriveCounts(ref.Title, metadata.Dict{})
	props = metadata.AddStats(props, counts, ref.SubURL)

	return newStory(ref, image, info.Description, props)
}
