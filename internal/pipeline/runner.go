package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/story-digest/internal/handlers"
	"github.com/jonathan/story-digest/internal/types"
)

// Item is one reference of a batch with its cache index.
type Item struct {
	Index     types.Index
	Reference types.Reference
}

// Items assigns indices to references: the reference's own index when set,
// otherwise its position in refs. Two references resolving to the same index
// would share cache assets, so that is an error.
func Items(refs []types.Reference) ([]Item, error) {
	items := make([]Item, len(refs))
	owners := make(map[types.Index]int, len(refs))
	for i, ref := range refs {
		index := types.IndexFromInt(i)
		if ref.Index != nil && *ref.Index != "" {
			index = *ref.Index
		}
		if prev, ok := owners[index]; ok {
			return nil, fmt.Errorf("references %d and %d both use index %q", prev, i, index)
		}
		owners[index] = i
		items[i] = Item{Index: index, Reference: ref}
	}
	return items, nil
}

// ProgressEvent reports a resolved item.
type ProgressEvent struct {
	Position int
	Total    int
	Index    types.Index
	Handler  string
	Story    *types.StoryRecord
}

// ProgressCallback is called after each item is resolved. It may be called from several goroutines.
type ProgressCallback func(event ProgressEvent)

// Runner resolves batches of references with bounded parallelism.
type Runner struct {
	Dispatcher *Dispatcher
	Env        *handlers.Env
	// Workers bounds concurrent resolutions; values below 1 mean sequential.
	Workers    int
	OnProgress ProgressCallback
}

// Run resolves every item. The returned records are in input order.
func (r *Runner) Run(ctx context.Context, items []Item) []types.StoryRecord {
	workers := r.Workers
	if workers < 1 {
		workers = 1
	}

	stories := make([]types.StoryRecord, len(items))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, item := range items {
		g.Go(func() error {
			story, handler := r.Dispatcher.resolve(gCtx, item.Index, item.Reference, r.Env)
			stories[i] = story
			if r.OnProgress != nil {
				r.OnProgress(ProgressEvent{
					Position: i,
					Total:    len(items),
					Index:    item.Index,
					Handler:  handler,
					Story:    &story,
				})
			}
			return nil
		})
	}

	// Resolve never fails, so Wait has nothing to report
	_ = g.Wait()
	return stories
}
