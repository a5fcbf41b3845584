// Package pipeline routes references to handlers and resolves batches of them.
package pipeline

import (
	"context"
	"fmt"

	"github.com/jonathan/story-digest/internal/handlers"
	"github.com/jonathan/story-digest/internal/types"
)

// Dispatcher picks the first handler whose Test accepts a reference.
// The fallback is consulted only after every ordered handler declined.
type Dispatcher struct {
	ordered  []handlers.Handler
	fallback handlers.Handler
}

// NewDispatcher creates a dispatcher trying ordered in sequence, then fallback.
func NewDispatcher(fallback handlers.Handler, ordered ...handlers.Handler) *Dispatcher {
	return &Dispatcher{ordered: ordered, fallback: fallback}
}

// DefaultDispatcher tries YouTube, GitHub and PDF before the Default handler.
func DefaultDispatcher() *Dispatcher {
	return NewDispatcher(handlers.Default{}, handlers.YouTube{}, handlers.GitHub{}, handlers.PDF{})
}

// Handlers lists the handlers in the order they are consulted.
func (d *Dispatcher) Handlers() []handlers.Handler {
	all := make([]handlers.Handler, 0, len(d.ordered)+1)
	all = append(all, d.ordered...)
	return append(all, d.fallback)
}

// Select returns the handler that will process ref.
func (d *Dispatcher) Select(ref types.Reference) handlers.Handler {
	for _, h := range d.ordered {
		if h.Test(ref) {
			return h
		}
	}
	return d.fallback
}

// Resolve produces the StoryRecord for one reference. It never fails: a handler
// that panics yields a degraded record carrying only the reference's own fields.
func (d *Dispatcher) Resolve(ctx context.Context, index types.Index, ref types.Reference, env *handlers.Env) types.StoryRecord {
	story, _ := d.resolve(ctx, index, ref, env)
	return story
}

func (d *Dispatcher) resolve(ctx context.Context, index types.Index, ref types.Reference, env *handlers.Env) (story types.StoryRecord, name string) {
	name = "unselected"
	defer func() {
		if r := recover(); r != nil {
			env.Metrics.AdapterFailed("handler")
			env.Logger.Error().
				Str("index", index.String()).
				Str("url", ref.MainURL).
				Str("handler", name).
				Str("panic", fmt.Sprint(r)).
				Msg("handler panicked, emitting degraded story")
			story = degraded(ref, env.Sentinel)
		}
	}()

	h := d.Select(ref)
	name = h.Name()
	env.Metrics.HandlerSelected(name)
	env.Logger.Debug().Str("index", index.String()).Str("url", ref.MainURL).Str("handler", name).Msg("resolving reference")

	return h.Work(ctx, index, ref, env), name
}

func degraded(ref types.Reference, sentinel string) types.StoryRecord {
	return types.StoryRecord{
		Title:      ref.Text,
		URL:        ref.MainURL,
		Image:      sentinel,
		Category:   ref.Category,
		Properties: []types.PropertyEntry{},
	}
}
