package assets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/jonathan/story-digest/internal/observability"
	"github.com/jonathan/story-digest/internal/types"
	"github.com/rs/zerolog"
)

// FetchFunc retrieves an asset from its origin.
type FetchFunc func(ctx context.Context) ([]byte, error)

// Cache applies the get-or-fetch policy on top of a Store: check, load on hit,
// fetch on miss and store only successful fetches. Failures are never cached,
// so the next run retries them.
type Cache struct {
	store   Store
	metrics *observability.Metrics
	logger  zerolog.Logger
}

// NewCache wraps a store. metrics may be nil.
func NewCache(store Store, metrics *observability.Metrics, logger zerolog.Logger) *Cache {
	return &Cache{store: store, metrics: metrics, logger: logger}
}

// Store exposes the underlying store.
func (c *Cache) Store() Store {
	return c.store
}

// Has reports whether an asset is present.
func (c *Cache) Has(index types.Index, kind Kind) bool {
	return c.store.Has(index, kind)
}

// Path returns the asset path.
func (c *Cache) Path(index types.Index, kind Kind) string {
	return c.store.Path(index, kind)
}

// Put stores data unconditionally.
func (c *Cache) Put(index types.Index, kind Kind, data []byte) error {
	return c.store.Save(index, kind, data)
}

// Bytes returns the cached asset or fetches and stores it.
func (c *Cache) Bytes(ctx context.Context, index types.Index, kind Kind, fetch FetchFunc) ([]byte, error) {
	if c.store.Has(index, kind) {
		data, err := c.store.Load(index, kind)
		if err == nil {
			c.metrics.CacheLookup(kind.Ext, true)
			return data, nil
		}
		if !errors.Is(err, ErrMiss) {
			c.logger.Warn().Err(err).Str("index", index.String()).Str("kind", kind.Ext).Msg("cached asset unreadable, refetching")
		}
	}
	c.metrics.CacheLookup(kind.Ext, false)

	data, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.store.Save(index, kind, data); err != nil {
		// The fetch succeeded; the caller still gets the data for this run.
		c.logger.Warn().Err(err).Str("index", index.String()).Str("kind", kind.Ext).Msg("failed to store asset")
	}
	return data, nil
}

// Ensure makes sure an asset exists, fetching it on a miss. It reports whether the asset is now present.
func (c *Cache) Ensure(ctx context.Context, index types.Index, kind Kind, fetch FetchFunc) bool {
	if c.store.Has(index, kind) {
		c.metrics.CacheLookup(kind.Ext, true)
		return true
	}
	if _, err := c.Bytes(ctx, index, kind, fetch); err != nil {
		return false
	}
	return c.store.Has(index, kind)
}

// Text is Bytes for text assets.
func (c *Cache) Text(ctx context.Context, index types.Index, kind Kind, fetch func(ctx context.Context) (string, error)) (string, error) {
	data, err := c.Bytes(ctx, index, kind, func(ctx context.Context) ([]byte, error) {
		s, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		return []byte(s), nil
	})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// JSON decodes a cached structured asset into v, or fetches one via fetch, stores it
// pretty-printed and decodes the stored form into v. A cached asset that does not
// decode is fetched again and overwritten.
func (c *Cache) JSON(ctx context.Context, index types.Index, kind Kind, v interface{}, fetch func(ctx context.Context) (interface{}, error)) error {
	if c.store.Has(index, kind) {
		data, err := c.store.Load(index, kind)
		if err == nil {
			if err = json.Unmarshal(data, v); err == nil {
				c.metrics.CacheLookup(kind.Ext, true)
				return nil
			}
		}
		if !errors.Is(err, ErrMiss) {
			c.logger.Warn().Err(err).Str("index", index.String()).Str("kind", kind.Ext).Msg("cached structured asset unusable, refetching")
		}
	}
	c.metrics.CacheLookup(kind.Ext, false)

	fetched, err := fetch(ctx)
	if err != nil {
		return err
	}
	data, err := MarshalStructured(fetched)
	if err != nil {
		return &Error{Index: index, Kind: kind, Message: "failed to encode structured asset", Cause: err}
	}
	if err := c.store.Save(index, kind, data); err != nil {
		c.logger.Warn().Err(err).Str("index", index.String()).Str("kind", kind.Ext).Msg("failed to store asset")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &Error{Index: index, Kind: kind, Message: "failed to decode structured asset", Cause: err}
	}
	return nil
}

// Purge removes every asset of an index.
func (c *Cache) Purge(index types.Index) error {
	var errs []error
	for _, kind := range Kinds {
		if err := c.store.Remove(index, kind); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// MarshalStructured encodes v as indented UTF-8 JSON with non-ASCII and HTML characters left unescaped.
func MarshalStructured(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
