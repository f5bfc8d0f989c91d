// Copyright 2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package cache provides a read-through cache of items in front of
// any resource.Collection.  Lookups by identifier, both single and
// bulk, are served from a fixed-size LRU cache where possible; counts
// and listing slices always go to the backend.
//
// Writers that change items behind the cache must call Remove (or
// Purge) so readers do not see stale data.
package cache

import (
	"github.com/diffeo/go-towel/resource"
)

// DefaultSize is the number of items cached if New is called with a
// non-positive size.
const DefaultSize = 1024

// Collection wraps a backend collection with a cache.
type Collection struct {
	backend resource.Collection
	lru     *lru
}

// New wraps backend with a cache of up to size items.
func New(backend resource.Collection, size int) *Collection {
	if size <= 0 {
		size = DefaultSize
	}
	return &Collection{
		backend: backend,
		lru:     newLRU(size),
	}
}

// Backend returns the wrapped collection.
func (c *Collection) Backend() resource.Collection {
	return c.backend
}

// Kind returns the backend's kind.
func (c *Collection) Kind() resource.Kind {
	return c.backend.Kind()
}

// Get returns a cached item, or fetches and caches it.
func (c *Collection) Get(id int64) (resource.Item, error) {
	return c.lru.Get(id, c.backend.Get)
}

// GetMany returns the cached items among ids, fetching the rest from
// the backend in a single call.  The result is in the order of ids.
func (c *Collection) GetMany(ids []int64) ([]resource.Item, error) {
	found := make(map[int64]resource.Item, len(ids))
	var missing []int64
	for _, id := range ids {
		if item := c.lru.Peek(id); item != nil {
			found[id] = item
		} else {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		fetched, err := c.backend.GetMany(missing)
		if err != nil {
			return nil, err
		}
		for _, item := range fetched {
			c.lru.Put(item)
			found[item.ID()] = item
		}
	}
	var result []resource.Item
	for _, id := range ids {
		if item, present := found[id]; present {
			result = append(result, item)
		}
	}
	return result, nil
}

// Count always asks the backend.
func (c *Collection) Count() (int, error) {
	return c.backend.Count()
}

// Slice always asks the backend, but remembers the items it returns.
func (c *Collection) Slice(offset, limit int) ([]resource.Item, error) {
	items, err := c.backend.Slice(offset, limit)
	if err == nil {
		for _, item := range items {
			c.lru.Put(item)
		}
	}
	return items, err
}

// Search passes the query to the backend, if it can search.  The
// result is not cached, since its membership differs from the
// backend's.
func (c *Collection) Search(query resource.Query) (resource.Collection, error) {
	searcher, ok := c.backend.(resource.Searcher)
	if !ok {
		return nil, errNoSearch{Kind: c.Kind().Name}
	}
	return searcher.Search(query)
}

// Remove drops a single item from the cache.
func (c *Collection) Remove(id int64) {
	c.lru.Remove(id)
}

// Purge drops everything from the cache.
func (c *Collection) Purge() {
	c.lru.Purge()
}

type errNoSearch struct {
	Kind string
}

func (e errNoSearch) Error() string {
	return "cannot search " + e.Kind
}
