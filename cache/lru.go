// Copyright 2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package cache

// This file provides a simple LRU cache keyed by item identifier.  I
// know of at least two other implementations, though it is a pretty
// simple concept; this one fetches through a callback under its own
// lock, so concurrent misses on the same identifier do not both go
// to the backend.

import (
	"container/list"
	"sync"

	"github.com/diffeo/go-towel/resource"
)

// lru is a least-recently-used cache with a fixed capacity.  The cache
// can be safely accessed from multiple goroutines.
type lru struct {
	size      int
	lock      sync.RWMutex
	evictList *list.List
	index     map[int64]*list.Element
}

func newLRU(size int) *lru {
	return &lru{
		size:      size,
		evictList: list.New(),
		index:     make(map[int64]*list.Element),
	}
}

// Get retrieves an item from the cache.  If it is not present, calls
// the fetch function, and if that returns non-null, saves the item
// and returns it.  This should return an error only if the item is
// not present and the fetch function returns an error.
func (lru *lru) Get(id int64, fetch func(int64) (resource.Item, error)) (resource.Item, error) {
	// This sadly happens under a writer lock, since we need to move
	// the item to the front of the list if it is present
	lru.lock.Lock()
	defer lru.lock.Unlock()

	// Is it there?
	if element, present := lru.index[id]; present {
		lru.evictList.MoveToBack(element)
		return element.Value.(resource.Item), nil
	}

	// Otherwise call the fetch function
	item, err := fetch(id)
	if err != nil {
		return item, err
	}
	lru.add(item)
	return item, nil
}

// Peek looks for an item in the cache and returns it if present, or
// returns nil if absent.  This runs under a reader lock, and so can
// run concurrently with itself but not calls to Put or Get.  This
// does not affect the recency of the item.
func (lru *lru) Peek(id int64) resource.Item {
	lru.lock.RLock()
	defer lru.lock.RUnlock()

	if element, present := lru.index[id]; present {
		return element.Value.(resource.Item)
	}
	return nil
}

// Put adds an item to the LRU cache, possibly evicting something.
func (lru *lru) Put(item resource.Item) {
	lru.lock.Lock()
	defer lru.lock.Unlock()

	// Are we just updating an existing item?
	if element, present := lru.index[item.ID()]; present {
		element.Value = item
		lru.evictList.MoveToBack(element)
		return
	}

	// Otherwise add it
	lru.add(item)
}

// Remove takes an item out of the cache.  It does nothing if that
// identifier is not cached.
func (lru *lru) Remove(id int64) {
	lru.lock.Lock()
	defer lru.lock.Unlock()

	if element, present := lru.index[id]; present {
		delete(lru.index, id)
		lru.evictList.Remove(element)
	}
}

// Purge removes everything from the cache.
func (lru *lru) Purge() {
	lru.lock.Lock()
	defer lru.lock.Unlock()
	lru.evictList.Init()
	lru.index = make(map[int64]*list.Element)
}

// Len returns the number of cached items.
func (lru *lru) Len() int {
	lru.lock.RLock()
	defer lru.lock.RUnlock()
	return len(lru.index)
}

// add is an internal helper, running under the write lock, that adds a
// new item to the cache.  The item is known to not already exist.
func (lru *lru) add(item resource.Item) {
	element := lru.evictList.PushBack(item)
	lru.index[item.ID()] = element

	// If this caused the cache to go over size, start evicting items
	for len(lru.index) > lru.size {
		head := lru.evictList.Front()
		item := head.Value.(resource.Item)
		delete(lru.index, item.ID())
		lru.evictList.Remove(head)
	}
}
