// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package memory provides an in-process, in-memory implementation of
// resource.Collection.  There is no persistence.  Each collection is
// behind its own reader/writer lock; readers share it, and any
// change invalidates the cached sort order.
//
// This is mostly intended as a simple reference implementation that
// can be used for testing, including in-process testing of
// higher-level components.  It is tuned for correctness, not
// performance or scalability.
package memory

import (
	"sort"
	"strings"
	"sync"

	"github.com/diffeo/go-towel/resource"
)

// Collection is a mutable in-memory collection of items of one kind.
type Collection struct {
	kind   resource.Kind
	order  []resource.Ordering
	lock   sync.RWMutex
	items  map[int64]resource.Item
	sorted []resource.Item
	lastID int64
}

// New creates a new empty collection.  Items are listed in the order
// given, with ties broken by identifier; with no ordering, items are
// listed by identifier.
func New(kind resource.Kind, order ...resource.Ordering) *Collection {
	return &Collection{
		kind:  kind,
		order: order,
		items: make(map[int64]resource.Item),
	}
}

// NextID allocates a fresh identifier, larger than any identifier
// seen so far.
func (c *Collection) NextID() int64 {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.lastID++
	return c.lastID
}

// Put adds or replaces an item.
func (c *Collection) Put(item resource.Item) {
	c.lock.Lock()
	defer c.lock.Unlock()
	id := item.ID()
	c.items[id] = item
	if id > c.lastID {
		c.lastID = id
	}
	c.sorted = nil
}

// Delete removes an item.  Returns resource.ErrNoSuchItem if it was
// not there.
func (c *Collection) Delete(id int64) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if _, present := c.items[id]; !present {
		return resource.ErrNoSuchItem{Kind: c.kind.Name, ID: id}
	}
	delete(c.items, id)
	c.sorted = nil
	return nil
}

// Kind returns the kind of the collection's items.
func (c *Collection) Kind() resource.Kind {
	return c.kind
}

// Get retrieves a single item.
func (c *Collection) Get(id int64) (resource.Item, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	item, present := c.items[id]
	if !present {
		return nil, resource.ErrNoSuchItem{Kind: c.kind.Name, ID: id}
	}
	return item, nil
}

// GetMany retrieves the items that exist out of ids.
func (c *Collection) GetMany(ids []int64) ([]resource.Item, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	var result []resource.Item
	for _, id := range ids {
		if item, present := c.items[id]; present {
			result = append(result, item)
		}
	}
	return result, nil
}

// Count returns the number of items.
func (c *Collection) Count() (int, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return len(c.items), nil
}

// Slice returns a range of items in collection order.
func (c *Collection) Slice(offset, limit int) ([]resource.Item, error) {
	return sliceOf(c.snapshot(), offset, limit), nil
}

// Search returns a snapshot of the items matching query.
func (c *Collection) Search(query resource.Query) (resource.Collection, error) {
	if err := query.Validate(c.kind); err != nil {
		return nil, err
	}
	var matched []resource.Item
	for _, item := range c.snapshot() {
		if matches(c.kind, item, query) {
			matched = append(matched, item)
		}
	}
	if len(query.Order) > 0 {
		sortItems(matched, query.Order)
	}
	return &list{kind: c.kind, items: matched}, nil
}

// snapshot returns the sorted item list, rebuilding it if needed.
// The returned slice must not be modified.
func (c *Collection) snapshot() []resource.Item {
	c.lock.RLock()
	sorted := c.sorted
	c.lock.RUnlock()
	if sorted != nil {
		return sorted
	}

	c.lock.Lock()
	defer c.lock.Unlock()
	if c.sorted != nil {
		return c.sorted
	}
	sorted = make([]resource.Item, 0, len(c.items))
	for _, item := range c.items {
		sorted = append(sorted, item)
	}
	sortItems(sorted, c.order)
	c.sorted = sorted
	return sorted
}

// sortItems sorts in place by the orderings, then by identifier.
func sortItems(items []resource.Item, order []resource.Ordering) {
	sort.SliceStable(items, func(i, j int) bool {
		for _, o := range order {
			cmp := resource.CompareValues(
				resource.FieldValue(items[i], o.Field),
				resource.FieldValue(items[j], o.Field))
			if o.Descending {
				cmp = -cmp
			}
			if cmp != 0 {
				return cmp < 0
			}
		}
		return items[i].ID() < items[j].ID()
	})
}

func matches(kind resource.Kind, item resource.Item, query resource.Query) bool {
	for field, values := range query.Filters {
		if len(values) == 0 {
			continue
		}
		have := resource.FormatValue(resource.FieldValue(item, field))
		found := false
		for _, want := range values {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if query.Text == "" {
		return true
	}
	text := strings.ToLower(query.Text)
	if strings.Contains(strings.ToLower(item.String()), text) {
		return true
	}
	for _, field := range kind.Fields {
		if field.IsReference() {
			continue
		}
		if s, ok := item.Value(field.Name).(string); ok && strings.Contains(strings.ToLower(s), text) {
			return true
		}
	}
	return false
}

func sliceOf(items []resource.Item, offset, limit int) []resource.Item {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	end := len(items)
	if limit >= 0 && offset+limit < end {
		end = offset + limit
	}
	result := make([]resource.Item, end-offset)
	copy(result, items[offset:end])
	return result
}
