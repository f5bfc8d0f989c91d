// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import "github.com/diffeo/go-towel/resource"

// list is an immutable collection over a fixed slice of items, as
// returned from a search.
type list struct {
	kind  resource.Kind
	items []resource.Item
}

// NewList creates a read-only collection holding exactly items, in
// the order given.
func NewList(kind resource.Kind, items []resource.Item) resource.Collection {
	copied := make([]resource.Item, len(items))
	copy(copied, items)
	return &list{kind: kind, items: copied}
}

func (l *list) Kind() resource.Kind {
	return l.kind
}

func (l *list) Get(id int64) (resource.Item, error) {
	for _, item := range l.items {
		if item.ID() == id {
			return item, nil
		}
	}
	return nil, resource.ErrNoSuchItem{Kind: l.kind.Name, ID: id}
}

func (l *list) GetMany(ids []int64) ([]resource.Item, error) {
	index := make(map[int64]resource.Item, len(l.items))
	for _, item := range l.items {
		index[item.ID()] = item
	}
	var result []resource.Item
	for _, id := range ids {
		if item, present := index[id]; present {
			result = append(result, item)
		}
	}
	return result, nil
}

func (l *list) Count() (int, error) {
	return len(l.items), nil
}

func (l *list) Slice(offset, limit int) ([]resource.Item, error) {
	return sliceOf(l.items, offset, limit), nil
}

// Search narrows the list further.
func (l *list) Search(query resource.Query) (resource.Collection, error) {
	if err := query.Validate(l.kind); err != nil {
		return nil, err
	}
	var matched []resource.Item
	for _, item := range l.items {
		if matches(l.kind, item, query) {
			matched = append(matched, item)
		}
	}
	if len(query.Order) > 0 {
		sortItems(matched, query.Order)
	}
	return &list{kind: l.kind, items: matched}, nil
}
