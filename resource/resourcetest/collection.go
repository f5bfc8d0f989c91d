// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package resourcetest

import (
	"github.com/diffeo/go-towel/resource"
)

// TestKind checks that the collection reports its kind.
func (s *Suite) TestKind() {
	c := s.Collection()
	s.Equal(WidgetKind.Name, c.Kind().Name)
}

// TestGet fetches single items.
func (s *Suite) TestGet() {
	c := s.Collection()

	item, err := c.Get(2)
	if s.NoError(err) {
		s.Equal(int64(2), item.ID())
		s.Equal("anvil", item.String())
		s.Equal("red", item.Value("color"))
		s.Equal(int64(1), item.Value("parent"))
	}

	item, err = c.Get(1)
	if s.NoError(err) {
		s.Nil(item.Value("parent"))
	}

	_, err = c.Get(17)
	s.Equal(resource.ErrNoSuchItem{Kind: "widget", ID: 17}, err)
	s.True(resource.IsNotFound(err))
}

// TestGetMany fetches several items at once, skipping missing ones.
func (s *Suite) TestGetMany() {
	c := s.Collection()

	items, err := c.GetMany([]int64{5, 1, 3})
	if s.NoError(err) {
		s.Equal([]int64{5, 1, 3}, IDs(items))
	}

	items, err = c.GetMany([]int64{5, 17, 1})
	if s.NoError(err) {
		s.Equal([]int64{5, 1}, IDs(items))
	}

	items, err = c.GetMany([]int64{17})
	if s.NoError(err) {
		s.Empty(items)
	}
}

// TestCountAndSlice walks the collection in order.
func (s *Suite) TestCountAndSlice() {
	c := s.Collection()

	count, err := c.Count()
	if s.NoError(err) {
		s.Equal(5, count)
	}

	items, err := c.Slice(0, 5)
	if s.NoError(err) {
		s.Equal([]string{"anvil", "bolt", "crank", "dynamo", "emitter"}, Names(items))
	}

	items, err = c.Slice(1, 2)
	if s.NoError(err) {
		s.Equal([]string{"bolt", "crank"}, Names(items))
	}

	items, err = c.Slice(4, 10)
	if s.NoError(err) {
		s.Equal([]string{"emitter"}, Names(items))
	}

	items, err = c.Slice(10, 10)
	if s.NoError(err) {
		s.Empty(items)
	}
}

// TestEmpty checks a collection with no items.
func (s *Suite) TestEmpty() {
	c := s.CollectionOf(nil)

	count, err := c.Count()
	if s.NoError(err) {
		s.Equal(0, count)
	}

	items, err := c.Slice(0, 20)
	if s.NoError(err) {
		s.Empty(items)
	}

	_, err = c.Get(1)
	s.True(resource.IsNotFound(err))
}

// TestTieBreak checks that items with equal sort keys come out in
// identifier order.
func (s *Suite) TestTieBreak() {
	c := s.CollectionOf([]*Widget{
		{WidgetID: 9, Name: "same", Color: "red"},
		{WidgetID: 3, Name: "same", Color: "red"},
		{WidgetID: 6, Name: "same", Color: "red"},
	})
	items, err := c.Slice(0, 3)
	if s.NoError(err) {
		s.Equal([]int64{3, 6, 9}, IDs(items))
	}
}

// TestChoices produces autocomplete data from the collection.
func (s *Suite) TestChoices() {
	c := s.Collection()

	choices, err := resource.Choices(c, "AN", 0)
	if s.NoError(err) {
		s.Equal([]resource.Choice{
			{Label: "anvil", Value: 2},
			{Label: "crank", Value: 5},
		}, choices)
	}

	choices, err = resource.Choices(c, "an", 1)
	if s.NoError(err) {
		s.Len(choices, 1)
	}

	choices, err = resource.Choices(c, "a", 0)
	if s.NoError(err) {
		s.Empty(choices)
	}
}
