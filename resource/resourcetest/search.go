// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package resourcetest

import (
	"github.com/diffeo/go-towel/resource"
)

// search runs a query against the standard widgets, skipping the
// test if the backend cannot search.
func (s *Suite) search(query resource.Query) []resource.Item {
	searcher, ok := s.Collection().(resource.Searcher)
	if !ok {
		s.T().Skip("collection does not support search")
	}
	found, err := searcher.Search(query)
	if !s.NoError(err) {
		s.FailNow("search failed")
	}
	items, err := resource.All(found)
	if !s.NoError(err) {
		s.FailNow("could not list search results")
	}
	return items
}

// TestSearchFilter filters on field values.
func (s *Suite) TestSearchFilter() {
	items := s.search(resource.Query{
		Filters: map[string][]string{"color": {"red"}},
	})
	s.Equal([]string{"anvil", "crank"}, Names(items))

	items = s.search(resource.Query{
		Filters: map[string][]string{"color": {"red", "green"}},
	})
	s.Equal([]string{"anvil", "crank", "dynamo"}, Names(items))

	items = s.search(resource.Query{
		Filters: map[string][]string{"color": {"purple"}},
	})
	s.Empty(items)
}

// TestSearchText matches text case-insensitively.
func (s *Suite) TestSearchText() {
	items := s.search(resource.Query{Text: "BLUE"})
	s.Equal([]string{"bolt", "emitter"}, Names(items))

	items = s.search(resource.Query{Text: "an"})
	s.Equal([]string{"anvil", "crank"}, Names(items))
}

// TestSearchOrder reorders results.
func (s *Suite) TestSearchOrder() {
	items := s.search(resource.Query{
		Order: []resource.Ordering{resource.ParseOrdering("-size")},
	})
	s.Equal([]string{"dynamo", "anvil", "emitter", "crank", "bolt"}, Names(items))

	items = s.search(resource.Query{
		Filters: map[string][]string{"color": {"blue", "red"}},
		Order:   []resource.Ordering{{Field: "color"}, {Field: "size", Descending: true}},
	})
	s.Equal([]string{"emitter", "bolt", "anvil", "crank"}, Names(items))
}

// TestSearchResultsAddressable checks that the search result is
// itself a collection that can be resolved against.
func (s *Suite) TestSearchResultsAddressable() {
	searcher, ok := s.Collection().(resource.Searcher)
	if !ok {
		s.T().Skip("collection does not support search")
	}
	found, err := searcher.Search(resource.Query{
		Filters: map[string][]string{"color": {"blue"}},
	})
	if !s.NoError(err) {
		return
	}
	count, err := found.Count()
	if s.NoError(err) {
		s.Equal(2, count)
	}
	item, err := found.Get(4)
	if s.NoError(err) {
		s.Equal("bolt", item.String())
	}
	_, err = found.Get(2)
	s.True(resource.IsNotFound(err))
}

// TestSearchBadField rejects undeclared fields.
func (s *Suite) TestSearchBadField() {
	searcher, ok := s.Collection().(resource.Searcher)
	if !ok {
		s.T().Skip("collection does not support search")
	}
	_, err := searcher.Search(resource.Query{
		Filters: map[string][]string{"weight": {"1"}},
	})
	s.Equal(resource.ErrNoSuchField{Kind: "widget", Field: "weight"}, err)
}
