// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package resourcetest

import (
	"net/url"

	"github.com/diffeo/go-towel/resource"
)

func (s *Suite) resolve(params map[string]string, page string, pageSize int) (resource.Objects, error) {
	query := url.Values{}
	if page != "" {
		query.Set(resource.PageParam, page)
	}
	return resource.Resolve(params, query, s.Collection(), pageSize)
}

// TestResolveSingle addresses one item.
func (s *Suite) TestResolveSingle() {
	objects, err := s.resolve(map[string]string{"id": "3"}, "", 0)
	if s.NoError(err) {
		s.Equal(resource.SingleMode, objects.Mode())
		s.Equal("emitter", objects.Single.String())
	}

	_, err = s.resolve(map[string]string{"id": "17"}, "", 0)
	s.True(resource.IsNotFound(err))
}

// TestResolveSet addresses explicit sets, including the lenient
// separator forms.
func (s *Suite) TestResolveSet() {
	for _, ids := range []string{"1;3;5", "1;3;5;", "1;;3;5", "1;3;5;3"} {
		objects, err := s.resolve(map[string]string{"ids": ids}, "", 0)
		if s.NoError(err, ids) {
			s.Equal(resource.SetMode, objects.Mode(), ids)
			s.Equal([]int64{1, 3, 5}, IDs(objects.Set), ids)
		}
	}

	_, err := s.resolve(map[string]string{"ids": "1;17;3;18"}, "", 0)
	s.Equal(resource.ErrMissingItems{Kind: "widget", IDs: []int64{17, 18}}, err)

	_, err = s.resolve(map[string]string{"ids": ";;"}, "", 0)
	s.True(resource.IsNotFound(err))
}

// TestResolveListing addresses pages of the listing.
func (s *Suite) TestResolveListing() {
	tests := []struct {
		Page   string
		Number int
		Names  []string
	}{
		{"", 1, []string{"anvil", "bolt"}},
		{"1", 1, []string{"anvil", "bolt"}},
		{"2", 2, []string{"crank", "dynamo"}},
		{"3", 3, []string{"emitter"}},
		{"99", 3, []string{"emitter"}},
		{"0", 1, []string{"anvil", "bolt"}},
		{"-2", 1, []string{"anvil", "bolt"}},
		{"abc", 1, []string{"anvil", "bolt"}},
		{" 2", 2, []string{"crank", "dynamo"}},
		{"99999999999999999999", 3, []string{"emitter"}},
	}
	for _, test := range tests {
		objects, err := s.resolve(map[string]string{}, test.Page, 2)
		if !s.NoError(err, test.Page) {
			continue
		}
		s.Equal(resource.ListingMode, objects.Mode())
		s.Equal(test.Number, objects.Page.Number, test.Page)
		s.Equal(3, objects.Page.NumPages)
		s.Equal(5, objects.Page.Count)
		s.Equal(test.Names, Names(objects.Page.Items), test.Page)
	}
}

// TestResolveDefaultPageSize puts everything on one page.
func (s *Suite) TestResolveDefaultPageSize() {
	objects, err := s.resolve(map[string]string{}, "", 0)
	if s.NoError(err) {
		s.Equal(1, objects.Page.NumPages)
		s.Len(objects.Page.Items, 5)
		s.False(objects.Page.HasPrevious())
		s.False(objects.Page.HasNext())
	}
}
