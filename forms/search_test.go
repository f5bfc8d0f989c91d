// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package forms_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/diffeo/go-towel/forms"
	"github.com/diffeo/go-towel/resource"
	"github.com/stretchr/testify/assert"
)

// mapPersister is a trivial in-memory Persister.
type mapPersister map[string][]byte

func (m mapPersister) Load(key string) ([]byte, bool) {
	b, ok := m[key]
	return b, ok
}

func (m mapPersister) Save(key string, value []byte) { m[key] = value }

func (m mapPersister) Delete(key string) { delete(m, key) }

func widgetSearch() *forms.SearchForm {
	return &forms.SearchForm{
		Name:   "widgets",
		Fields: []string{"color", "size"},
		Orderings: map[string][]resource.Ordering{
			"":     {{Field: "name"}},
			"size": {{Field: "size"}, {Field: "name"}},
		},
	}
}

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "sf_widgets", widgetSearch().SessionKey())
}

func TestSearchUnfilteredWithoutPersisted(t *testing.T) {
	p := mapPersister{}
	s := widgetSearch().Bind(http.MethodGet, url.Values{}, nil, p)
	assert.False(t, s.Filtered)
	assert.False(t, s.Persistent)
	assert.False(t, s.Searching())
	assert.True(t, s.Query().IsEmpty())
	assert.Empty(t, p)
}

func TestSearchSubmitPersists(t *testing.T) {
	p := mapPersister{}
	f := widgetSearch()
	get := url.Values{"s": {"1"}, "color": {"blue"}, "query": {"  bolt "}}
	s := f.Bind(http.MethodGet, get, nil, p)
	assert.True(t, s.Filtered)
	assert.False(t, s.Persistent)
	assert.True(t, s.Searching())

	q := s.Query()
	assert.Equal(t, "bolt", q.Text)
	assert.Equal(t, map[string][]string{"color": {"blue"}}, q.Filters)
	assert.Equal(t, []resource.Ordering{{Field: "name"}}, q.Order)

	if assert.Contains(t, p, "sf_widgets") {
		// A plain GET now reloads the search, without "s"
		s = f.Bind(http.MethodGet, url.Values{}, nil, p)
		assert.True(t, s.Filtered)
		assert.True(t, s.Persistent)
		assert.True(t, s.Searching())
		assert.Equal(t, []string{"blue"}, s.Data["color"])
		assert.NotContains(t, s.Data, "s")
	}
}

func TestSearchNamedWithoutSubmitDoesNotPersist(t *testing.T) {
	p := mapPersister{}
	get := url.Values{"color": {"red"}}
	s := widgetSearch().Bind(http.MethodGet, get, nil, p)
	assert.True(t, s.Filtered)
	assert.False(t, s.Persistent)
	assert.Equal(t, map[string][]string{"color": {"red"}}, s.Query().Filters)
	assert.Empty(t, p)
}

func TestSearchClear(t *testing.T) {
	p := mapPersister{}
	f := widgetSearch()
	f.Bind(http.MethodGet, url.Values{"s": {"1"}, "color": {"red"}}, nil, p)
	assert.Len(t, p, 1)

	for _, param := range []string{"clear", "n"} {
		f.Bind(http.MethodGet, url.Values{"s": {"1"}, "color": {"red"}}, nil, p)
		s := f.Bind(http.MethodGet, url.Values{param: {""}}, nil, p)
		assert.False(t, s.Filtered, param)
		assert.False(t, s.Persistent, param)
		assert.Empty(t, p, param)
	}
}

func TestSearchPostWithoutSubmit(t *testing.T) {
	p := mapPersister{}
	f := widgetSearch()
	f.Bind(http.MethodGet, url.Values{"s": {"1"}, "color": {"red"}}, nil, p)

	s := f.Bind(http.MethodPost, url.Values{}, url.Values{"batchform": {""}}, p)
	assert.False(t, s.Filtered)
	assert.False(t, s.Persistent)
	assert.Len(t, p, 1)
}

func TestSearchBadPersistedDropped(t *testing.T) {
	f := widgetSearch()
	for _, bad := range []string{
		`not json`,
		`{"version":2,"form":"widgets","data":{}}`,
		`{"version":1,"form":"gadgets","data":{}}`,
		`{"version":1,"form":"widgets","data":{"shape":["round"]}}`,
	} {
		p := mapPersister{"sf_widgets": []byte(bad)}
		s := f.Bind(http.MethodGet, url.Values{}, nil, p)
		assert.False(t, s.Filtered, bad)
		assert.False(t, s.Persistent, bad)
		assert.Empty(t, p, bad)
	}

	p := mapPersister{"sf_widgets": []byte(`{"version":1,"form":"widgets","data":{"size":["7"]}}`)}
	s := f.Bind(http.MethodGet, url.Values{}, nil, p)
	assert.True(t, s.Persistent)
	assert.Equal(t, map[string][]string{"size": {"7"}}, s.Query().Filters)
}

func TestSearchOrdering(t *testing.T) {
	f := widgetSearch()
	tests := []struct {
		O     string
		Order []resource.Ordering
	}{
		{"", []resource.Ordering{{Field: "name"}}},
		{"-", []resource.Ordering{{Field: "name", Descending: true}}},
		{"size", []resource.Ordering{{Field: "size"}, {Field: "name"}}},
		{"-size", []resource.Ordering{
			{Field: "size", Descending: true},
			{Field: "name", Descending: true},
		}},
		{"shape", nil},
	}
	for _, test := range tests {
		s := f.Bind(http.MethodGet, url.Values{"o": {test.O}}, nil, nil)
		assert.Equal(t, test.Order, s.Query().Order, test.O)
	}
}

func TestSearchDefaults(t *testing.T) {
	f := widgetSearch()
	f.Defaults = url.Values{"color": {"red"}}
	s := f.Bind(http.MethodGet, url.Values{"query": {"x"}}, nil, nil)
	assert.Equal(t, map[string][]string{"color": {"red"}}, s.Query().Filters)

	s = f.Bind(http.MethodGet, url.Values{"color": {"blue"}}, nil, nil)
	assert.Equal(t, map[string][]string{"color": {"blue"}}, s.Query().Filters)
}

func TestSearchValues(t *testing.T) {
	get := url.Values{"s": {"1"}, "color": {"blue"}, "page": {"3"}, "o": {"-size"}}
	s := widgetSearch().Bind(http.MethodGet, get, nil, nil)
	assert.Equal(t, url.Values{"color": {"blue"}, "o": {"-size"}}, s.Values())
}
