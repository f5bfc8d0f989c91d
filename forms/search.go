// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package forms

import (
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/diffeo/go-towel/resource"
	"github.com/ugorji/go/codec"
)

// Search form control parameters.
const (
	// SearchParam marks a request as a submission of the search
	// form.  Such a submission is persisted.
	SearchParam = "s"

	// OrderParam selects one of the form's orderings, with an
	// optional "-" prefix to reverse it.
	OrderParam = "o"

	// QueryParam holds free text to search for.
	QueryParam = "query"

	// ClearParam, or NewParam, drops any persisted search.
	ClearParam = "clear"
	NewParam   = "n"
)

// alwaysExclude lists the form parameters that are never filters.
var alwaysExclude = []string{SearchParam, QueryParam, OrderParam}

// persistVersion is the version of the persisted search document.
const persistVersion = 1

// Persister holds persisted searches between requests.  A session is
// the usual implementation.
type Persister interface {
	Load(key string) ([]byte, bool)
	Save(key string, value []byte)
	Delete(key string)
}

// SearchForm describes a search over a collection that can persist
// between requests.
type SearchForm struct {
	// Name identifies the form; persisted searches of different
	// forms are kept apart.
	Name string

	// Fields lists the filter fields.  Each is a field of the
	// collection's kind, matched for equality.
	Fields []string

	// Orderings maps values of the "o" parameter to sort orders.
	// The "" entry, if any, is the default.
	Orderings map[string][]resource.Ordering

	// Defaults supplies values for parameters the request does
	// not name.
	Defaults url.Values
}

// Search is a search form bound to one request.
type Search struct {
	Form *SearchForm

	// Data holds the effective form data, after defaults and
	// loading a persisted search.
	Data url.Values

	// Filtered is false if the search should not apply at all.
	Filtered bool

	// Persistent is true if Data came from a persisted search.
	Persistent bool
}

// persisted is the stored form of a search.
type persisted struct {
	Version int                 `json:"version"`
	Form    string              `json:"form"`
	Data    map[string][]string `json:"data"`
}

// SessionKey is the key the form persists its search under.
func (f *SearchForm) SessionKey() string {
	return "sf_" + f.Name
}

// allFields returns every parameter the form understands.
func (f *SearchForm) allFields() map[string]bool {
	fields := make(map[string]bool, len(f.Fields)+len(alwaysExclude))
	for _, name := range alwaysExclude {
		fields[name] = true
	}
	for _, name := range f.Fields {
		fields[name] = true
	}
	return fields
}

// Bind binds the form to a request.  get is the query string; post
// is the form body for POST requests.  A GET request that is not a
// search submission loads the persisted search, if any; a search
// submission replaces it; "clear" or "n" in the query string drops
// it.  p may be nil, in which case nothing is persisted.
func (f *SearchForm) Bind(method string, get, post url.Values, p Persister) *Search {
	original := get
	if method == http.MethodPost {
		original = post
	}
	s := &Search{
		Form:     f,
		Data:     f.prepare(original),
		Filtered: true,
	}
	if p == nil {
		p = nopPersister{}
	}
	key := f.SessionKey()

	if has(get, ClearParam) || has(get, NewParam) {
		p.Delete(key)
	}

	fields := f.allFields()
	named := false
	for name := range original {
		if fields[name] {
			named = true
			break
		}
	}

	switch {
	case named:
		if has(s.Data, SearchParam) {
			data := copyValues(s.Data)
			data.Del(SearchParam)
			if b, err := f.encode(data); err == nil {
				p.Save(key, b)
			}
		}
	case method != http.MethodPost && !has(get, SearchParam):
		data, ok := f.load(p, key)
		if ok {
			s.Data = data
			s.Persistent = true
		} else {
			s.Filtered = false
		}
	case method == http.MethodPost && !has(post, SearchParam):
		s.Filtered = false
	}
	return s
}

// prepare copies data, filling in defaults.
func (f *SearchForm) prepare(data url.Values) url.Values {
	result := copyValues(data)
	for k, v := range f.Defaults {
		if !has(result, k) {
			result[k] = append([]string(nil), v...)
		}
	}
	return result
}

func (f *SearchForm) encode(data url.Values) ([]byte, error) {
	var out []byte
	doc := persisted{
		Version: persistVersion,
		Form:    f.Name,
		Data:    map[string][]string(data),
	}
	err := codec.NewEncoderBytes(&out, &codec.JsonHandle{}).Encode(doc)
	return out, err
}

// load fetches a persisted search.  A stored value that is not a
// well-formed search of this form, in this version, is dropped.
func (f *SearchForm) load(p Persister, key string) (url.Values, bool) {
	b, ok := p.Load(key)
	if !ok {
		return nil, false
	}
	var doc persisted
	err := codec.NewDecoderBytes(b, &codec.JsonHandle{}).Decode(&doc)
	if err == nil && doc.Version == persistVersion && doc.Form == f.Name {
		fields := f.allFields()
		for name := range doc.Data {
			if !fields[name] {
				err = errUnknownField
				break
			}
		}
		if err == nil {
			return url.Values(doc.Data), true
		}
	}
	p.Delete(key)
	return nil, false
}

// Searching returns true if the search was submitted or loaded.
func (s *Search) Searching() bool {
	return s.Persistent || s.Data.Get(SearchParam) != ""
}

// Query builds the collection query for the search.  Filters with no
// non-empty value are skipped, and an unknown ordering is ignored.
// An unfiltered search produces an empty query.
func (s *Search) Query() resource.Query {
	var q resource.Query
	if !s.Filtered {
		return q
	}
	q.Text = strings.TrimSpace(s.Data.Get(QueryParam))

	for _, field := range s.Form.Fields {
		if isExcluded(field) {
			continue
		}
		var values []string
		for _, v := range s.Data[field] {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		if len(values) > 0 {
			if q.Filters == nil {
				q.Filters = make(map[string][]string)
			}
			q.Filters[field] = values
		}
	}

	order := s.Data.Get(OrderParam)
	desc := strings.HasPrefix(order, "-")
	if desc {
		order = order[1:]
	}
	if orderings, ok := s.Form.Orderings[order]; ok {
		for _, o := range orderings {
			if desc {
				o = o.Reverse()
			}
			q.Order = append(q.Order, o)
		}
	}
	return q
}

// Values returns the search parameters to carry over to another
// page of the same listing.
func (s *Search) Values() url.Values {
	if !s.Filtered {
		return url.Values{}
	}
	fields := s.Form.allFields()
	result := url.Values{}
	var names []string
	for name := range s.Data {
		if fields[name] && name != SearchParam {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		result[name] = append([]string(nil), s.Data[name]...)
	}
	return result
}

func isExcluded(field string) bool {
	for _, name := range alwaysExclude {
		if name == field {
			return true
		}
	}
	return false
}

func has(v url.Values, key string) bool {
	_, ok := v[key]
	return ok
}

func copyValues(v url.Values) url.Values {
	result := make(url.Values, len(v))
	for k, vv := range v {
		result[k] = append([]string(nil), vv...)
	}
	return result
}

type nopPersister struct{}

func (nopPersister) Load(string) ([]byte, bool) { return nil, false }
func (nopPersister) Save(string, []byte)        {}
func (nopPersister) Delete(string)              {}
