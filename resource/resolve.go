// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package resource

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// DefaultPageSize is the number of items on a listing page if the
// caller does not ask for something else.
const DefaultPageSize = 20

// Route variable and query parameter names read by Resolve.
const (
	// IDParam is the route variable holding a single identifier.
	IDParam = "id"

	// IDSetParam is the route variable holding a ";"-separated
	// identifier set.
	IDSetParam = "ids"

	// PageParam is the query parameter holding a listing page
	// number.
	PageParam = "page"
)

// Mode says which addressing mode a request used.
type Mode int

const (
	// InvalidMode is the mode of an empty Objects, as returned
	// alongside an error.
	InvalidMode Mode = iota

	// ListingMode addresses one page of the whole collection.
	ListingMode

	// SingleMode addresses one item by identifier.
	SingleMode

	// SetMode addresses an explicit set of items.
	SetMode
)

func (m Mode) String() string {
	switch m {
	case SingleMode:
		return "single"
	case SetMode:
		return "set"
	case ListingMode:
		return "listing"
	default:
		return "invalid"
	}
}

// Objects is the result of resolving a request.  Exactly one of
// Single, Set, and Page is populated, as reported by Mode.
type Objects struct {
	Single Item
	Set    []Item
	Page   *Page
}

// Mode reports which addressing mode produced o.
func (o Objects) Mode() Mode {
	switch {
	case o.Single != nil:
		return SingleMode
	case o.Page != nil:
		return ListingMode
	case o.Set != nil:
		return SetMode
	default:
		return InvalidMode
	}
}

// ParseIDSet splits a ";"-separated identifier set.  Empty segments
// are skipped, so "1;3;5", "1;3;5;", and "1;;3;5" are all the same
// set.  Duplicates are dropped, keeping the first occurrence.
// Returns ErrBadIdentifier if any segment is not an integer or if the
// string names no identifiers at all.
func ParseIDSet(s string) ([]int64, error) {
	var ids []int64
	seen := make(map[int64]bool)
	for _, part := range strings.Split(s, ";") {
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, ErrBadIdentifier{Value: part}
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, ErrBadIdentifier{Value: s}
	}
	return ids, nil
}

// FormatIDSet is the inverse of ParseIDSet.
func FormatIDSet(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ";")
}

// ParsePage parses a requested page number.  Surrounding whitespace
// is ignored.  Anything that is not a positive integer, including an
// empty string, is page 1.  Zero and negative numbers are page 1 too,
// unlike Django-style paginators, which send them to the last page.
// A positive number past math.MaxInt32 is math.MaxInt32, which
// Paginator.Page clamps to the last page.
func ParsePage(s string) int {
	s = strings.TrimSpace(s)
	page, err := strconv.Atoi(s)
	if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange && !strings.HasPrefix(s, "-") {
		return math.MaxInt32
	}
	if err != nil || page < 1 {
		return 1
	}
	if page > math.MaxInt32 {
		return math.MaxInt32
	}
	return page
}

// Resolve decides which items a request addresses.  params holds
// the route variables: if IDParam is present a single item is
// fetched, otherwise if IDSetParam is present an identifier set is
// fetched in one bulk call, otherwise query's PageParam selects one
// page of c with pageSize items per page (DefaultPageSize if
// pageSize is not positive).
//
// Errors satisfying IsNotFound are returned for a missing single
// item, a set with any missing member, or a malformed identifier.
// An invalid page number is never an error.  Any other error comes
// from the collection.
func Resolve(params map[string]string, query url.Values, c Collection, pageSize int) (Objects, error) {
	if s, present := params[IDParam]; present {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Objects{}, ErrBadIdentifier{Value: s}
		}
		item, err := c.Get(id)
		if err != nil {
			return Objects{}, err
		}
		return Objects{Single: item}, nil
	}

	if s, present := params[IDSetParam]; present {
		ids, err := ParseIDSet(s)
		if err != nil {
			return Objects{}, err
		}
		items, err := GetSet(c, ids)
		if err != nil {
			return Objects{}, err
		}
		return Objects{Set: items}, nil
	}

	page, err := NewPaginator(c, pageSize).Page(ParsePage(query.Get(PageParam)))
	if err != nil {
		return Objects{}, err
	}
	return Objects{Page: page}, nil
}

// GetSet fetches exactly the items named by ids, which must be
// distinct.  If any is missing, returns ErrMissingItems naming all
// of the missing identifiers and no items.
func GetSet(c Collection, ids []int64) ([]Item, error) {
	items, err := c.GetMany(ids)
	if err != nil {
		return nil, err
	}
	if len(items) == len(ids) {
		return items, nil
	}
	found := make(map[int64]bool, len(items))
	for _, item := range items {
		found[item.ID()] = true
	}
	var missing []int64
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return nil, ErrMissingItems{Kind: c.Kind().Name, IDs: missing}
}
