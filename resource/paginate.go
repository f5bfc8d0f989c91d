// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package resource

// Page is one page of a paginated listing.
type Page struct {
	// Number is the 1-based number of this page.
	Number int

	// NumPages is the total number of pages.  This is always at
	// least 1, even for an empty collection.
	NumPages int

	// Count is the total number of items in the collection.
	Count int

	// Items holds the items on this page.
	Items []Item
}

// HasPrevious returns true if there is a page before this one.
func (p *Page) HasPrevious() bool {
	return p.Number > 1
}

// HasNext returns true if there is a page after this one.
func (p *Page) HasNext() bool {
	return p.Number < p.NumPages
}

// Paginator splits a collection into pages of a fixed size.
type Paginator struct {
	Collection Collection
	PageSize   int
}

// NewPaginator creates a paginator.  If pageSize is not positive,
// DefaultPageSize is used.
func NewPaginator(c Collection, pageSize int) *Paginator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Paginator{Collection: c, PageSize: pageSize}
}

// NumPages returns the number of pages for a collection of count
// items.  An empty collection still has one (empty) page.
func (p *Paginator) NumPages(count int) int {
	if count <= 0 {
		return 1
	}
	return (count + p.PageSize - 1) / p.PageSize
}

// Page fetches a single page.  A number below 1 is page 1, and a
// number past the end is the last page.
func (p *Paginator) Page(number int) (*Page, error) {
	count, err := p.Collection.Count()
	if err != nil {
		return nil, err
	}
	numPages := p.NumPages(count)
	if number < 1 {
		number = 1
	}
	if number > numPages {
		number = numPages
	}
	page := &Page{
		Number:   number,
		NumPages: numPages,
		Count:    count,
	}
	if count > 0 {
		page.Items, err = p.Collection.Slice((number-1)*p.PageSize, p.PageSize)
		if err != nil {
			return nil, err
		}
	}
	return page, nil
}
