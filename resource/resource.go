// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package resource defines the core addressing model for publishing
// collections of records over a REST-ish API.
//
// A Collection holds Items of a single Kind.  A request addresses a
// collection in one of three ways: a single item by identifier, an
// explicit set of items ("1;3;5"), or a page of a paginated listing.
// Resolve turns the route variables and query string of a request
// into exactly one of these, and Serialize turns each resulting Item
// into an Envelope suitable for encoding on the wire.
//
// Field descriptors are declared statically on the Kind, once, when
// a collection is built.  Nothing in this package inspects items with
// reflection.
//
// The storage backends live in their own packages: see
// github.com/diffeo/go-towel/memory and
// github.com/diffeo/go-towel/sqlstore.  The
// github.com/diffeo/go-towel/restserver package publishes collections
// over HTTP.
package resource

// Item is a single record in a Collection.
type Item interface {
	// ID returns the identifier of this item.  Identifiers are
	// unique within a collection.
	ID() int64

	// String returns a human-readable label for this item.
	String() string

	// Value returns the value of a named field.  For a reference
	// field, this is the int64 identifier of the referenced item,
	// or nil if there is no reference.  Returns nil if the field
	// does not exist.
	Value(field string) interface{}
}

// Field describes a single declared field of a Kind.
type Field struct {
	// Name is the name of the field, as it appears in an
	// Envelope.
	Name string

	// Target, if non-empty, is the name of the kind this field
	// refers to.  The field's values are identifiers of items of
	// that kind.  If empty, the field is a scalar and its value
	// is published as is.
	Target string
}

// IsReference returns true if this field refers to another item.
func (f Field) IsReference() bool {
	return f.Target != ""
}

// Kind names a type of item and lists its published fields.
type Kind struct {
	// Name is the short name of the kind, e.g. "contact".
	Name string

	// Fields lists the fields of the kind in publication order.
	Fields []Field
}

// Field finds a declared field by name.
func (k Kind) Field(name string) (Field, bool) {
	for _, f := range k.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Collection is an ordered, read-only view of items of one kind.
// Implementations must be safe to call from multiple goroutines.
type Collection interface {
	// Kind returns the kind of the items in this collection.
	Kind() Kind

	// Get retrieves a single item by identifier.  If there is no
	// such item, returns ErrNoSuchItem.
	Get(id int64) (Item, error)

	// GetMany retrieves several items in one call.  The result
	// contains the items that exist, in the order of ids; absent
	// identifiers are skipped silently.
	GetMany(ids []int64) ([]Item, error)

	// Count returns the total number of items in the collection.
	Count() (int, error)

	// Slice returns up to limit items starting at offset, in the
	// collection's order.
	Slice(offset, limit int) ([]Item, error)
}

// Searcher is implemented by collections that can produce a filtered
// and reordered view of themselves.
type Searcher interface {
	// Search returns a collection holding the items that match
	// query, in the order it requests.
	Search(query Query) (Collection, error)
}

// All retrieves every item of a collection in order.
func All(c Collection) ([]Item, error) {
	count, err := c.Count()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	return c.Slice(0, count)
}
