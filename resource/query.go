// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package resource

import (
	"fmt"
	"strings"
)

// Ordering sorts a collection on one field.
type Ordering struct {
	Field      string
	Descending bool
}

// ParseOrdering parses a field name, optionally prefixed with "-" to
// sort in descending order.
func ParseOrdering(s string) Ordering {
	if strings.HasPrefix(s, "-") {
		return Ordering{Field: s[1:], Descending: true}
	}
	return Ordering{Field: s}
}

func (o Ordering) String() string {
	if o.Descending {
		return "-" + o.Field
	}
	return o.Field
}

// Reverse returns the same ordering in the opposite direction.
func (o Ordering) Reverse() Ordering {
	return Ordering{Field: o.Field, Descending: !o.Descending}
}

// Query describes a search of a collection.
type Query struct {
	// Text, if non-empty, must appear in some searchable text of
	// an item, ignoring case.
	Text string

	// Filters maps field names to acceptable values.  An item
	// matches a filter if its field value is any of the listed
	// values.  All filters must match.
	Filters map[string][]string

	// Order lists the sort keys, most significant first.  If
	// empty, the collection's own order applies.
	Order []Ordering
}

// IsEmpty returns true if q would not change a collection.
func (q Query) IsEmpty() bool {
	return q.Text == "" && len(q.Filters) == 0 && len(q.Order) == 0
}

// Validate checks that every field q names is declared on kind.
// "id" is always accepted.
func (q Query) Validate(kind Kind) error {
	check := func(name string) error {
		if name == "id" {
			return nil
		}
		if _, ok := kind.Field(name); !ok {
			return ErrNoSuchField{Kind: kind.Name, Field: name}
		}
		return nil
	}
	for name := range q.Filters {
		if err := check(name); err != nil {
			return err
		}
	}
	for _, o := range q.Order {
		if err := check(o.Field); err != nil {
			return err
		}
	}
	return nil
}

// FieldValue returns the value of a field of item, where "id" is the
// item's identifier.
func FieldValue(item Item, field string) interface{} {
	if field == "id" {
		return item.ID()
	}
	return item.Value(field)
}

// FormatValue renders a field value as a string, for comparison
// against filter values.  nil is the empty string.
func FormatValue(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// CompareValues orders two field values.  nil sorts first, numbers
// numerically, and everything else by its string form.
func CompareValues(a, b interface{}) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if ai, ok := toInt(a); ok {
		if bi, ok := toInt(b); ok {
			switch {
			case ai < bi:
				return -1
			case ai > bi:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(FormatValue(a), FormatValue(b))
}

func toInt(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	}
	return 0, false
}
