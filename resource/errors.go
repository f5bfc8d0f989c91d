// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package resource

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrNoSuchItem is returned when a single requested item does not
// exist in its collection.
type ErrNoSuchItem struct {
	Kind string
	ID   int64
}

func (e ErrNoSuchItem) Error() string {
	return fmt.Sprintf("no such %s: %d", e.Kind, e.ID)
}

// ErrMissingItems is returned when some of the items of a requested
// set do not exist.  The whole request fails; there are no partial
// sets.
type ErrMissingItems struct {
	Kind string
	IDs  []int64
}

func (e ErrMissingItems) Error() string {
	parts := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("no such %s: %s", e.Kind, strings.Join(parts, ";"))
}

// ErrBadIdentifier is returned when an identifier in a request path
// is not a well-formed identifier, or when an identifier set names no
// identifiers at all.  Since no item could have such an identifier,
// this is a not-found condition.
type ErrBadIdentifier struct {
	Value string
}

func (e ErrBadIdentifier) Error() string {
	return fmt.Sprintf("invalid identifier %q", e.Value)
}

// ErrNoSuchField is returned from searches that name a field the
// kind does not declare.
type ErrNoSuchField struct {
	Kind  string
	Field string
}

func (e ErrNoSuchField) Error() string {
	return fmt.Sprintf("%s has no field %q", e.Kind, e.Field)
}

// IsNotFound returns true if err reports that some addressed item
// does not exist.  Errors wrapped with github.com/pkg/errors are
// unwrapped first.
func IsNotFound(err error) bool {
	switch errors.Cause(err).(type) {
	case ErrNoSuchItem, ErrMissingItems, ErrBadIdentifier:
		return true
	}
	return false
}
