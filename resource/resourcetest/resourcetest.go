// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package resourcetest provides generic functional tests for
// resource.Collection implementations.  A typical backend test
// module needs to wrap Suite to create its collections:
//
//     package mybackend
//
//     import (
//             "testing"
//             "github.com/diffeo/go-towel/resource/resourcetest"
//             "github.com/stretchr/testify/suite"
//     )
//
//     // Suite is the per-backend generic test suite.
//     type Suite struct{
//             resourcetest.Suite
//     }
//
//     // SetupSuite does global setup for the test suite.
//     func (s *Suite) SetupSuite() {
//             s.Suite.SetupSuite()
//             s.NewCollection = newWidgetCollection
//     }
//
//     // TestCollection runs the generic collection tests.
//     func TestCollection(t *testing.T) {
//             suite.Run(t, &Suite{})
//     }
package resourcetest

import (
	"fmt"

	"github.com/diffeo/go-towel/resource"
	"github.com/stretchr/testify/suite"
)

// WidgetKind is the kind of Widget items.  Collections built for
// the suite should order widgets by name.
var WidgetKind = resource.Kind{
	Name: "widget",
	Fields: []resource.Field{
		{Name: "name"},
		{Name: "color"},
		{Name: "size"},
		{Name: "parent", Target: "widget"},
	},
}

// WidgetOrder is the default ordering of widget collections.
var WidgetOrder = []resource.Ordering{{Field: "name"}}

// Widget is a minimal item used by the generic tests.  The struct
// tags let SQL backends scan rows directly into it.
type Widget struct {
	WidgetID int64  `db:"id"`
	Name     string `db:"name"`
	Color    string `db:"color"`
	Size     int64  `db:"size"`
	ParentID int64  `db:"parent_id"`
}

// ID returns the widget's identifier.
func (w *Widget) ID() int64 {
	return w.WidgetID
}

func (w *Widget) String() string {
	return w.Name
}

// Value returns a named field of the widget.
func (w *Widget) Value(field string) interface{} {
	switch field {
	case "name":
		return w.Name
	case "color":
		return w.Color
	case "size":
		return w.Size
	case "parent":
		if w.ParentID == 0 {
			return nil
		}
		return w.ParentID
	}
	return nil
}

// Widgets returns a fresh copy of the standard test widgets.  Their
// identifiers are deliberately not in name order.
func Widgets() []*Widget {
	return []*Widget{
		{WidgetID: 1, Name: "dynamo", Color: "green", Size: 20},
		{WidgetID: 2, Name: "anvil", Color: "red", Size: 10, ParentID: 1},
		{WidgetID: 3, Name: "emitter", Color: "blue", Size: 7, ParentID: 1},
		{WidgetID: 4, Name: "bolt", Color: "blue", Size: 1, ParentID: 2},
		{WidgetID: 5, Name: "crank", Color: "red", Size: 5},
	}
}

// Suite is the generic Collection test suite.
type Suite struct {
	suite.Suite

	// NewCollection builds a collection of WidgetKind holding
	// exactly widgets, ordered by WidgetOrder.  It is set by
	// importing packages.
	NewCollection func(widgets []*Widget) (resource.Collection, error)
}

// SetupSuite does one-time initialization for the test suite.
func (s *Suite) SetupSuite() {
}

// Collection builds a collection of the standard widgets, failing
// the test if that is not possible.
func (s *Suite) Collection() resource.Collection {
	return s.CollectionOf(Widgets())
}

// CollectionOf builds a collection of specific widgets, failing the
// test if that is not possible.
func (s *Suite) CollectionOf(widgets []*Widget) resource.Collection {
	c, err := s.NewCollection(widgets)
	if !s.NoError(err) {
		s.FailNow("could not create collection")
	}
	return c
}

// IDs returns the identifiers of a list of items.
func IDs(items []resource.Item) []int64 {
	result := make([]int64, len(items))
	for i, item := range items {
		result[i] = item.ID()
	}
	return result
}

// Names returns the labels of a list of items.
func Names(items []resource.Item) []string {
	result := make([]string, len(items))
	for i, item := range items {
		result[i] = fmt.Sprint(item)
	}
	return result
}
