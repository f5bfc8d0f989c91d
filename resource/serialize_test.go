// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package resource_test

import (
	"fmt"
	"testing"

	"github.com/diffeo/go-towel/resource"
	"github.com/diffeo/go-towel/resource/resourcetest"
	"github.com/stretchr/testify/assert"
)

// routes is a URIResolver that knows about a fixed set of kinds.
type routes map[string]string

func (r routes) Reverse(kind string, intent resource.Intent, ids ...int64) (string, error) {
	prefix, ok := r[kind]
	if !ok {
		return "", fmt.Errorf("No such route %q", kind)
	}
	switch intent {
	case resource.IntentDetail:
		return fmt.Sprintf("%s/%d/", prefix, ids[0]), nil
	case resource.IntentSet:
		return prefix + "/" + resource.FormatIDSet(ids) + "/", nil
	default:
		return prefix + "/", nil
	}
}

func TestSerialize(t *testing.T) {
	w := &resourcetest.Widget{WidgetID: 4, Name: "bolt", Color: "blue", Size: 1, ParentID: 2}
	env, err := resource.Serialize(w, resourcetest.WidgetKind, routes{"widget": "/api/widget"})
	if assert.NoError(t, err) {
		assert.Equal(t, resource.Envelope{
			"self_uri":      "/api/widget/4/",
			"display_label": "bolt",
			"name":          "bolt",
			"color":         "blue",
			"size":          int64(1),
			"parent":        "/api/widget/2/",
		}, env)
		assert.Equal(t, "/api/widget/4/", env.SelfURI())
		assert.Equal(t, "bolt", env.DisplayLabel())
	}
}

// TestSerializeNoParent checks that an unset reference is omitted.
func TestSerializeNoParent(t *testing.T) {
	w := &resourcetest.Widget{WidgetID: 1, Name: "dynamo", Color: "green", Size: 20}
	env, err := resource.Serialize(w, resourcetest.WidgetKind, routes{"widget": "/w"})
	if assert.NoError(t, err) {
		assert.NotContains(t, env, "parent")
		assert.Contains(t, env, "size")
	}
}

// TestSerializeUnroutedReference checks that a reference to a kind
// with no route is silently omitted.
func TestSerializeUnroutedReference(t *testing.T) {
	kind := resource.Kind{
		Name: "widget",
		Fields: []resource.Field{
			{Name: "name"},
			{Name: "parent", Target: "gadget"},
		},
	}
	w := &resourcetest.Widget{WidgetID: 4, Name: "bolt", ParentID: 2}
	env, err := resource.Serialize(w, kind, routes{"widget": "/w"})
	if assert.NoError(t, err) {
		assert.Equal(t, resource.Envelope{
			"self_uri":      "/w/4/",
			"display_label": "bolt",
			"name":          "bolt",
		}, env)
	}
}

// TestSerializeUnroutedSelf checks that an item whose own kind has
// no route cannot be serialized.
func TestSerializeUnroutedSelf(t *testing.T) {
	w := &resourcetest.Widget{WidgetID: 4, Name: "bolt"}
	_, err := resource.Serialize(w, resourcetest.WidgetKind, routes{})
	assert.Error(t, err)
}

func TestSerializeAll(t *testing.T) {
	var items []resource.Item
	for _, w := range resourcetest.Widgets()[:3] {
		items = append(items, w)
	}
	envs, err := resource.SerializeAll(items, resourcetest.WidgetKind, routes{"widget": "/w"})
	if assert.NoError(t, err) && assert.Len(t, envs, 3) {
		assert.Equal(t, "/w/1/", envs[0].SelfURI())
		assert.Equal(t, "/w/2/", envs[1].SelfURI())
		assert.Equal(t, "/w/1/", envs[1]["parent"])
	}
}
