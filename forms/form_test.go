// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package forms_test

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/diffeo/go-towel/forms"
	"github.com/diffeo/go-towel/memory"
	"github.com/diffeo/go-towel/resource"
	"github.com/diffeo/go-towel/resource/resourcetest"
	"github.com/stretchr/testify/assert"
)

func TestFormValues(t *testing.T) {
	f := forms.NewForm("batch", url.Values{
		"batch-subject": {"  hello "},
		"batch-tags":    {"a", " ", " b"},
		"subject":       {"unprefixed"},
	})
	assert.Equal(t, "batch-subject", f.Key("subject"))
	assert.Equal(t, "hello", f.Value("subject"))
	assert.Equal(t, []string{"a", "b"}, f.Values("tags"))
	assert.Equal(t, "", f.Value("missing"))

	f = forms.NewForm("", url.Values{"subject": {"x"}})
	assert.Equal(t, "x", f.Value("subject"))
}

func TestFormBool(t *testing.T) {
	for value, expected := range map[string]bool{
		"":      false,
		"0":     false,
		"false": false,
		"False": false,
		"1":     true,
		"on":    true,
		"true":  true,
	} {
		f := forms.NewForm("", url.Values{"flag": {value}})
		assert.Equal(t, expected, f.Bool("flag"), value)
	}
	assert.False(t, forms.NewForm("", nil).Bool("flag"))
}

func TestFormValidity(t *testing.T) {
	f := forms.NewForm("batch", nil)
	assert.True(t, f.Valid())

	f.AddWarning("careful")
	assert.False(t, f.Valid())

	f = forms.NewForm("batch", url.Values{"batch-ignore_warnings": {"on"}})
	f.AddWarning("careful")
	assert.True(t, f.Valid())

	assert.Equal(t, "", f.Require("subject"))
	assert.Equal(t, []string{forms.ErrRequired}, f.Errors["subject"])
	assert.False(t, f.Valid())
}

func TestIsBatch(t *testing.T) {
	post := url.Values{"batchform": {""}}
	assert.True(t, forms.IsBatch(http.MethodPost, post))
	assert.False(t, forms.IsBatch(http.MethodGet, post))
	assert.False(t, forms.IsBatch(http.MethodPost, url.Values{}))
}

func TestSelectedIDs(t *testing.T) {
	post := url.Values{
		"batch_1": {"on"},
		"batch_3": {""},
		"batch_4": {"on"},
		"batch_9": {"on"},
	}
	assert.Equal(t, []int64{4, 1}, forms.SelectedIDs(post, []int64{4, 3, 2, 1}))
	assert.Empty(t, forms.SelectedIDs(url.Values{}, []int64{1, 2}))
}

// namesAction joins the names of selected widgets, warning when a
// red widget is selected.
type namesAction struct {
	fail bool
}

func (a namesAction) Clean(items []resource.Item, form *forms.Form) {
	for _, item := range items {
		if item.Value("color") == "red" {
			form.AddWarning(item.String() + " is red")
		}
	}
}

func (a namesAction) Process(items []resource.Item, form *forms.Form) (interface{}, error) {
	if a.fail {
		return nil, errors.New("failed")
	}
	var names []string
	for _, item := range items {
		names = append(names, item.String())
	}
	return strings.Join(names, ","), nil
}

func widgetCollection(t *testing.T) resource.Collection {
	c := memory.New(resourcetest.WidgetKind, resourcetest.WidgetOrder...)
	for _, w := range resourcetest.Widgets() {
		c.Put(w)
	}
	return c
}

func TestRunBatch(t *testing.T) {
	c := widgetCollection(t)
	candidates := []int64{3, 4, 5}

	post := url.Values{"batchform": {""}, "batch_3": {"on"}, "batch_4": {"on"}}
	batch, err := forms.RunBatch(namesAction{}, c, candidates, post)
	if assert.NoError(t, err) {
		assert.True(t, batch.Processed)
		assert.Equal(t, "emitter,bolt", batch.Result)
		assert.Len(t, batch.Items, 2)
	}

	post = url.Values{"batchform": {""}, "batch_5": {"on"}}
	batch, err = forms.RunBatch(namesAction{}, c, candidates, post)
	if assert.NoError(t, err) {
		assert.False(t, batch.Processed)
		assert.Equal(t, []string{"crank is red"}, batch.Form.Warnings)
		assert.Nil(t, batch.Result)
	}

	post.Set("batch-ignore_warnings", "on")
	batch, err = forms.RunBatch(namesAction{}, c, candidates, post)
	if assert.NoError(t, err) {
		assert.True(t, batch.Processed)
		assert.Equal(t, "crank", batch.Result)
	}

	_, err = forms.RunBatch(namesAction{fail: true}, c, candidates, post)
	assert.Error(t, err)
}

func TestParseArgs(t *testing.T) {
	args, kwargs := forms.ParseArgs([]string{
		"contacts", "page=2", "", "a=b=c", "=x", "-v", "page=3",
	})
	assert.Equal(t, []string{"contacts", "=x", "-v"}, args)
	assert.Equal(t, map[string]string{"page": "3", "a": "b=c"}, kwargs)

	args, kwargs = forms.ParseArgs(nil)
	assert.Empty(t, args)
	assert.Empty(t, kwargs)
}
