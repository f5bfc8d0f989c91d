// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package forms

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/diffeo/go-towel/resource"
)

const (
	// BatchMarker must be present in a POST for it to be
	// processed as a batch submission.
	BatchMarker = "batchform"

	// BatchPrefix prefixes the batch form's own fields.
	BatchPrefix = "batch"
)

// BatchAction processes a set of selected items.
type BatchAction interface {
	// Clean validates the form against the selected items,
	// recording errors and warnings on it.
	Clean(items []resource.Item, form *Form)

	// Process runs the action.  It is only called if the form
	// is valid after Clean.
	Process(items []resource.Item, form *Form) (interface{}, error)
}

// IsBatch returns true if a request is a batch submission.
func IsBatch(method string, post url.Values) bool {
	if method != http.MethodPost {
		return false
	}
	_, ok := post[BatchMarker]
	return ok
}

// SelectionKey is the posted name of the checkbox selecting an item.
func SelectionKey(id int64) string {
	return "batch_" + strconv.FormatInt(id, 10)
}

// SelectedIDs returns the candidates whose selection checkbox was
// posted with a non-empty value, in candidate order.
func SelectedIDs(post url.Values, candidates []int64) []int64 {
	var ids []int64
	for _, id := range candidates {
		if post.Get(SelectionKey(id)) != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Batch is the outcome of a batch submission.
type Batch struct {
	// Form is the batch form, with any errors and warnings.
	Form *Form

	// Items are the selected items.
	Items []resource.Item

	// Processed is true if the action ran.
	Processed bool

	// Result is the action's result, if it ran.
	Result interface{}
}

// RunBatch selects items out of candidates according to post, then
// cleans and, if the form is valid, processes them with action.
// Selected items are fetched from c in one call.
func RunBatch(action BatchAction, c resource.Collection, candidates []int64, post url.Values) (*Batch, error) {
	batch := &Batch{Form: NewForm(BatchPrefix, post)}
	ids := SelectedIDs(post, candidates)
	if len(ids) > 0 {
		items, err := resource.GetSet(c, ids)
		if err != nil {
			return nil, err
		}
		batch.Items = items
	}
	action.Clean(batch.Items, batch.Form)
	if !batch.Form.Valid() {
		return batch, nil
	}
	result, err := action.Process(batch.Items, batch.Form)
	if err != nil {
		return nil, err
	}
	batch.Processed = true
	batch.Result = result
	return batch, nil
}
