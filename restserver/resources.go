// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/diffeo/go-towel/forms"
	"github.com/diffeo/go-towel/resource"
	"github.com/diffeo/go-towel/restdata"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// autocompleteLimit is the most choices an autocomplete request
// returns.
const autocompleteLimit = 20

// search binds the registration's search form, if any, to a request
// and returns the collection it selects along with the query
// parameters that reproduce it.
func (ctx *context) search(method string, post url.Values) (resource.Collection, url.Values, error) {
	reg := ctx.Registration
	if reg.SearchForm == nil {
		return reg.Collection, url.Values{}, nil
	}
	bound := reg.SearchForm.Bind(method, ctx.QueryParams, post, ctx.Persister())
	query := bound.Query()
	if query.IsEmpty() {
		return reg.Collection, bound.Values(), nil
	}
	searcher, ok := reg.Collection.(resource.Searcher)
	if !ok {
		return nil, nil, errors.Errorf("%s collection is not searchable", reg.kind())
	}
	c, err := searcher.Search(query)
	if err != nil {
		return nil, nil, notFound(err)
	}
	return c, bound.Values(), nil
}

func (ctx *context) serialize(items []resource.Item) ([]resource.Envelope, error) {
	envelopes, err := resource.SerializeAll(items, ctx.Registration.Collection.Kind(), ctx.API)
	if envelopes == nil && err == nil {
		envelopes = []resource.Envelope{}
	}
	return envelopes, err
}

// List returns one page of a listing.
func (api *API) List(ctx *context) (interface{}, error) {
	c, values, err := ctx.search(http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	objects, err := resource.Resolve(nil, ctx.QueryParams, c, ctx.Registration.PageSize)
	if err != nil {
		return nil, notFound(err)
	}
	page := objects.Page

	result := restdata.ObjectList{
		Meta: &restdata.Meta{
			Pages:   page.NumPages,
			Count:   page.Count,
			Current: page.Number,
		},
	}
	result.Objects, err = ctx.serialize(page.Items)
	if err != nil {
		return nil, err
	}

	var base string
	err = buildURLs(api.router).RouteURL(&base, ctx.Registration.list).Error
	if err != nil {
		return nil, err
	}
	pageURL := func(n int) string {
		params := url.Values{}
		for k, v := range values {
			params[k] = v
		}
		params.Set(resource.PageParam, strconv.Itoa(n))
		return withQuery(base, params)
	}
	var links []string
	if page.HasPrevious() {
		result.Meta.Previous = pageURL(page.Number - 1)
		links = append(links, "<"+result.Meta.Previous+`>; rel="prev"`)
	}
	if page.HasNext() {
		result.Meta.Next = pageURL(page.Number + 1)
		links = append(links, "<"+result.Meta.Next+`>; rel="next"`)
	}
	if len(links) > 0 {
		ctx.Header.Set("Link", strings.Join(links, ", "))
	}
	return result, nil
}

// Detail returns a single item.
func (api *API) Detail(ctx *context) (interface{}, error) {
	params := map[string]string{resource.IDParam: ctx.Vars[resource.IDParam]}
	objects, err := resource.Resolve(params, nil, ctx.Registration.Collection, 0)
	if err != nil {
		return nil, notFound(err)
	}
	return resource.Serialize(objects.Single, ctx.Registration.Collection.Kind(), api)
}

// Set returns an explicit set of items.
func (api *API) Set(ctx *context) (interface{}, error) {
	params := map[string]string{resource.IDSetParam: ctx.Vars[resource.IDSetParam]}
	objects, err := resource.Resolve(params, nil, ctx.Registration.Collection, 0)
	if err != nil {
		return nil, notFound(err)
	}
	result := restdata.ObjectList{}
	result.Objects, err = ctx.serialize(objects.Set)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Autocomplete returns the items whose labels match the "term" query
// parameter.
func (api *API) Autocomplete(ctx *context) (interface{}, error) {
	return resource.Choices(ctx.Registration.Collection, ctx.QueryParams.Get("term"), autocompleteLimit)
}

// Batch runs a batch action on items selected out of the listing.
// The listing's search applies as it would to a GET of the listing.
func (api *API) Batch(ctx *context, post url.Values) (interface{}, error) {
	name := ctx.Vars["action"]
	action, ok := ctx.Registration.Actions[name]
	if !ok {
		return nil, restdata.ErrNotFound{Err: errors.Errorf("no such batch action %q", name)}
	}
	if !forms.IsBatch(http.MethodPost, post) {
		return nil, restdata.ErrBadRequest{Err: errors.Errorf("missing %q in batch submission", forms.BatchMarker)}
	}

	c, _, err := ctx.search(http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	all, err := resource.All(c)
	if err != nil {
		return nil, err
	}
	candidates := make([]int64, len(all))
	for i, item := range all {
		candidates[i] = item.ID()
	}

	batch, err := forms.RunBatch(action, ctx.Registration.Collection, candidates, post)
	if err != nil {
		return nil, notFound(err)
	}
	result := restdata.BatchResult{
		Result:   batch.Result,
		Warnings: batch.Form.Warnings,
	}
	if len(batch.Form.Errors) > 0 {
		result.Errors = batch.Form.Errors
	}
	result.Objects, err = ctx.serialize(batch.Items)
	if err != nil {
		return nil, err
	}
	ctx.Logger.WithFields(logrus.Fields{
		actionField:   name,
		"selected":    len(batch.Items),
		"processed":   batch.Processed,
		"warnings":    len(batch.Form.Warnings),
		"form_errors": len(batch.Form.Errors),
	}).Info("Ran batch action")
	return result, nil
}
