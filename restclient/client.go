// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restclient provides an HTTP REST client that talks to the
// matching server in the "restserver" package.
//
// The server in github.com/diffeo/go-towel/cmd/towel can run a
// compatible REST server.  Call New() with the base URL of that
// service; for instance,
//
//     c, err := restclient.New("http://localhost:5980/")
//
// Everything past the overview document is found by following the
// URLs and URI templates the server publishes in it.
package restclient

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"

	"github.com/diffeo/go-towel/forms"
	"github.com/diffeo/go-towel/resource"
	"github.com/diffeo/go-towel/restdata"
	"github.com/pkg/errors"
)

// ErrNoSuchKind is returned when the server publishes no canonical
// resource of a kind.
type ErrNoSuchKind struct {
	Kind string
}

func (e ErrNoSuchKind) Error() string {
	return "no such kind " + e.Kind
}

// Client talks to one API.  It keeps cookies, so a search submitted
// through it persists for later listings.
type Client struct {
	endpoint
	Representation restdata.RootData
}

// New creates a client for the API at baseURL and fetches its
// overview.
func New(baseURL string) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.Errorf("not an absolute URL: %q", baseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c := &Client{
		endpoint: endpoint{
			URL:    base,
			Client: &http.Client{Jar: jar},
		},
	}
	if err = c.Refresh(); err != nil {
		return nil, err
	}
	return c, nil
}

// Refresh fetches the overview again.
func (c *Client) Refresh() error {
	c.Representation = restdata.RootData{}
	return c.endpoint.Get(&c.Representation)
}

// Kinds returns the names of kinds with a canonical resource.
func (c *Client) Kinds() []string {
	var names []string
	for _, short := range c.Representation.Resources {
		if short.Canonical {
			names = append(names, short.Kind)
		}
	}
	return names
}

func (c *Client) short(kind string) (restdata.ResourceShort, error) {
	short, ok := c.Representation.Kinds[kind]
	if !ok {
		return short, ErrNoSuchKind{Kind: kind}
	}
	return short, nil
}

// List fetches one page of the listing of a kind.  search holds
// extra query parameters, such as search form fields; it may be nil.
// A page less than 1 fetches the server's default page.
func (c *Client) List(kind string, page int, search url.Values) (restdata.ObjectList, error) {
	var list restdata.ObjectList
	short, err := c.short(kind)
	if err != nil {
		return list, err
	}
	listURL, err := c.URL.Parse(short.URL)
	if err != nil {
		return list, err
	}
	query := url.Values{}
	for k, v := range search {
		query[k] = v
	}
	if page > 0 {
		query.Set(resource.PageParam, strconv.Itoa(page))
	}
	listURL.RawQuery = query.Encode()
	err = c.Do("GET", listURL, nil, &list)
	return list, err
}

// Get fetches one item.
func (c *Client) Get(kind string, id int64) (resource.Envelope, error) {
	var env resource.Envelope
	short, err := c.short(kind)
	if err != nil {
		return nil, err
	}
	err = c.GetFrom(short.DetailURL, map[string]interface{}{
		resource.IDParam: strconv.FormatInt(id, 10),
	}, &env)
	return env, err
}

// GetSet fetches several items at once.  If any is missing, the
// whole request fails with resource.ErrMissingItems.
func (c *Client) GetSet(kind string, ids []int64) ([]resource.Envelope, error) {
	var list restdata.ObjectList
	short, err := c.short(kind)
	if err != nil {
		return nil, err
	}
	set := resource.FormatIDSet(ids)
	if len(ids) == 1 {
		set += ";"
	}
	err = c.GetFrom(short.SetURL, map[string]interface{}{
		resource.IDSetParam: set,
	}, &list)
	return list.Objects, err
}

// Autocomplete returns the items of a kind whose labels contain term.
func (c *Client) Autocomplete(kind, term string) ([]restdata.Choice, error) {
	var choices []restdata.Choice
	short, err := c.short(kind)
	if err != nil {
		return nil, err
	}
	acURL, err := c.URL.Parse(short.AutocompleteURL)
	if err != nil {
		return nil, err
	}
	acURL.RawQuery = url.Values{"term": {term}}.Encode()
	err = c.Do("GET", acURL, nil, &choices)
	return choices, err
}

// Batch runs a batch action on selected items of a kind.  fields
// holds the action's own form fields, without their "batch-"
// prefix; it may be nil.
func (c *Client) Batch(kind, action string, ids []int64, fields url.Values) (restdata.BatchResult, error) {
	var result restdata.BatchResult
	short, err := c.short(kind)
	if err != nil {
		return result, err
	}
	if short.BatchURL == "" {
		return result, errors.Errorf("%s has no batch actions", kind)
	}
	form := url.Values{forms.BatchMarker: {""}}
	for _, id := range ids {
		form.Set(forms.SelectionKey(id), "on")
	}
	prefixed := forms.NewForm(forms.BatchPrefix, nil)
	for k, v := range fields {
		form[prefixed.Key(k)] = v
	}
	err = c.PostTo(short.BatchURL, map[string]interface{}{"action": action}, form, &result)
	return result, err
}
