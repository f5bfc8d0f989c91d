// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/diffeo/go-towel/forms"
	"github.com/diffeo/go-towel/memory"
	"github.com/diffeo/go-towel/resource"
	"github.com/diffeo/go-towel/resource/resourcetest"
	"github.com/diffeo/go-towel/restclient"
	"github.com/diffeo/go-towel/restdata"
	"github.com/diffeo/go-towel/restserver"
	"github.com/diffeo/go-towel/session"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// blueAction counts the selected widgets, refusing red ones.
type blueAction struct{}

func (blueAction) Clean(items []resource.Item, form *forms.Form) {
	for _, item := range items {
		if item.Value("color") == "red" {
			form.AddError("batch", item.String()+" is red")
		}
	}
}

func (blueAction) Process(items []resource.Item, form *forms.Form) (interface{}, error) {
	return len(items), nil
}

// serve publishes widgets on a fresh test server and returns a
// client for it.
func serve(t *testing.T, widgets []*resourcetest.Widget) (*restclient.Client, error) {
	logger := logrus.NewEntry(logrus.New())
	c := memory.New(resourcetest.WidgetKind, resourcetest.WidgetOrder...)
	for _, w := range widgets {
		c.Put(w)
	}
	sessions := session.New(0, nil, logger)
	api := restserver.New("test", sessions, logger)
	err := api.Register(c, restserver.Options{
		PageSize: 2,
		SearchForm: &forms.SearchForm{
			Name:   "widgets",
			Fields: []string{"color"},
		},
		Actions: map[string]forms.BatchAction{"blue": blueAction{}},
	})
	if err != nil {
		return nil, err
	}
	server := httptest.NewServer(restserver.NewRouter(api))
	t.Cleanup(func() {
		server.Close()
		sessions.Close()
	})
	return restclient.New(server.URL)
}

// Suite runs the generic collection tests through a client and
// server.
type Suite struct {
	resourcetest.Suite
}

// SetupSuite does global setup for the test suite.
func (s *Suite) SetupSuite() {
	s.Suite.SetupSuite()
	s.NewCollection = func(widgets []*resourcetest.Widget) (resource.Collection, error) {
		client, err := serve(s.T(), widgets)
		if err != nil {
			return nil, err
		}
		return client.Collection(resourcetest.WidgetKind)
	}
}

// TestCollection runs the generic collection tests.
func TestCollection(t *testing.T) {
	suite.Run(t, &Suite{})
}

func TestEmptyURL(t *testing.T) {
	_, err := restclient.New("")
	assert.Error(t, err)
}

func TestUnknownKind(t *testing.T) {
	client, err := serve(t, resourcetest.Widgets())
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, []string{"widget"}, client.Kinds())
	_, err = client.Collection(resource.Kind{Name: "gizmo"})
	assert.Equal(t, restclient.ErrNoSuchKind{Kind: "gizmo"}, err)
}

func TestList(t *testing.T) {
	client, err := serve(t, resourcetest.Widgets())
	if !assert.NoError(t, err) {
		return
	}

	list, err := client.List("widget", 2, nil)
	if assert.NoError(t, err) && assert.NotNil(t, list.Meta) {
		assert.Equal(t, 2, list.Meta.Current)
		assert.Equal(t, 3, list.Meta.Pages)
		assert.Equal(t, "/widget?page=3", list.Meta.Next)
	}

	// A submitted search sticks through the cookie jar
	list, err = client.List("widget", 0, url.Values{"s": {"1"}, "color": {"blue"}})
	if assert.NoError(t, err) && assert.NotNil(t, list.Meta) {
		assert.Equal(t, 2, list.Meta.Count)
	}
	list, err = client.List("widget", 0, nil)
	if assert.NoError(t, err) && assert.NotNil(t, list.Meta) {
		assert.Equal(t, 2, list.Meta.Count)
	}
	list, err = client.List("widget", 0, url.Values{"clear": {"1"}})
	if assert.NoError(t, err) && assert.NotNil(t, list.Meta) {
		assert.Equal(t, 5, list.Meta.Count)
	}
}

func TestGetSet(t *testing.T) {
	client, err := serve(t, resourcetest.Widgets())
	if !assert.NoError(t, err) {
		return
	}

	envs, err := client.GetSet("widget", []int64{4})
	if assert.NoError(t, err) && assert.Len(t, envs, 1) {
		assert.Equal(t, "bolt", envs[0].DisplayLabel())
	}

	_, err = client.GetSet("widget", []int64{4, 40})
	assert.Equal(t, resource.ErrMissingItems{Kind: "widget", IDs: []int64{40}}, err)

	id, err := client.ParseDetailURI("widget", "/widget/4")
	if assert.NoError(t, err) {
		assert.Equal(t, int64(4), id)
	}
	_, err = client.ParseDetailURI("widget", "/gadget/4")
	assert.Error(t, err)
}

func TestAutocomplete(t *testing.T) {
	client, err := serve(t, resourcetest.Widgets())
	if !assert.NoError(t, err) {
		return
	}
	choices, err := client.Autocomplete("widget", "mo")
	if assert.NoError(t, err) {
		assert.Equal(t, []resource.Choice{{Label: "dynamo", Value: 1}}, choices)
	}
}

func TestBatch(t *testing.T) {
	client, err := serve(t, resourcetest.Widgets())
	if !assert.NoError(t, err) {
		return
	}

	result, err := client.Batch("widget", "blue", []int64{3, 4}, nil)
	if assert.NoError(t, err) {
		assert.Len(t, result.Objects, 2)
		assert.EqualValues(t, 2, result.Result)
		assert.Empty(t, result.Errors)
	}

	result, err = client.Batch("widget", "blue", []int64{2, 3}, nil)
	if assert.NoError(t, err) {
		assert.Nil(t, result.Result)
		assert.Equal(t, []string{"anvil is red"}, result.Errors["batch"])
	}

	_, err = client.Batch("widget", "explode", []int64{3}, nil)
	assert.Error(t, err)
}

// TestGetManyUnrelatedMissing checks that a server blaming items that
// were not requested produces an error rather than endless retries.
func TestGetManyUnrelatedMissing(t *testing.T) {
	requests := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/" {
			w.Header().Set("Content-Type", restdata.V1JSONMediaType)
			_ = restdata.Encode(w, restdata.RootData{
				SelfURI: "/",
				Kinds: map[string]restdata.ResourceShort{
					"widget": {
						Kind:      "widget",
						URL:       "/widget",
						DetailURL: "/widget/{id}",
						SetURL:    "/widget/{+ids}",
						Canonical: true,
					},
				},
			})
			return
		}
		requests++
		w.Header().Set("Content-Type", restdata.V1JSONMediaType)
		w.WriteHeader(http.StatusNotFound)
		_ = restdata.Encode(w, restdata.ErrorResponse{
			Error:   "ErrMissingItems",
			Message: "no such widget",
			Value:   "widget/99",
		})
	}))
	defer ts.Close()

	client, err := restclient.New(ts.URL + "/")
	if !assert.NoError(t, err) {
		return
	}
	coll, err := client.Collection(resourcetest.WidgetKind)
	if !assert.NoError(t, err) {
		return
	}
	items, err := coll.GetMany([]int64{1, 2})
	assert.Equal(t, resource.ErrMissingItems{Kind: "widget", IDs: []int64{99}}, err)
	assert.Nil(t, items)
	assert.Equal(t, 1, requests)
}
