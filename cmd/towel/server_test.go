// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diffeo/go-towel/contacts"
	"github.com/diffeo/go-towel/restclient"
	"github.com/diffeo/go-towel/restdata"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, config Config) *restclient.Client {
	logger := logrus.NewEntry(logrus.New())
	repo := contacts.NewMemoryRepository(logger)
	require.NoError(t, contacts.LoadFixturesFile("../../contacts/testdata/fixtures.yaml", repo))

	server, err := NewServer(repo, config, logger, logrus.New())
	require.NoError(t, err)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(func() {
		ts.Close()
		server.Close()
	})

	base := ts.URL + "/"
	if strings.Trim(config.Prefix, "/") != "" {
		base = ts.URL + "/" + strings.Trim(config.Prefix, "/") + "/"
	}
	client, err := restclient.New(base)
	require.NoError(t, err)
	return client
}

func TestServeContacts(t *testing.T) {
	client := newTestServer(t, DefaultConfig())

	assert.Equal(t, []string{"contact", "organization"}, client.Kinds())
	if assert.Len(t, client.Representation.Resources, 3) {
		people := client.Representation.Resources[2]
		assert.Equal(t, "/people", people.URL)
		assert.False(t, people.Canonical)
	}

	list, err := client.List("contact", 0, nil)
	if assert.NoError(t, err) && assert.Len(t, list.Objects, 4) {
		babbage := list.Objects[0]
		assert.Equal(t, "Charles Babbage", babbage.DisplayLabel())
		assert.Equal(t, "/organization/2", babbage["organization"])
		assert.NotContains(t, list.Objects[1], "organization")
	}

	list, err = client.List("contact", 0, searchValues(map[string]string{"city": "London"}))
	if assert.NoError(t, err) && assert.NotNil(t, list.Meta) {
		assert.Equal(t, 2, list.Meta.Count)
	}
}

func TestServeMailingList(t *testing.T) {
	client := newTestServer(t, DefaultConfig())

	result, err := client.Batch("contact", "mailing_list", []int64{1, 2}, nil)
	if assert.NoError(t, err) {
		assert.Equal(t, []string{"Charles Babbage has no e-mail address"}, result.Warnings)
		assert.Nil(t, result.Result)
	}

	result, err = client.Batch("contact", "mailing_list", []int64{1, 2},
		map[string][]string{"ignore_warnings": {"on"}})
	if assert.NoError(t, err) {
		assert.Equal(t, []interface{}{"Ada Lovelace <ada@engines.example>"}, result.Result)
	}
}

func TestServePrefix(t *testing.T) {
	config := DefaultConfig()
	config.Prefix = "/api/"
	config.CacheSize = 0
	client := newTestServer(t, config)

	assert.Equal(t, "/api/contact", client.Representation.Kinds["contact"].URL)
	env, err := client.Get("organization", 1)
	if assert.NoError(t, err) {
		assert.Equal(t, "Diffeo", env.DisplayLabel())
		assert.Equal(t, "/api/organization/1", env.SelfURI())
	}
}

func TestMetrics(t *testing.T) {
	logger := logrus.NewEntry(logrus.New())
	repo := contacts.NewMemoryRepository(logger)
	server, err := NewServer(repo, DefaultConfig(), logger, nil)
	require.NoError(t, err)
	defer server.Close()
	observe(server.Collections, logger)

	resp := httptest.NewRecorder()
	server.Handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `diffeo_towel_items{kind="contact"} 0`)
}

func TestWriteOverview(t *testing.T) {
	var buf bytes.Buffer
	err := writeOverview(&buf, restdata.RootData{
		SelfURI:      "/",
		DisplayLabel: "towel",
		Resources: []restdata.ResourceShort{
			{Kind: "contact", URL: "/contact", Canonical: true},
			{Kind: "contact", URL: "/people"},
		},
	})
	if assert.NoError(t, err) {
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if assert.Len(t, lines, 3) {
			assert.Contains(t, lines[1], "canonical")
			assert.NotContains(t, lines[2], "canonical")
		}
	}
}

func TestSearchValues(t *testing.T) {
	assert.Nil(t, searchValues(nil))
	values := searchValues(map[string]string{"city": "London"})
	assert.Equal(t, "1", values.Get("s"))
	assert.Equal(t, "London", values.Get("city"))
}
