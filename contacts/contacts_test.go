// Copyright 2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package contacts_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/diffeo/go-towel/contacts"
	"github.com/diffeo/go-towel/forms"
	"github.com/diffeo/go-towel/resource"
	"github.com/diffeo/go-towel/sqlstore"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// Suite runs the same repository tests against every implementation.
type Suite struct {
	suite.Suite
	NewRepository func() (contacts.Repository, error)
	Repo          contacts.Repository
}

func (s *Suite) SetupTest() {
	repo, err := s.NewRepository()
	if !s.NoError(err) {
		s.T().FailNow()
	}
	err = contacts.LoadFixturesFile("testdata/fixtures.yaml", repo)
	if !s.NoError(err) {
		s.T().FailNow()
	}
	s.Repo = repo
}

func labels(items []resource.Item) []string {
	result := make([]string, len(items))
	for i, item := range items {
		result[i] = item.String()
	}
	return result
}

func (s *Suite) all(c resource.Collection) []resource.Item {
	items, err := resource.All(c)
	s.NoError(err)
	return items
}

func (s *Suite) TestFixtures() {
	items := s.all(s.Repo.Contacts())
	s.Equal([]string{
		"Charles Babbage",
		"Grace Hopper",
		"Ada Lovelace",
		"Niklaus Wirth",
	}, labels(items))

	orgs := s.all(s.Repo.Organizations())
	s.Equal([]string{"Analytical Engines", "Diffeo"}, labels(orgs))
}

func (s *Suite) TestDefaults() {
	items := s.all(s.Repo.Contacts())
	if s.Len(items, 4) {
		wirth := items[3]
		s.Equal("CH", wirth.Value("country"))
		s.Equal("Wirth Niklaus", wirth.Value("sorting_field"))

		hopper := items[1]
		s.Equal("US", hopper.Value("country"))
		s.Nil(hopper.Value("organization"))
	}
}

func (s *Suite) TestReferences() {
	items := s.all(s.Repo.Contacts())
	if s.Len(items, 4) {
		orgID, ok := items[0].Value("organization").(int64)
		if s.True(ok) {
			org, err := s.Repo.Organizations().Get(orgID)
			if s.NoError(err) {
				s.Equal("Analytical Engines", org.String())
			}
		}
	}
}

func (s *Suite) TestSaveUpdates() {
	items := s.all(s.Repo.Contacts())
	if !s.Len(items, 4) {
		return
	}
	c := *(items[2].(*contacts.Contact))
	c.LastName = "King"
	if s.NoError(s.Repo.SaveContact(&c)) {
		s.Equal("King Ada", c.SortingField)
		item, err := s.Repo.Contacts().Get(c.ContactID)
		if s.NoError(err) {
			s.Equal("Ada King", item.String())
		}
		count, err := s.Repo.Contacts().Count()
		s.NoError(err)
		s.Equal(4, count)
	}
}

func (s *Suite) TestSaveMissing() {
	c := contacts.NewContact()
	c.ContactID = 9999
	c.FirstName = "No"
	c.LastName = "Body"
	err := s.Repo.SaveContact(c)
	s.True(resource.IsNotFound(err), "%+v", err)

	c = contacts.NewContact()
	c.FirstName = "No"
	c.LastName = "Where"
	c.OrganizationID = 9999
	err = s.Repo.SaveContact(c)
	s.True(resource.IsNotFound(err), "%+v", err)

	o := &contacts.Organization{OrganizationID: 9999, Name: "Nobody"}
	err = s.Repo.SaveOrganization(o)
	s.True(resource.IsNotFound(err), "%+v", err)
}

func (s *Suite) search(get url.Values) []string {
	bound := contacts.SearchForm().Bind(http.MethodGet, get, nil, nil)
	searcher, ok := s.Repo.Contacts().(resource.Searcher)
	if !s.True(ok) {
		return nil
	}
	c, err := searcher.Search(bound.Query())
	if !s.NoError(err) {
		return nil
	}
	return labels(s.all(c))
}

func (s *Suite) TestSearchForm() {
	s.Equal([]string{"Charles Babbage", "Ada Lovelace"},
		s.search(url.Values{"s": {"1"}, "city": {"London"}}))
	s.Equal([]string{"Ada Lovelace", "Grace Hopper", "Charles Babbage"},
		s.search(url.Values{"s": {"1"}, "country": {"US", "GB"}, "o": {"-"}}))
	s.Equal([]string{"Niklaus Wirth", "Ada Lovelace", "Grace Hopper", "Charles Babbage"},
		s.search(url.Values{"o": {"-"}}))
	s.Equal([]string{"Grace Hopper", "Charles Babbage", "Ada Lovelace", "Niklaus Wirth"},
		s.search(url.Values{"o": {"city"}}))
	s.Equal([]string{"Ada Lovelace", "Charles Babbage", "Grace Hopper", "Niklaus Wirth"},
		s.search(url.Values{"o": {"first_name"}}))
	s.Equal([]string{"Grace Hopper"},
		s.search(url.Values{"query": {"HOPPER"}}))
}

func (s *Suite) TestMailingList() {
	items := s.all(s.Repo.Contacts())
	var post = url.Values{"batchform": {""}}
	var candidates []int64
	for _, item := range items {
		candidates = append(candidates, item.ID())
		post.Set(forms.SelectionKey(item.ID()), "on")
	}

	batch, err := forms.RunBatch(contacts.MailingList{}, s.Repo.Contacts(), candidates, post)
	if s.NoError(err) {
		s.False(batch.Processed)
		s.Nil(batch.Result)
		s.Equal([]string{"Charles Babbage has no e-mail address"}, batch.Form.Warnings)
	}

	post.Set("batch-ignore_warnings", "1")
	batch, err = forms.RunBatch(contacts.MailingList{}, s.Repo.Contacts(), candidates, post)
	if s.NoError(err) {
		s.True(batch.Processed)
		s.Equal([]string{
			"Grace Hopper <grace@navy.example>",
			"Ada Lovelace <ada@engines.example>",
			"Niklaus Wirth <wirth@ethz.example>",
		}, batch.Result)
	}
}

func TestMemoryRepository(t *testing.T) {
	suite.Run(t, &Suite{
		NewRepository: func() (contacts.Repository, error) {
			return contacts.NewMemoryRepository(nil), nil
		},
	})
}

func TestSQLiteRepository(t *testing.T) {
	suite.Run(t, &Suite{
		NewRepository: func() (contacts.Repository, error) {
			logger := logrus.NewEntry(logrus.New())
			store, err := sqlstore.Open(sqlstore.DialectSQLite, ":memory:", logger)
			if err != nil {
				return nil, err
			}
			return contacts.NewSQLRepository(store)
		},
	})
}

func TestMigrationsDialect(t *testing.T) {
	_, err := contacts.Migrations(sqlstore.DialectPostgres)
	assert.NoError(t, err)
	_, err = contacts.Migrations("oracle")
	assert.Error(t, err)
}

func TestReadFixturesUnknownOrganization(t *testing.T) {
	fixtures, err := contacts.ReadFixtures(strings.NewReader(`
contacts:
  - first_name: Lost
    last_name: Soul
    organization: 7
`))
	if assert.NoError(t, err) {
		err = fixtures.Load(contacts.NewMemoryRepository(nil))
		assert.Error(t, err)
	}
}

func TestContactLabels(t *testing.T) {
	c := contacts.NewContact()
	c.FirstName = "Ada"
	c.LastName = "Lovelace"
	assert.Equal(t, "Ada Lovelace", c.String())
	assert.Equal(t, "CH", c.Country)
	assert.Nil(t, c.Value("organization"))
}
