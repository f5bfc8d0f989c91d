// Copyright 2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package contacts

import (
	"io"
	"io/ioutil"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Fixtures is a YAML document of initial data:
//
//     organizations:
//       - id: 1
//         name: Diffeo
//     contacts:
//       - first_name: Ada
//         last_name: Lovelace
//         organization: 1
//
// Identifiers in the document only link contacts to organizations;
// loaded records get new identifiers from the repository.
type Fixtures struct {
	Organizations []*Organization `yaml:"organizations"`
	Contacts      []*Contact      `yaml:"contacts"`
}

// ReadFixtures parses a fixtures document.
func ReadFixtures(r io.Reader) (*Fixtures, error) {
	bytes, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var fixtures Fixtures
	if err = yaml.Unmarshal(bytes, &fixtures); err != nil {
		return nil, errors.Wrap(err, "parsing fixtures")
	}
	return &fixtures, nil
}

// LoadFixturesFile reads a fixtures file and loads it into a
// repository.
func LoadFixturesFile(filename string, repo Repository) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	fixtures, err := ReadFixtures(f)
	if err != nil {
		return errors.Wrap(err, filename)
	}
	return fixtures.Load(repo)
}

// Load saves every record into a repository.  The records in f are
// updated with their new identifiers.
func (f *Fixtures) Load(repo Repository) error {
	orgIDs := make(map[int64]int64, len(f.Organizations))
	for _, org := range f.Organizations {
		fixtureID := org.OrganizationID
		org.OrganizationID = 0
		if err := repo.SaveOrganization(org); err != nil {
			return err
		}
		if fixtureID != 0 {
			orgIDs[fixtureID] = org.OrganizationID
		}
	}
	for _, c := range f.Contacts {
		if c.OrganizationID != 0 {
			id, ok := orgIDs[c.OrganizationID]
			if !ok {
				return errors.Errorf("contact %q refers to unknown organization %d",
					c.FullName(), c.OrganizationID)
			}
			c.OrganizationID = id
		}
		c.ContactID = 0
		if err := repo.SaveContact(c); err != nil {
			return err
		}
	}
	return nil
}
