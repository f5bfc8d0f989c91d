// Copyright 2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package contacts

import (
	"sync"

	"github.com/diffeo/go-towel/memory"
	"github.com/diffeo/go-towel/resource"
	"github.com/diffeo/go-towel/sqlstore"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Repository holds the address book.
type Repository interface {
	// Contacts returns the collection of all contacts.
	Contacts() resource.Collection

	// Organizations returns the collection of all organizations.
	Organizations() resource.Collection

	// SaveContact writes a contact.  If its identifier is zero
	// it is created and given a new identifier; otherwise an
	// existing contact is replaced.  The sorting field is
	// recomputed.  The organization, if any, must exist.
	SaveContact(c *Contact) error

	// SaveOrganization writes an organization, in the same way
	// as SaveContact.
	SaveOrganization(o *Organization) error
}

// checkOrganization verifies a contact's organization reference.
func checkOrganization(r Repository, c *Contact) error {
	if c.OrganizationID == 0 {
		return nil
	}
	_, err := r.Organizations().Get(c.OrganizationID)
	return err
}

// MemoryRepository is a Repository held entirely in memory.
type MemoryRepository struct {
	// lock serializes writers so that new identifiers and
	// reference checks are consistent
	lock          sync.Mutex
	contacts      *memory.Collection
	organizations *memory.Collection
	logger        *logrus.Entry
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository(logger *logrus.Entry) *MemoryRepository {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &MemoryRepository{
		contacts:      memory.New(ContactKind, ContactOrder...),
		organizations: memory.New(OrganizationKind, OrganizationOrder...),
		logger:        logger.WithField("repository", "memory"),
	}
}

// Contacts returns the collection of all contacts.
func (r *MemoryRepository) Contacts() resource.Collection {
	return r.contacts
}

// Organizations returns the collection of all organizations.
func (r *MemoryRepository) Organizations() resource.Collection {
	return r.organizations
}

// SaveContact writes a contact.
func (r *MemoryRepository) SaveContact(c *Contact) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if err := checkOrganization(r, c); err != nil {
		return err
	}
	if c.ContactID == 0 {
		c.ContactID = r.contacts.NextID()
	} else if _, err := r.contacts.Get(c.ContactID); err != nil {
		return err
	}
	c.SortingField = c.sortingField()
	stored := *c
	r.contacts.Put(&stored)
	r.logger.WithField("contact", c.ContactID).Debug("Saved contact")
	return nil
}

// SaveOrganization writes an organization.
func (r *MemoryRepository) SaveOrganization(o *Organization) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if o.OrganizationID == 0 {
		o.OrganizationID = r.organizations.NextID()
	} else if _, err := r.organizations.Get(o.OrganizationID); err != nil {
		return err
	}
	stored := *o
	r.organizations.Put(&stored)
	r.logger.WithField("organization", o.OrganizationID).Debug("Saved organization")
	return nil
}

// SQLRepository is a Repository in a SQL database.
type SQLRepository struct {
	store         *sqlstore.Store
	contacts      *sqlstore.Table
	organizations *sqlstore.Table
}

// ContactTable describes the contacts table.
func ContactTable() sqlstore.TableConfig {
	return sqlstore.TableConfig{
		Name:        "contacts",
		Kind:        ContactKind,
		Columns:     map[string]string{"organization": "organization_id"},
		TextColumns: []string{"first_name", "last_name", "email", "city"},
		Order:       ContactOrder,
		NewItem: func() resource.Item {
			return &Contact{}
		},
	}
}

// OrganizationTable describes the organizations table.
func OrganizationTable() sqlstore.TableConfig {
	return sqlstore.TableConfig{
		Name:        "organizations",
		Kind:        OrganizationKind,
		TextColumns: []string{"name", "website"},
		Order:       OrganizationOrder,
		NewItem: func() resource.Item {
			return &Organization{}
		},
	}
}

// NewSQLRepository creates a repository over store, upgrading its
// schema to the current version.
func NewSQLRepository(store *sqlstore.Store) (*SQLRepository, error) {
	source, err := Migrations(store.Dialect())
	if err != nil {
		return nil, err
	}
	if err = store.Upgrade(source); err != nil {
		return nil, err
	}
	return &SQLRepository{
		store:         store,
		contacts:      store.Table(ContactTable()),
		organizations: store.Table(OrganizationTable()),
	}, nil
}

// Store returns the underlying SQL store.
func (r *SQLRepository) Store() *sqlstore.Store {
	return r.store
}

// Contacts returns the collection of all contacts.
func (r *SQLRepository) Contacts() resource.Collection {
	return r.contacts
}

// Organizations returns the collection of all organizations.
func (r *SQLRepository) Organizations() resource.Collection {
	return r.organizations
}

// SaveContact writes a contact.
func (r *SQLRepository) SaveContact(c *Contact) error {
	if err := checkOrganization(r, c); err != nil {
		return err
	}
	c.SortingField = c.sortingField()
	id, err := r.contacts.Save(c.ContactID, c.row())
	if err != nil {
		return errors.Wrap(err, "saving contact")
	}
	c.ContactID = id
	return nil
}

// SaveOrganization writes an organization.
func (r *SQLRepository) SaveOrganization(o *Organization) error {
	id, err := r.organizations.Save(o.OrganizationID, o.row())
	if err != nil {
		return errors.Wrap(err, "saving organization")
	}
	o.OrganizationID = id
	return nil
}
