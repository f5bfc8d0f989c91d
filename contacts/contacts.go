// Copyright 2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package contacts provides a small address book: contacts, each
// optionally belonging to an organization.  It is the data model the
// towel server publishes out of the box, and exercises every kind of
// storage the resource layer supports.
package contacts

import (
	"github.com/diffeo/go-towel/resource"
	"github.com/diffeo/go-towel/sqlstore"
)

// DefaultCountry is the country of a new contact.
const DefaultCountry = "CH"

// Kind names.
const (
	ContactKindName      = "contact"
	OrganizationKindName = "organization"
)

// OrganizationKind describes Organization items.
var OrganizationKind = resource.Kind{
	Name: OrganizationKindName,
	Fields: []resource.Field{
		{Name: "name"},
		{Name: "website"},
	},
}

// ContactKind describes Contact items.
var ContactKind = resource.Kind{
	Name: ContactKindName,
	Fields: []resource.Field{
		{Name: "first_name"},
		{Name: "last_name"},
		{Name: "manner_of_address"},
		{Name: "title"},
		{Name: "email"},
		{Name: "website"},
		{Name: "function"},
		{Name: "phone"},
		{Name: "fax"},
		{Name: "mobile"},
		{Name: "address"},
		{Name: "zip_code"},
		{Name: "city"},
		{Name: "region"},
		{Name: "country"},
		{Name: "sorting_field"},
		{Name: "organization", Target: OrganizationKindName},
	},
}

// Default listing orders.
var (
	OrganizationOrder = []resource.Ordering{{Field: "name"}}
	ContactOrder      = []resource.Ordering{{Field: "sorting_field"}}
)

// Organization is a company or other body contacts work for.
type Organization struct {
	OrganizationID int64  `db:"id" yaml:"id"`
	Name           string `db:"name" yaml:"name"`
	Website        string `db:"website" yaml:"website"`
}

// ID returns the organization's identifier.
func (o *Organization) ID() int64 {
	return o.OrganizationID
}

func (o *Organization) String() string {
	return o.Name
}

// Value returns a named field.
func (o *Organization) Value(field string) interface{} {
	switch field {
	case "name":
		return o.Name
	case "website":
		return o.Website
	}
	return nil
}

func (o *Organization) row() sqlstore.Row {
	return sqlstore.Row{
		"name":    o.Name,
		"website": o.Website,
	}
}

// Contact is a person in the address book.
type Contact struct {
	ContactID       int64  `db:"id" yaml:"id"`
	FirstName       string `db:"first_name" yaml:"first_name"`
	LastName        string `db:"last_name" yaml:"last_name"`
	MannerOfAddress string `db:"manner_of_address" yaml:"manner_of_address"`
	Title           string `db:"title" yaml:"title"`
	Email           string `db:"email" yaml:"email"`
	Website         string `db:"website" yaml:"website"`
	Function        string `db:"function" yaml:"function"`
	Phone           string `db:"phone" yaml:"phone"`
	Fax             string `db:"fax" yaml:"fax"`
	Mobile          string `db:"mobile" yaml:"mobile"`
	Address         string `db:"address" yaml:"address"`
	ZIPCode         string `db:"zip_code" yaml:"zip_code"`
	City            string `db:"city" yaml:"city"`
	Region          string `db:"region" yaml:"region"`
	Country         string `db:"country" yaml:"country"`

	// SortingField is maintained by the repository on save.
	SortingField string `db:"sorting_field" yaml:"-"`

	// OrganizationID is 0 if the contact has no organization.
	OrganizationID int64 `db:"organization_id" yaml:"organization"`
}

// NewContact returns an empty contact with default values filled in.
func NewContact() *Contact {
	return &Contact{Country: DefaultCountry}
}

// UnmarshalYAML decodes a contact, applying the same defaults as
// NewContact to fields the document leaves out.
func (c *Contact) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plain Contact
	p := plain(*NewContact())
	if err := unmarshal(&p); err != nil {
		return err
	}
	*c = Contact(p)
	return nil
}

// ID returns the contact's identifier.
func (c *Contact) ID() int64 {
	return c.ContactID
}

// String returns the contact's full name.
func (c *Contact) String() string {
	return c.FullName()
}

// FullName is "first last".
func (c *Contact) FullName() string {
	return c.FirstName + " " + c.LastName
}

// sortingField is "last first".
func (c *Contact) sortingField() string {
	return c.LastName + " " + c.FirstName
}

// Value returns a named field.
func (c *Contact) Value(field string) interface{} {
	switch field {
	case "first_name":
		return c.FirstName
	case "last_name":
		return c.LastName
	case "manner_of_address":
		return c.MannerOfAddress
	case "title":
		return c.Title
	case "email":
		return c.Email
	case "website":
		return c.Website
	case "function":
		return c.Function
	case "phone":
		return c.Phone
	case "fax":
		return c.Fax
	case "mobile":
		return c.Mobile
	case "address":
		return c.Address
	case "zip_code":
		return c.ZIPCode
	case "city":
		return c.City
	case "region":
		return c.Region
	case "country":
		return c.Country
	case "sorting_field":
		return c.SortingField
	case "organization":
		if c.OrganizationID == 0 {
			return nil
		}
		return c.OrganizationID
	}
	return nil
}

func (c *Contact) row() sqlstore.Row {
	return sqlstore.Row{
		"first_name":        c.FirstName,
		"last_name":         c.LastName,
		"manner_of_address": c.MannerOfAddress,
		"title":             c.Title,
		"email":             c.Email,
		"website":           c.Website,
		"function":          c.Function,
		"phone":             c.Phone,
		"fax":               c.Fax,
		"mobile":            c.Mobile,
		"address":           c.Address,
		"zip_code":          c.ZIPCode,
		"city":              c.City,
		"region":            c.Region,
		"country":           c.Country,
		"sorting_field":     c.SortingField,
		"organization_id":   c.OrganizationID,
	}
}
