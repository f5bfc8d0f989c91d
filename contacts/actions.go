// Copyright 2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package contacts

import (
	"fmt"
	"net/url"

	"github.com/diffeo/go-towel/forms"
	"github.com/diffeo/go-towel/resource"
)

// SearchForm returns the search form of the contact listing.
func SearchForm() *forms.SearchForm {
	return &forms.SearchForm{
		Name:   "contacts",
		Fields: []string{"city", "country", "organization"},
		Orderings: map[string][]resource.Ordering{
			"": {
				{Field: "last_name"},
				{Field: "first_name"},
			},
			"city": {
				{Field: "city"},
				{Field: "last_name"},
			},
			"first_name": {
				{Field: "first_name"},
				{Field: "last_name"},
			},
		},
		Defaults: url.Values{},
	}
}

// MailingList is a batch action producing "Full Name <email>" lines
// for the selected contacts.  A contact without an e-mail address
// raises a warning and is left out.
type MailingList struct{}

func email(item resource.Item) string {
	s, _ := item.Value("email").(string)
	return s
}

// Clean warns about contacts without e-mail addresses.
func (MailingList) Clean(items []resource.Item, form *forms.Form) {
	for _, item := range items {
		if email(item) == "" {
			form.AddWarning(fmt.Sprintf("%s has no e-mail address", item))
		}
	}
}

// Process returns the mailing list as a list of strings.
func (MailingList) Process(items []resource.Item, form *forms.Form) (interface{}, error) {
	lines := []string{}
	for _, item := range items {
		if address := email(item); address != "" {
			lines = append(lines, fmt.Sprintf("%s <%s>", item, address))
		}
	}
	return lines, nil
}
