// Copyright 2015-2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restdata defines common data structures shared between the
// restserver and restclient packages.  Generally JSON encodings of
// these are passed across the wire as the
// application/vnd.diffeo.towel.v1+json MIME type.
//
// API Usage
//
// HTTP GET the root document at its specified URL.  This will return
// a JSON serialization of the RootData object.  That serialization
// lists every registered resource with links to its endpoints;
// follow these links, possibly filling in template values, to get to
// the items.
//
// Several of the URL fields are actually RFC 6570 URI templates.
// This is a fancy way of saying that they are URL strings with a
// {parameter} in curly braces.  For instance, an API named "v1"
// rooted at /v1 with a single contact resource will look like
//
//     {
//         "self_uri": "/v1/",
//         "display_label": "v1",
//         "resources": [{
//             "kind": "contact",
//             "url": "/v1/contact/",
//             "detail_url": "/v1/contact/{id}/",
//             "set_url": "/v1/contact/{+ids}/",
//             "canonical": true
//         }],
//         "kinds": {"contact": {...the same entry...}}
//     }
//
// The set template uses reserved expansion so that the ";" separating
// identifiers is not escaped.  While the URL structure is predictable
// and formulaic, it is not actually part of the API contract.  The
// only specific guarantee is that retrieving the root resource will
// return a serialization of RootData.
//
// Items
//
// Each item is serialized as an object holding its published fields,
// plus "self_uri" with its own URL and "display_label" with a
// human-readable label.  Fields that refer to other items hold the
// URL of the referenced item; if the referenced kind is not
// published, the field is left out.
//
// A single item's URL returns that object directly.  A set URL
// returns an ObjectList with only "objects".  A listing URL returns
// an ObjectList with "objects" and "meta", where "meta" describes the
// pagination.  The listing takes a "page" query parameter; an invalid
// or out-of-range page number is silently corrected.
//
// HTTP Considerations
//
// Item and listing URLs support GET and HEAD.  Batch action URLs
// support POST with form-encoded data.  The server will usually
// correctly return 200 OK, 400 Bad Request, 404 Not Found, 405 Method
// Not Allowed, and 406 Not Acceptable when these are correct.
//
// Errors
//
// Errors should be returned as encodings of the ErrorResponse type.
// This can round-trip all of the resource package's not-found errors
// but may return most other errors as plain strings that are not the
// same objects as other standard errors.
//
// If Go server code panics, this should be captured and returned as
// an ErrorResponse with error code "panic".
package restdata

import (
	"github.com/diffeo/go-towel/resource"
)

// V1JSONMediaType is the preferred, most specific MIME type for the
// JSON representation of this content.
const V1JSONMediaType = "application/vnd.diffeo.towel.v1+json"

// JSONMediaType requests the most recent version of the JSON
// representation of this content.
const JSONMediaType = "application/vnd.diffeo.towel+json"

// CBORMediaType is the CBOR representation of this content.  It
// carries exactly the same structures as the JSON representation.
const CBORMediaType = "application/cbor"

// RootData is returned by the root path.
type RootData struct {
	// SelfURI points at this document.
	SelfURI string `json:"self_uri"`

	// DisplayLabel is the name of the API.
	DisplayLabel string `json:"display_label"`

	// Resources lists every registration, in registration order.
	Resources []ResourceShort `json:"resources"`

	// Kinds maps each kind name to its canonical registration.
	Kinds map[string]ResourceShort `json:"kinds"`
}

// ResourceShort describes one registration of a kind.
type ResourceShort struct {
	// Kind is the name of the kind of the items.
	Kind string `json:"kind"`

	// URL points at the paginated listing.  This endpoint
	// supports HTTP GET, returning an ObjectList with Meta.
	URL string `json:"url"`

	// DetailURL points at a single item.  This is a URI template
	// with a single parameter, "id".
	DetailURL string `json:"detail_url"`

	// SetURL points at a set of items.  This is a URI template
	// with a single parameter, "ids", which should be the
	// ";"-separated list of identifiers.
	SetURL string `json:"set_url"`

	// AutocompleteURL returns a list of Choice matching the
	// "term" query parameter.
	AutocompleteURL string `json:"autocomplete_url"`

	// BatchURL, if present, accepts HTTP POST of a batch form.
	// It is a URI template with a single parameter, "action".
	BatchURL string `json:"batch_url,omitempty"`

	// Actions lists the batch actions accepted at BatchURL.
	Actions []string `json:"actions,omitempty"`

	// SearchFields lists the query parameters the listing
	// accepts as search filters.
	SearchFields []string `json:"search_fields,omitempty"`

	// Canonical is true if this is the registration URIs of this
	// kind point at.
	Canonical bool `json:"canonical"`
}

// Meta describes one page of a listing.
type Meta struct {
	// Pages is the total number of pages; at least 1.
	Pages int `json:"pages"`

	// Count is the total number of items.
	Count int `json:"count"`

	// Current is the number of this page, starting at 1.
	Current int `json:"current"`

	// Previous is the URL of the previous page, if any.
	Previous string `json:"previous,omitempty"`

	// Next is the URL of the next page, if any.
	Next string `json:"next,omitempty"`
}

// ObjectList is a list of serialized items.
type ObjectList struct {
	// Objects holds the items.
	Objects []resource.Envelope `json:"objects"`

	// Meta describes the page, if this is a listing.
	Meta *Meta `json:"meta,omitempty"`
}

// Choice is one autocomplete suggestion.
type Choice = resource.Choice

// BatchResult is returned from a batch action.
type BatchResult struct {
	// Objects holds the selected items.
	Objects []resource.Envelope `json:"objects"`

	// Result is whatever the action produced, if it ran.
	Result interface{} `json:"result,omitempty"`

	// Warnings lists warnings the action raised.  If there are
	// any, the action did not run; resubmit with
	// "ignore_warnings" set to run it anyway.
	Warnings []string `json:"warnings,omitempty"`

	// Errors maps form field names to validation errors.
	Errors map[string][]string `json:"errors,omitempty"`
}

// ErrorResponse is returned for all errors.
type ErrorResponse struct {
	// Error is a short description of the failure.  This may be
	// the name or type of a resource error, the string "panic",
	// or the string "error" for some other kind of error.
	Error string `json:"error"`

	// Message is a human-readable description of the failure.
	Message string `json:"message"`

	// Value is an extra parameter to the error if applicable.
	Value string `json:"value,omitempty"`

	// Stack holds a formatted backtrace, if the method failed
	// due to a panic.
	Stack string `json:"stack,omitempty"`
}
