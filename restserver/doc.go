// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restserver publishes resource collections as a REST
// service.  The restclient package is a matching client.
//
// The complete REST API is defined in the restdata package.  In
// particular, note that the URLs described here are not actually part
// of the API; clients should follow the URLs and URI templates in
// the overview document.
//
// HTTP Considerations
//
// Responses are JSON unless CBOR is requested.  This interface does
// not (currently) support HTTP caching or authentication headers.  A
// session cookie is set the first time a search is submitted, so
// that later plain requests of the same listing repeat the search.
//
// MIME Types
//
// This interface understands MIME types as follows:
//
//     application/vnd.diffeo.towel.v1+json
//
// JSON representation of version 1 of this interface.
//
//     application/vnd.diffeo.towel+json
//     application/json
//     text/json
//
// JSON representation of latest version of this interface.
//
//     application/cbor
//
// CBOR representation of the same data.
//
// Batch actions also accept application/x-www-form-urlencoded and
// multipart/form-data bodies.
//
// URL Scheme
//
// Each registered collection lives under its own prefix, such as
// /contact.  Items are addressed by integer identifier.  The
// following URLs are defined:
//
//     /
//     {prefix}?page={page}
//     {prefix}/{id}
//     {prefix}/{id};{id};...
//     {prefix}/autocomplete?term={term}
//     {prefix}/batch/{action}
//
// A listing page that is not a positive integer is page 1, and a
// page past the end is the last page.  A set may contain empty
// segments and repeated identifiers, which are ignored; if any member
// is missing the whole request fails with 404 Not Found.
package restserver
