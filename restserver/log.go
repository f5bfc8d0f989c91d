// Copyright 2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

// Log field names.
const (
	apiField    = "api"
	kindField   = "kind"
	prefixField = "prefix"
	methodField = "method"
	pathField   = "path"
	actionField = "action"
)
