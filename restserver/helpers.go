// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

// This file contains various HTTP-related helpers.  I sort of suspect
// most of them belong in some sort of standard library I haven't
// immediately found.

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/gorilla/mux"
)

type urlBuilder struct {
	Router *mux.Router
	Params []string
	Error  error
}

func buildURLs(router *mux.Router, params ...string) *urlBuilder {
	return &urlBuilder{Router: router, Params: params}
}

// Route finds a named route.
func (u *urlBuilder) Route(route string) *mux.Route {
	if u.Error != nil {
		return nil
	}
	r := u.Router.Get(route)
	if r == nil {
		u.Error = fmt.Errorf("No such route %q", route)
	}
	return r
}

// URL builds the URL of a named route.
func (u *urlBuilder) URL(out *string, route string) *urlBuilder {
	return u.RouteURL(out, u.Route(route))
}

// RouteURL builds the URL of a route, named or not.
func (u *urlBuilder) RouteURL(out *string, r *mux.Route) *urlBuilder {
	var url *url.URL
	if u.Error == nil && r == nil {
		u.Error = fmt.Errorf("No such route")
	}
	if u.Error == nil {
		url, u.Error = r.URL(u.Params...)
	}
	if u.Error == nil {
		*out = url.String()
	}
	return u
}

// varPattern matches a variable with a pattern in a mux path
// template.
var varPattern = regexp.MustCompile(`\{(\w+):[^}]*\}`)

// RouteTemplate produces an RFC 6570 URI template out of a route.
// Route variables lose their patterns, and any named in reserved
// are expanded without escaping ("{+name}").
func (u *urlBuilder) RouteTemplate(out *string, r *mux.Route, reserved ...string) *urlBuilder {
	var tmpl string
	if u.Error == nil && r == nil {
		u.Error = fmt.Errorf("No such route")
	}
	if u.Error == nil {
		tmpl, u.Error = r.GetPathTemplate()
	}
	if u.Error == nil {
		tmpl = varPattern.ReplaceAllString(tmpl, "{$1}")
		for _, name := range reserved {
			tmpl = strings.Replace(tmpl, "{"+name+"}", "{+"+name+"}", -1)
		}
		*out = tmpl
	}
	return u
}

// withQuery appends query parameters to a URL.
func withQuery(base string, values url.Values) string {
	if len(values) == 0 {
		return base
	}
	return base + "?" + values.Encode()
}
