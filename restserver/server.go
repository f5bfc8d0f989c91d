// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/diffeo/go-towel/forms"
	"github.com/diffeo/go-towel/resource"
	"github.com/diffeo/go-towel/restdata"
	"github.com/diffeo/go-towel/session"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrDuplicateCanonical is returned from Register if a kind already
// has a canonical registration.
type ErrDuplicateCanonical struct {
	Kind string
}

func (e ErrDuplicateCanonical) Error() string {
	return "duplicate canonical registration of " + e.Kind
}

// ErrDuplicatePrefix is returned from Register if a prefix is
// already in use.
type ErrDuplicatePrefix struct {
	Prefix string
}

func (e ErrDuplicatePrefix) Error() string {
	return "duplicate registration of prefix " + e.Prefix
}

// Options control how a collection is published.
type Options struct {
	// Prefix is the path of the listing under the API root, such
	// as "/contacts".  It defaults to "/" plus the kind name.
	Prefix string

	// NonCanonical registrations are listed in the overview but
	// URIs of the kind never point at them.
	NonCanonical bool

	// PageSize is the number of items per listing page.  If not
	// positive, resource.DefaultPageSize is used.
	PageSize int

	// SearchForm, if set, filters and orders the listing.
	SearchForm *forms.SearchForm

	// Actions are the batch actions available on the listing.
	Actions map[string]forms.BatchAction
}

// registration is one published collection.
type registration struct {
	Collection resource.Collection
	Options

	list, detail, set, autocomplete, batch *mux.Route
}

func (reg *registration) kind() string {
	return reg.Collection.Kind().Name
}

func (reg *registration) actionNames() []string {
	var names []string
	for name := range reg.Actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// API is a set of published collections.  Register collections,
// then attach the API to a router with PopulateRouter.
type API struct {
	// Name identifies the API; it prefixes route names.
	Name string

	// Sessions, if set, persists searches between requests.
	Sessions *session.Store

	logger        *logrus.Entry
	router        *mux.Router
	registrations []*registration
	canonical     map[string]*registration
	prefixes      map[string]bool
}

// New creates an empty API.  sessions may be nil, in which case
// searches are never persisted.
func New(name string, sessions *session.Store, logger *logrus.Entry) *API {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &API{
		Name:      name,
		Sessions:  sessions,
		logger:    logger.WithField(apiField, name),
		canonical: make(map[string]*registration),
		prefixes:  make(map[string]bool),
	}
}

// Register publishes a collection.  Each kind may have at most one
// canonical registration, and prefixes must be unique.  Register
// must be called before PopulateRouter.  A kind with only
// non-canonical registrations has its first one made canonical when
// the router is populated.
func (api *API) Register(c resource.Collection, opts Options) error {
	kind := c.Kind().Name
	if opts.Prefix == "" {
		opts.Prefix = "/" + kind
	}
	opts.Prefix = "/" + strings.Trim(opts.Prefix, "/")
	if opts.PageSize <= 0 {
		opts.PageSize = resource.DefaultPageSize
	}
	if api.prefixes[opts.Prefix] {
		return ErrDuplicatePrefix{Prefix: opts.Prefix}
	}
	if !opts.NonCanonical && api.canonical[kind] != nil {
		return ErrDuplicateCanonical{Kind: kind}
	}
	if api.router != nil {
		return errors.New("cannot register after populating a router")
	}
	reg := &registration{Collection: c, Options: opts}
	api.registrations = append(api.registrations, reg)
	api.prefixes[opts.Prefix] = true
	if !opts.NonCanonical {
		api.canonical[kind] = reg
	}
	api.logger.WithFields(logrus.Fields{
		kindField:   kind,
		prefixField: opts.Prefix,
		"canonical": !opts.NonCanonical,
	}).Debug("Registered resource")
	return nil
}

// routeName is the name of a canonical route.
func (api *API) routeName(kind string, intent resource.Intent) string {
	return api.Name + "_" + kind + "_" + string(intent)
}

// NewRouter creates a new HTTP handler that serves an API at the
// URL path root.  For more control over this setup, create a
// mux.Router and call PopulateRouter instead.
func NewRouter(api *API) http.Handler {
	r := mux.NewRouter()
	api.PopulateRouter(r)
	return r
}

// PopulateRouter adds the API's routes to an existing
// github.com/gorilla/mux router object.  This can be used, for
// instance, to place the API under a subpath:
//
//     r := mux.NewRouter()
//     s := r.PathPrefix("/api").Subrouter()
//     api.PopulateRouter(s)
func (api *API) PopulateRouter(r *mux.Router) {
	api.router = r
	api.promoteCanonical()
	for _, reg := range api.registrations {
		api.populateResource(r, reg)
	}
	r.Path("/").Name(api.Name + "_root").Handler(&resourceHandler{
		Labels:  api.labels("", "overview"),
		Context: api.Context(nil),
		Get:     api.RootDocument,
	})
}

// promoteCanonical makes the first registration of each kind
// without a canonical registration canonical, so that every kind
// has named routes to build URIs from.
func (api *API) promoteCanonical() {
	for _, reg := range api.registrations {
		kind := reg.kind()
		if api.canonical[kind] != nil {
			continue
		}
		reg.NonCanonical = false
		api.canonical[kind] = reg
		api.logger.WithFields(logrus.Fields{
			kindField:   kind,
			prefixField: reg.Prefix,
		}).Warn("No canonical registration, promoting first registration")
	}
}

func (api *API) labels(kind, intent string) map[string]string {
	return map[string]string{"api": api.Name, "kind": kind, "intent": intent}
}

func (api *API) populateResource(r *mux.Router, reg *registration) {
	kind := reg.kind()
	name := func(route *mux.Route, intent resource.Intent) *mux.Route {
		if !reg.NonCanonical {
			route.Name(api.routeName(kind, intent))
		}
		return route
	}
	handler := func(intent string) *resourceHandler {
		return &resourceHandler{
			Labels:  api.labels(kind, intent),
			Context: api.Context(reg),
		}
	}

	h := handler("autocomplete")
	h.Get = api.Autocomplete
	reg.autocomplete = r.Path(reg.Prefix + "/autocomplete").Handler(h)

	if len(reg.Actions) > 0 {
		h = handler("batch")
		h.Post = api.Batch
		reg.batch = r.Path(reg.Prefix + "/batch/{action}").Handler(h)
	}

	h = handler(string(resource.IntentDetail))
	h.Get = api.Detail
	reg.detail = name(r.Path(reg.Prefix+"/{"+resource.IDParam+":[0-9]+}").Handler(h), resource.IntentDetail)

	h = handler(string(resource.IntentSet))
	h.Get = api.Set
	reg.set = name(r.Path(reg.Prefix+"/{"+resource.IDSetParam+":[0-9]*;[0-9;]*}").Handler(h), resource.IntentSet)

	h = handler(string(resource.IntentList))
	h.Get = api.List
	reg.list = name(r.Path(reg.Prefix).Handler(h), resource.IntentList)
}

// Reverse returns the URI of the canonical registration of a kind.
// A detail URI takes exactly one identifier and a set URI at least
// one.  It is an error if the kind has no canonical registration.
func (api *API) Reverse(kind string, intent resource.Intent, ids ...int64) (string, error) {
	var params []string
	switch intent {
	case resource.IntentList:
		if len(ids) != 0 {
			return "", errors.Errorf("%s URI takes no identifiers", intent)
		}
	case resource.IntentDetail:
		if len(ids) != 1 {
			return "", errors.Errorf("%s URI takes one identifier", intent)
		}
		params = []string{resource.IDParam, strconv.FormatInt(ids[0], 10)}
	case resource.IntentSet:
		if len(ids) == 0 {
			return "", errors.Errorf("%s URI needs identifiers", intent)
		}
		set := resource.FormatIDSet(ids)
		if len(ids) == 1 {
			set += ";"
		}
		params = []string{resource.IDSetParam, set}
	default:
		return "", errors.Errorf("unknown URI intent %q", intent)
	}
	if api.router == nil {
		return "", errors.New("API has no router")
	}
	var uri string
	err := buildURLs(api.router, params...).URL(&uri, api.routeName(kind, intent)).Error
	return uri, err
}

// Overview describes every registration.
func (api *API) Overview() (restdata.RootData, error) {
	root := restdata.RootData{
		DisplayLabel: api.Name,
		Resources:    []restdata.ResourceShort{},
		Kinds:        map[string]restdata.ResourceShort{},
	}
	err := buildURLs(api.router).URL(&root.SelfURI, api.Name+"_root").Error
	if err != nil {
		return root, err
	}
	for _, reg := range api.registrations {
		short := restdata.ResourceShort{
			Kind:      reg.kind(),
			Canonical: !reg.NonCanonical,
		}
		b := buildURLs(api.router).
			RouteURL(&short.URL, reg.list).
			RouteTemplate(&short.DetailURL, reg.detail).
			RouteTemplate(&short.SetURL, reg.set, resource.IDSetParam).
			RouteURL(&short.AutocompleteURL, reg.autocomplete)
		if reg.batch != nil {
			b.RouteTemplate(&short.BatchURL, reg.batch)
			short.Actions = reg.actionNames()
		}
		if b.Error != nil {
			return root, b.Error
		}
		if reg.SearchForm != nil {
			short.SearchFields = append([]string{}, reg.SearchForm.Fields...)
		}
		root.Resources = append(root.Resources, short)
		if short.Canonical {
			root.Kinds[short.Kind] = short
		}
	}
	return root, nil
}

// RootDocument returns the overview.
func (api *API) RootDocument(ctx *context) (interface{}, error) {
	return api.Overview()
}
