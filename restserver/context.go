// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"net/http"
	"net/url"

	"github.com/diffeo/go-towel/forms"
	"github.com/diffeo/go-towel/resource"
	"github.com/diffeo/go-towel/restdata"
	"github.com/diffeo/go-towel/session"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// SessionCookie is the name of the cookie carrying the session ID.
const SessionCookie = "towel_session"

// context holds all of the information and objects that can be extracted
// from the request.
type context struct {
	API          *API
	Registration *registration
	Vars         map[string]string
	QueryParams  url.Values
	Logger       *logrus.Entry

	// Header holds extra response headers.
	Header http.Header

	// Cookies are set on the response.
	Cookies []*http.Cookie

	session *session.Session
}

// Context returns a function that builds the context of a request to
// one registration (or to the API root, if reg is nil).
func (api *API) Context(reg *registration) func(*http.Request) (*context, error) {
	return func(req *http.Request) (*context, error) {
		ctx := &context{
			API:          api,
			Registration: reg,
			Vars:         mux.Vars(req),
			QueryParams:  req.URL.Query(),
			Header:       http.Header{},
		}
		fields := logrus.Fields{methodField: req.Method, pathField: req.URL.Path}
		if reg != nil {
			fields[kindField] = reg.kind()
		}
		ctx.Logger = api.logger.WithFields(fields)

		if api.Sessions != nil {
			if cookie, err := req.Cookie(SessionCookie); err == nil {
				sess, err := api.Sessions.Get(cookie.Value)
				if err == nil {
					ctx.session = sess
				} else if err != session.ErrNoSuchSession {
					return nil, err
				}
			}
		}
		return ctx, nil
	}
}

// notFound marks errors that mean the requested items do not exist.
func notFound(err error) error {
	if resource.IsNotFound(err) {
		return restdata.ErrNotFound{Err: errors.Cause(err)}
	}
	if _, isField := errors.Cause(err).(resource.ErrNoSuchField); isField {
		return restdata.ErrBadRequest{Err: errors.Cause(err)}
	}
	return err
}

// Persister returns a persister storing into the request's session.
// Without a session store nothing is persisted.
func (ctx *context) Persister() forms.Persister {
	if ctx.API.Sessions == nil {
		return nil
	}
	return sessionPersister{ctx}
}

// sessionPersister keeps persisted searches in the session,
// creating one on first write.
type sessionPersister struct {
	ctx *context
}

func (p sessionPersister) Load(key string) ([]byte, bool) {
	if p.ctx.session == nil {
		return nil, false
	}
	value, ok := p.ctx.session.Values[key]
	return value, ok
}

func (p sessionPersister) Save(key string, value []byte) {
	p.update(func(values map[string][]byte) {
		values[key] = value
	})
}

func (p sessionPersister) Delete(key string) {
	if p.ctx.session == nil {
		return
	}
	if _, present := p.ctx.session.Values[key]; !present {
		return
	}
	p.update(func(values map[string][]byte) {
		delete(values, key)
	})
}

func (p sessionPersister) update(f func(map[string][]byte)) {
	ctx := p.ctx
	store := ctx.API.Sessions
	var err error
	if ctx.session == nil {
		ctx.session, err = store.Create()
		if err != nil {
			ctx.Logger.WithError(err).Warn("Could not create session")
			return
		}
		ctx.Cookies = append(ctx.Cookies, &http.Cookie{
			Name:     SessionCookie,
			Value:    ctx.session.ID,
			Path:     "/",
			HttpOnly: true,
		})
	}
	f(ctx.session.Values)
	sess, err := store.Save(ctx.session)
	if err != nil {
		ctx.Logger.WithError(err).Warn("Could not save session")
		return
	}
	ctx.session = sess
}
