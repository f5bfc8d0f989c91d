// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/diffeo/go-towel/cache"
	"github.com/diffeo/go-towel/contacts"
	"github.com/diffeo/go-towel/forms"
	"github.com/diffeo/go-towel/resource"
	"github.com/diffeo/go-towel/restserver"
	"github.com/diffeo/go-towel/session"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/urfave/negroni"
)

// Server is the assembled HTTP service.
type Server struct {
	Config      Config
	API         *restserver.API
	Sessions    *session.Store
	Collections []resource.Collection
	Handler     http.Handler
}

// NewServer publishes a contact repository.  Contacts are canonical
// at /contact, searchable, and support the mailing-list action;
// organizations are canonical at /organization.  Contacts are also
// published non-canonically at /people.  reqLogger, if non-nil,
// receives a line per request.
func NewServer(repo contacts.Repository, config Config, logger *logrus.Entry, reqLogger *logrus.Logger) (*Server, error) {
	s := &Server{Config: config}
	s.Sessions = session.New(config.SessionTTL, nil, logger)
	s.API = restserver.New(config.APIName, s.Sessions, logger)

	contactColl := s.cached(repo.Contacts())
	orgColl := s.cached(repo.Organizations())
	registrations := []struct {
		Collection resource.Collection
		Options    restserver.Options
	}{
		{contactColl, restserver.Options{
			PageSize:   config.PageSize,
			SearchForm: contacts.SearchForm(),
			Actions: map[string]forms.BatchAction{
				"mailing_list": contacts.MailingList{},
			},
		}},
		{orgColl, restserver.Options{PageSize: config.PageSize}},
		{contactColl, restserver.Options{
			Prefix:       "/people",
			NonCanonical: true,
			PageSize:     config.PageSize,
		}},
	}
	for _, r := range registrations {
		if err := s.API.Register(r.Collection, r.Options); err != nil {
			s.Sessions.Close()
			return nil, err
		}
	}

	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	prefix := "/" + strings.Trim(config.Prefix, "/")
	if prefix == "/" {
		s.API.PopulateRouter(router)
	} else {
		s.API.PopulateRouter(router.PathPrefix(prefix).Subrouter())
	}

	n := negroni.New(negroni.NewRecovery())
	if reqLogger != nil {
		n.Use(requestLogger(reqLogger))
	}
	n.UseHandler(router)
	s.Handler = n
	return s, nil
}

func (s *Server) cached(c resource.Collection) resource.Collection {
	s.Collections = append(s.Collections, c)
	if s.Config.CacheSize == 0 {
		return c
	}
	return cache.New(c, s.Config.CacheSize)
}

// Close releases the server's sessions.
func (s *Server) Close() {
	s.Sessions.Close()
}

// requestLogger logs each request once it has been served.
func requestLogger(logger *logrus.Logger) negroni.Handler {
	return negroni.HandlerFunc(func(rw http.ResponseWriter, req *http.Request, next http.HandlerFunc) {
		start := time.Now()
		next(rw, req)
		status := 0
		if res, ok := rw.(negroni.ResponseWriter); ok {
			status = res.Status()
		}
		logger.WithFields(logrus.Fields{
			"remote":   req.RemoteAddr,
			"method":   req.Method,
			"path":     req.URL.RequestURI(),
			"status":   status,
			"duration": time.Since(start),
		}).Debug("Request")
	})
}
