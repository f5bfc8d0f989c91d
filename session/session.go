// Copyright 2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package session provides an in-memory session store.  Sessions hold
// small named byte values, such as persisted search forms, and expire
// after a period of inactivity.
//
// All session state is owned by a single control goroutine; the
// public methods send requests to it over channels.  Expired
// sessions are purged periodically.
package session

import (
	"errors"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
)

// DefaultTTL is how long a session lasts after its last use.
const DefaultTTL = time.Hour

// purgeInterval is how often expired sessions are dropped.
const purgeInterval = time.Minute

// ErrNoSuchSession is returned when a session does not exist or has
// expired.
var ErrNoSuchSession = errors.New("no such session")

// ErrClosed is returned from any call after the store is closed.
var ErrClosed = errors.New("session store closed")

// Session is a copy of one session's state.  Changes to it are not
// visible to other callers until it is passed to Store.Save.
type Session struct {
	ID        string
	Values    map[string][]byte
	ExpiresAt time.Time
}

// Expired returns true if the session has expired as of now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

func (s *Session) clone() *Session {
	c := &Session{
		ID:        s.ID,
		ExpiresAt: s.ExpiresAt,
		Values:    make(map[string][]byte, len(s.Values)),
	}
	for k, v := range s.Values {
		c.Values[k] = append([]byte(nil), v...)
	}
	return c
}

// request is a generic session request that can be sent over one of
// the store's channels to execute inside the control goroutine.
type request struct {
	session *Session
	id      string
	answer  chan<- response
}

// response is the answer to a request.
type response struct {
	session *Session
	count   int
	err     error
}

// Store is an in-memory session store.
type Store struct {
	clock  clock.Clock
	ttl    time.Duration
	logger *logrus.Entry

	create chan<- request
	get    chan<- request
	save   chan<- request
	del    chan<- request
	count  chan<- request
	done   chan struct{}
}

// New creates a new session store and starts its control goroutine.
// Sessions last ttl after their last use; if ttl is not positive,
// DefaultTTL is used.  Call Close to stop the store.
func New(ttl time.Duration, clk clock.Clock, logger *logrus.Entry) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	c := make(chan request)
	g := make(chan request)
	s := make(chan request)
	d := make(chan request)
	n := make(chan request)
	store := &Store{
		clock:  clk,
		ttl:    ttl,
		logger: logger,
		create: c,
		get:    g,
		save:   s,
		del:    d,
		count:  n,
		done:   make(chan struct{}),
	}
	ticker := clk.Ticker(purgeInterval)
	go store.control(ticker, c, g, s, d, n)
	return store
}

// control is the control goroutine; it owns the session map.
func (st *Store) control(ticker *clock.Ticker, create, get, save, del, count <-chan request) {
	defer ticker.Stop()
	sessions := map[string]*Session{}
	for {
		select {
		case <-st.done:
			return

		case req := <-create:
			sess := &Session{
				ID:        uuid.NewV4().String(),
				Values:    map[string][]byte{},
				ExpiresAt: st.clock.Now().Add(st.ttl),
			}
			sessions[sess.ID] = sess
			req.answer <- response{session: sess.clone()}

		case req := <-get:
			sess, ok := sessions[req.id]
			if ok && sess.Expired(st.clock.Now()) {
				delete(sessions, req.id)
				ok = false
			}
			if !ok {
				req.answer <- response{err: ErrNoSuchSession}
				continue
			}
			sess.ExpiresAt = st.clock.Now().Add(st.ttl)
			req.answer <- response{session: sess.clone()}

		case req := <-save:
			old, ok := sessions[req.session.ID]
			if ok && old.Expired(st.clock.Now()) {
				delete(sessions, req.session.ID)
				ok = false
			}
			if !ok {
				req.answer <- response{err: ErrNoSuchSession}
				continue
			}
			sess := req.session.clone()
			sess.ExpiresAt = st.clock.Now().Add(st.ttl)
			sessions[sess.ID] = sess
			req.answer <- response{session: sess.clone()}

		case req := <-del:
			delete(sessions, req.id)
			req.answer <- response{}

		case req := <-count:
			req.answer <- response{count: len(sessions)}

		case <-ticker.C:
			now := st.clock.Now()
			var purged int
			for id, sess := range sessions {
				if sess.Expired(now) {
					delete(sessions, id)
					purged++
				}
			}
			if purged > 0 {
				st.logger.WithField("purged", purged).Debug("Purged expired sessions")
			}
		}
	}
}

// send passes a request to the control goroutine and waits for the
// answer.
func (st *Store) send(channel chan<- request, req request) response {
	select {
	case <-st.done:
		return response{err: ErrClosed}
	default:
	}
	answer := make(chan response, 1)
	req.answer = answer
	select {
	case channel <- req:
	case <-st.done:
		return response{err: ErrClosed}
	}
	return <-answer
}

// Create starts a new, empty session.
func (st *Store) Create() (*Session, error) {
	resp := st.send(st.create, request{})
	return resp.session, resp.err
}

// Get returns a copy of a session and extends its lifetime.
func (st *Store) Get(id string) (*Session, error) {
	resp := st.send(st.get, request{id: id})
	return resp.session, resp.err
}

// Save replaces the stored values of a session and extends its
// lifetime.  The session must still exist.
func (st *Store) Save(sess *Session) (*Session, error) {
	resp := st.send(st.save, request{session: sess})
	return resp.session, resp.err
}

// Delete removes a session.  Deleting a session that does not exist
// is not an error.
func (st *Store) Delete(id string) error {
	return st.send(st.del, request{id: id}).err
}

// Len returns the number of sessions held, including expired ones
// not yet purged.
func (st *Store) Len() (int, error) {
	resp := st.send(st.count, request{})
	return resp.count, resp.err
}

// Close stops the control goroutine.  It must be called only once.
func (st *Store) Close() {
	close(st.done)
}
