// Copyright 2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package session

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
)

type StoreAssertions struct {
	*assert.Assertions
	Clock *clock.Mock
	Store *Store
}

func NewStoreAssertions(t assert.TestingT) *StoreAssertions {
	clk := clock.NewMock()
	return &StoreAssertions{
		assert.New(t),
		clk,
		New(time.Hour, clk, nil),
	}
}

// Create makes a new session, failing the test if that fails.
func (a *StoreAssertions) Create() *Session {
	sess, err := a.Store.Create()
	if !a.NoError(err) {
		a.FailNow("could not create session")
	}
	return sess
}

// Present asserts that a session can be fetched.
func (a *StoreAssertions) Present(id string) *Session {
	sess, err := a.Store.Get(id)
	if a.NoError(err) {
		a.Equal(id, sess.ID)
	}
	return sess
}

// Absent asserts that a session cannot be fetched.
func (a *StoreAssertions) Absent(id string) {
	_, err := a.Store.Get(id)
	a.Equal(ErrNoSuchSession, err)
}

func TestCreateGet(t *testing.T) {
	a := NewStoreAssertions(t)
	defer a.Store.Close()

	s1 := a.Create()
	s2 := a.Create()
	a.NotEqual(s1.ID, s2.ID)
	a.Empty(s1.Values)
	a.Present(s1.ID)
	a.Absent("nonexistent")
}

func TestSaveValues(t *testing.T) {
	a := NewStoreAssertions(t)
	defer a.Store.Close()

	sess := a.Create()
	sess.Values["sf_contacts"] = []byte(`{"version":1}`)
	_, err := a.Store.Save(sess)
	a.NoError(err)

	// Changing the local copy does not change the store
	sess.Values["sf_contacts"][0] = 'X'

	got := a.Present(sess.ID)
	a.Equal(`{"version":1}`, string(got.Values["sf_contacts"]))

	_, err = a.Store.Save(&Session{ID: "nonexistent"})
	a.Equal(ErrNoSuchSession, err)
}

func TestExpiry(t *testing.T) {
	a := NewStoreAssertions(t)
	defer a.Store.Close()

	sess := a.Create()

	// Each use extends the lifetime
	a.Clock.Add(59 * time.Minute)
	a.Present(sess.ID)
	a.Clock.Add(59 * time.Minute)
	a.Present(sess.ID)

	a.Clock.Add(61 * time.Minute)
	a.Absent(sess.ID)
}

func TestDelete(t *testing.T) {
	a := NewStoreAssertions(t)
	defer a.Store.Close()

	sess := a.Create()
	a.NoError(a.Store.Delete(sess.ID))
	a.Absent(sess.ID)
	a.NoError(a.Store.Delete(sess.ID))
}

func TestPurge(t *testing.T) {
	a := NewStoreAssertions(t)
	defer a.Store.Close()

	a.Create()
	a.Create()
	n, err := a.Store.Len()
	a.NoError(err)
	a.Equal(2, n)

	a.Clock.Add(2 * time.Hour)

	// The purge happens asynchronously on the ticker
	for i := 0; i < 100; i++ {
		n, err = a.Store.Len()
		if err != nil || n == 0 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	a.NoError(err)
	a.Equal(0, n)
}

func TestClosed(t *testing.T) {
	a := NewStoreAssertions(t)
	a.Store.Close()
	_, err := a.Store.Create()
	a.Equal(ErrClosed, err)
}
