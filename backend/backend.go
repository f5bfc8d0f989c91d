// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package backend provides a standard way to construct a contact
// repository based on command-line flags.
package backend

import (
	"strings"

	"github.com/diffeo/go-towel/contacts"
	"github.com/diffeo/go-towel/sqlstore"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Known implementation names.
const (
	Memory   = "memory"
	Postgres = "postgres"
	SQLite   = "sqlite"
)

// Backend describes user-visible parameters to store contact data.
// This implements the flag.Value interface, and so a typical use is
//
//     func main() {
//         backend := backend.Backend{Implementation: "memory"}
//         flag.Var(&backend, "backend", "impl:address of contact storage")
//         flag.Parse()
//         repo, err := backend.Repository(logger)
//     }
type Backend struct {
	// Implementation holds the name of the implementation; for
	// instance, "memory".
	Implementation string

	// Address holds some backend-specific address, such as a
	// database connect string or a SQLite file name.
	Address string
}

// Repository creates a new contact repository.  This generally
// should be only called once.  If b.Implementation is "memory",
// multiple calls to this will create multiple independent
// repositories.  SQL repositories have their schema upgraded before
// they are returned; close them with Close.
func (b *Backend) Repository(logger *logrus.Entry) (contacts.Repository, error) {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	logger = logger.WithField("backend", b.Implementation)
	switch b.Implementation {
	case Memory:
		return contacts.NewMemoryRepository(logger), nil
	case Postgres:
		return b.sqlRepository(sqlstore.DialectPostgres, b.Address, logger)
	case SQLite:
		address := b.Address
		if address == "" {
			address = ":memory:"
		}
		return b.sqlRepository(sqlstore.DialectSQLite, address, logger)
	}
	return nil, errors.Errorf("unknown backend %q", b.Implementation)
}

func (b *Backend) sqlRepository(dialect, address string, logger *logrus.Entry) (contacts.Repository, error) {
	store, err := sqlstore.Open(dialect, address, logger)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s backend", b.Implementation)
	}
	repo, err := contacts.NewSQLRepository(store)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return repo, nil
}

// Close releases any resources held by a repository created by
// Repository.
func Close(repo contacts.Repository) error {
	if sqlRepo, ok := repo.(*contacts.SQLRepository); ok {
		return sqlRepo.Store().Close()
	}
	return nil
}

// String renders a backend description as a string.
func (b *Backend) String() string {
	if b.Address == "" {
		return b.Implementation
	}
	return b.Implementation + ":" + b.Address
}

// Set parses a string into an existing backend description.  The
// string should be of the form "implementation:address", where
// address can be any string.  Set checks to see if the provided
// implementation is any of the known implementations, and returns an
// appropriate error if not.
//
// This is part of the flag.Value interface.  Neither this nor
// Repository validates the address before trying to connect.
func (b *Backend) Set(param string) error {
	parts := strings.SplitN(param, ":", 2)
	impl, address := parts[0], ""
	if len(parts) > 1 {
		address = parts[1]
	}
	switch impl {
	case Memory, Postgres, SQLite:
	case "":
		return errors.New("must specify a backend type")
	default:
		return errors.Errorf("unknown backend %q", impl)
	}
	b.Implementation = impl
	b.Address = address
	return nil
}
