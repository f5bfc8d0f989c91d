// Copyright 2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package contacts

import (
	"github.com/diffeo/go-towel/sqlstore"
	"github.com/pkg/errors"
	"github.com/rubenv/sql-migrate"
)

// contactColumns is the body of the contacts table after its key.
const contactColumns = `
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	manner_of_address TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	website TEXT NOT NULL DEFAULT '',
	function TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	fax TEXT NOT NULL DEFAULT '',
	mobile TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT '',
	zip_code TEXT NOT NULL DEFAULT '',
	city TEXT NOT NULL DEFAULT '',
	region TEXT NOT NULL DEFAULT '',
	country TEXT NOT NULL DEFAULT 'CH',
	sorting_field TEXT NOT NULL DEFAULT '',
	organization_id INTEGER NOT NULL DEFAULT 0
)`

const organizationColumns = `
	name TEXT NOT NULL,
	website TEXT NOT NULL DEFAULT ''
)`

// primaryKey is the auto-incrementing key column per dialect.
var primaryKey = map[string]string{
	sqlstore.DialectPostgres: "id SERIAL PRIMARY KEY,",
	sqlstore.DialectSQLite:   "id INTEGER PRIMARY KEY AUTOINCREMENT,",
}

// Migrations returns the schema migrations for a SQL dialect.
func Migrations(dialect string) (migrate.MigrationSource, error) {
	key, ok := primaryKey[dialect]
	if !ok {
		return nil, errors.Errorf("no contacts schema for SQL dialect %q", dialect)
	}
	return &migrate.MemoryMigrationSource{
		Migrations: []*migrate.Migration{
			{
				Id: "1-organizations",
				Up: []string{
					"CREATE TABLE organizations (" + key + organizationColumns,
					"CREATE INDEX organizations_name ON organizations(name)",
				},
				Down: []string{"DROP TABLE organizations"},
			},
			{
				Id: "2-contacts",
				Up: []string{
					"CREATE TABLE contacts (" + key + contactColumns,
					"CREATE INDEX contacts_sorting_field ON contacts(sorting_field)",
					"CREATE INDEX contacts_organization ON contacts(organization_id)",
				},
				Down: []string{"DROP TABLE contacts"},
			},
		},
	}, nil
}
