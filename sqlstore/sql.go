// Copyright 2015-2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package sqlstore

// This file contains generic support code for SQL applications,
// layered on sqlx.  There are three main things in here:
//
// (1) withTx() to do work in a transaction that can be retried, and
//     scanRows() to loop over the results of a multi-row SELECT
//
// (2) Helpers to build SQL SELECT statements (dealing entirely in
//     strings)
//
// (3) queryParams, a parameter list that expands slice parameters
//     for IN clauses and rebinds placeholders for the driver

import (
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// withTx calls some function with a transaction object.  If f panics
// or returns a non-nil error, rolls the transaction back; otherwise
// commits it before returning.  Returns the error value from f, or
// some other error related to transaction management.
func withTx(s *Store, readOnly bool, f func(*sqlx.Tx) error) (err error) {
	var (
		tx   *sqlx.Tx
		done bool
	)

	// If we have a failure, roll back; and if that rollback fails
	// and we don't yet have an error, set the error
	defer func() {
		if tx != nil && !done {
			err2 := tx.Rollback()
			if err == nil {
				err = err2
			}
		}
	}()

	// Run in a loop, repeating the work on serialization errors
	for {
		// Create the transaction
		tx, err = s.db.Beginx()
		if err != nil {
			return
		}

		// SQLite transactions are always serializable; only
		// PostgreSQL needs to be told.
		if s.dialect == DialectPostgres {
			level := "REPEATABLE READ"
			if readOnly {
				level += " READ ONLY"
			}
			_, err = tx.Exec("SET TRANSACTION ISOLATION LEVEL " + level)
			if err != nil {
				return
			}
		}

		// Call the callback function
		err = f(tx)

		// If that succeeded, commit
		if err == nil {
			err = tx.Commit()
			done = true
		}

		// If we specifically got a serialization error,
		// retry
		if pqerr, ok := err.(*pq.Error); ok {
			if pqerr.Code == "40001" {
				err = tx.Rollback()
				if err == sql.ErrTxDone {
					// We want to roll back, but we
					// can't, because we've already
					// rolled back; not an error
					err = nil
				} else if err != nil {
					return
				}
				tx = nil
				done = false
				continue
			}
		}

		break
	}

	return
}

// scanRows calls a function for each row in a result set.  The
// callback function should only scan the current row; this function
// will take care of advancing through the list of rows and closing
// the iterator as required.
func scanRows(rows *sqlx.Rows, f func() error) (err error) {
	var done bool
	defer func() {
		if !done {
			err2 := rows.Close()
			if err == nil {
				err = err2
			}
		}
	}()

	for rows.Next() {
		err = f()
		if err != nil {
			return
		}
	}
	done = true
	err = rows.Err()
	return
}

// queryAndScan establishes a read-only transaction, runs query on it
// with params, and calls f for each row in it.  It is the common case
// of combining withTx() and scanRows().
func queryAndScan(s *Store, query string, params queryParams, f func(*sqlx.Rows) error) error {
	return withTx(s, true, func(tx *sqlx.Tx) error {
		query, args, err := params.Bind(tx, query)
		if err != nil {
			return err
		}
		rows, err := tx.Queryx(query, args...)
		if err != nil {
			return err
		}
		return scanRows(rows, func() error {
			return f(rows)
		})
	})
}

// buildSelect constructs a simple SQL SELECT statement by string
// concatenation.  All of the conditions are ANDed together.
func buildSelect(outputs, tables, conditions []string) string {
	query := "SELECT "
	query += strings.Join(outputs, ", ")
	query += " FROM "
	query += strings.Join(tables, ", ")
	if len(conditions) > 0 {
		query += " WHERE "
		query += strings.Join(conditions, " AND ")
	}
	return query
}

// queryParams wraps a list of query parameters.
type queryParams []interface{}

// Param adds a parameter to the query parameter list, returning a
// placeholder for it.  A slice parameter is expanded to a list of
// placeholders when the query is bound, for use with IN.
func (qp *queryParams) Param(param interface{}) string {
	*qp = append(*qp, param)
	return "?"
}

// Bind expands slice parameters and rewrites placeholders for the
// target database.
func (qp queryParams) Bind(tx *sqlx.Tx, query string) (string, []interface{}, error) {
	query, args, err := sqlx.In(query, []interface{}(qp)...)
	if err != nil {
		return "", nil, err
	}
	return tx.Rebind(query), args, nil
}
