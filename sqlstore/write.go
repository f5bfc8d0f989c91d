// Copyright 2015-2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package sqlstore

import (
	"sort"
	"strings"

	"github.com/diffeo/go-towel/resource"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Row is a set of column values to write.
type Row map[string]interface{}

// columns returns the row's column names in a stable order.
func (r Row) columns() []string {
	cols := make([]string, 0, len(r))
	for col := range r {
		if col != "id" {
			cols = append(cols, col)
		}
	}
	sort.Strings(cols)
	return cols
}

// Save writes a row.  If id is zero, a new row is inserted and its
// new identifier returned; otherwise the existing row is updated,
// and resource.ErrNoSuchItem is returned if there is none.
func (t *Table) Save(id int64, row Row) (int64, error) {
	cols := row.columns()
	logger := t.store.logger.WithFields(logrus.Fields{
		"table": t.config.Name,
		"id":    id,
	})
	err := t.store.Update(func(tx *sqlx.Tx) error {
		var params queryParams
		if id == 0 {
			placeholders := make([]string, len(cols))
			for i, col := range cols {
				placeholders[i] = params.Param(row[col])
			}
			query := "INSERT INTO " + t.config.Name +
				" (" + strings.Join(cols, ", ") + ")" +
				" VALUES (" + strings.Join(placeholders, ", ") + ")"
			return t.insert(tx, query, params, &id)
		}

		changes := make([]string, len(cols))
		for i, col := range cols {
			changes[i] = col + "=" + params.Param(row[col])
		}
		query := "UPDATE " + t.config.Name +
			" SET " + strings.Join(changes, ", ") +
			" WHERE id=" + params.Param(id)
		query, args, err := params.Bind(tx, query)
		if err != nil {
			return err
		}
		result, err := tx.Exec(query, args...)
		if err != nil {
			return err
		}
		n, err := result.RowsAffected()
		if err == nil && n == 0 {
			err = resource.ErrNoSuchItem{Kind: t.config.Kind.Name, ID: id}
		}
		return err
	})
	if err != nil {
		if !resource.IsNotFound(err) {
			err = errors.Wrapf(err, "saving %s", t.config.Kind.Name)
		}
		return 0, err
	}
	logger.WithField("id", id).Debug("Saved row")
	return id, nil
}

// insert runs an INSERT statement and retrieves the new row's id.
func (t *Table) insert(tx *sqlx.Tx, query string, params queryParams, id *int64) error {
	if t.store.dialect == DialectPostgres {
		query += " RETURNING id"
		query, args, err := params.Bind(tx, query)
		if err != nil {
			return err
		}
		return tx.QueryRowx(query, args...).Scan(id)
	}
	query, args, err := params.Bind(tx, query)
	if err != nil {
		return err
	}
	result, err := tx.Exec(query, args...)
	if err != nil {
		return err
	}
	*id, err = result.LastInsertId()
	return err
}

// Delete removes a row.
func (t *Table) Delete(id int64) error {
	return t.store.Update(func(tx *sqlx.Tx) error {
		var params queryParams
		query := "DELETE FROM " + t.config.Name + " WHERE id=" + params.Param(id)
		query, args, err := params.Bind(tx, query)
		if err != nil {
			return err
		}
		result, err := tx.Exec(query, args...)
		if err != nil {
			return err
		}
		n, err := result.RowsAffected()
		if err == nil && n == 0 {
			err = resource.ErrNoSuchItem{Kind: t.config.Kind.Name, ID: id}
		}
		return err
	})
}
