// Copyright 2015-2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package sqlstore

import (
	"database/sql"
	"sort"
	"strings"

	"github.com/diffeo/go-towel/resource"
	"github.com/jmoiron/sqlx"
)

// TableConfig describes how a resource kind maps onto a table.
type TableConfig struct {
	// Name is the name of the table.  It must have an integer
	// "id" primary key column.
	Name string

	// Kind is the resource kind of the table's rows.
	Kind resource.Kind

	// Columns maps field names to column names, for fields whose
	// column is named differently.  Other fields use their own
	// name as the column name.
	Columns map[string]string

	// TextColumns lists the columns searched by a text query.
	TextColumns []string

	// Order is the default listing order.  Rows are always
	// finally ordered by identifier.
	Order []resource.Ordering

	// NewItem returns a pointer to a fresh struct to scan a row
	// into, using sqlx "db" struct tags.  The struct must have a
	// field for every column of the table.
	NewItem func() resource.Item
}

// Table is a resource.Collection over a database table, possibly
// narrowed by a search.
type Table struct {
	store      *Store
	config     TableConfig
	conditions []string
	params     queryParams
	order      []resource.Ordering
}

// Table creates a collection over a table.
func (s *Store) Table(config TableConfig) *Table {
	return &Table{
		store:  s,
		config: config,
		order:  config.Order,
	}
}

// Kind returns the kind of the table's rows.
func (t *Table) Kind() resource.Kind {
	return t.config.Kind
}

// Name returns the name of the table.
func (t *Table) Name() string {
	return t.config.Name
}

// column returns the column name for a field.
func (t *Table) column(field string) string {
	if col, ok := t.config.Columns[field]; ok {
		return col
	}
	return field
}

// selectRows builds a SELECT of full rows with the table's own
// conditions plus extra ones.  params must already hold the table's
// parameters.
func (t *Table) selectRows(extra ...string) string {
	conditions := append(append([]string{}, t.conditions...), extra...)
	return buildSelect([]string{"*"}, []string{t.config.Name}, conditions)
}

func (t *Table) orderBy() string {
	var parts []string
	for _, o := range t.order {
		part := t.column(o.Field)
		if o.Descending {
			part += " DESC"
		} else {
			part += " ASC"
		}
		parts = append(parts, part)
	}
	parts = append(parts, "id ASC")
	return " ORDER BY " + strings.Join(parts, ", ")
}

func (t *Table) scanItems(query string, params queryParams) ([]resource.Item, error) {
	var result []resource.Item
	err := queryAndScan(t.store, query, params, func(rows *sqlx.Rows) error {
		item := t.config.NewItem()
		if err := rows.StructScan(item); err != nil {
			return err
		}
		result = append(result, item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Get retrieves a single row.
func (t *Table) Get(id int64) (resource.Item, error) {
	params := append(queryParams{}, t.params...)
	query := t.selectRows("id=" + params.Param(id))
	items, err := t.scanItems(query, params)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, resource.ErrNoSuchItem{Kind: t.config.Kind.Name, ID: id}
	}
	return items[0], nil
}

// GetMany retrieves the rows that exist out of ids, in the order of
// ids.
func (t *Table) GetMany(ids []int64) ([]resource.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	params := append(queryParams{}, t.params...)
	query := t.selectRows("id IN (" + params.Param(ids) + ")")
	items, err := t.scanItems(query, params)
	if err != nil {
		return nil, err
	}
	index := make(map[int64]resource.Item, len(items))
	for _, item := range items {
		index[item.ID()] = item
	}
	var result []resource.Item
	for _, id := range ids {
		if item, present := index[id]; present {
			result = append(result, item)
		}
	}
	return result, nil
}

// Count returns the number of rows.
func (t *Table) Count() (int, error) {
	var count int
	query := buildSelect([]string{"COUNT(*)"}, []string{t.config.Name}, t.conditions)
	err := t.store.View(func(tx *sqlx.Tx) error {
		query, args, err := t.params.Bind(tx, query)
		if err != nil {
			return err
		}
		return tx.QueryRowx(query, args...).Scan(&count)
	})
	if err == sql.ErrNoRows {
		err = nil
	}
	return count, err
}

// Slice returns a range of rows in listing order.
func (t *Table) Slice(offset, limit int) ([]resource.Item, error) {
	params := append(queryParams{}, t.params...)
	query := t.selectRows() + t.orderBy()
	query += " LIMIT " + params.Param(limit)
	query += " OFFSET " + params.Param(offset)
	return t.scanItems(query, params)
}

// Search returns a narrower table.  Filters compare a column for
// equality with any of the given values, and text matches any of
// the configured text columns ignoring case.
func (t *Table) Search(query resource.Query) (resource.Collection, error) {
	if err := query.Validate(t.config.Kind); err != nil {
		return nil, err
	}
	result := &Table{
		store:      t.store,
		config:     t.config,
		conditions: append([]string{}, t.conditions...),
		params:     append(queryParams{}, t.params...),
		order:      t.order,
	}

	// Walk the filters in a stable order so the generated SQL
	// does not change from call to call
	var fields []string
	for field, values := range query.Filters {
		if len(values) > 0 {
			fields = append(fields, field)
		}
	}
	sort.Strings(fields)
	for _, field := range fields {
		cond := t.column(field) + " IN (" + result.params.Param(query.Filters[field]) + ")"
		result.conditions = append(result.conditions, cond)
	}

	if query.Text != "" && len(t.config.TextColumns) > 0 {
		pattern := "%" + strings.ToLower(query.Text) + "%"
		var alternatives []string
		for _, col := range t.config.TextColumns {
			alternatives = append(alternatives, "LOWER("+col+") LIKE "+result.params.Param(pattern))
		}
		result.conditions = append(result.conditions, "("+strings.Join(alternatives, " OR ")+")")
	}

	if len(query.Order) > 0 {
		result.order = query.Order
	}
	return result, nil
}
