// Copyright 2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package sqlstore_test

import (
	"testing"

	"github.com/diffeo/go-towel/resource"
	"github.com/diffeo/go-towel/resource/resourcetest"
	"github.com/diffeo/go-towel/sqlstore"
	"github.com/rubenv/sql-migrate"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

var widgetMigrations = &migrate.MemoryMigrationSource{
	Migrations: []*migrate.Migration{
		{
			Id: "1-widgets",
			Up: []string{`CREATE TABLE widgets (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				color TEXT NOT NULL DEFAULT '',
				size INTEGER NOT NULL DEFAULT 0,
				parent_id INTEGER NOT NULL DEFAULT 0
			)`},
			Down: []string{`DROP TABLE widgets`},
		},
	},
}

func widgetConfig() sqlstore.TableConfig {
	return sqlstore.TableConfig{
		Name:        "widgets",
		Kind:        resourcetest.WidgetKind,
		Columns:     map[string]string{"parent": "parent_id"},
		TextColumns: []string{"name", "color"},
		Order:       resourcetest.WidgetOrder,
		NewItem: func() resource.Item {
			return &resourcetest.Widget{}
		},
	}
}

func openStore(t assert.TestingT) *sqlstore.Store {
	logger := logrus.NewEntry(logrus.New())
	store, err := sqlstore.Open(sqlstore.DialectSQLite, ":memory:", logger)
	if !assert.NoError(t, err) {
		return nil
	}
	if !assert.NoError(t, store.Upgrade(widgetMigrations)) {
		return nil
	}
	return store
}

// Suite runs the generic collection tests against SQLite.
type Suite struct {
	resourcetest.Suite
}

// SetupSuite does global setup for the test suite.
func (s *Suite) SetupSuite() {
	s.Suite.SetupSuite()
	s.NewCollection = func(widgets []*resourcetest.Widget) (resource.Collection, error) {
		store := openStore(s.T())
		if store == nil {
			s.T().FailNow()
		}
		table := store.Table(widgetConfig())
		_, err := store.DB().Exec("DELETE FROM widgets")
		if err != nil {
			return nil, err
		}
		for _, w := range widgets {
			_, err = store.DB().Exec(
				"INSERT INTO widgets (id, name, color, size, parent_id) VALUES (?, ?, ?, ?, ?)",
				w.WidgetID, w.Name, w.Color, w.Size, w.ParentID)
			if err != nil {
				return nil, err
			}
		}
		return table, nil
	}
}

// TestCollection runs the generic collection tests.
func TestCollection(t *testing.T) {
	suite.Run(t, &Suite{})
}

// TestSaveDelete writes rows through the table.
func TestSaveDelete(t *testing.T) {
	store := openStore(t)
	if store == nil {
		return
	}
	defer store.Close()
	table := store.Table(widgetConfig())

	id, err := table.Save(0, sqlstore.Row{"name": "gear", "color": "black", "size": 3})
	if !assert.NoError(t, err) {
		return
	}
	assert.NotZero(t, id)

	item, err := table.Get(id)
	if assert.NoError(t, err) {
		assert.Equal(t, "gear", item.String())
		assert.Equal(t, "black", item.Value("color"))
	}

	_, err = table.Save(id, sqlstore.Row{"name": "sprocket", "color": "black", "size": 3})
	assert.NoError(t, err)
	item, err = table.Get(id)
	if assert.NoError(t, err) {
		assert.Equal(t, "sprocket", item.String())
	}

	_, err = table.Save(id+100, sqlstore.Row{"name": "nothing"})
	assert.True(t, resource.IsNotFound(err))

	assert.NoError(t, table.Delete(id))
	_, err = table.Get(id)
	assert.Equal(t, resource.ErrNoSuchItem{Kind: "widget", ID: id}, err)
	assert.True(t, resource.IsNotFound(table.Delete(id)))
}

func TestDrop(t *testing.T) {
	store := openStore(t)
	if store == nil {
		return
	}
	defer store.Close()
	assert.NoError(t, store.Drop(widgetMigrations))
	_, err := store.Table(widgetConfig()).Count()
	assert.Error(t, err)
}

func TestBadDialect(t *testing.T) {
	_, err := sqlstore.Open("oracle", "", nil)
	assert.Error(t, err)
}
