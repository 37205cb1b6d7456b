// Copyright 2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package sqlstore_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	blobmemory "github.com/diffeo/go-geocatalog/blob/memory"
	"github.com/diffeo/go-geocatalog/catalog/catalogtest"
	"github.com/diffeo/go-geocatalog/memory"
	"github.com/diffeo/go-geocatalog/sqlstore"
)

// Suite runs the generic catalog tests against a memory catalog
// persisted to a database.  Each test is run against a catalog
// reloaded from the database, after a fresh one wrote its initial
// state there.
type Suite struct {
	catalogtest.Suite
	driver string
	dsn    func(t *testing.T) string
	store  *sqlstore.Store
}

// SetupTest creates a fresh database and catalog for each test.
func (s *Suite) SetupTest() {
	ctx := context.Background()
	log := logrus.New()
	log.Out = io.Discard

	store, err := sqlstore.Open(ctx, s.driver, s.dsn(s.T()))
	s.Require().NoError(err)
	s.store = store
	blobs := blobmemory.New()
	opts := memory.Options{
		Clock:     s.Clock,
		Logger:    log,
		Blobs:     blobs,
		Persister: store,
	}
	_, err = memory.Open(ctx, opts)
	s.Require().NoError(err)
	c, err := memory.Open(ctx, opts)
	s.Require().NoError(err)
	s.Catalog = c
	s.Blobs = blobs
}

// TearDownTest drops the schema and closes the database.
func (s *Suite) TearDownTest() {
	if s.store != nil {
		s.NoError(sqlstore.Drop(s.store.DB(), s.driver))
		s.NoError(s.store.Close())
		s.store = nil
	}
}

// TestSQLite runs the suite against SQLite.
func TestSQLite(t *testing.T) {
	suite.Run(t, &Suite{
		driver: "sqlite",
		dsn: func(t *testing.T) string {
			return filepath.Join(t.TempDir(), "catalog.db")
		},
	})
}

// TestPostgres runs the suite against PostgreSQL, if
// GEOCATALOG_POSTGRES names a database.  The database should be
// empty; every test drops the tables it creates.
func TestPostgres(t *testing.T) {
	dsn := os.Getenv("GEOCATALOG_POSTGRES")
	if dsn == "" {
		t.Skip("GEOCATALOG_POSTGRES not set")
	}
	for _, driver := range []string{"postgres", "pgx"} {
		t.Run(driver, func(t *testing.T) {
			suite.Run(t, &Suite{
				driver: driver,
				dsn:    func(*testing.T) string { return dsn },
			})
		})
	}
}
