// Copyright 2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package backend

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diffeo/go-geocatalog/catalog"
	"github.com/diffeo/go-geocatalog/memory"
)

func TestSet(t *testing.T) {
	for _, test := range []struct {
		param string
		impl  string
		addr  string
		ok    bool
	}{
		{"memory", "memory", "", true},
		{"postgres:host=localhost dbname=x", "postgres", "host=localhost dbname=x", true},
		{"pgx://u:p@db/geo", "pgx", "//u:p@db/geo", true},
		{"sqlite:/tmp/catalog.db", "sqlite", "/tmp/catalog.db", true},
		{"sqlite", "", "", false},
		{"", "", "", false},
		{"mongo:localhost", "", "", false},
	} {
		var b Backend
		err := b.Set(test.param)
		if !test.ok {
			assert.Error(t, err, test.param)
			continue
		}
		if assert.NoError(t, err, test.param) {
			assert.Equal(t, test.impl, b.Implementation)
			assert.Equal(t, test.addr, b.Address)
			assert.Equal(t, test.param, b.String())
		}
	}
}

func TestSQLiteReload(t *testing.T) {
	ctx := context.Background()
	log := logrus.New()
	log.Out = io.Discard
	var b Backend
	require.NoError(t, b.Set("sqlite:"+filepath.Join(t.TempDir(), "catalog.db")))

	c, closer, err := b.Catalog(ctx, memory.Options{Logger: log})
	require.NoError(t, err)
	_, err = c.CreateWorkspace(ctx, &catalog.Workspace{Name: "sf"})
	require.NoError(t, err)
	require.NoError(t, closer.Close())

	c, closer, err = b.Catalog(ctx, memory.Options{Logger: log})
	require.NoError(t, err)
	defer closer.Close()
	ws, err := c.Workspace(ctx, "sf")
	if assert.NoError(t, err) {
		assert.Equal(t, "sf", ws.Name)
	}
}
