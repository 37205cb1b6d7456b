// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diffeo/go-geocatalog/blob"
	"github.com/diffeo/go-geocatalog/blob/blobtest"
)

func TestStore(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	blobtest.Run(t, s)
}

func TestKeysArePlainFiles(t *testing.T) {
	root := t.TempDir()
	s, err := New(root)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = blob.PutBytes(ctx, s, "data/sf/roads.shp", []byte("shp"), "")
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(root, "data", "sf", "roads.shp"))
	require.NoError(t, err)
	assert.Equal(t, "shp", string(data))

	// Files dropped in by other tools are visible too.
	require.NoError(t, os.WriteFile(filepath.Join(root, "data", "sf", "roads.qix"), []byte("qix"), 0o644))
	infos, err := blob.ListLocation(ctx, s, "data/sf/roads.shp")
	require.NoError(t, err)
	assert.Len(t, infos, 2)
}

func TestRejectsEscapingKeys(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	for _, key := range []string{"", "/etc/passwd", "../up", "a/../../up"} {
		_, err := blob.PutBytes(ctx, s, key, nil, "")
		assert.Error(t, err, key)
	}
}
