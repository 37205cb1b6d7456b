// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package blobtest provides a common test suite for blob.Store
// implementations.
package blobtest

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diffeo/go-geocatalog/blob"
)

// Run runs every blob store test against s.  s must start empty.
func Run(t *testing.T, s blob.Store) {
	t.Run("PutGet", func(t *testing.T) { testPutGet(t, s) })
	t.Run("Replace", func(t *testing.T) { testReplace(t, s) })
	t.Run("Missing", func(t *testing.T) { testMissing(t, s) })
	t.Run("ListLocation", func(t *testing.T) { testListLocation(t, s) })
}

func testPutGet(t *testing.T, s blob.Store) {
	ctx := context.Background()
	info, err := blob.PutBytes(ctx, s, "styles/point.sld", []byte("<sld/>"), "application/vnd.ogc.sld+xml")
	require.NoError(t, err)
	assert.Equal(t, "styles/point.sld", info.Key)
	assert.Equal(t, int64(6), info.Size)

	data, err := blob.ReadAll(ctx, s, "styles/point.sld")
	require.NoError(t, err)
	assert.Equal(t, "<sld/>", string(data))

	ok, err := blob.Exists(ctx, s, "styles/point.sld")
	assert.NoError(t, err)
	assert.True(t, ok)

	existed, err := s.Delete(ctx, "styles/point.sld")
	assert.NoError(t, err)
	assert.True(t, existed)
	existed, err = s.Delete(ctx, "styles/point.sld")
	assert.NoError(t, err)
	assert.False(t, existed)
}

func testReplace(t *testing.T, s blob.Store) {
	ctx := context.Background()
	_, err := s.Put(ctx, "a.txt", strings.NewReader("one"), blob.PutOptions{})
	require.NoError(t, err)
	_, err = s.Put(ctx, "a.txt", strings.NewReader("three"), blob.PutOptions{})
	require.NoError(t, err)
	_, rc, err := s.Get(ctx, "a.txt")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	assert.NoError(t, rc.Close())
	assert.NoError(t, err)
	assert.Equal(t, "three", string(data))
	_, err = s.Delete(ctx, "a.txt")
	assert.NoError(t, err)
}

func testMissing(t *testing.T, s blob.Store) {
	ctx := context.Background()
	_, _, err := s.Get(ctx, "nope")
	assert.True(t, errors.Is(err, blob.ErrNotFound), "%v", err)
	_, err = s.Head(ctx, "nope")
	assert.True(t, errors.Is(err, blob.ErrNotFound), "%v", err)
	ok, err := blob.Exists(ctx, s, "nope")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func testListLocation(t *testing.T, s blob.Store) {
	ctx := context.Background()
	keys := []string{
		"data/sf/roads.shp",
		"data/sf/roads.dbf",
		"data/sf/roadsides.shp",
		"data/sf/rivers.properties",
		"data/sfx/other.shp",
	}
	for _, key := range keys {
		_, err := blob.PutBytes(ctx, s, key, []byte(key), "")
		require.NoError(t, err)
	}

	infos, err := blob.ListLocation(ctx, s, "data/sf")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"data/sf/rivers.properties",
		"data/sf/roads.dbf",
		"data/sf/roads.shp",
		"data/sf/roadsides.shp",
	}, infoKeys(infos))

	infos, err = blob.ListLocation(ctx, s, "data/sf/roads.shp")
	require.NoError(t, err)
	assert.Equal(t, []string{"data/sf/roads.dbf", "data/sf/roads.shp"}, infoKeys(infos))

	infos, err = blob.ListLocation(ctx, s, "")
	assert.NoError(t, err)
	assert.Empty(t, infos)

	for _, key := range keys {
		_, err := s.Delete(ctx, key)
		assert.NoError(t, err)
	}
}

func infoKeys(infos []blob.Info) []string {
	keys := make([]string, len(infos))
	for i, info := range infos {
		keys[i] = info.Key
	}
	return keys
}
