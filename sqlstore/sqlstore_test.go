// Copyright 2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package sqlstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diffeo/go-geocatalog/catalog"
)

func openTemp(t *testing.T) *Store {
	s, err := Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestEncodeRoundTrip(t *testing.T) {
	now := time.Date(2016, 5, 4, 3, 2, 1, 0, time.UTC)
	width := 3
	in := &catalog.LayerGroup{
		Info: catalog.Info{
			ID:       "lg",
			Created:  now,
			Modified: now,
			Metadata: map[string][]string{"k": {"v"}},
		},
		Name:      "all",
		Workspace: &catalog.Ref{ID: "ws"},
		Mode:      catalog.ModeNamed,
		Layers: []catalog.PublishedRef{
			{Type: catalog.PublishedLayer, Ref: catalog.Ref{ID: "l1"}},
			{Type: catalog.PublishedStyleGroup},
		},
		Styles:      []*catalog.Ref{nil, {ID: "st"}},
		Bounds:      &catalog.BBox{MinX: -1, MinY: -2, MaxX: 3, MaxY: 4, CRS: "EPSG:4326"},
		Attribution: &catalog.Attribution{LogoWidth: width},
		Enabled:     true,
	}
	body, err := encodeObject(in)
	require.NoError(t, err)
	obj, err := decodeObject(catalog.KindLayerGroup, body)
	require.NoError(t, err)
	out, ok := obj.(*catalog.LayerGroup)
	require.True(t, ok)

	assert.True(t, in.Created.Equal(out.Created))
	out.Created, out.Modified = in.Created, in.Modified
	assert.Equal(t, in, out)

	_, err = decodeObject("bogus", body)
	assert.Error(t, err)
}

func TestEmptyLoad(t *testing.T) {
	s := openTemp(t)
	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Objects)
	assert.Empty(t, snap.Defaults)
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	ws := &catalog.Workspace{Info: catalog.Info{ID: "w1"}, Name: "sf"}
	ns := &catalog.Namespace{Info: catalog.Info{ID: "n1"}, Prefix: "sf", URI: "http://sf", Workspace: catalog.Ref{ID: "w1"}}
	other := &catalog.Workspace{Info: catalog.Info{ID: "w2"}, Name: "ny"}
	require.NoError(t, s.Save(ctx, []catalog.Change{
		{Kind: catalog.KindWorkspace, ID: "w1", Object: ws},
		{Kind: catalog.KindNamespace, ID: "n1", Object: ns},
		{Kind: catalog.KindWorkspace, ID: "w2", Object: other},
	}, map[string]string{"workspace": "w1"}))

	// Renaming keeps the creation position.
	renamed := &catalog.Workspace{Info: catalog.Info{ID: "w1"}, Name: "sanfrancisco"}
	require.NoError(t, s.Save(ctx, []catalog.Change{
		{Kind: catalog.KindWorkspace, ID: "w1", Object: renamed},
		{Kind: catalog.KindNamespace, ID: "n1"},
	}, map[string]string{"workspace": "w2", "store:w2": "s1"}))

	snap, err := s.Load(ctx)
	require.NoError(t, err)
	var names []string
	for _, obj := range snap.Objects {
		names = append(names, obj.ObjectName())
	}
	assert.Equal(t, []string{"sanfrancisco", "ny"}, names)
	assert.Equal(t, map[string]string{"workspace": "w2", "store:w2": "s1"}, snap.Defaults)
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.db")
	s, err := Open(ctx, "sqlite", path)
	require.NoError(t, err)
	st := &catalog.Style{Info: catalog.Info{ID: "s1"}, Name: "thick", Filename: "thick.sld", Format: "sld"}
	require.NoError(t, s.Save(ctx, []catalog.Change{{Kind: catalog.KindStyle, ID: "s1", Object: st}}, nil))
	require.NoError(t, s.Close())

	s, err = Open(ctx, "sqlite", path)
	require.NoError(t, err)
	defer s.Close()
	snap, err := s.Load(ctx)
	require.NoError(t, err)
	if assert.Len(t, snap.Objects, 1) {
		assert.Equal(t, st, snap.Objects[0])
	}
}

func TestUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "")
	assert.Error(t, err)
}

func TestParams(t *testing.T) {
	qp := queryParams{d: dialects["postgres"]}
	assert.Equal(t, "$1", qp.Param("a"))
	assert.Equal(t, "$2", qp.Param("b"))
	assert.Equal(t, []interface{}{"a", "b"}, qp.args)

	qp = queryParams{d: dialects["sqlite"]}
	assert.Equal(t, "?", qp.Param("a"))
	assert.Equal(t, "?", qp.Param("b"))
}
