// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package datasource

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diffeo/go-geocatalog/blob"
	"github.com/diffeo/go-geocatalog/blob/memory"
	"github.com/diffeo/go-geocatalog/catalog"
)

const roads = `_=id:Integer,name:String,the_geom:LineString:srid=26713
# a comment
roads.1=1|Main Street|LINESTRING(10 20, 30 5)
roads.2=2|Side Street|LINESTRING(-4 7.5, 12 40)
`

func setup(t *testing.T) (*Properties, *catalog.Store) {
	blobs := memory.New()
	_, err := blob.PutBytes(context.Background(), blobs, "data/sf/roads.properties", []byte(roads), "")
	require.NoError(t, err)
	_, err = blob.PutBytes(context.Background(), blobs, "data/sf/points.properties",
		[]byte("_=the_geom:Point,label:String\npoints.1=POINT(1 2)|a\n"), "")
	require.NoError(t, err)
	store := &catalog.Store{
		Name:       "sf",
		Kind:       catalog.DataStore,
		Connection: map[string]string{"url": "file:data/sf"},
	}
	return New(blobs), store
}

func TestDescribe(t *testing.T) {
	p, store := setup(t)
	desc, err := p.Describe(context.Background(), store, "roads")
	require.NoError(t, err)
	assert.Equal(t, "LineString", desc.GeometryType)
	assert.Equal(t, "EPSG:26713", desc.SRS)
	if assert.Len(t, desc.Attributes, 3) {
		assert.Equal(t, "id", desc.Attributes[0].Name)
		assert.Equal(t, "Integer", desc.Attributes[0].Binding)
		assert.Equal(t, "the_geom", desc.Attributes[2].Name)
	}
	assert.Equal(t, &catalog.BBox{MinX: -4, MinY: 5, MaxX: 30, MaxY: 40, CRS: "EPSG:26713"}, desc.NativeBBox)
	assert.Nil(t, desc.LatLonBBox)

	desc, err = p.Describe(context.Background(), store, "points")
	require.NoError(t, err)
	assert.Equal(t, "Point", desc.GeometryType)
	assert.Equal(t, "EPSG:4326", desc.SRS)
	assert.Equal(t, desc.NativeBBox, desc.LatLonBBox)
}

func TestDescribeMissing(t *testing.T) {
	p, store := setup(t)
	_, err := p.Describe(context.Background(), store, "lakes")
	assert.True(t, catalog.IsKind(err, catalog.NotFound))

	store.Connection = map[string]string{"dbtype": "postgis"}
	_, err = p.Describe(context.Background(), store, "roads")
	assert.True(t, catalog.IsKind(err, catalog.NotFound))
}

func TestDescribeMalformed(t *testing.T) {
	_, err := parse([]byte("roads.1=1|x\n"))
	assert.Error(t, err)
	_, err = parse([]byte("_=broken\n"))
	assert.Error(t, err)
	_, err = parse(nil)
	assert.Error(t, err)
}

func TestDescribeOtherKinds(t *testing.T) {
	p, _ := setup(t)
	desc, err := p.Describe(context.Background(), &catalog.Store{Kind: catalog.CoverageStore}, "dem")
	require.NoError(t, err)
	assert.Equal(t, &catalog.Description{}, desc)
}
