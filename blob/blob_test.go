// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package blob

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMetadata(t *testing.T) {
	for _, key := range []string{
		"data/roads.shx",
		"data/roads.DBF",
		"data/roads.prj",
		"mosaic/granules.properties",
		"mosaic/mosaic.sqlite",
		"mosaic/sample_image",
		"mosaic/sample_image.dat",
		"nc/index.ncx3",
	} {
		assert.True(t, IsMetadata(key), key)
	}
	for _, key := range []string{
		"data/roads.tif",
		"data/roads.csv",
		"mosaic/granule_1.tiff",
		"data/properties",
	} {
		assert.False(t, IsMetadata(key), key)
	}
}

func TestIsVectorIndex(t *testing.T) {
	assert.True(t, IsVectorIndex("data/roads.qix"))
	assert.True(t, IsVectorIndex("data/roads.FIX"))
	for _, key := range []string{
		"data/roads.shp",
		"data/roads.dbf",
		"data/roads.prj",
		"data/sf/roads.properties",
	} {
		assert.False(t, IsVectorIndex(key), key)
	}
}
