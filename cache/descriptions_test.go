// Copyright 2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/diffeo/go-geocatalog/catalog"
)

// countingSource describes every dataset as having one attribute
// named after the dataset, and counts calls.
type countingSource struct {
	calls int
	fail  bool
}

func (s *countingSource) Describe(ctx context.Context, store *catalog.Store, nativeName string) (*catalog.Description, error) {
	s.calls++
	if s.fail {
		return nil, catalog.NotFoundf(ctx, "no dataset %q", nativeName)
	}
	return &catalog.Description{
		Attributes: []catalog.Attribute{{Name: nativeName}},
	}, nil
}

func TestDescriptionsCache(t *testing.T) {
	ctx := context.Background()
	source := &countingSource{}
	d := NewDescriptions(source, 0)
	store := &catalog.Store{Name: "sf"}

	desc, err := d.Describe(ctx, "id-1", store, "roads")
	if assert.NoError(t, err) {
		assert.Equal(t, "roads", desc.Attributes[0].Name)
	}
	_, err = d.Describe(ctx, "id-1", store, "roads")
	assert.NoError(t, err)
	assert.Equal(t, 1, source.calls)
	assert.NotNil(t, d.Cached("id-1"))

	d.Forget("id-1")
	assert.Nil(t, d.Cached("id-1"))
	_, err = d.Describe(ctx, "id-1", store, "roads")
	assert.NoError(t, err)
	assert.Equal(t, 2, source.calls)

	d.Reset()
	assert.Equal(t, 0, d.Len())
}

func TestDescriptionsFailuresNotCached(t *testing.T) {
	ctx := context.Background()
	source := &countingSource{fail: true}
	d := NewDescriptions(source, 4)

	_, err := d.Describe(ctx, "id-1", &catalog.Store{}, "missing")
	assert.True(t, catalog.IsKind(err, catalog.NotFound))
	assert.Equal(t, 0, d.Len())

	source.fail = false
	_, err = d.Describe(ctx, "id-1", &catalog.Store{}, "missing")
	assert.NoError(t, err)
	assert.Equal(t, 2, source.calls)
}
