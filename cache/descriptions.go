// Copyright 2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package cache provides caching of lazily computed catalog data.
//
// Describing a dataset (reading its attribute list and bounds) means
// going out to the underlying data, which can be slow.  Descriptions
// remembers the answer per resource, until the resource changes or
// the whole cache is reset.
//
// The cache knows nothing about catalog consistency.  The catalog
// calls Forget whenever a resource or its store changes in a way that
// could change the description, and Reset on an explicit reset
// request.
package cache

import (
	"context"

	"github.com/diffeo/go-geocatalog/catalog"
)

// DefaultSize is the number of descriptions kept when no size is
// given.
const DefaultSize = 256

// Descriptions is an LRU cache of dataset descriptions in front of a
// catalog.DataSource.
type Descriptions struct {
	source catalog.DataSource
	lru    *lru
}

// NewDescriptions creates a description cache holding at most size
// entries.  A size of zero or less means DefaultSize.
func NewDescriptions(source catalog.DataSource, size int) *Descriptions {
	if size <= 0 {
		size = DefaultSize
	}
	return &Descriptions{source: source, lru: newLRU(size)}
}

// Describe returns the description of the resource with ID key,
// asking the data source for it if it is not cached.  Failures are
// not cached.
func (d *Descriptions) Describe(ctx context.Context, key string, store *catalog.Store, nativeName string) (*catalog.Description, error) {
	value, err := d.lru.Get(key, func(string) (interface{}, error) {
		return d.source.Describe(ctx, store, nativeName)
	})
	if err != nil {
		return nil, err
	}
	return value.(*catalog.Description), nil
}

// Cached returns the cached description for key, or nil.
func (d *Descriptions) Cached(key string) *catalog.Description {
	if value := d.lru.Peek(key); value != nil {
		return value.(*catalog.Description)
	}
	return nil
}

// Forget drops the description for key.
func (d *Descriptions) Forget(key string) {
	d.lru.Remove(key)
}

// Reset drops every description.
func (d *Descriptions) Reset() {
	d.lru.Clear()
}

// Len returns the number of cached descriptions.
func (d *Descriptions) Len() int {
	return d.lru.Len()
}
