// Copyright 2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// layerName stands in for a cached value.
type layerName struct {
	Key string
}

func fetch(key string) (interface{}, error) {
	return layerName{Key: key}, nil
}

func doNotFetch(key string) (interface{}, error) {
	return nil, assert.AnError
}

type LRUAssertions struct {
	*assert.Assertions
	LRU *lru
}

func NewLRUAssertions(t assert.TestingT, size int) *LRUAssertions {
	return &LRUAssertions{
		assert.New(t),
		newLRU(size),
	}
}

// PutKey adds an item with key to the cache.
func (a *LRUAssertions) PutKey(key string) {
	a.LRU.Put(key, layerName{Key: key})
}

// GetKey fetches an item from the cache; if not present, it is
// added.
func (a *LRUAssertions) GetKey(key string) {
	item, err := a.LRU.Get(key, fetch)
	if a.NoError(err) && a.IsType(layerName{}, item) {
		a.Equal(key, item.(layerName).Key)
	}
}

// GetPresent fetches an item from the cache; if not present, it
// should produce an assertion error.
func (a *LRUAssertions) GetPresent(key string) {
	item, err := a.LRU.Get(key, doNotFetch)
	if a.NoError(err) && a.IsType(layerName{}, item) {
		a.Equal(key, item.(layerName).Key)
	}
}

// GetError tries to fetch an item from the cache, but it should not
// exist, and the resulting error will be caught.
func (a *LRUAssertions) GetError(key string) {
	_, err := a.LRU.Get(key, doNotFetch)
	a.Error(err)
}

// LRUHas asserts that an item with key is in the cache.
func (a *LRUAssertions) LRUHas(key string) {
	item := a.LRU.Peek(key)
	if a.NotNil(item) {
		a.Equal(key, item.(layerName).Key)
	}
}

// LRUDoesNotHave asserts that no item with key is in the cache.
func (a *LRUAssertions) LRUDoesNotHave(key string) {
	a.Nil(a.LRU.Peek(key))
}

// TestLRUSimple tests minimal object presence.
func TestLRUSimple(t *testing.T) {
	a := NewLRUAssertions(t, 2)
	a.PutKey("roads")

	a.LRUHas("roads")
	a.LRUDoesNotHave("rivers")
}

// TestLRUAutoInsert tests lru.Get() adding absent items.
func TestLRUAutoInsert(t *testing.T) {
	a := NewLRUAssertions(t, 2)

	a.GetKey("roads")
	a.GetKey("rivers")
	a.LRUHas("roads")
	a.LRUHas("rivers")

	// A third key evicts the oldest
	a.GetKey("lakes")
	a.LRUDoesNotHave("roads")
	a.LRUHas("rivers")
	a.LRUHas("lakes")
}

func TestLRUInsertError(t *testing.T) {
	a := NewLRUAssertions(t, 2)

	a.GetKey("roads")
	a.GetKey("rivers")

	// A failed fetch adds nothing and so evicts nothing
	a.GetError("lakes")
	a.LRUHas("roads")
	a.LRUHas("rivers")
	a.LRUDoesNotHave("lakes")

	// Present items never call the fetch function
	a.GetPresent("roads")
	a.GetPresent("rivers")
}

// TestLRUOrder tests that getting an item causes it to not get evicted.
func TestLRUOrder(t *testing.T) {
	a := NewLRUAssertions(t, 2)

	a.GetKey("roads")
	a.GetKey("rivers")

	// roads is now more recently used than rivers
	a.GetKey("roads")

	a.GetKey("lakes")
	a.LRUHas("roads")
	a.LRUDoesNotHave("rivers")
	a.LRUHas("lakes")
}

// TestLRURemoval does simple tests on Remove and Clear.
func TestLRURemoval(t *testing.T) {
	a := NewLRUAssertions(t, 2)

	a.GetKey("roads")
	a.LRU.Remove("roads")
	a.LRUDoesNotHave("roads")

	a.LRU.Remove("lakes")
	a.LRUDoesNotHave("lakes")

	// Removing a more-recent thing leaves room for another
	a.GetKey("roads")
	a.GetKey("rivers")
	a.LRU.Remove("rivers")
	a.GetKey("lakes")
	a.LRUHas("roads")
	a.LRUDoesNotHave("rivers")
	a.LRUHas("lakes")

	a.LRU.Clear()
	a.Equal(0, a.LRU.Len())
	a.LRUDoesNotHave("roads")
}
