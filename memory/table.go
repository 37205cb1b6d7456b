// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import "github.com/diffeo/go-geocatalog/catalog"

// table is an indexed collection of one kind of catalog object.  It
// keeps insertion order and a name index per scope.
//
// Objects stored in a table are never modified in place.  A table
// may be shared between the committed state and a transaction's
// working copy, so changing an object means putting a new one.
type table[T catalog.Object] struct {
	// scope returns the ID of the object naming scope (the
	// workspace ID for most things, "" for global objects).
	scope func(T) string

	order []string
	byID  map[string]T
	names map[string]string
}

func newTable[T catalog.Object](scope func(T) string) *table[T] {
	return &table[T]{
		scope: scope,
		byID:  make(map[string]T),
		names: make(map[string]string),
	}
}

func nameKey(scope, name string) string {
	return scope + "\x00" + name
}

// clone makes a copy of the table's indexes.  The objects themselves
// are shared.
func (t *table[T]) clone() *table[T] {
	c := &table[T]{
		scope: t.scope,
		order: append([]string(nil), t.order...),
		byID:  make(map[string]T, len(t.byID)),
		names: make(map[string]string, len(t.names)),
	}
	for k, v := range t.byID {
		c.byID[k] = v
	}
	for k, v := range t.names {
		c.names[k] = v
	}
	return c
}

// get returns the object with id, if any.
func (t *table[T]) get(id string) (T, bool) {
	obj, ok := t.byID[id]
	return obj, ok
}

// byName finds an object by exact name within a scope.
func (t *table[T]) byName(scope, name string) (T, bool) {
	var zero T
	id, ok := t.names[nameKey(scope, name)]
	if !ok {
		return zero, false
	}
	return t.get(id)
}

// add inserts a new object.  The caller has already checked that
// the name is free; add panics otherwise, since that means the
// naming rules were bypassed.
func (t *table[T]) add(obj T) {
	id := obj.ObjectInfo().ID
	key := nameKey(t.scope(obj), obj.ObjectName())
	if _, taken := t.names[key]; taken {
		panic("memory: duplicate name " + obj.ObjectName())
	}
	t.order = append(t.order, id)
	t.byID[id] = obj
	t.names[key] = id
}

// put replaces an existing object, reindexing its name.
func (t *table[T]) put(obj T) {
	id := obj.ObjectInfo().ID
	old, ok := t.byID[id]
	if !ok {
		t.add(obj)
		return
	}
	delete(t.names, nameKey(t.scope(old), old.ObjectName()))
	key := nameKey(t.scope(obj), obj.ObjectName())
	if other, taken := t.names[key]; taken && other != id {
		panic("memory: duplicate name " + obj.ObjectName())
	}
	t.byID[id] = obj
	t.names[key] = id
}

// remove deletes an object by id.  It does nothing if id is absent.
func (t *table[T]) remove(id string) {
	old, ok := t.byID[id]
	if !ok {
		return
	}
	delete(t.byID, id)
	delete(t.names, nameKey(t.scope(old), old.ObjectName()))
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i:i], t.order[i+1:]...)
			break
		}
	}
}

// list returns the objects matching filter in insertion order.  A
// nil filter matches everything.
func (t *table[T]) list(filter func(T) bool) []T {
	var result []T
	for _, id := range t.order {
		obj := t.byID[id]
		if filter == nil || filter(obj) {
			result = append(result, obj)
		}
	}
	return result
}

// len returns the number of objects.
func (t *table[T]) len() int {
	return len(t.byID)
}
