// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/diffeo/go-geocatalog/catalog"
)

func newStyleTable() *table[*catalog.Style] {
	return newTable(func(st *catalog.Style) string { return refScope(st.Workspace) })
}

func testStyle(id, ws, name string) *catalog.Style {
	st := &catalog.Style{Name: name}
	st.ID = id
	if ws != "" {
		st.Workspace = &catalog.Ref{ID: ws}
	}
	return st
}

func TestTableScopes(t *testing.T) {
	tbl := newStyleTable()
	tbl.add(testStyle("1", "", "thick"))
	tbl.add(testStyle("2", "ws", "thick"))

	st, ok := tbl.byName("", "thick")
	if assert.True(t, ok) {
		assert.Equal(t, "1", st.ID)
	}
	st, ok = tbl.byName("ws", "thick")
	if assert.True(t, ok) {
		assert.Equal(t, "2", st.ID)
	}
	_, ok = tbl.byName("other", "thick")
	assert.False(t, ok)

	assert.Panics(t, func() { tbl.add(testStyle("3", "ws", "thick")) })
}

func TestTableRename(t *testing.T) {
	tbl := newStyleTable()
	tbl.add(testStyle("1", "", "a"))
	tbl.add(testStyle("2", "", "b"))
	tbl.put(testStyle("1", "", "c"))

	_, ok := tbl.byName("", "a")
	assert.False(t, ok)
	st, ok := tbl.byName("", "c")
	if assert.True(t, ok) {
		assert.Equal(t, "1", st.ID)
	}
	assert.Panics(t, func() { tbl.put(testStyle("1", "", "b")) })

	var names []string
	for _, st := range tbl.list(nil) {
		names = append(names, st.Name)
	}
	assert.Equal(t, []string{"c", "b"}, names, "rename keeps order")
}

func TestTableCloneIsolated(t *testing.T) {
	tbl := newStyleTable()
	tbl.add(testStyle("1", "", "a"))
	c := tbl.clone()
	c.add(testStyle("2", "", "b"))
	c.remove("1")

	assert.Equal(t, 1, tbl.len())
	_, ok := tbl.get("1")
	assert.True(t, ok)
	_, ok = tbl.byName("", "b")
	assert.False(t, ok)
	assert.Equal(t, 1, c.len())

	c.remove("missing")
	assert.Equal(t, 1, c.len())
}
