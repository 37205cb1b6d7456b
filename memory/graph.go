// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import "github.com/diffeo/go-geocatalog/catalog"

// The reference graph is never stored.  Edges are found by scanning
// the state at the moment they are needed, so a delete always sees
// the graph as of its own transaction.

// node names one object in the reference graph.
type node struct {
	kind catalog.Kind
	id   string
}

func nodeOf(obj catalog.Object) node {
	return node{obj.ObjectKind(), obj.ObjectInfo().ID}
}

// dependents returns the objects that cannot exist without n.  A
// workspace's namespace is not a dependent; the two are one unit.
// Styles have referrers instead of dependents.
func (s *state) dependents(n node) []node {
	var result []node
	add := func(obj catalog.Object) {
		result = append(result, nodeOf(obj))
	}
	switch n.kind {
	case catalog.KindWorkspace:
		for _, st := range s.stores.list(func(st *catalog.Store) bool { return st.Workspace.ID == n.id }) {
			add(st)
		}
		for _, lg := range s.groups.list(func(lg *catalog.LayerGroup) bool { return refScope(lg.Workspace) == n.id }) {
			add(lg)
		}
		for _, st := range s.styles.list(func(st *catalog.Style) bool { return refScope(st.Workspace) == n.id }) {
			add(st)
		}
	case catalog.KindStore:
		for _, r := range s.resources.list(func(r *catalog.Resource) bool { return r.Store.ID == n.id }) {
			add(r)
		}
	case catalog.KindResource:
		for _, l := range s.layers.list(func(l *catalog.Layer) bool { return l.Resource.ID == n.id }) {
			add(l)
		}
	case catalog.KindLayer:
		for _, lg := range s.groups.list(func(lg *catalog.LayerGroup) bool { return groupUses(lg, catalog.PublishedLayer, n.id) }) {
			add(lg)
		}
	case catalog.KindLayerGroup:
		for _, lg := range s.groups.list(func(lg *catalog.LayerGroup) bool { return groupUses(lg, catalog.PublishedLayerGroup, n.id) }) {
			add(lg)
		}
	}
	return result
}

// groupUses reports whether lg contains the published object id.
func groupUses(lg *catalog.LayerGroup, typ catalog.PublishedType, id string) bool {
	for _, p := range lg.Layers {
		if p.Type == typ && p.ID == id {
			return true
		}
	}
	return typ == catalog.PublishedLayer && lg.RootLayer != nil && lg.RootLayer.ID == id
}

// closure returns n and everything transitively depending on it, in
// an order where every object comes after all of its dependents.
// The last element is always n.
func (s *state) closure(n node) []node {
	var (
		order   []node
		visited = make(map[node]bool)
		visit   func(node)
	)
	visit = func(m node) {
		if visited[m] {
			return
		}
		visited[m] = true
		for _, d := range s.dependents(m) {
			visit(d)
		}
		order = append(order, m)
	}
	visit(n)
	return order
}

// styleReferrers returns the layers and layer groups that refer to a
// style.
func (s *state) styleReferrers(id string) ([]*catalog.Layer, []*catalog.LayerGroup) {
	layers := s.layers.list(func(l *catalog.Layer) bool {
		if l.DefaultStyle != nil && l.DefaultStyle.ID == id {
			return true
		}
		for _, st := range l.Styles {
			if st.ID == id {
				return true
			}
		}
		return false
	})
	groups := s.groups.list(func(lg *catalog.LayerGroup) bool {
		if lg.RootLayerStyle != nil && lg.RootLayerStyle.ID == id {
			return true
		}
		for _, st := range lg.Styles {
			if st != nil && st.ID == id {
				return true
			}
		}
		return false
	})
	return layers, groups
}

// groupContains reports whether the group outer contains the group
// inner, at any depth.
func (s *state) groupContains(outer, inner string) bool {
	visited := make(map[string]bool)
	var walk func(id string) bool
	walk = func(id string) bool {
		if id == inner {
			return true
		}
		if visited[id] {
			return false
		}
		visited[id] = true
		lg, ok := s.groups.get(id)
		if !ok {
			return false
		}
		for _, p := range lg.Layers {
			if p.Type == catalog.PublishedLayerGroup && walk(p.ID) {
				return true
			}
		}
		return false
	}
	return walk(outer)
}
