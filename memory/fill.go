// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import "github.com/diffeo/go-geocatalog/catalog"

// This file turns stored objects into the copies handed to callers.
// References are stored by ID; names are filled in here from the
// current state, so a rename is visible everywhere at once.

func (s *state) wsRef(id string) catalog.Ref {
	ref := catalog.Ref{ID: id}
	if ws := s.workspaceByID(id); ws != nil {
		ref.Name = ws.Name
	}
	return ref
}

func (s *state) optWsRef(r *catalog.Ref) *catalog.Ref {
	if r == nil {
		return nil
	}
	ref := s.wsRef(r.ID)
	return &ref
}

func (s *state) styleRef(id string) catalog.Ref {
	ref := catalog.Ref{ID: id}
	if st, ok := s.styles.get(id); ok {
		ref.Name = st.Name
		if st.Workspace != nil {
			ref.Workspace = s.wsRef(st.Workspace.ID).Name
		}
	}
	return ref
}

func (s *state) optStyleRef(r *catalog.Ref) *catalog.Ref {
	if r == nil {
		return nil
	}
	ref := s.styleRef(r.ID)
	return &ref
}

func (s *state) layerRef(id string) catalog.Ref {
	ref := catalog.Ref{ID: id}
	if l, ok := s.layers.get(id); ok {
		ref.Name = l.Name
		ref.Workspace = wsName(s.layerWorkspace(l))
	}
	return ref
}

func (s *state) groupRef(id string) catalog.Ref {
	ref := catalog.Ref{ID: id}
	if lg, ok := s.groups.get(id); ok {
		ref.Name = lg.Name
		if lg.Workspace != nil {
			ref.Workspace = s.wsRef(lg.Workspace.ID).Name
		}
	}
	return ref
}

func (s *state) fillWorkspace(ws *catalog.Workspace) *catalog.Workspace {
	c := ws.Clone()
	c.Default = ws.ID == s.defaultWorkspace
	return c
}

func (s *state) fillNamespace(ns *catalog.Namespace) *catalog.Namespace {
	c := ns.Clone()
	c.Workspace = s.wsRef(ns.Workspace.ID)
	c.Default = ns.Workspace.ID == s.defaultWorkspace
	return c
}

func (s *state) fillStore(st *catalog.Store) *catalog.Store {
	c := st.Clone()
	c.Workspace = s.wsRef(st.Workspace.ID)
	c.Default = s.defaultStores[st.Workspace.ID] == st.ID
	return c
}

func (s *state) fillResource(r *catalog.Resource) *catalog.Resource {
	c := r.Clone()
	c.Store = catalog.Ref{ID: r.Store.ID}
	if st := s.resourceStore(r); st != nil {
		c.Store.Name = st.Name
		c.Store.Workspace = s.wsRef(st.Workspace.ID).Name
	}
	c.Namespace = catalog.Ref{ID: r.Namespace.ID}
	if ns, ok := s.namespaces.get(r.Namespace.ID); ok {
		c.Namespace.Name = ns.Prefix
	}
	return c
}

func (s *state) fillLayer(l *catalog.Layer) *catalog.Layer {
	c := l.Clone()
	c.Resource = catalog.Ref{ID: l.Resource.ID, Name: l.Name}
	c.Resource.Workspace = wsName(s.layerWorkspace(l))
	c.DefaultStyle = s.optStyleRef(l.DefaultStyle)
	for i, st := range l.Styles {
		c.Styles[i] = s.styleRef(st.ID)
	}
	return c
}

func (s *state) publishedRef(p catalog.PublishedRef) catalog.PublishedRef {
	switch p.Type {
	case catalog.PublishedLayer:
		return catalog.PublishedRef{Type: p.Type, Ref: s.layerRef(p.ID)}
	case catalog.PublishedLayerGroup:
		return catalog.PublishedRef{Type: p.Type, Ref: s.groupRef(p.ID)}
	}
	return catalog.PublishedRef{Type: p.Type}
}

func (s *state) fillGroup(lg *catalog.LayerGroup) *catalog.LayerGroup {
	c := lg.Clone()
	c.Workspace = s.optWsRef(lg.Workspace)
	for i, p := range lg.Layers {
		c.Layers[i] = s.publishedRef(p)
	}
	for i, st := range lg.Styles {
		c.Styles[i] = s.optStyleRef(st)
	}
	if lg.RootLayer != nil {
		ref := s.layerRef(lg.RootLayer.ID)
		c.RootLayer = &ref
	}
	c.RootLayerStyle = s.optStyleRef(lg.RootLayerStyle)
	return c
}

func (s *state) fillStyle(st *catalog.Style) *catalog.Style {
	c := st.Clone()
	c.Workspace = s.optWsRef(st.Workspace)
	return c
}

// fill dispatches to the kind-specific fill function.
func (s *state) fill(obj catalog.Object) catalog.Object {
	switch o := obj.(type) {
	case *catalog.Workspace:
		return s.fillWorkspace(o)
	case *catalog.Namespace:
		return s.fillNamespace(o)
	case *catalog.Store:
		return s.fillStore(o)
	case *catalog.Resource:
		return s.fillResource(o)
	case *catalog.Layer:
		return s.fillLayer(o)
	case *catalog.LayerGroup:
		return s.fillGroup(o)
	case *catalog.Style:
		return s.fillStyle(o)
	}
	return catalog.CloneObject(obj)
}
