// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"context"

	"github.com/diffeo/go-geocatalog/catalog"
)

// state is one complete version of the catalog.  The committed state
// is only ever replaced, never modified; a transaction works on a
// clone and swaps it in on commit.
type state struct {
	workspaces *table[*catalog.Workspace]
	namespaces *table[*catalog.Namespace]
	stores     *table[*catalog.Store]
	resources  *table[*catalog.Resource]
	layers     *table[*catalog.Layer]
	groups     *table[*catalog.LayerGroup]
	styles     *table[*catalog.Style]

	// defaultWorkspace is the ID of the default workspace, or ""
	// if there are no workspaces.
	defaultWorkspace string

	// defaultStores maps workspace IDs to the ID of their default
	// data store.
	defaultStores map[string]string
}

func refScope(r *catalog.Ref) string {
	if r == nil {
		return ""
	}
	return r.ID
}

func newState() *state {
	return &state{
		workspaces: newTable(func(*catalog.Workspace) string { return "" }),
		namespaces: newTable(func(*catalog.Namespace) string { return "" }),
		stores:     newTable(func(st *catalog.Store) string { return st.Workspace.ID }),
		// Resource names are unique per workspace, tracked by
		// the workspace's namespace.
		resources: newTable(func(r *catalog.Resource) string { return r.Namespace.ID }),
		// Layers are one per resource.
		layers:        newTable(func(l *catalog.Layer) string { return l.Resource.ID }),
		groups:        newTable(func(lg *catalog.LayerGroup) string { return refScope(lg.Workspace) }),
		styles:        newTable(func(st *catalog.Style) string { return refScope(st.Workspace) }),
		defaultStores: make(map[string]string),
	}
}

func (s *state) clone() *state {
	c := &state{
		workspaces:       s.workspaces.clone(),
		namespaces:       s.namespaces.clone(),
		stores:           s.stores.clone(),
		resources:        s.resources.clone(),
		layers:           s.layers.clone(),
		groups:           s.groups.clone(),
		styles:           s.styles.clone(),
		defaultWorkspace: s.defaultWorkspace,
		defaultStores:    make(map[string]string, len(s.defaultStores)),
	}
	for k, v := range s.defaultStores {
		c.defaultStores[k] = v
	}
	return c
}

// object returns any object by kind and ID.
func (s *state) object(kind catalog.Kind, id string) (catalog.Object, bool) {
	var (
		obj catalog.Object
		ok  bool
	)
	switch kind {
	case catalog.KindWorkspace:
		obj, ok = s.workspaces.get(id)
	case catalog.KindNamespace:
		obj, ok = s.namespaces.get(id)
	case catalog.KindStore:
		obj, ok = s.stores.get(id)
	case catalog.KindResource:
		obj, ok = s.resources.get(id)
	case catalog.KindLayer:
		obj, ok = s.layers.get(id)
	case catalog.KindLayerGroup:
		obj, ok = s.groups.get(id)
	case catalog.KindStyle:
		obj, ok = s.styles.get(id)
	}
	return obj, ok
}

// putObject adds or replaces any object.
func (s *state) putObject(obj catalog.Object) {
	switch o := obj.(type) {
	case *catalog.Workspace:
		s.workspaces.put(o)
	case *catalog.Namespace:
		s.namespaces.put(o)
	case *catalog.Store:
		s.stores.put(o)
	case *catalog.Resource:
		s.resources.put(o)
	case *catalog.Layer:
		s.layers.put(o)
	case *catalog.LayerGroup:
		s.groups.put(o)
	case *catalog.Style:
		s.styles.put(o)
	}
}

// removeObject removes any object by kind and ID.
func (s *state) removeObject(kind catalog.Kind, id string) {
	switch kind {
	case catalog.KindWorkspace:
		s.workspaces.remove(id)
	case catalog.KindNamespace:
		s.namespaces.remove(id)
	case catalog.KindStore:
		s.stores.remove(id)
	case catalog.KindResource:
		s.resources.remove(id)
	case catalog.KindLayer:
		s.layers.remove(id)
	case catalog.KindLayerGroup:
		s.groups.remove(id)
	case catalog.KindStyle:
		s.styles.remove(id)
	}
}

// lookup helpers.  Each returns a NotFound error naming what was
// missing; ctx only controls whether that error is quiet.

func (s *state) workspace(ctx context.Context, name string) (*catalog.Workspace, error) {
	if name == defaultName {
		if ws, ok := s.workspaces.get(s.defaultWorkspace); ok {
			return ws, nil
		}
		return nil, catalog.NotFoundf(ctx, "no default workspace")
	}
	if ws, ok := s.workspaces.byName("", name); ok {
		return ws, nil
	}
	return nil, catalog.NotFoundf(ctx, "no such workspace %q", name)
}

func (s *state) workspaceByID(id string) *catalog.Workspace {
	ws, _ := s.workspaces.get(id)
	return ws
}

// namespaceOf returns the namespace paired with a workspace.
func (s *state) namespaceOf(ws *catalog.Workspace) *catalog.Namespace {
	ns, _ := s.namespaces.byName("", ws.Name)
	return ns
}

func (s *state) namespace(ctx context.Context, prefix string) (*catalog.Namespace, error) {
	if prefix == defaultName {
		if ws, ok := s.workspaces.get(s.defaultWorkspace); ok {
			if ns := s.namespaceOf(ws); ns != nil {
				return ns, nil
			}
		}
		return nil, catalog.NotFoundf(ctx, "no default namespace")
	}
	if ns, ok := s.namespaces.byName("", prefix); ok {
		return ns, nil
	}
	return nil, catalog.NotFoundf(ctx, "no such namespace %q", prefix)
}

func (s *state) store(ctx context.Context, ws *catalog.Workspace, kind catalog.StoreKind, name string) (*catalog.Store, error) {
	st, ok := s.stores.byName(ws.ID, name)
	if !ok || (kind != "" && st.Kind != kind) {
		return nil, catalog.NotFoundf(ctx, "no such store %q in workspace %q", name, ws.Name)
	}
	return st, nil
}

// resource finds a resource in a workspace, optionally insisting it
// belongs to a specific store.
func (s *state) resource(ctx context.Context, ws *catalog.Workspace, st *catalog.Store, name string) (*catalog.Resource, error) {
	ns := s.namespaceOf(ws)
	if ns != nil {
		if r, ok := s.resources.byName(ns.ID, name); ok {
			if st == nil || r.Store.ID == st.ID {
				return r, nil
			}
		}
	}
	if st != nil {
		return nil, catalog.NotFoundf(ctx, "no such resource %q in store %q", name, st.Name)
	}
	return nil, catalog.NotFoundf(ctx, "no such resource %q in workspace %q", name, ws.Name)
}

// layerOf returns the layer publishing a resource, if any.
func (s *state) layerOf(r *catalog.Resource) *catalog.Layer {
	l, _ := s.layers.byName(r.ID, r.Name)
	return l
}

func (s *state) layer(ctx context.Context, ws *catalog.Workspace, name string) (*catalog.Layer, error) {
	if ns := s.namespaceOf(ws); ns != nil {
		if r, ok := s.resources.byName(ns.ID, name); ok {
			if l := s.layerOf(r); l != nil {
				return l, nil
			}
		}
	}
	return nil, catalog.NotFoundf(ctx, "no such layer %q in workspace %q", name, ws.Name)
}

// anyLayer finds a layer by unqualified name, trying the default
// workspace first and then every workspace in order.
func (s *state) anyLayer(ctx context.Context, name string) (*catalog.Layer, error) {
	candidates := []*catalog.Workspace{s.workspaceByID(s.defaultWorkspace)}
	candidates = append(candidates, s.workspaces.list(nil)...)
	for _, ws := range candidates {
		if ws == nil {
			continue
		}
		if l, err := s.layer(ctx, ws, name); err == nil {
			return l, nil
		}
	}
	return nil, catalog.NotFoundf(ctx, "no such layer %q", name)
}

func wsID(ws *catalog.Workspace) string {
	if ws == nil {
		return ""
	}
	return ws.ID
}

func wsName(ws *catalog.Workspace) string {
	if ws == nil {
		return ""
	}
	return ws.Name
}

func (s *state) group(ctx context.Context, ws *catalog.Workspace, name string) (*catalog.LayerGroup, error) {
	if lg, ok := s.groups.byName(wsID(ws), name); ok {
		return lg, nil
	}
	if ws == nil {
		return nil, catalog.NotFoundf(ctx, "no such global layer group %q", name)
	}
	return nil, catalog.NotFoundf(ctx, "no such layer group %q in workspace %q", name, ws.Name)
}

// style finds a style in exactly one scope: a nil workspace means
// global styles only.
func (s *state) style(ctx context.Context, ws *catalog.Workspace, name string) (*catalog.Style, error) {
	if st, ok := s.styles.byName(wsID(ws), name); ok {
		return st, nil
	}
	if ws == nil {
		return nil, catalog.NotFoundf(ctx, "no such global style %q", name)
	}
	return nil, catalog.NotFoundf(ctx, "no such style %q in workspace %q", name, ws.Name)
}

// storeWorkspace returns the workspace owning a store.
func (s *state) storeWorkspace(st *catalog.Store) *catalog.Workspace {
	return s.workspaceByID(st.Workspace.ID)
}

// resourceStore returns the store owning a resource.
func (s *state) resourceStore(r *catalog.Resource) *catalog.Store {
	st, _ := s.stores.get(r.Store.ID)
	return st
}

// resourceWorkspace returns the workspace owning a resource.
func (s *state) resourceWorkspace(r *catalog.Resource) *catalog.Workspace {
	if st := s.resourceStore(r); st != nil {
		return s.storeWorkspace(st)
	}
	return nil
}

// layerResource returns the resource a layer publishes.
func (s *state) layerResource(l *catalog.Layer) *catalog.Resource {
	r, _ := s.resources.get(l.Resource.ID)
	return r
}

// layerWorkspace returns the workspace a layer lives in.
func (s *state) layerWorkspace(l *catalog.Layer) *catalog.Workspace {
	if r := s.layerResource(l); r != nil {
		return s.resourceWorkspace(r)
	}
	return nil
}

// workspaceOf returns the workspace any object belongs to, or nil for
// global objects.
func (s *state) workspaceOf(obj catalog.Object) *catalog.Workspace {
	switch o := obj.(type) {
	case *catalog.Workspace:
		return o
	case *catalog.Namespace:
		return s.workspaceByID(o.Workspace.ID)
	case *catalog.Store:
		return s.storeWorkspace(o)
	case *catalog.Resource:
		return s.resourceWorkspace(o)
	case *catalog.Layer:
		return s.layerWorkspace(o)
	case *catalog.LayerGroup:
		return s.workspaceByID(refScope(o.Workspace))
	case *catalog.Style:
		return s.workspaceByID(refScope(o.Workspace))
	}
	return nil
}

// defaults returns the default slots in persisted form.
func (s *state) defaults() map[string]string {
	d := make(map[string]string, len(s.defaultStores)+1)
	if s.defaultWorkspace != "" {
		d["workspace"] = s.defaultWorkspace
	}
	for ws, st := range s.defaultStores {
		d["store:"+ws] = st
	}
	return d
}
