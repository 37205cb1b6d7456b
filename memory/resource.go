// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/diffeo/go-geocatalog/catalog"
)

// findStore resolves an optional store name in a workspace.
func (s *state) findStore(ctx context.Context, ws *catalog.Workspace, name string) (*catalog.Store, error) {
	if name == "" {
		return nil, nil
	}
	return s.store(ctx, ws, "", name)
}

// Resources lists resources in a workspace or store.
func (c *Catalog) Resources(ctx context.Context, workspace, store string, kind catalog.ResourceKind) ([]*catalog.Resource, error) {
	var result []*catalog.Resource
	err := c.read(ctx, func(ctx context.Context, s *state) error {
		ws, err := s.workspace(ctx, workspace)
		if err != nil {
			return err
		}
		st, err := s.findStore(ctx, ws, store)
		if err != nil {
			return err
		}
		ns := s.namespaceOf(ws)
		if ns == nil {
			return nil
		}
		for _, r := range s.resources.list(func(r *catalog.Resource) bool {
			return r.Namespace.ID == ns.ID &&
				(st == nil || r.Store.ID == st.ID) &&
				(kind == "" || r.Kind == kind)
		}) {
			result = append(result, s.fillResource(r))
		}
		return nil
	})
	return result, err
}

// Resource retrieves a resource.  A feature type with no configured
// attributes is returned with the attributes of its data, if they
// can be read.
func (c *Catalog) Resource(ctx context.Context, workspace, store, name string) (*catalog.Resource, error) {
	var result *catalog.Resource
	err := c.read(ctx, func(ctx context.Context, s *state) error {
		ws, err := s.workspace(ctx, workspace)
		if err != nil {
			return err
		}
		st, err := s.findStore(ctx, ws, store)
		if err != nil {
			return err
		}
		r, err := s.resource(ctx, ws, st, name)
		if err != nil {
			return err
		}
		result = s.fillResource(r)
		if len(result.Attributes) == 0 && r.Kind == catalog.FeatureType {
			if desc := c.describe(ctx, s, r); desc != nil {
				result.Attributes = append([]catalog.Attribute(nil), desc.Attributes...)
			}
		}
		return nil
	})
	return result, err
}

// describe returns the cached description of a resource's data, or
// nil if it cannot be read.
func (c *Catalog) describe(ctx context.Context, s *state, r *catalog.Resource) *catalog.Description {
	st := s.resourceStore(r)
	if st == nil {
		return nil
	}
	desc, err := c.descriptions.Describe(ctx, r.ID, st, r.NativeName)
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"kind":      catalog.KindResource,
			"workspace": wsName(s.storeWorkspace(st)),
			"name":      r.Name,
			"err":       err,
		}).Debug("could not describe resource")
		return nil
	}
	return desc
}

// CreateResource adds a resource and publishes a layer for it.
func (c *Catalog) CreateResource(ctx context.Context, workspace, store string, in *catalog.Resource) (*catalog.Resource, error) {
	var result *catalog.Resource
	err := c.write(ctx, "CreateResource", func(ctx context.Context, t *tx) error {
		ws, err := t.s.workspace(ctx, workspace)
		if err != nil {
			return err
		}
		st, err := t.s.findStore(ctx, ws, store)
		if err != nil {
			return err
		}
		if st == nil {
			id := t.s.defaultStores[ws.ID]
			if st, _ = t.s.stores.get(id); st == nil {
				return catalog.NotFoundf(ctx, "workspace %q has no default store", ws.Name)
			}
		}
		ns := t.s.namespaceOf(ws)
		if ns == nil {
			return catalog.NotFoundf(ctx, "workspace %q has no namespace", ws.Name)
		}
		if in.Namespace.Name != "" && in.Namespace.Name != ns.Prefix {
			return catalog.Errorf(catalog.Forbidden, "resource namespace must be %q", ns.Prefix)
		}
		kind := in.Kind
		if kind == "" {
			kind = st.Kind.ResourceKind()
		}
		if kind != st.Kind.ResourceKind() {
			return catalog.Errorf(catalog.ValidationFailed, "%s store %q cannot serve a %s", st.Kind, st.Name, kind)
		}
		if err := checkNewName(catalog.KindResource, in.Name); err != nil {
			return err
		}
		if err := t.s.checkResourceName(ws, in.Name, ""); err != nil {
			return err
		}

		r := in.Clone()
		r.Info = catalog.Info{Metadata: r.Metadata}
		r.Kind = kind
		r.Store = catalog.Ref{ID: st.ID}
		r.Namespace = catalog.Ref{ID: ns.ID}
		if r.NativeName == "" {
			r.NativeName = r.Name
		}
		t.create(r)

		geometry := ""
		if kind == catalog.FeatureType {
			if desc := c.describe(ctx, t.s, r); desc != nil {
				geometry = desc.GeometryType
				fillDerived(r, desc)
			}
		}

		l := &catalog.Layer{
			Name:       r.Name,
			Type:       catalog.LayerType(kind),
			Resource:   catalog.Ref{ID: r.ID},
			Enabled:    true,
			Advertised: true,
			Queryable:  kind == catalog.FeatureType,
		}
		if st, ok := t.s.styles.byName("", builtinStyleName(kind, geometry)); ok {
			l.DefaultStyle = &catalog.Ref{ID: st.ID}
		}
		t.create(l)
		result = t.s.fillResource(r)
		return nil
	})
	return result, err
}

// fillDerived copies fields from a description into a new resource
// wherever the caller left them out.
func fillDerived(r *catalog.Resource, desc *catalog.Description) {
	if r.SRS == "" {
		r.SRS = desc.SRS
	}
	if r.NativeBBox == nil && desc.NativeBBox != nil {
		box := *desc.NativeBBox
		r.NativeBBox = &box
	}
	if r.LatLonBBox == nil && desc.LatLonBBox != nil {
		box := *desc.LatLonBBox
		r.LatLonBBox = &box
	}
}

// UpdateResource applies a partial update to a resource.
func (c *Catalog) UpdateResource(ctx context.Context, workspace, store, name string, patch catalog.ResourcePatch, opts catalog.UpdateOptions) (*catalog.Resource, error) {
	var result *catalog.Resource
	err := c.write(ctx, "UpdateResource", func(ctx context.Context, t *tx) error {
		ws, err := t.s.workspace(ctx, workspace)
		if err != nil {
			return err
		}
		st, err := t.s.findStore(ctx, ws, store)
		if err != nil {
			return err
		}
		old, err := t.s.resource(ctx, ws, st, name)
		if err != nil {
			return err
		}
		r, err := t.updateResource(ctx, ws, old, patch)
		if err != nil {
			return err
		}
		if err := c.recalculate(ctx, t.s, r, opts.Recalculate); err != nil {
			return err
		}
		t.update(r)
		t.renameLayer(r)
		result = t.s.fillResource(r)
		return nil
	})
	return result, err
}

// renameLayer gives a resource's layer the resource's name, if it
// differs.
func (t *tx) renameLayer(r *catalog.Resource) {
	if t.s.layerOf(r) != nil {
		return
	}
	for _, l := range t.s.layers.list(func(l *catalog.Layer) bool { return l.Resource.ID == r.ID }) {
		nl := l.Clone()
		nl.Name = r.Name
		t.update(nl)
	}
}

// updateResource checks and applies a resource patch, returning the
// changed copy for the caller to store with renameLayer.
func (t *tx) updateResource(ctx context.Context, ws *catalog.Workspace, old *catalog.Resource, patch catalog.ResourcePatch) (*catalog.Resource, error) {
	if patch.Kind != nil && *patch.Kind != old.Kind {
		return nil, catalog.Errorf(catalog.Forbidden, "cannot change the kind of resource %q", old.Name)
	}
	if patch.Store != nil && !patch.Store.IsZero() {
		cur := t.s.resourceStore(old)
		if (patch.Store.ID != "" && patch.Store.ID != old.Store.ID) ||
			(patch.Store.ID == "" && cur != nil && patch.Store.Name != "" && patch.Store.Name != cur.Name) {
			return nil, catalog.Errorf(catalog.Forbidden, "cannot move resource %q to another store", old.Name)
		}
		if patch.Store.Workspace != "" && patch.Store.Workspace != ws.Name {
			return nil, catalog.Errorf(catalog.Forbidden, "cannot move resource %q to workspace %q", old.Name, patch.Store.Workspace)
		}
	}
	if patch.Namespace != nil && patch.Namespace.Name != "" && patch.Namespace.Name != ws.Name {
		return nil, catalog.Errorf(catalog.Forbidden, "cannot move resource %q to namespace %q", old.Name, patch.Namespace.Name)
	}
	r := old.Clone()
	if patch.Name != nil && *patch.Name != old.Name {
		if err := checkRename(catalog.KindResource, *patch.Name); err != nil {
			return nil, err
		}
		if err := t.s.checkResourceName(ws, *patch.Name, old.ID); err != nil {
			return nil, err
		}
		r.Name = *patch.Name
	}
	if patch.Attributes != nil && len(old.Attributes) == 0 && old.Kind == catalog.FeatureType {
		// Putting back the described attributes leaves them
		// described.
		if desc := t.c.describe(ctx, t.s, old); desc != nil && sameAttributes(*patch.Attributes, desc.Attributes) {
			patch.Attributes = nil
		}
	}
	nativeName := r.NativeName
	patch.Apply(r)
	if r.NativeName != nativeName {
		t.c.descriptions.Forget(r.ID)
	}
	return r, nil
}

func sameAttributes(a, b []catalog.Attribute) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// recalculate recomputes derived fields from the resource's data.
// Unlike lazy description, an explicit request fails if the data
// cannot be read.
func (c *Catalog) recalculate(ctx context.Context, s *state, r *catalog.Resource, what []catalog.Recalculation) error {
	if len(what) == 0 {
		return nil
	}
	st := s.resourceStore(r)
	if st == nil {
		return catalog.NotFoundf(ctx, "resource %q has no store", r.Name)
	}
	c.descriptions.Forget(r.ID)
	desc, err := c.descriptions.Describe(ctx, r.ID, st, r.NativeName)
	if err != nil {
		return err
	}
	for _, item := range what {
		switch item {
		case catalog.RecalculateNativeBBox:
			r.NativeBBox = nil
			if desc.NativeBBox != nil {
				box := *desc.NativeBBox
				r.NativeBBox = &box
			}
		case catalog.RecalculateLatLonBBox:
			r.LatLonBBox = nil
			if desc.LatLonBBox != nil {
				box := *desc.LatLonBBox
				r.LatLonBBox = &box
			}
		case catalog.RecalculateAttributes:
			r.Attributes = append([]catalog.Attribute(nil), desc.Attributes...)
		}
	}
	return nil
}

// DeleteResource removes a resource.
func (c *Catalog) DeleteResource(ctx context.Context, workspace, store, name string, opts catalog.DeleteOptions) error {
	return c.write(ctx, "DeleteResource", func(ctx context.Context, t *tx) error {
		ws, err := t.s.workspace(ctx, workspace)
		if err != nil {
			return err
		}
		st, err := t.s.findStore(ctx, ws, store)
		if err != nil {
			return err
		}
		r, err := t.s.resource(ctx, ws, st, name)
		if err != nil {
			return err
		}
		return t.remove(ctx, r, opts)
	})
}
