// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"context"

	"github.com/diffeo/go-geocatalog/catalog"
)

// findLayer finds a layer in a named workspace, or anywhere if
// workspace is empty.
func (s *state) findLayer(ctx context.Context, workspace, name string) (*catalog.Layer, error) {
	if workspace == "" {
		return s.anyLayer(ctx, name)
	}
	ws, err := s.workspace(ctx, workspace)
	if err != nil {
		return nil, err
	}
	return s.layer(ctx, ws, name)
}

// resolveStyle finds the style ref names, as seen from an object in
// workspace scope.  A workspace object may use its own workspace's
// styles and global ones; a global object only global ones.  An
// unqualified name prefers the workspace style.
func (s *state) resolveStyle(ref catalog.Ref, scope *catalog.Workspace) (*catalog.Style, error) {
	ref = qualified(ref)
	if ref.ID != "" {
		st, ok := s.styles.get(ref.ID)
		if !ok {
			return nil, catalog.Errorf(catalog.ValidationFailed, "no style with id %q", ref.ID)
		}
		if st.Workspace != nil && st.Workspace.ID != wsID(scope) {
			return nil, catalog.Errorf(catalog.ValidationFailed, "style %q is not visible here", st.Name)
		}
		return st, nil
	}
	if ref.Workspace != "" {
		if scope == nil || ref.Workspace != scope.Name {
			return nil, catalog.Errorf(catalog.ValidationFailed, "style %s is not visible here", ref)
		}
		if st, ok := s.styles.byName(scope.ID, ref.Name); ok {
			return st, nil
		}
		return nil, catalog.Errorf(catalog.ValidationFailed, "no such style %s", ref)
	}
	if scope != nil {
		if st, ok := s.styles.byName(scope.ID, ref.Name); ok {
			return st, nil
		}
	}
	if st, ok := s.styles.byName("", ref.Name); ok {
		return st, nil
	}
	return nil, catalog.Errorf(catalog.ValidationFailed, "no such style %q", ref.Name)
}

// Layers lists the layers in a workspace, or every layer if
// workspace is empty.
func (c *Catalog) Layers(ctx context.Context, workspace string) ([]*catalog.Layer, error) {
	var result []*catalog.Layer
	err := c.read(ctx, func(ctx context.Context, s *state) error {
		var ws *catalog.Workspace
		if workspace != "" {
			var err error
			if ws, err = s.workspace(ctx, workspace); err != nil {
				return err
			}
		}
		for _, l := range s.layers.list(func(l *catalog.Layer) bool {
			return ws == nil || wsID(s.layerWorkspace(l)) == ws.ID
		}) {
			result = append(result, s.fillLayer(l))
		}
		return nil
	})
	return result, err
}

// Layer retrieves a layer.
func (c *Catalog) Layer(ctx context.Context, workspace, name string) (*catalog.Layer, error) {
	var result *catalog.Layer
	err := c.read(ctx, func(ctx context.Context, s *state) error {
		l, err := s.findLayer(ctx, workspace, name)
		if err != nil {
			return err
		}
		result = s.fillLayer(l)
		return nil
	})
	return result, err
}

// UpdateLayer applies a partial update to a layer.  Renaming a layer
// renames its resource.
func (c *Catalog) UpdateLayer(ctx context.Context, workspace, name string, patch catalog.LayerPatch) (*catalog.Layer, error) {
	var result *catalog.Layer
	err := c.write(ctx, "UpdateLayer", func(ctx context.Context, t *tx) error {
		old, err := t.s.findLayer(ctx, workspace, name)
		if err != nil {
			return err
		}
		r := t.s.layerResource(old)
		ws := t.s.layerWorkspace(old)
		if r == nil || ws == nil {
			return catalog.NotFoundf(ctx, "layer %q has no resource", name)
		}
		l := old.Clone()
		newName := old.Name
		if patch.Name != nil {
			newName = *patch.Name
		}
		if ref := patch.Resource; ref != nil && !ref.IsZero() {
			if (ref.ID != "" && ref.ID != r.ID) ||
				(ref.ID == "" && ref.Name != "" && ref.Name != old.Name && ref.Name != newName) ||
				(ref.Workspace != "" && ref.Workspace != ws.Name) {
				return catalog.Errorf(catalog.Forbidden, "cannot change the resource of layer %q", old.Name)
			}
		}
		if patch.DefaultInterpolation != nil && !patch.DefaultInterpolation.Valid() {
			return catalog.Errorf(catalog.ValidationFailed, "invalid interpolation method %q", *patch.DefaultInterpolation)
		}
		if ref := patch.DefaultStyle; ref != nil {
			if ref.IsZero() {
				l.DefaultStyle = t.builtinStyle(r)
			} else {
				st, err := t.s.resolveStyle(*ref, ws)
				if err != nil {
					return err
				}
				l.DefaultStyle = &catalog.Ref{ID: st.ID}
			}
		}
		if patch.Styles != nil {
			l.Styles = nil
			for _, ref := range *patch.Styles {
				st, err := t.s.resolveStyle(ref, ws)
				if err != nil {
					return err
				}
				l.Styles = append(l.Styles, catalog.Ref{ID: st.ID})
			}
		}
		patch.Apply(l)

		if newName != old.Name {
			if err := checkRename(catalog.KindLayer, newName); err != nil {
				return err
			}
			if err := t.s.checkResourceName(ws, newName, r.ID); err != nil {
				return err
			}
			nr := r.Clone()
			nr.Name = newName
			t.update(nr)
			l.Name = newName
		}
		t.update(l)
		result = t.s.fillLayer(l)
		return nil
	})
	return result, err
}

// DeleteLayer removes a layer, leaving its resource in place.
func (c *Catalog) DeleteLayer(ctx context.Context, workspace, name string, opts catalog.DeleteOptions) error {
	return c.write(ctx, "DeleteLayer", func(ctx context.Context, t *tx) error {
		l, err := t.s.findLayer(ctx, workspace, name)
		if err != nil {
			return err
		}
		return t.remove(ctx, l, opts)
	})
}
