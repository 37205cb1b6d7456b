// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"context"
	"math"
	"strings"

	"github.com/diffeo/go-geocatalog/catalog"
)

// groupScope resolves the workspace argument of a layer group or
// style call.  The empty string is the global scope, returned as nil.
func (s *state) groupScope(ctx context.Context, workspace string) (*catalog.Workspace, error) {
	if workspace == "" {
		return nil, nil
	}
	return s.workspace(ctx, workspace)
}

// qualified splits a "ws:name" reference name if the workspace was
// not given separately.
func qualified(ref catalog.Ref) catalog.Ref {
	if ref.Workspace == "" {
		if i := strings.IndexByte(ref.Name, ':'); i >= 0 {
			ref.Workspace, ref.Name = ref.Name[:i], ref.Name[i+1:]
		}
	}
	return ref
}

// visible reports whether an object in workspace owner can be used
// by an object in scope.  Global objects can use anything; workspace
// objects only their own workspace's things and global ones.
func visible(owner, scope *catalog.Workspace) bool {
	return scope == nil || owner == nil || owner.ID == scope.ID
}

// resolveLayer finds the layer a group entry refers to.
func (s *state) resolveLayer(ref catalog.Ref, scope *catalog.Workspace) (*catalog.Layer, error) {
	var l *catalog.Layer
	ref = qualified(ref)
	switch {
	case ref.ID != "":
		l, _ = s.layers.get(ref.ID)
	case ref.Workspace != "":
		if ws, ok := s.workspaces.byName("", ref.Workspace); ok {
			l, _ = s.layer(context.Background(), ws, ref.Name)
		}
	case scope != nil:
		l, _ = s.layer(context.Background(), scope, ref.Name)
	default:
		l, _ = s.anyLayer(context.Background(), ref.Name)
	}
	if l == nil {
		return nil, catalog.Errorf(catalog.ValidationFailed, "no such layer %s", ref)
	}
	if !visible(s.layerWorkspace(l), scope) {
		return nil, catalog.Errorf(catalog.ValidationFailed, "layer %s is not in workspace %q", ref, wsName(scope))
	}
	return l, nil
}

// resolveGroup finds the layer group a group entry refers to.  An
// unqualified name prefers the entry's own workspace.
func (s *state) resolveGroup(ref catalog.Ref, scope *catalog.Workspace) (*catalog.LayerGroup, error) {
	var lg *catalog.LayerGroup
	ref = qualified(ref)
	switch {
	case ref.ID != "":
		lg, _ = s.groups.get(ref.ID)
	case ref.Workspace != "":
		if ws, ok := s.workspaces.byName("", ref.Workspace); ok {
			lg, _ = s.groups.byName(ws.ID, ref.Name)
		}
	default:
		if scope != nil {
			lg, _ = s.groups.byName(scope.ID, ref.Name)
		}
		if lg == nil {
			lg, _ = s.groups.byName("", ref.Name)
		}
	}
	if lg == nil {
		return nil, catalog.Errorf(catalog.ValidationFailed, "no such layer group %s", ref)
	}
	if !visible(s.workspaceByID(refScope(lg.Workspace)), scope) {
		return nil, catalog.Errorf(catalog.ValidationFailed, "layer group %s is not visible in workspace %q", ref, wsName(scope))
	}
	return lg, nil
}

// resolveEntries turns input group entries into stored ID references.
// An entry with no type is a layer if one matches, else a group.
func (s *state) resolveEntries(in []catalog.PublishedRef, scope *catalog.Workspace) ([]catalog.PublishedRef, error) {
	result := make([]catalog.PublishedRef, 0, len(in))
	for _, p := range in {
		typ := p.Type
		if typ == "" {
			typ = catalog.PublishedLayer
			if _, err := s.resolveLayer(p.Ref, scope); err != nil {
				typ = catalog.PublishedLayerGroup
			}
		}
		switch typ {
		case catalog.PublishedLayer:
			l, err := s.resolveLayer(p.Ref, scope)
			if err != nil {
				return nil, err
			}
			result = append(result, catalog.PublishedRef{Type: typ, Ref: catalog.Ref{ID: l.ID}})
		case catalog.PublishedLayerGroup:
			lg, err := s.resolveGroup(p.Ref, scope)
			if err != nil {
				return nil, err
			}
			result = append(result, catalog.PublishedRef{Type: typ, Ref: catalog.Ref{ID: lg.ID}})
		case catalog.PublishedStyleGroup:
			result = append(result, catalog.PublishedRef{Type: typ})
		default:
			return nil, catalog.Errorf(catalog.ValidationFailed, "invalid layer group entry type %q", p.Type)
		}
	}
	return result, nil
}

// resolveGroupStyles turns input group styles into stored ID
// references.  Empty references mean the entry's default style.
func (s *state) resolveGroupStyles(in []*catalog.Ref, scope *catalog.Workspace) ([]*catalog.Ref, error) {
	result := make([]*catalog.Ref, len(in))
	for i, ref := range in {
		if ref == nil || ref.IsZero() {
			continue
		}
		st, err := s.resolveStyle(*ref, scope)
		if err != nil {
			return nil, err
		}
		result[i] = &catalog.Ref{ID: st.ID}
	}
	return result, nil
}

// setRoot applies input root layer and root layer style references.
// A non-nil empty reference clears the field.
func (s *state) setRoot(lg *catalog.LayerGroup, root, rootStyle *catalog.Ref, scope *catalog.Workspace) error {
	if root != nil {
		lg.RootLayer = nil
		if !root.IsZero() {
			l, err := s.resolveLayer(*root, scope)
			if err != nil {
				return err
			}
			lg.RootLayer = &catalog.Ref{ID: l.ID}
		}
	}
	if rootStyle != nil {
		lg.RootLayerStyle = nil
		if !rootStyle.IsZero() {
			st, err := s.resolveStyle(*rootStyle, scope)
			if err != nil {
				return err
			}
			lg.RootLayerStyle = &catalog.Ref{ID: st.ID}
		}
	}
	return nil
}

// checkGroup checks the structure of a resolved layer group, filling
// in the mode and an all-default style list if they were omitted.
func (s *state) checkGroup(lg *catalog.LayerGroup) error {
	if lg.Mode == "" {
		lg.Mode = catalog.ModeSingle
	}
	if !lg.Mode.Valid() {
		return catalog.Errorf(catalog.ValidationFailed, "invalid layer group mode %q", lg.Mode)
	}
	if len(lg.Layers) == 0 {
		return catalog.Errorf(catalog.ValidationFailed, "layer group %q has no layers", lg.Name)
	}
	if len(lg.Styles) == 0 {
		lg.Styles = make([]*catalog.Ref, len(lg.Layers))
	}
	if len(lg.Styles) != len(lg.Layers) {
		return catalog.Errorf(catalog.ValidationFailed, "layer group %q has %d layers but %d styles",
			lg.Name, len(lg.Layers), len(lg.Styles))
	}
	for i, p := range lg.Layers {
		switch p.Type {
		case catalog.PublishedStyleGroup:
			if lg.Styles[i] == nil {
				return catalog.Errorf(catalog.ValidationFailed, "style group entry %d of layer group %q needs a style", i, lg.Name)
			}
		case catalog.PublishedLayerGroup:
			if p.ID == lg.ID || (lg.ID != "" && s.groupContains(p.ID, lg.ID)) {
				return catalog.Errorf(catalog.ValidationFailed, "layer group %q would contain itself", lg.Name)
			}
		}
	}
	if lg.Mode == catalog.ModeEO {
		if lg.RootLayer == nil || lg.RootLayerStyle == nil {
			return catalog.Errorf(catalog.ValidationFailed, "EO layer group %q needs a root layer and root layer style", lg.Name)
		}
	} else if lg.RootLayer != nil || lg.RootLayerStyle != nil {
		return catalog.Errorf(catalog.ValidationFailed, "only EO layer groups have a root layer")
	}
	return nil
}

// groupBounds is the union of the lat/lon bounds of a group's
// entries, or nil if none of them has any.
func (s *state) groupBounds(lg *catalog.LayerGroup) *catalog.BBox {
	var boxes []*catalog.BBox
	for _, p := range lg.Layers {
		switch p.Type {
		case catalog.PublishedLayer:
			if l, ok := s.layers.get(p.ID); ok {
				if r := s.layerResource(l); r != nil && r.LatLonBBox != nil {
					boxes = append(boxes, r.LatLonBBox)
				}
			}
		case catalog.PublishedLayerGroup:
			if inner, ok := s.groups.get(p.ID); ok && inner.Bounds != nil {
				boxes = append(boxes, inner.Bounds)
			}
		}
	}
	if len(boxes) == 0 {
		return nil
	}
	u := &catalog.BBox{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
		CRS: "EPSG:4326",
	}
	for _, b := range boxes {
		u.MinX = math.Min(u.MinX, b.MinX)
		u.MinY = math.Min(u.MinY, b.MinY)
		u.MaxX = math.Max(u.MaxX, b.MaxX)
		u.MaxY = math.Max(u.MaxY, b.MaxY)
	}
	return u
}

// LayerGroups lists the layer groups in one scope.
func (c *Catalog) LayerGroups(ctx context.Context, workspace string) ([]*catalog.LayerGroup, error) {
	var result []*catalog.LayerGroup
	err := c.read(ctx, func(ctx context.Context, s *state) error {
		ws, err := s.groupScope(ctx, workspace)
		if err != nil {
			return err
		}
		for _, lg := range s.groups.list(func(lg *catalog.LayerGroup) bool {
			return refScope(lg.Workspace) == wsID(ws)
		}) {
			result = append(result, s.fillGroup(lg))
		}
		return nil
	})
	return result, err
}

// LayerGroup retrieves a layer group.
func (c *Catalog) LayerGroup(ctx context.Context, workspace, name string) (*catalog.LayerGroup, error) {
	var result *catalog.LayerGroup
	err := c.read(ctx, func(ctx context.Context, s *state) error {
		ws, err := s.groupScope(ctx, workspace)
		if err != nil {
			return err
		}
		lg, err := s.group(ctx, ws, name)
		if err != nil {
			return err
		}
		result = s.fillGroup(lg)
		return nil
	})
	return result, err
}

// CreateLayerGroup adds a layer group.
func (c *Catalog) CreateLayerGroup(ctx context.Context, workspace string, in *catalog.LayerGroup) (*catalog.LayerGroup, error) {
	var result *catalog.LayerGroup
	err := c.write(ctx, "CreateLayerGroup", func(ctx context.Context, t *tx) error {
		ws, err := t.s.groupScope(ctx, workspace)
		if err != nil {
			return err
		}
		if err := sameWorkspace("layer group", in.Workspace, ws); err != nil {
			return err
		}
		if err := checkNewName(catalog.KindLayerGroup, in.Name); err != nil {
			return err
		}
		if err := t.s.checkGroupName(ws, in.Name, ""); err != nil {
			return err
		}
		lg := in.Clone()
		lg.Info = catalog.Info{Metadata: lg.Metadata}
		lg.Workspace = nil
		if ws != nil {
			lg.Workspace = &catalog.Ref{ID: ws.ID}
		}
		if lg.Layers, err = t.s.resolveEntries(in.Layers, ws); err != nil {
			return err
		}
		if lg.Styles, err = t.s.resolveGroupStyles(in.Styles, ws); err != nil {
			return err
		}
		lg.RootLayer, lg.RootLayerStyle = nil, nil
		if err := t.s.setRoot(lg, in.RootLayer, in.RootLayerStyle, ws); err != nil {
			return err
		}
		if err := t.s.checkGroup(lg); err != nil {
			return err
		}
		if lg.Bounds.IsEmpty() {
			lg.Bounds = t.s.groupBounds(lg)
		}
		t.create(lg)
		result = t.s.fillGroup(lg)
		return nil
	})
	return result, err
}

// UpdateLayerGroup applies a partial update to a layer group.  If the
// entries change and no bounds are given, the bounds are computed
// again.
func (c *Catalog) UpdateLayerGroup(ctx context.Context, workspace, name string, patch catalog.LayerGroupPatch) (*catalog.LayerGroup, error) {
	var result *catalog.LayerGroup
	err := c.write(ctx, "UpdateLayerGroup", func(ctx context.Context, t *tx) error {
		ws, err := t.s.groupScope(ctx, workspace)
		if err != nil {
			return err
		}
		old, err := t.s.group(ctx, ws, name)
		if err != nil {
			return err
		}
		if err := sameWorkspace("layer group", patch.Workspace, ws); err != nil {
			return err
		}
		lg := old.Clone()
		if patch.Name != nil && *patch.Name != old.Name {
			if err := checkRename(catalog.KindLayerGroup, *patch.Name); err != nil {
				return err
			}
			if err := t.s.checkGroupName(ws, *patch.Name, old.ID); err != nil {
				return err
			}
			lg.Name = *patch.Name
		}
		patch.Apply(lg)
		if patch.Layers != nil {
			if lg.Layers, err = t.s.resolveEntries(*patch.Layers, ws); err != nil {
				return err
			}
		}
		if patch.Styles != nil {
			if lg.Styles, err = t.s.resolveGroupStyles(*patch.Styles, ws); err != nil {
				return err
			}
		}
		if err := t.s.setRoot(lg, patch.RootLayer, patch.RootLayerStyle, ws); err != nil {
			return err
		}
		if err := t.s.checkGroup(lg); err != nil {
			return err
		}
		if lg.Bounds == nil || (patch.Layers != nil && patch.Bounds == nil) {
			lg.Bounds = t.s.groupBounds(lg)
		}
		t.update(lg)
		result = t.s.fillGroup(lg)
		return nil
	})
	return result, err
}

// DeleteLayerGroup removes a layer group.
func (c *Catalog) DeleteLayerGroup(ctx context.Context, workspace, name string, opts catalog.DeleteOptions) error {
	return c.write(ctx, "DeleteLayerGroup", func(ctx context.Context, t *tx) error {
		ws, err := t.s.groupScope(ctx, workspace)
		if err != nil {
			return err
		}
		lg, err := t.s.group(ctx, ws, name)
		if err != nil {
			return err
		}
		return t.remove(ctx, lg, opts)
	})
}
