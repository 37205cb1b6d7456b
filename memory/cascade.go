// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"context"

	"github.com/diffeo/go-geocatalog/blob"
	"github.com/diffeo/go-geocatalog/catalog"
)

// describe names an object for error messages.
func (s *state) describe(n node) string {
	obj, ok := s.object(n.kind, n.id)
	if !ok {
		return string(n.kind)
	}
	name := obj.ObjectName()
	if ws := s.workspaceOf(obj); ws != nil && n.kind != catalog.KindWorkspace {
		name = ws.Name + ":" + name
	}
	return string(n.kind) + " " + name
}

// remove deletes root.  If anything depends on it, this fails with
// Conflict unless opts.Recurse is set, in which case the dependents
// are removed first, each with the same options.
func (t *tx) remove(ctx context.Context, root catalog.Object, opts catalog.DeleteOptions) error {
	plan := t.s.closure(nodeOf(root))
	if len(plan) > 1 && !opts.Recurse {
		return catalog.Errorf(catalog.Conflict, "%s is used by %s",
			t.s.describe(plan[len(plan)-1]), t.s.describe(plan[0]))
	}
	top := nodeOf(root)
	for _, n := range plan {
		obj, ok := t.s.object(n.kind, n.id)
		if !ok {
			// Already removed as a side effect of an earlier
			// step, such as a layer group left empty.
			continue
		}
		if err := t.removeOne(ctx, obj, opts, n != top); err != nil {
			return err
		}
	}
	return nil
}

// removeOne deletes a single object whose dependents are already
// gone.  dependent is set when obj goes because something it belongs
// to is being deleted.
func (t *tx) removeOne(ctx context.Context, obj catalog.Object, opts catalog.DeleteOptions, dependent bool) error {
	switch o := obj.(type) {
	case *catalog.Workspace:
		t.removeWorkspace(o)
	case *catalog.Store:
		return t.removeStore(ctx, o, opts.Purge)
	case *catalog.Resource:
		t.c.descriptions.Forget(o.ID)
		t.drop(o)
	case *catalog.Style:
		return t.removeStyle(ctx, o, opts, dependent)
	default:
		t.drop(obj)
	}
	return nil
}

func (t *tx) removeWorkspace(ws *catalog.Workspace) {
	if ns := t.s.namespaceOf(ws); ns != nil {
		t.drop(ns)
	}
	t.drop(ws)
	delete(t.s.defaultStores, ws.ID)
	if t.s.defaultWorkspace != ws.ID {
		return
	}
	t.s.defaultWorkspace = ""
	if rest := t.s.workspaces.list(nil); len(rest) > 0 {
		t.s.defaultWorkspace = rest[0].ID
		t.update(rest[0].Clone())
	}
}

func (t *tx) removeStore(ctx context.Context, st *catalog.Store, mode catalog.PurgeMode) error {
	keys, err := t.c.purgeKeys(ctx, st, mode)
	if err != nil {
		return err
	}
	for _, key := range keys {
		t.deleteFile(key)
	}
	t.drop(st)
	wsID := st.Workspace.ID
	if t.s.defaultStores[wsID] == st.ID {
		delete(t.s.defaultStores, wsID)
		next := t.s.stores.list(func(other *catalog.Store) bool {
			return other.Workspace.ID == wsID && other.Kind == catalog.DataStore
		})
		if len(next) > 0 {
			t.s.defaultStores[wsID] = next[0].ID
			t.update(next[0].Clone())
		}
	}
	return nil
}

// purgeKeys lists the backing files of st that mode says to delete.
// For a data store the metadata is only its spatial indexes; the
// sidecar files of a coverage store are its metadata.
func (c *Catalog) purgeKeys(ctx context.Context, st *catalog.Store, mode catalog.PurgeMode) ([]string, error) {
	if mode == "" || mode == catalog.PurgeNone {
		return nil, nil
	}
	settings, err := st.Settings()
	if err != nil {
		return nil, catalog.WrapError(catalog.ValidationFailed, err, "store %q", st.Name)
	}
	infos, err := blob.ListLocation(ctx, c.blobs, settings.Location())
	if err != nil {
		return nil, catalog.WrapError(catalog.IOFailure, err, "listing files of store %q", st.Name)
	}
	metadata := blob.IsMetadata
	if st.Kind != catalog.CoverageStore {
		metadata = blob.IsVectorIndex
	}
	var keys []string
	for _, info := range infos {
		if mode == catalog.PurgeAll || metadata(info.Key) {
			keys = append(keys, info.Key)
		}
	}
	return keys, nil
}

// removeStyle deletes a style.  Deleted directly, any purge deletes
// its document; swept up with its workspace, only PurgeAll does.
func (t *tx) removeStyle(ctx context.Context, st *catalog.Style, opts catalog.DeleteOptions, dependent bool) error {
	if st.Builtin {
		return catalog.Errorf(catalog.Forbidden, "cannot delete built-in style %q", st.Name)
	}
	layers, groups := t.s.styleReferrers(st.ID)
	if len(layers)+len(groups) > 0 {
		if !opts.Recurse {
			return catalog.Errorf(catalog.Conflict, "style %q is in use by %d layers and %d layer groups",
				st.Name, len(layers), len(groups))
		}
		if err := t.detachStyle(ctx, st.ID, layers, groups); err != nil {
			return err
		}
	}
	purge := opts.Purge != "" && opts.Purge != catalog.PurgeNone
	if dependent {
		purge = opts.Purge == catalog.PurgeAll
	}
	if purge {
		t.deleteFile(styleKey(st.Workspace, st.Filename))
	}
	t.drop(st)
	return nil
}

// detachStyle switches every referrer away from a style about to be
// deleted.  Layers fall back to their built-in default style; layer
// group entries fall back to the default style of the entry, and
// style group entries, which have nothing to fall back to, are
// dropped.  A layer group left empty is deleted.
func (t *tx) detachStyle(ctx context.Context, id string, layers []*catalog.Layer, groups []*catalog.LayerGroup) error {
	for _, l := range layers {
		cur, ok := t.s.layers.get(l.ID)
		if !ok {
			continue
		}
		c := cur.Clone()
		if c.DefaultStyle != nil && c.DefaultStyle.ID == id {
			c.DefaultStyle = t.builtinStyle(t.s.layerResource(c))
		}
		styles := c.Styles[:0]
		for _, ref := range c.Styles {
			if ref.ID != id {
				styles = append(styles, ref)
			}
		}
		c.Styles = styles
		t.update(c)
	}
	for _, lg := range groups {
		cur, ok := t.s.groups.get(lg.ID)
		if !ok {
			continue
		}
		c := cur.Clone()
		if c.RootLayerStyle != nil && c.RootLayerStyle.ID == id {
			c.RootLayerStyle = nil
			if root, ok := t.s.layers.get(refScope(c.RootLayer)); ok {
				c.RootLayerStyle = root.DefaultStyle
			}
		}
		var (
			entries []catalog.PublishedRef
			styles  []*catalog.Ref
		)
		for i, p := range c.Layers {
			ref := c.Styles[i]
			if ref != nil && ref.ID == id {
				if p.Type == catalog.PublishedStyleGroup {
					continue
				}
				ref = nil
			}
			entries = append(entries, p)
			styles = append(styles, ref)
		}
		if len(entries) == 0 {
			if err := t.remove(ctx, cur, catalog.DeleteOptions{Recurse: true}); err != nil {
				return err
			}
			continue
		}
		c.Layers, c.Styles = entries, styles
		t.update(c)
	}
	return nil
}

// builtinStyle picks the built-in default style for a resource.
func (t *tx) builtinStyle(r *catalog.Resource) *catalog.Ref {
	name := catalog.StyleGeneric
	if r != nil {
		geometry := ""
		if desc := t.c.descriptions.Cached(r.ID); desc != nil {
			geometry = desc.GeometryType
		}
		name = builtinStyleName(r.Kind, geometry)
	}
	if st, ok := t.s.styles.byName("", name); ok {
		return &catalog.Ref{ID: st.ID}
	}
	return nil
}

// builtinStyleName picks a built-in style name by resource kind and
// geometry type.
func builtinStyleName(kind catalog.ResourceKind, geometry string) string {
	if kind == catalog.Coverage {
		return catalog.StyleRaster
	}
	if kind != catalog.FeatureType {
		return catalog.StyleGeneric
	}
	switch geometry {
	case "Point", "MultiPoint":
		return catalog.StylePoint
	case "LineString", "MultiLineString", "LinearRing":
		return catalog.StyleLine
	case "Polygon", "MultiPolygon":
		return catalog.StylePolygon
	}
	return catalog.StyleGeneric
}
