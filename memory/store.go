// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"context"

	"github.com/diffeo/go-geocatalog/catalog"
)

// Stores lists the stores in a workspace.
func (c *Catalog) Stores(ctx context.Context, workspace string, kind catalog.StoreKind) ([]*catalog.Store, error) {
	var result []*catalog.Store
	err := c.read(ctx, func(ctx context.Context, s *state) error {
		ws, err := s.workspace(ctx, workspace)
		if err != nil {
			return err
		}
		for _, st := range s.stores.list(func(st *catalog.Store) bool {
			return st.Workspace.ID == ws.ID && (kind == "" || st.Kind == kind)
		}) {
			result = append(result, s.fillStore(st))
		}
		return nil
	})
	return result, err
}

// Store retrieves a store by name.
func (c *Catalog) Store(ctx context.Context, workspace string, kind catalog.StoreKind, name string) (*catalog.Store, error) {
	var result *catalog.Store
	err := c.read(ctx, func(ctx context.Context, s *state) error {
		ws, err := s.workspace(ctx, workspace)
		if err != nil {
			return err
		}
		st, err := s.store(ctx, ws, kind, name)
		if err == nil {
			result = s.fillStore(st)
		}
		return err
	})
	return result, err
}

// CreateStore adds a store to a workspace.
func (c *Catalog) CreateStore(ctx context.Context, workspace string, in *catalog.Store) (*catalog.Store, error) {
	var result *catalog.Store
	err := c.write(ctx, "CreateStore", func(ctx context.Context, t *tx) error {
		ws, err := t.s.workspace(ctx, workspace)
		if err != nil {
			return err
		}
		if err := sameWorkspace("store", &in.Workspace, ws); err != nil {
			return err
		}
		if !in.Kind.Valid() {
			return catalog.Errorf(catalog.ValidationFailed, "invalid store kind %q", in.Kind)
		}
		if err := checkNewName(catalog.KindStore, in.Name); err != nil {
			return err
		}
		if err := t.s.checkStoreName(ws, in.Name, ""); err != nil {
			return err
		}
		if _, err := catalog.ParseConnection(in.Kind, in.Connection); err != nil {
			return err
		}
		st := in.Clone()
		st.Info = catalog.Info{Metadata: st.Metadata}
		st.Workspace = catalog.Ref{ID: ws.ID}
		st.Default = false
		t.create(st)
		if st.Kind == catalog.DataStore && t.s.defaultStores[ws.ID] == "" {
			t.s.defaultStores[ws.ID] = st.ID
		}
		result = t.s.fillStore(st)
		return nil
	})
	return result, err
}

// UpdateStore applies a partial update to a store.
func (c *Catalog) UpdateStore(ctx context.Context, workspace, name string, patch catalog.StorePatch) (*catalog.Store, error) {
	var result *catalog.Store
	err := c.write(ctx, "UpdateStore", func(ctx context.Context, t *tx) error {
		ws, err := t.s.workspace(ctx, workspace)
		if err != nil {
			return err
		}
		old, err := t.s.store(ctx, ws, "", name)
		if err != nil {
			return err
		}
		if err := sameWorkspace("store "+old.Name, patch.Workspace, ws); err != nil {
			return err
		}
		if patch.Kind != nil && *patch.Kind != old.Kind {
			return catalog.Errorf(catalog.Forbidden, "cannot change the kind of store %q", old.Name)
		}
		st := old.Clone()
		if patch.Name != nil && *patch.Name != old.Name {
			if err := checkRename(catalog.KindStore, *patch.Name); err != nil {
				return err
			}
			if err := t.s.checkStoreName(ws, *patch.Name, old.ID); err != nil {
				return err
			}
			st.Name = *patch.Name
		}
		patch.Apply(st)
		if patch.Connection != nil {
			if _, err := catalog.ParseConnection(st.Kind, st.Connection); err != nil {
				return err
			}
			// The data behind every resource may have moved.
			for _, r := range t.s.resources.list(func(r *catalog.Resource) bool { return r.Store.ID == st.ID }) {
				t.c.descriptions.Forget(r.ID)
			}
		}
		t.update(st)
		result = t.s.fillStore(st)
		return nil
	})
	return result, err
}

// DeleteStore removes a store.
func (c *Catalog) DeleteStore(ctx context.Context, workspace, name string, opts catalog.DeleteOptions) error {
	return c.write(ctx, "DeleteStore", func(ctx context.Context, t *tx) error {
		ws, err := t.s.workspace(ctx, workspace)
		if err != nil {
			return err
		}
		st, err := t.s.store(ctx, ws, "", name)
		if err != nil {
			return err
		}
		return t.remove(ctx, st, opts)
	})
}
