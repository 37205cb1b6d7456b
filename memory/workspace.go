// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"context"

	"github.com/diffeo/go-geocatalog/catalog"
)

// Workspaces returns all workspaces in creation order.
func (c *Catalog) Workspaces(ctx context.Context) ([]*catalog.Workspace, error) {
	var result []*catalog.Workspace
	err := c.read(ctx, func(ctx context.Context, s *state) error {
		for _, ws := range s.workspaces.list(nil) {
			result = append(result, s.fillWorkspace(ws))
		}
		return nil
	})
	return result, err
}

// Workspace retrieves a workspace by name.
func (c *Catalog) Workspace(ctx context.Context, name string) (*catalog.Workspace, error) {
	var result *catalog.Workspace
	err := c.read(ctx, func(ctx context.Context, s *state) error {
		ws, err := s.workspace(ctx, name)
		if err == nil {
			result = s.fillWorkspace(ws)
		}
		return err
	})
	return result, err
}

// CreateWorkspace creates a workspace and its namespace.
func (c *Catalog) CreateWorkspace(ctx context.Context, in *catalog.Workspace) (*catalog.Workspace, error) {
	var result *catalog.Workspace
	err := c.write(ctx, "CreateWorkspace", func(ctx context.Context, t *tx) error {
		ws, err := t.createWorkspace(in.Name, in.Isolated, in.Metadata, "")
		if err == nil {
			result = t.s.fillWorkspace(ws)
		}
		return err
	})
	return result, err
}

// createWorkspace creates a workspace and namespace pair.  An empty
// uri means the default for the name.
func (t *tx) createWorkspace(name string, isolated bool, metadata map[string][]string, uri string) (*catalog.Workspace, error) {
	if err := checkNewName(catalog.KindWorkspace, name); err != nil {
		return nil, err
	}
	if err := t.s.checkWorkspaceName(name, ""); err != nil {
		return nil, err
	}
	if uri == "" {
		uri = t.c.uriPrefix + name
	}
	if err := t.s.checkNamespaceURI(uri, isolated, ""); err != nil {
		return nil, err
	}
	ws := (&catalog.Workspace{Name: name, Isolated: isolated, Info: catalog.Info{Metadata: metadata}}).Clone()
	t.create(ws)
	t.create(&catalog.Namespace{
		Prefix:    name,
		URI:       uri,
		Isolated:  isolated,
		Workspace: catalog.Ref{ID: ws.ID},
	})
	if t.s.defaultWorkspace == "" {
		t.s.defaultWorkspace = ws.ID
	}
	return ws, nil
}

// UpdateWorkspace applies a partial update to a workspace.
func (c *Catalog) UpdateWorkspace(ctx context.Context, name string, patch catalog.WorkspacePatch) (*catalog.Workspace, error) {
	var result *catalog.Workspace
	err := c.write(ctx, "UpdateWorkspace", func(ctx context.Context, t *tx) error {
		old, err := t.s.workspace(ctx, name)
		if err != nil {
			return err
		}
		ws, ns, err := t.updateWorkspace(old, patch.Name, patch.Isolated, nil)
		if err != nil {
			return err
		}
		patch.Apply(ws)
		t.update(ws)
		if ns != nil {
			t.update(ns)
		}
		result = t.s.fillWorkspace(ws)
		return nil
	})
	return result, err
}

// updateWorkspace works out the changes a workspace and its namespace
// must make together.  It returns changed copies of both, or a nil
// namespace if the namespace is unchanged; the caller stores them.
func (t *tx) updateWorkspace(old *catalog.Workspace, name *string, isolated *bool, uri *string) (*catalog.Workspace, *catalog.Namespace, error) {
	ws := old.Clone()
	var ns *catalog.Namespace
	if nsOld := t.s.namespaceOf(old); nsOld != nil {
		ns = nsOld.Clone()
	}
	changedNS := false
	if name != nil && *name != old.Name {
		if err := checkRename(catalog.KindWorkspace, *name); err != nil {
			return nil, nil, err
		}
		if err := t.s.checkWorkspaceName(*name, old.ID); err != nil {
			return nil, nil, err
		}
		ws.Name = *name
		if ns != nil {
			ns.Prefix = *name
			changedNS = true
		}
	}
	if isolated != nil {
		ws.Isolated = *isolated
		if ns != nil && ns.Isolated != *isolated {
			ns.Isolated = *isolated
			changedNS = true
		}
	}
	if uri != nil && ns != nil && *uri != ns.URI {
		ns.URI = *uri
		changedNS = true
	}
	if !changedNS {
		return ws, nil, nil
	}
	if err := t.s.checkNamespaceURI(ns.URI, ns.Isolated, ns.ID); err != nil {
		return nil, nil, err
	}
	return ws, ns, nil
}

// DeleteWorkspace removes a workspace and its namespace.
func (c *Catalog) DeleteWorkspace(ctx context.Context, name string, opts catalog.DeleteOptions) error {
	return c.write(ctx, "DeleteWorkspace", func(ctx context.Context, t *tx) error {
		ws, err := t.s.workspace(ctx, name)
		if err != nil {
			return err
		}
		return t.remove(ctx, ws, opts)
	})
}

// SetDefaultWorkspace makes the named workspace the default.
func (c *Catalog) SetDefaultWorkspace(ctx context.Context, name string) error {
	return c.write(ctx, "SetDefaultWorkspace", func(ctx context.Context, t *tx) error {
		ws, err := t.s.workspace(ctx, name)
		if err != nil {
			return err
		}
		if ws.ID == t.s.defaultWorkspace {
			return nil
		}
		old := t.s.workspaceByID(t.s.defaultWorkspace)
		t.s.defaultWorkspace = ws.ID
		if old != nil {
			t.update(old.Clone())
		}
		t.update(ws.Clone())
		return nil
	})
}

// Namespaces returns all namespaces in creation order.
func (c *Catalog) Namespaces(ctx context.Context) ([]*catalog.Namespace, error) {
	var result []*catalog.Namespace
	err := c.read(ctx, func(ctx context.Context, s *state) error {
		for _, ns := range s.namespaces.list(nil) {
			result = append(result, s.fillNamespace(ns))
		}
		return nil
	})
	return result, err
}

// Namespace retrieves a namespace by prefix.
func (c *Catalog) Namespace(ctx context.Context, prefix string) (*catalog.Namespace, error) {
	var result *catalog.Namespace
	err := c.read(ctx, func(ctx context.Context, s *state) error {
		ns, err := s.namespace(ctx, prefix)
		if err == nil {
			result = s.fillNamespace(ns)
		}
		return err
	})
	return result, err
}

// CreateNamespace creates a namespace and its workspace.
func (c *Catalog) CreateNamespace(ctx context.Context, in *catalog.Namespace) (*catalog.Namespace, error) {
	var result *catalog.Namespace
	err := c.write(ctx, "CreateNamespace", func(ctx context.Context, t *tx) error {
		if err := checkNewName(catalog.KindNamespace, in.Prefix); err != nil {
			return err
		}
		ws, err := t.createWorkspace(in.Prefix, in.Isolated, nil, in.URI)
		if err != nil {
			return err
		}
		ns := t.s.namespaceOf(ws).Clone()
		catalog.NamespacePatch{Metadata: &in.Metadata}.Apply(ns)
		t.s.namespaces.put(ns)
		result = t.s.fillNamespace(ns)
		return nil
	})
	return result, err
}

// UpdateNamespace applies a partial update to a namespace.  The
// isolated flag is shared with the workspace.
func (c *Catalog) UpdateNamespace(ctx context.Context, prefix string, patch catalog.NamespacePatch) (*catalog.Namespace, error) {
	var result *catalog.Namespace
	err := c.write(ctx, "UpdateNamespace", func(ctx context.Context, t *tx) error {
		old, err := t.s.namespace(ctx, prefix)
		if err != nil {
			return err
		}
		if patch.Prefix != nil && *patch.Prefix != old.Prefix {
			return catalog.Errorf(catalog.Forbidden, "cannot rename namespace %q; rename its workspace", old.Prefix)
		}
		oldWS := t.s.workspaceByID(old.Workspace.ID)
		if oldWS == nil {
			return catalog.NotFoundf(ctx, "namespace %q has no workspace", old.Prefix)
		}
		var isolated *bool
		if patch.Isolated != nil && *patch.Isolated != oldWS.Isolated {
			isolated = patch.Isolated
		}
		ws, ns, err := t.updateWorkspace(oldWS, nil, isolated, patch.URI)
		if err != nil {
			return err
		}
		if isolated != nil {
			t.update(ws)
		}
		if ns == nil {
			ns = old.Clone()
		}
		patch.Apply(ns)
		t.update(ns)
		result = t.s.fillNamespace(ns)
		return nil
	})
	return result, err
}

// DeleteNamespace removes a namespace and its workspace.
func (c *Catalog) DeleteNamespace(ctx context.Context, prefix string, opts catalog.DeleteOptions) error {
	return c.write(ctx, "DeleteNamespace", func(ctx context.Context, t *tx) error {
		ns, err := t.s.namespace(ctx, prefix)
		if err != nil {
			return err
		}
		ws := t.s.workspaceByID(ns.Workspace.ID)
		if ws == nil {
			t.drop(ns)
			return nil
		}
		return t.remove(ctx, ws, opts)
	})
}
