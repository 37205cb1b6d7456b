// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"net/url"
	"strings"

	"github.com/diffeo/go-geocatalog/catalog"
)

// checkNewName validates the name of an object being created.
func checkNewName(kind catalog.Kind, name string) error {
	if name == "" {
		return catalog.Errorf(catalog.ValidationFailed, "%s name is required", kind)
	}
	return checkNameChars(kind, name)
}

// checkRename validates a new name for an existing object.  Emptying
// a name is a structural change, not bad input.
func checkRename(kind catalog.Kind, name string) error {
	if name == "" {
		return catalog.Errorf(catalog.Forbidden, "%s name cannot be empty", kind)
	}
	return checkNameChars(kind, name)
}

// checkNameChars rejects characters used as separators in qualified
// names and REST paths.
func checkNameChars(kind catalog.Kind, name string) error {
	if strings.ContainsAny(name, "/:") {
		return catalog.Errorf(catalog.ValidationFailed, "%s name %q may not contain '/' or ':'", kind, name)
	}
	if (kind == catalog.KindWorkspace || kind == catalog.KindNamespace) && name == defaultName {
		return catalog.Errorf(catalog.ValidationFailed, "%q is a reserved %s name", name, kind)
	}
	return nil
}

// checkWorkspaceName checks that a workspace name (and so a namespace
// prefix) is free, ignoring the workspace self.
func (s *state) checkWorkspaceName(name, self string) error {
	if ws, ok := s.workspaces.byName("", name); ok && ws.ID != self {
		return catalog.Errorf(catalog.DuplicateName, "workspace %q already exists", name)
	}
	if ns, ok := s.namespaces.byName("", name); ok && ns.Workspace.ID != self {
		return catalog.Errorf(catalog.DuplicateName, "namespace %q already exists", name)
	}
	return nil
}

// checkNamespaceURI checks that uri is an absolute URI, and, unless
// the namespace is isolated, that no other non-isolated namespace
// uses it.
func (s *state) checkNamespaceURI(uri string, isolated bool, self string) error {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" {
		return catalog.Errorf(catalog.ValidationFailed, "namespace URI %q is not an absolute URI", uri)
	}
	if isolated {
		return nil
	}
	for _, ns := range s.namespaces.list(nil) {
		if ns.ID != self && !ns.Isolated && ns.URI == uri {
			return catalog.Errorf(catalog.DuplicateName, "namespace URI %q is already used by %q", uri, ns.Prefix)
		}
	}
	return nil
}

// checkStoreName checks that name is free in a workspace.
func (s *state) checkStoreName(ws *catalog.Workspace, name, self string) error {
	if st, ok := s.stores.byName(ws.ID, name); ok && st.ID != self {
		return catalog.Errorf(catalog.DuplicateName, "store %q already exists in workspace %q", name, ws.Name)
	}
	return nil
}

// checkResourceName checks that name is free in a workspace.
// Resource names are unique across all stores of a workspace, since
// they also name the layers.
func (s *state) checkResourceName(ws *catalog.Workspace, name, self string) error {
	ns := s.namespaceOf(ws)
	if ns == nil {
		return nil
	}
	if r, ok := s.resources.byName(ns.ID, name); ok && r.ID != self {
		return catalog.Errorf(catalog.DuplicateName, "resource %q already exists in workspace %q", name, ws.Name)
	}
	return nil
}

func (s *state) checkGroupName(ws *catalog.Workspace, name, self string) error {
	if lg, ok := s.groups.byName(wsID(ws), name); ok && lg.ID != self {
		if ws == nil {
			return catalog.Errorf(catalog.DuplicateName, "global layer group %q already exists", name)
		}
		return catalog.Errorf(catalog.DuplicateName, "layer group %q already exists in workspace %q", name, ws.Name)
	}
	return nil
}

func (s *state) checkStyleName(ws *catalog.Workspace, name, self string) error {
	if st, ok := s.styles.byName(wsID(ws), name); ok && st.ID != self {
		if ws == nil {
			return catalog.Errorf(catalog.DuplicateName, "global style %q already exists", name)
		}
		return catalog.Errorf(catalog.DuplicateName, "style %q already exists in workspace %q", name, ws.Name)
	}
	return nil
}

// checkStyleFilename checks that no other style in the same scope
// uses filename, since they would share a document.
func (s *state) checkStyleFilename(ws *catalog.Workspace, filename, self string) error {
	if filename == "" || strings.ContainsAny(filename, `/\`) || filename == "." || filename == ".." {
		return catalog.Errorf(catalog.ValidationFailed, "invalid style filename %q", filename)
	}
	scope := wsID(ws)
	for _, st := range s.styles.list(func(st *catalog.Style) bool { return refScope(st.Workspace) == scope }) {
		if st.ID != self && st.Filename == filename {
			return catalog.Errorf(catalog.DuplicateName, "style %q already uses file %q", st.Name, filename)
		}
	}
	return nil
}

// sameWorkspace checks a workspace reference supplied in an input
// document against the workspace the request addresses.  An empty
// reference is accepted.  A different one is a move, which is
// Forbidden.
func sameWorkspace(what string, ref *catalog.Ref, ws *catalog.Workspace) error {
	if ref == nil || ref.IsZero() {
		return nil
	}
	if ref.ID != "" {
		if ref.ID == wsID(ws) {
			return nil
		}
	} else if ref.Name == wsName(ws) {
		return nil
	}
	return catalog.Errorf(catalog.Forbidden, "cannot move %s to workspace %q", what, ref.Name)
}
