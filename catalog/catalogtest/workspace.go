// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package catalogtest

import (
	"time"

	"github.com/diffeo/go-geocatalog/catalog"
)

// TestWorkspaceLifecycle creates and deletes a workspace, checking
// that its namespace comes and goes with it.
func (s *Suite) TestWorkspaceLifecycle() {
	ws := s.workspace("foo")
	s.Equal("foo", ws.Name)
	s.NotEmpty(ws.ID)
	s.True(ws.Default, "first workspace is the default")

	got, err := s.Catalog.Workspace(s.ctx(), "foo")
	if s.NoError(err) {
		s.Equal(ws.ID, got.ID)
	}

	ns, err := s.Catalog.Namespace(s.ctx(), "foo")
	if s.NoError(err) {
		s.Equal("foo", ns.Prefix)
		s.Equal("http://foo", ns.URI)
		s.Equal(ws.ID, ns.Workspace.ID)
		s.Equal("foo", ns.Workspace.Name)
	}

	s.NoError(s.Catalog.DeleteWorkspace(s.ctx(), "foo", catalog.DeleteOptions{}))

	_, err = s.Catalog.Workspace(s.ctx(), "foo")
	s.NotFound(err)
	_, err = s.Catalog.Namespace(s.ctx(), "foo")
	s.NotFound(err)

	list, err := s.Catalog.Workspaces(s.ctx())
	if s.NoError(err) {
		s.Empty(list)
	}
}

// TestWorkspaceNames checks name validation and uniqueness.
func (s *Suite) TestWorkspaceNames() {
	s.workspace("foo")

	_, err := s.Catalog.CreateWorkspace(s.ctx(), &catalog.Workspace{Name: "foo"})
	s.Kind(catalog.DuplicateName, err)

	_, err = s.Catalog.CreateWorkspace(s.ctx(), &catalog.Workspace{})
	s.Kind(catalog.ValidationFailed, err)

	_, err = s.Catalog.CreateWorkspace(s.ctx(), &catalog.Workspace{Name: "default"})
	s.Kind(catalog.ValidationFailed, err)

	_, err = s.Catalog.CreateWorkspace(s.ctx(), &catalog.Workspace{Name: "a:b"})
	s.Kind(catalog.ValidationFailed, err)

	empty := ""
	_, err = s.Catalog.UpdateWorkspace(s.ctx(), "foo", catalog.WorkspacePatch{Name: &empty})
	s.Kind(catalog.Forbidden, err)

	list, err := s.Catalog.Workspaces(s.ctx())
	if s.NoError(err) && s.Len(list, 1) {
		s.Equal("foo", list[0].Name)
	}
}

// TestWorkspaceRename checks that renaming a workspace renames its
// namespace, and that the namespace cannot be renamed by itself.
func (s *Suite) TestWorkspaceRename() {
	s.sf("roads")
	name := "sanfrancisco"
	ws, err := s.Catalog.UpdateWorkspace(s.ctx(), "sf", catalog.WorkspacePatch{Name: &name})
	if s.NoError(err) {
		s.Equal(name, ws.Name)
	}

	_, err = s.Catalog.Workspace(s.ctx(), "sf")
	s.NotFound(err)
	ns, err := s.Catalog.Namespace(s.ctx(), name)
	if s.NoError(err) {
		s.Equal(name, ns.Prefix)
	}

	st, err := s.Catalog.Store(s.ctx(), name, "", "sf")
	if s.NoError(err) {
		s.Equal(name, st.Workspace.Name)
	}
	r, err := s.Catalog.Resource(s.ctx(), name, "sf", "roads")
	if s.NoError(err) {
		s.Equal(name, r.Namespace.Name)
		s.Equal(name, r.Store.Workspace)
	}

	prefix := "other"
	_, err = s.Catalog.UpdateNamespace(s.ctx(), name, catalog.NamespacePatch{Prefix: &prefix})
	s.Kind(catalog.Forbidden, err)
}

// TestDefaultWorkspace checks default workspace selection and
// promotion.
func (s *Suite) TestDefaultWorkspace() {
	_, err := s.Catalog.Workspace(s.ctx(), "default")
	s.NotFound(err)

	s.workspace("a")
	s.workspace("b")
	s.workspace("c")

	ws, err := s.Catalog.Workspace(s.ctx(), "default")
	if s.NoError(err) {
		s.Equal("a", ws.Name)
	}
	ns, err := s.Catalog.Namespace(s.ctx(), "default")
	if s.NoError(err) {
		s.Equal("a", ns.Prefix)
		s.True(ns.Default)
	}

	s.NoError(s.Catalog.SetDefaultWorkspace(s.ctx(), "c"))
	ws, err = s.Catalog.Workspace(s.ctx(), "default")
	if s.NoError(err) {
		s.Equal("c", ws.Name)
	}
	ws, err = s.Catalog.Workspace(s.ctx(), "a")
	if s.NoError(err) {
		s.False(ws.Default)
	}

	// Deleting the default promotes the first remaining workspace.
	s.NoError(s.Catalog.DeleteWorkspace(s.ctx(), "c", catalog.DeleteOptions{}))
	ws, err = s.Catalog.Workspace(s.ctx(), "default")
	if s.NoError(err) {
		s.Equal("a", ws.Name)
		s.True(ws.Default)
	}

	s.NotFound(s.Catalog.SetDefaultWorkspace(s.ctx(), "c"))
}

// TestNamespaceCreate checks that creating a namespace creates its
// workspace, and URI uniqueness rules.
func (s *Suite) TestNamespaceCreate() {
	ns, err := s.Catalog.CreateNamespace(s.ctx(), &catalog.Namespace{
		Prefix: "topp",
		URI:    "http://www.openplans.org/topp",
	})
	if s.NoError(err) {
		s.Equal("topp", ns.Prefix)
		s.Equal("http://www.openplans.org/topp", ns.URI)
	}
	ws, err := s.Catalog.Workspace(s.ctx(), "topp")
	if s.NoError(err) {
		s.Equal("topp", ws.Name)
	}

	_, err = s.Catalog.CreateNamespace(s.ctx(), &catalog.Namespace{
		Prefix: "topp2",
		URI:    "http://www.openplans.org/topp",
	})
	s.Kind(catalog.DuplicateName, err)

	// Isolated namespaces may share a URI.
	ns, err = s.Catalog.CreateNamespace(s.ctx(), &catalog.Namespace{
		Prefix:   "topp2",
		URI:      "http://www.openplans.org/topp",
		Isolated: true,
	})
	if s.NoError(err) {
		s.True(ns.Isolated)
	}
	ws, err = s.Catalog.Workspace(s.ctx(), "topp2")
	if s.NoError(err) {
		s.True(ws.Isolated)
	}

	_, err = s.Catalog.CreateNamespace(s.ctx(), &catalog.Namespace{Prefix: "rel", URI: "not/absolute"})
	s.Kind(catalog.ValidationFailed, err)

	s.NoError(s.Catalog.DeleteNamespace(s.ctx(), "topp2", catalog.DeleteOptions{}))
	_, err = s.Catalog.Workspace(s.ctx(), "topp2")
	s.NotFound(err)
}

// TestWorkspaceTimestamps checks that Created is fixed and Modified
// follows updates.
func (s *Suite) TestWorkspaceTimestamps() {
	created := s.Clock.Now()
	ws := s.workspace("t")
	s.WithinDuration(created, ws.Created, 0)
	s.WithinDuration(created, ws.Modified, 0)

	s.Clock.Add(5 * time.Second)
	isolated := true
	ws, err := s.Catalog.UpdateWorkspace(s.ctx(), "t", catalog.WorkspacePatch{Isolated: &isolated})
	if s.NoError(err) {
		s.True(ws.Isolated)
		s.WithinDuration(created, ws.Created, 0)
		s.WithinDuration(s.Clock.Now(), ws.Modified, 0)
	}
}

// TestDeleteWorkspaceNonEmpty is Scenario A's negative half: a
// workspace with content needs recurse.
func (s *Suite) TestDeleteWorkspaceNonEmpty() {
	s.sf("roads")
	err := s.Catalog.DeleteWorkspace(s.ctx(), "sf", catalog.DeleteOptions{})
	s.Kind(catalog.Conflict, err)

	_, err = s.Catalog.Resource(s.ctx(), "sf", "sf", "roads")
	s.NoError(err, "failed delete changed nothing")

	s.NoError(s.Catalog.DeleteWorkspace(s.ctx(), "sf", catalog.DeleteOptions{Recurse: true}))
	_, err = s.Catalog.Workspace(s.ctx(), "sf")
	s.NotFound(err)
	_, err = s.Catalog.Layer(s.ctx(), "", "roads")
	s.NotFound(err)
}
