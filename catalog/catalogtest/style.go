// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package catalogtest

import (
	"github.com/diffeo/go-geocatalog/blob"
	"github.com/diffeo/go-geocatalog/catalog"
)

const thickSLD = `<?xml version="1.0" encoding="UTF-8"?>
<StyledLayerDescriptor version="1.0.0"><NamedLayer><Name>thick</Name></NamedLayer></StyledLayerDescriptor>
`

func (s *Suite) style(ws, name string, body []byte) *catalog.Style {
	st, err := s.Catalog.CreateStyle(s.ctx(), ws, &catalog.Style{Name: name}, body)
	s.Require().NoError(err)
	return st
}

// TestStyleBuiltins checks the styles every catalog starts with.
func (s *Suite) TestStyleBuiltins() {
	styles, err := s.Catalog.Styles(s.ctx(), "")
	s.Require().NoError(err)
	var names []string
	for _, st := range styles {
		names = append(names, st.Name)
		s.True(st.Builtin, st.Name)
		s.Nil(st.Workspace)
	}
	s.Equal(catalog.BuiltinStyles, names)

	body, err := s.Catalog.StyleBody(s.ctx(), "", catalog.StylePoint)
	if s.NoError(err) {
		s.Contains(string(body), "PointSymbolizer")
	}

	err = s.Catalog.DeleteStyle(s.ctx(), "", catalog.StylePoint, catalog.DeleteOptions{Recurse: true})
	s.Kind(catalog.Forbidden, err)

	name := "dot"
	_, err = s.Catalog.UpdateStyle(s.ctx(), "", catalog.StylePoint, catalog.StylePatch{Name: &name}, nil)
	s.Kind(catalog.Forbidden, err)

	filename := "dot.sld"
	_, err = s.Catalog.UpdateStyle(s.ctx(), "", catalog.StylePoint, catalog.StylePatch{Filename: &filename}, nil)
	s.Kind(catalog.Forbidden, err)

	// The document of a built-in style can still be replaced.
	_, err = s.Catalog.UpdateStyle(s.ctx(), "", catalog.StylePoint, catalog.StylePatch{}, []byte(thickSLD))
	s.NoError(err)
	body, err = s.Catalog.StyleBody(s.ctx(), "", catalog.StylePoint)
	if s.NoError(err) {
		s.Equal(thickSLD, string(body))
	}
}

// TestStyleScope checks that global and workspace styles never mix.
func (s *Suite) TestStyleScope() {
	s.workspace("sf")
	global := s.style("", "thick", nil)
	local := s.style("sf", "thick", nil)
	s.NotEqual(global.ID, local.ID)
	s.Nil(global.Workspace)
	if s.NotNil(local.Workspace) {
		s.Equal("sf", local.Workspace.Name)
	}
	s.Equal("thick.sld", local.Filename)
	s.Equal("sld", local.Format)

	_, err := s.Catalog.CreateStyle(s.ctx(), "sf", &catalog.Style{Name: "thick"}, nil)
	s.Kind(catalog.DuplicateName, err)

	s.style("sf", "thin", nil)
	_, err = s.Catalog.Style(s.ctx(), "", "thin")
	s.NotFound(err)

	styles, err := s.Catalog.Styles(s.ctx(), "sf")
	if s.NoError(err) && s.Len(styles, 2) {
		s.Equal("thick", styles[0].Name)
		s.Equal("thin", styles[1].Name)
	}
	styles, err = s.Catalog.Styles(s.ctx(), "")
	if s.NoError(err) {
		s.Len(styles, len(catalog.BuiltinStyles)+1)
	}

	_, err = s.Catalog.CreateStyle(s.ctx(), "sf", &catalog.Style{
		Name:      "moved",
		Workspace: &catalog.Ref{Name: "ny"},
	}, nil)
	s.Kind(catalog.Forbidden, err)

	_, err = s.Catalog.CreateStyle(s.ctx(), "sf", &catalog.Style{
		Name:     "shared",
		Filename: "thin.sld",
	}, nil)
	s.Kind(catalog.DuplicateName, err, "filename already used")

	// A workspace layer may use its own workspace's styles and
	// global styles, but not another workspace's.
	s.dataStore("sf", "sf", "data/sf")
	s.featureType("sf", "sf", "roads")
	l, err := s.Catalog.UpdateLayer(s.ctx(), "sf", "roads", catalog.LayerPatch{
		DefaultStyle: &catalog.Ref{Name: "thin"},
		Styles:       &[]catalog.Ref{{Name: catalog.StyleLine}},
	})
	if s.NoError(err) && s.NotNil(l.DefaultStyle) {
		s.Equal("thin", l.DefaultStyle.Name)
		s.Equal("sf", l.DefaultStyle.Workspace)
		if s.Len(l.Styles, 1) {
			s.Equal(catalog.StyleLine, l.Styles[0].Name)
			s.Equal("", l.Styles[0].Workspace)
		}
	}

	s.workspace("ny")
	s.style("ny", "bold", nil)
	_, err = s.Catalog.UpdateLayer(s.ctx(), "sf", "roads", catalog.LayerPatch{
		DefaultStyle: &catalog.Ref{Workspace: "ny", Name: "bold"},
	})
	s.Kind(catalog.ValidationFailed, err)
}

// TestStyleDocument checks reading, replacing and moving a style
// document.
func (s *Suite) TestStyleDocument() {
	s.workspace("sf")
	s.style("sf", "thick", []byte(thickSLD))

	body, err := s.Catalog.StyleBody(s.ctx(), "sf", "thick")
	if s.NoError(err) {
		s.Equal(thickSLD, string(body))
	}

	// No document at all is NotFound, not an I/O failure.
	s.style("sf", "empty", nil)
	_, err = s.Catalog.StyleBody(s.ctx(), "sf", "empty")
	s.NotFound(err)

	filename := "heavy.sld"
	st, err := s.Catalog.UpdateStyle(s.ctx(), "sf", "thick", catalog.StylePatch{Filename: &filename}, nil)
	if s.NoError(err) {
		s.Equal("heavy.sld", st.Filename)
	}
	body, err = s.Catalog.StyleBody(s.ctx(), "sf", "thick")
	if s.NoError(err) {
		s.Equal(thickSLD, string(body), "document follows the filename")
	}

	name := "heavy"
	st, err = s.Catalog.UpdateStyle(s.ctx(), "sf", "thick", catalog.StylePatch{Name: &name}, []byte("<sld/>"))
	if s.NoError(err) {
		s.Equal("heavy", st.Name)
		s.Equal("heavy.sld", st.Filename)
	}
	body, err = s.Catalog.StyleBody(s.ctx(), "sf", "heavy")
	if s.NoError(err) {
		s.Equal("<sld/>", string(body))
	}
	_, err = s.Catalog.Style(s.ctx(), "sf", "thick")
	s.NotFound(err)

	if s.Blobs == nil {
		return
	}
	infos, err := s.Blobs.List(s.ctx(), "workspaces/"+st.Workspace.ID+"/styles/")
	if s.NoError(err) && s.Len(infos, 1) {
		s.Equal("workspaces/"+st.Workspace.ID+"/styles/heavy.sld", infos[0].Key)
	}
}

// TestStyleReferrers checks that a style in use is only deleted on
// request, and that its users fall back to defaults.
func (s *Suite) TestStyleReferrers() {
	s.sf("roads", "rivers")
	s.style("", "thick", []byte(thickSLD))

	_, err := s.Catalog.UpdateLayer(s.ctx(), "sf", "roads", catalog.LayerPatch{
		DefaultStyle: &catalog.Ref{Name: "thick"},
		Styles:       &[]catalog.Ref{{Name: "thick"}, {Name: catalog.StyleLine}},
	})
	s.Require().NoError(err)
	_, err = s.Catalog.CreateLayerGroup(s.ctx(), "", &catalog.LayerGroup{
		Name: "mixed",
		Layers: []catalog.PublishedRef{
			layerEntry("sf:roads"),
			{Type: catalog.PublishedStyleGroup},
			layerEntry("sf:rivers"),
		},
		Styles: []*catalog.Ref{{Name: "thick"}, {Name: "thick"}, nil},
	})
	s.Require().NoError(err)
	_, err = s.Catalog.CreateLayerGroup(s.ctx(), "", &catalog.LayerGroup{
		Name:   "onlyStyle",
		Layers: []catalog.PublishedRef{{Type: catalog.PublishedStyleGroup}},
		Styles: []*catalog.Ref{{Name: "thick"}},
	})
	s.Require().NoError(err)

	err = s.Catalog.DeleteStyle(s.ctx(), "", "thick", catalog.DeleteOptions{})
	s.Kind(catalog.Conflict, err)
	_, err = s.Catalog.Style(s.ctx(), "", "thick")
	s.NoError(err, "failed delete changes nothing")

	s.NoError(s.Catalog.DeleteStyle(s.ctx(), "", "thick", catalog.DeleteOptions{Recurse: true}))
	_, err = s.Catalog.Style(s.ctx(), "", "thick")
	s.NotFound(err)

	l, err := s.Catalog.Layer(s.ctx(), "sf", "roads")
	if s.NoError(err) {
		if s.NotNil(l.DefaultStyle) {
			s.True(catalog.IsBuiltinStyle(l.DefaultStyle.Name), l.DefaultStyle.Name)
		}
		if s.Len(l.Styles, 1) {
			s.Equal(catalog.StyleLine, l.Styles[0].Name)
		}
	}

	lg, err := s.Catalog.LayerGroup(s.ctx(), "", "mixed")
	if s.NoError(err) {
		if s.Len(lg.Layers, 2) {
			s.Equal("roads", lg.Layers[0].Name)
			s.Equal("rivers", lg.Layers[1].Name)
		}
		s.Equal([]*catalog.Ref{nil, nil}, lg.Styles)
	}
	_, err = s.Catalog.LayerGroup(s.ctx(), "", "onlyStyle")
	s.NotFound(err)

	if s.Blobs != nil {
		ok, err := blob.Exists(s.ctx(), s.Blobs, "styles/thick.sld")
		s.NoError(err)
		s.True(ok, "document kept without purge")
	}
}

// TestStylePurge checks that purging a style deletes its document.
func (s *Suite) TestStylePurge() {
	s.requireBlobs()
	s.style("", "thick", []byte(thickSLD))
	s.NoError(s.Catalog.DeleteStyle(s.ctx(), "", "thick", catalog.DeleteOptions{Purge: catalog.PurgeAll}))
	ok, err := blob.Exists(s.ctx(), s.Blobs, "styles/thick.sld")
	s.NoError(err)
	s.False(ok)
}

// TestWorkspaceDeleteStyleDocuments checks what happens to the
// documents of workspace styles when the workspace is deleted: a
// metadata purge keeps them, a full purge deletes them.
func (s *Suite) TestWorkspaceDeleteStyleDocuments() {
	s.requireBlobs()
	for _, mode := range []catalog.PurgeMode{catalog.PurgeMetadata, catalog.PurgeAll} {
		ws := s.workspace("sf")
		st := s.style("sf", "thick", []byte(thickSLD))
		key := "workspaces/" + ws.ID + "/styles/" + st.Filename
		s.NoError(s.Catalog.DeleteWorkspace(s.ctx(), "sf", catalog.DeleteOptions{Recurse: true, Purge: mode}))
		ok, err := blob.Exists(s.ctx(), s.Blobs, key)
		s.NoError(err)
		s.Equal(mode == catalog.PurgeMetadata, ok, "purge %s", mode)
	}
}
