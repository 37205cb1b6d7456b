// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package catalogtest

import (
	"github.com/diffeo/go-geocatalog/catalog"
)

func layerEntry(name string) catalog.PublishedRef {
	return catalog.PublishedRef{Type: catalog.PublishedLayer, Ref: catalog.Ref{Name: name}}
}

func groupEntry(ws, name string) catalog.PublishedRef {
	return catalog.PublishedRef{Type: catalog.PublishedLayerGroup, Ref: catalog.Ref{Workspace: ws, Name: name}}
}

// TestLayerGroupAttribution is Scenario B.
func (s *Suite) TestLayerGroupAttribution() {
	s.sf("roads", "rivers")
	lg, err := s.Catalog.CreateLayerGroup(s.ctx(), "", &catalog.LayerGroup{
		Name:   "sfLayerGroup",
		Layers: []catalog.PublishedRef{layerEntry("sf:roads"), layerEntry("sf:rivers")},
		Styles: []*catalog.Ref{nil, nil},
	})
	s.Require().NoError(err)
	s.Equal(catalog.ModeSingle, lg.Mode)
	s.Nil(lg.Workspace)

	lg, err = s.Catalog.LayerGroup(s.ctx(), "", "sfLayerGroup")
	s.Require().NoError(err)
	if s.Len(lg.Layers, 2) {
		s.Equal(catalog.PublishedLayer, lg.Layers[0].Type)
		s.Equal("roads", lg.Layers[0].Name)
		s.Equal("sf", lg.Layers[0].Workspace)
		s.Equal("rivers", lg.Layers[1].Name)
	}
	s.Equal([]*catalog.Ref{nil, nil}, lg.Styles)

	width := 101
	lg, err = s.Catalog.UpdateLayerGroup(s.ctx(), "", "sfLayerGroup", catalog.LayerGroupPatch{
		Attribution: &catalog.AttributionPatch{LogoWidth: &width},
	})
	s.Require().NoError(err)

	lg, err = s.Catalog.LayerGroup(s.ctx(), "", "sfLayerGroup")
	s.Require().NoError(err)
	if s.NotNil(lg.Attribution) {
		s.Equal(101, lg.Attribution.LogoWidth)
	}
	s.Len(lg.Layers, 2)
	s.Len(lg.Styles, 2)
}

// TestLayerGroupValidation checks layer group structural rules.
func (s *Suite) TestLayerGroupValidation() {
	s.sf("roads", "rivers")
	create := func(lg *catalog.LayerGroup) error {
		_, err := s.Catalog.CreateLayerGroup(s.ctx(), "sf", lg)
		return err
	}

	s.Kind(catalog.ValidationFailed, create(&catalog.LayerGroup{Name: "empty"}))
	s.Kind(catalog.ValidationFailed, create(&catalog.LayerGroup{
		Name:   "mismatch",
		Layers: []catalog.PublishedRef{layerEntry("roads"), layerEntry("rivers")},
		Styles: []*catalog.Ref{nil},
	}))
	s.Kind(catalog.ValidationFailed, create(&catalog.LayerGroup{
		Name:   "missing",
		Layers: []catalog.PublishedRef{layerEntry("lakes")},
	}))
	s.Kind(catalog.ValidationFailed, create(&catalog.LayerGroup{
		Name:   "nostyle",
		Layers: []catalog.PublishedRef{{Type: catalog.PublishedStyleGroup}},
	}))
	s.Kind(catalog.ValidationFailed, create(&catalog.LayerGroup{
		Name:   "badmode",
		Mode:   "MIXED",
		Layers: []catalog.PublishedRef{layerEntry("roads")},
	}))
	s.Kind(catalog.ValidationFailed, create(&catalog.LayerGroup{
		Name:   "eo",
		Mode:   catalog.ModeEO,
		Layers: []catalog.PublishedRef{layerEntry("roads")},
	}), "EO needs a root layer")
	s.Kind(catalog.ValidationFailed, create(&catalog.LayerGroup{
		Name:      "notEO",
		Mode:      catalog.ModeNamed,
		Layers:    []catalog.PublishedRef{layerEntry("roads")},
		RootLayer: &catalog.Ref{Name: "rivers"},
	}))

	lg, err := s.Catalog.CreateLayerGroup(s.ctx(), "sf", &catalog.LayerGroup{
		Name:           "eo",
		Mode:           catalog.ModeEO,
		Layers:         []catalog.PublishedRef{layerEntry("roads")},
		RootLayer:      &catalog.Ref{Name: "rivers"},
		RootLayerStyle: &catalog.Ref{Name: catalog.StyleLine},
	})
	if s.NoError(err) {
		s.Equal("sf", lg.Workspace.Name)
		if s.NotNil(lg.RootLayer) {
			s.Equal("rivers", lg.RootLayer.Name)
		}
		if s.NotNil(lg.RootLayerStyle) {
			s.Equal(catalog.StyleLine, lg.RootLayerStyle.Name)
		}
	}

	groups, err := s.Catalog.LayerGroups(s.ctx(), "sf")
	if s.NoError(err) && s.Len(groups, 1) {
		s.Equal("eo", groups[0].Name)
	}
	groups, err = s.Catalog.LayerGroups(s.ctx(), "")
	if s.NoError(err) {
		s.Empty(groups)
	}

	// Names are unique per workspace.
	_, err = s.Catalog.CreateLayerGroup(s.ctx(), "sf", &catalog.LayerGroup{
		Name:   "eo",
		Layers: []catalog.PublishedRef{layerEntry("roads")},
	})
	s.Kind(catalog.DuplicateName, err)
}

// TestLayerGroupCycle checks that a group cannot contain itself.
func (s *Suite) TestLayerGroupCycle() {
	s.sf("roads")
	_, err := s.Catalog.CreateLayerGroup(s.ctx(), "", &catalog.LayerGroup{
		Name:   "inner",
		Layers: []catalog.PublishedRef{layerEntry("sf:roads")},
	})
	s.Require().NoError(err)
	_, err = s.Catalog.CreateLayerGroup(s.ctx(), "", &catalog.LayerGroup{
		Name:   "outer",
		Layers: []catalog.PublishedRef{groupEntry("", "inner")},
	})
	s.Require().NoError(err)

	entries := []catalog.PublishedRef{layerEntry("sf:roads"), groupEntry("", "outer")}
	_, err = s.Catalog.UpdateLayerGroup(s.ctx(), "", "inner", catalog.LayerGroupPatch{Layers: &entries})
	s.Kind(catalog.ValidationFailed, err)

	entries = []catalog.PublishedRef{groupEntry("", "outer")}
	_, err = s.Catalog.UpdateLayerGroup(s.ctx(), "", "outer", catalog.LayerGroupPatch{Layers: &entries})
	s.Kind(catalog.ValidationFailed, err)

	// outer contains inner, so deleting inner takes outer along.
	err = s.Catalog.DeleteLayerGroup(s.ctx(), "", "inner", catalog.DeleteOptions{})
	s.Kind(catalog.Conflict, err)
	s.NoError(s.Catalog.DeleteLayerGroup(s.ctx(), "", "inner", catalog.DeleteOptions{Recurse: true}))
	_, err = s.Catalog.LayerGroup(s.ctx(), "", "outer")
	s.NotFound(err)
}

// TestLayerGroupScope checks that a workspace group only sees its own
// workspace's layers.
func (s *Suite) TestLayerGroupScope() {
	s.sf("roads")
	s.workspace("ny")
	s.dataStore("ny", "ny", "data/ny")
	s.featureType("ny", "ny", "streets")

	_, err := s.Catalog.CreateLayerGroup(s.ctx(), "ny", &catalog.LayerGroup{
		Name:   "mixed",
		Layers: []catalog.PublishedRef{layerEntry("streets"), layerEntry("sf:roads")},
	})
	s.Kind(catalog.ValidationFailed, err)

	_, err = s.Catalog.CreateLayerGroup(s.ctx(), "ny", &catalog.LayerGroup{
		Name:      "moved",
		Workspace: &catalog.Ref{Name: "sf"},
		Layers:    []catalog.PublishedRef{layerEntry("streets")},
	})
	s.Kind(catalog.Forbidden, err)

	// A global group may mix workspaces.
	lg, err := s.Catalog.CreateLayerGroup(s.ctx(), "", &catalog.LayerGroup{
		Name:   "mixed",
		Layers: []catalog.PublishedRef{layerEntry("ny:streets"), layerEntry("sf:roads")},
	})
	if s.NoError(err) && s.Len(lg.Layers, 2) {
		s.Equal("ny", lg.Layers[0].Workspace)
		s.Equal("sf", lg.Layers[1].Workspace)
	}

	// The same name may be used in a workspace.
	_, err = s.Catalog.CreateLayerGroup(s.ctx(), "ny", &catalog.LayerGroup{
		Name:   "mixed",
		Layers: []catalog.PublishedRef{layerEntry("streets")},
	})
	s.NoError(err)

	_, err = s.Catalog.UpdateLayerGroup(s.ctx(), "ny", "mixed", catalog.LayerGroupPatch{
		Workspace: &catalog.Ref{Name: "sf"},
	})
	s.Kind(catalog.Forbidden, err)
}

// TestLayerGroupBounds checks that bounds are computed from the
// layers when not given.
func (s *Suite) TestLayerGroupBounds() {
	s.sf()
	for i, name := range []string{"a", "b"} {
		f := float64(i)
		_, err := s.Catalog.CreateResource(s.ctx(), "sf", "sf", &catalog.Resource{
			Name:       name,
			LatLonBBox: &catalog.BBox{MinX: f, MinY: f, MaxX: f + 10, MaxY: f + 5, CRS: "EPSG:4326"},
		})
		s.Require().NoError(err)
	}
	lg, err := s.Catalog.CreateLayerGroup(s.ctx(), "sf", &catalog.LayerGroup{
		Name:   "ab",
		Layers: []catalog.PublishedRef{layerEntry("a"), layerEntry("b")},
	})
	s.Require().NoError(err)
	s.Equal(&catalog.BBox{MinX: 0, MinY: 0, MaxX: 11, MaxY: 6, CRS: "EPSG:4326"}, lg.Bounds)

	// Deleting a contained layer needs recurse, and then takes the
	// group with it.
	err = s.Catalog.DeleteLayer(s.ctx(), "sf", "a", catalog.DeleteOptions{})
	s.Kind(catalog.Conflict, err)
	s.NoError(s.Catalog.DeleteResource(s.ctx(), "sf", "sf", "a", catalog.DeleteOptions{Recurse: true}))
	_, err = s.Catalog.LayerGroup(s.ctx(), "sf", "ab")
	s.NotFound(err)
	_, err = s.Catalog.Layer(s.ctx(), "sf", "b")
	s.NoError(err, "unrelated layer survives")
}
