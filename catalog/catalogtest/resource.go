// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package catalogtest

import (
	"time"

	"github.com/diffeo/go-geocatalog/catalog"
)

const roadsData = `_=id:Integer,name:String,the_geom:LineString:srid=4326
roads.1=1|Main Street|LINESTRING(-122.5 37.7, -122.4 37.8)
roads.2=2|Side Street|LINESTRING(-122.45 37.75, -122.3 37.6)
`

// fullResourcePatch is a patch that sets every field of r, as a
// client sending back a document it just read would.
func fullResourcePatch(r *catalog.Resource) catalog.ResourcePatch {
	return catalog.ResourcePatch{
		Name:               &r.Name,
		NativeName:         &r.NativeName,
		Kind:               &r.Kind,
		Store:              &r.Store,
		Namespace:          &r.Namespace,
		Title:              &r.Title,
		Abstract:           &r.Abstract,
		InternationalTitle: &r.InternationalTitle,
		Keywords:           &r.Keywords,
		SRS:                &r.SRS,
		NativeBBox:         r.NativeBBox,
		LatLonBBox:         r.LatLonBBox,
		Enabled:            &r.Enabled,
		Advertised:         &r.Advertised,
		Attributes:         &r.Attributes,
		Metadata:           &r.Metadata,
	}
}

// TestResourcePublishesLayer checks that creating a resource creates
// its layer.
func (s *Suite) TestResourcePublishesLayer() {
	s.sf()
	r := s.featureType("sf", "sf", "roads")
	s.Equal("roads", r.NativeName, "native name defaults to name")
	s.Equal("sf", r.Namespace.Name)
	s.Equal("sf", r.Store.Name)

	l, err := s.Catalog.Layer(s.ctx(), "sf", "roads")
	if s.NoError(err) {
		s.Equal("roads", l.Name)
		s.Equal("VECTOR", l.Type)
		s.Equal(r.ID, l.Resource.ID)
		s.Equal("sf", l.Resource.Workspace)
		s.True(l.Enabled)
		if s.NotNil(l.DefaultStyle) {
			s.True(catalog.IsBuiltinStyle(l.DefaultStyle.Name), "default style %q", l.DefaultStyle.Name)
			s.Empty(l.DefaultStyle.Workspace)
		}
	}

	// Unqualified layer lookup finds it too.
	l, err = s.Catalog.Layer(s.ctx(), "", "roads")
	if s.NoError(err) {
		s.Equal("roads", l.Name)
	}

	layers, err := s.Catalog.Layers(s.ctx(), "")
	if s.NoError(err) {
		s.Len(layers, 1)
	}

	// Deleting the resource without recurse is blocked by its layer.
	err = s.Catalog.DeleteResource(s.ctx(), "sf", "sf", "roads", catalog.DeleteOptions{})
	s.Kind(catalog.Conflict, err)

	// Deleting just the layer leaves the resource.
	s.NoError(s.Catalog.DeleteLayer(s.ctx(), "sf", "roads", catalog.DeleteOptions{}))
	_, err = s.Catalog.Layer(s.ctx(), "sf", "roads")
	s.NotFound(err)
	_, err = s.Catalog.Resource(s.ctx(), "sf", "sf", "roads")
	s.NoError(err)
	s.NoError(s.Catalog.DeleteResource(s.ctx(), "sf", "sf", "roads", catalog.DeleteOptions{}))
}

// TestResourceNames checks resource name scoping: unique across all
// stores in a workspace, independent between workspaces.
func (s *Suite) TestResourceNames() {
	s.sf("roads")
	s.dataStore("sf", "more", "data/more")
	_, err := s.Catalog.CreateResource(s.ctx(), "sf", "more", &catalog.Resource{Name: "roads"})
	s.Kind(catalog.DuplicateName, err)

	s.workspace("ny")
	s.dataStore("ny", "ny", "data/ny")
	s.featureType("ny", "ny", "roads")

	_, err = s.Catalog.CreateResource(s.ctx(), "sf", "sf", &catalog.Resource{})
	s.Kind(catalog.ValidationFailed, err)

	_, err = s.Catalog.CreateResource(s.ctx(), "sf", "sf", &catalog.Resource{Name: "dem", Kind: catalog.Coverage})
	s.Kind(catalog.ValidationFailed, err, "a data store serves feature types")

	_, err = s.Catalog.Resource(s.ctx(), "sf", "more", "roads")
	s.NotFound(err, "roads is in store sf, not more")
}

// TestResourceNonDestructivePut checks P2: a partial update changes
// only what it names.
func (s *Suite) TestResourceNonDestructivePut() {
	s.sf()
	in := &catalog.Resource{
		Name:               "roads",
		Title:              "Roads",
		Abstract:           "All the roads",
		Keywords:           []string{"roads", "sf", "transport"},
		InternationalTitle: map[string]string{"en": "Roads", "it": "Strade"},
		SRS:                "EPSG:4326",
		NativeBBox:         &catalog.BBox{MinX: -123, MinY: 37, MaxX: -122, MaxY: 38, CRS: "EPSG:4326"},
		LatLonBBox:         &catalog.BBox{MinX: -123, MinY: 37, MaxX: -122, MaxY: 38, CRS: "EPSG:4326"},
		Enabled:            true,
		Advertised:         true,
	}
	before, err := s.Catalog.CreateResource(s.ctx(), "sf", "sf", in)
	s.Require().NoError(err)

	s.Clock.Add(time.Minute)
	title := "Streets"
	after, err := s.Catalog.UpdateResource(s.ctx(), "sf", "sf", "roads",
		catalog.ResourcePatch{Title: &title}, catalog.UpdateOptions{})
	s.Require().NoError(err)

	s.Equal("Streets", after.Title)
	s.Equal(before.Abstract, after.Abstract)
	s.Equal(before.Keywords, after.Keywords)
	s.Equal(before.InternationalTitle, after.InternationalTitle)
	s.Equal(before.SRS, after.SRS)
	s.Equal(before.NativeBBox, after.NativeBBox)
	s.Equal(before.LatLonBBox, after.LatLonBBox)
	s.Equal(before.Enabled, after.Enabled)
	s.Equal(before.Advertised, after.Advertised)
	s.WithinDuration(before.Created, after.Created, 0)
	s.True(after.Modified.After(before.Modified))

	// A present but empty bounding box clears it.
	after, err = s.Catalog.UpdateResource(s.ctx(), "sf", "sf", "roads",
		catalog.ResourcePatch{LatLonBBox: &catalog.BBox{}}, catalog.UpdateOptions{})
	if s.NoError(err) {
		s.Nil(after.LatLonBBox)
		s.Equal(before.NativeBBox, after.NativeBBox)
		s.Equal("Streets", after.Title)
	}
}

// TestResourceRoundTrip checks P5: putting back what was read
// changes nothing but the modified time.
func (s *Suite) TestResourceRoundTrip() {
	s.sf()
	_, err := s.Catalog.CreateResource(s.ctx(), "sf", "sf", &catalog.Resource{
		Name:       "roads",
		Title:      "Roads",
		Keywords:   []string{"b", "a"},
		LatLonBBox: &catalog.BBox{MinX: 1, MinY: 2, MaxX: 3, MaxY: 4, CRS: "EPSG:4326"},
		Attributes: []catalog.Attribute{{Name: "the_geom", Binding: "Point", MaxOccurs: 1}},
		Info:       catalog.Info{Metadata: map[string][]string{"cachingEnabled": {"true"}}},
	})
	s.Require().NoError(err)

	first, err := s.Catalog.Resource(s.ctx(), "sf", "sf", "roads")
	s.Require().NoError(err)
	s.Clock.Add(time.Minute)
	_, err = s.Catalog.UpdateResource(s.ctx(), "sf", "sf", "roads", fullResourcePatch(first), catalog.UpdateOptions{})
	s.Require().NoError(err)
	second, err := s.Catalog.Resource(s.ctx(), "sf", "sf", "roads")
	s.Require().NoError(err)

	s.WithinDuration(first.Created, second.Created, 0)
	s.True(second.Modified.After(first.Modified))
	first.Created, first.Modified = time.Time{}, time.Time{}
	second.Created, second.Modified = time.Time{}, time.Time{}
	s.Equal(first, second)
}

// TestResourceMoveForbidden checks that a resource update cannot move
// it to another store, workspace, or kind.
func (s *Suite) TestResourceMoveForbidden() {
	s.sf("roads")
	s.dataStore("sf", "other", "data/other")
	s.workspace("ny")

	_, err := s.Catalog.UpdateResource(s.ctx(), "sf", "sf", "roads",
		catalog.ResourcePatch{Store: &catalog.Ref{Name: "other"}}, catalog.UpdateOptions{})
	s.Kind(catalog.Forbidden, err)

	_, err = s.Catalog.UpdateResource(s.ctx(), "sf", "sf", "roads",
		catalog.ResourcePatch{Store: &catalog.Ref{Workspace: "ny", Name: "sf"}}, catalog.UpdateOptions{})
	s.Kind(catalog.Forbidden, err)

	_, err = s.Catalog.UpdateResource(s.ctx(), "sf", "sf", "roads",
		catalog.ResourcePatch{Namespace: &catalog.Ref{Name: "ny"}}, catalog.UpdateOptions{})
	s.Kind(catalog.Forbidden, err)

	kind := catalog.Coverage
	_, err = s.Catalog.UpdateResource(s.ctx(), "sf", "sf", "roads",
		catalog.ResourcePatch{Kind: &kind}, catalog.UpdateOptions{})
	s.Kind(catalog.Forbidden, err)

	empty := ""
	_, err = s.Catalog.UpdateResource(s.ctx(), "sf", "sf", "roads",
		catalog.ResourcePatch{Name: &empty}, catalog.UpdateOptions{})
	s.Kind(catalog.Forbidden, err)
}

// TestResourceRename checks that resource and layer names move
// together.
func (s *Suite) TestResourceRename() {
	s.sf("roads", "rivers")
	name := "streets"
	r, err := s.Catalog.UpdateResource(s.ctx(), "sf", "sf", "roads",
		catalog.ResourcePatch{Name: &name}, catalog.UpdateOptions{})
	if s.NoError(err) {
		s.Equal("streets", r.Name)
	}
	_, err = s.Catalog.Layer(s.ctx(), "sf", "roads")
	s.NotFound(err)
	l, err := s.Catalog.Layer(s.ctx(), "sf", "streets")
	if s.NoError(err) {
		s.Equal(r.ID, l.Resource.ID)
	}

	// And the other way.
	name = "waterways"
	l, err = s.Catalog.UpdateLayer(s.ctx(), "sf", "rivers", catalog.LayerPatch{Name: &name})
	if s.NoError(err) {
		s.Equal("waterways", l.Name)
	}
	_, err = s.Catalog.Resource(s.ctx(), "sf", "sf", "waterways")
	s.NoError(err)

	name = "streets"
	_, err = s.Catalog.UpdateLayer(s.ctx(), "sf", "waterways", catalog.LayerPatch{Name: &name})
	s.Kind(catalog.DuplicateName, err)
}

// TestResourceDerived checks that fields are derived from the data
// on create and on request.
func (s *Suite) TestResourceDerived() {
	s.requireBlobs()
	s.sf()
	s.putData("data/sf", "roads", roadsData)

	r, err := s.Catalog.CreateResource(s.ctx(), "sf", "sf", &catalog.Resource{Name: "roads"})
	s.Require().NoError(err)
	s.Equal("EPSG:4326", r.SRS)
	if s.NotNil(r.LatLonBBox) {
		s.Equal(-122.5, r.LatLonBBox.MinX)
		s.Equal(37.8, r.LatLonBBox.MaxY)
	}
	s.Empty(r.Attributes, "attributes are not copied into the configuration")
	r, err = s.Catalog.Resource(s.ctx(), "sf", "sf", "roads")
	s.Require().NoError(err)
	if s.Len(r.Attributes, 3, "attributes described lazily") {
		s.Equal("the_geom", r.Attributes[2].Name)
		s.Equal("LineString", r.Attributes[2].Binding)
	}

	l, err := s.Catalog.Layer(s.ctx(), "sf", "roads")
	if s.NoError(err) && s.NotNil(l.DefaultStyle) {
		s.Equal(catalog.StyleLine, l.DefaultStyle.Name)
	}

	// Clear a box, then ask for it back.
	r, err = s.Catalog.UpdateResource(s.ctx(), "sf", "sf", "roads",
		catalog.ResourcePatch{NativeBBox: &catalog.BBox{}}, catalog.UpdateOptions{})
	s.Require().NoError(err)
	s.Nil(r.NativeBBox)
	r, err = s.Catalog.UpdateResource(s.ctx(), "sf", "sf", "roads",
		catalog.ResourcePatch{}, catalog.UpdateOptions{Recalculate: []catalog.Recalculation{catalog.RecalculateNativeBBox}})
	if s.NoError(err) && s.NotNil(r.NativeBBox) {
		s.Equal(-122.3, r.NativeBBox.MaxX)
	}

	// Recalculation needs the data.
	native := "missing"
	_, err = s.Catalog.UpdateResource(s.ctx(), "sf", "sf", "roads",
		catalog.ResourcePatch{NativeName: &native},
		catalog.UpdateOptions{Recalculate: []catalog.Recalculation{catalog.RecalculateAttributes}})
	s.NotFound(err)
	r, err = s.Catalog.Resource(s.ctx(), "sf", "sf", "roads")
	if s.NoError(err) {
		s.Equal("roads", r.NativeName, "failed update rolled back")
	}
}

// TestReset checks that Reset makes the catalog read the data again.
func (s *Suite) TestReset() {
	s.requireBlobs()
	s.sf()
	s.putData("data/sf", "roads", roadsData)
	s.featureType("sf", "sf", "roads")

	r, err := s.Catalog.Resource(s.ctx(), "sf", "sf", "roads")
	s.Require().NoError(err)
	s.Len(r.Attributes, 3)

	s.putData("data/sf", "roads", "_=id:Integer,the_geom:Point\n")
	r, err = s.Catalog.Resource(s.ctx(), "sf", "sf", "roads")
	s.Require().NoError(err)
	s.Len(r.Attributes, 3, "description is cached")

	s.NoError(s.Catalog.Reset(s.ctx()))
	r, err = s.Catalog.Resource(s.ctx(), "sf", "sf", "roads")
	if s.NoError(err) {
		s.Len(r.Attributes, 2)
	}
}

// TestResourceDescribedRoundTrip checks that putting back attributes
// that were only described does not configure them.
func (s *Suite) TestResourceDescribedRoundTrip() {
	s.requireBlobs()
	s.sf()
	s.putData("data/sf", "roads", roadsData)
	s.featureType("sf", "sf", "roads")

	r, err := s.Catalog.Resource(s.ctx(), "sf", "sf", "roads")
	s.Require().NoError(err)
	s.Require().Len(r.Attributes, 3)
	_, err = s.Catalog.UpdateResource(s.ctx(), "sf", "sf", "roads", fullResourcePatch(r), catalog.UpdateOptions{})
	s.Require().NoError(err)

	s.putData("data/sf", "roads", "_=id:Integer,the_geom:Point\n")
	s.NoError(s.Catalog.Reset(s.ctx()))
	r, err = s.Catalog.Resource(s.ctx(), "sf", "sf", "roads")
	if s.NoError(err) {
		s.Len(r.Attributes, 2)
	}

	// Different attributes are configured as usual.
	attrs := []catalog.Attribute{{Name: "the_geom", Binding: "Point", MaxOccurs: 1}}
	_, err = s.Catalog.UpdateResource(s.ctx(), "sf", "sf", "roads",
		catalog.ResourcePatch{Attributes: &attrs}, catalog.UpdateOptions{})
	s.Require().NoError(err)
	s.NoError(s.Catalog.Reset(s.ctx()))
	r, err = s.Catalog.Resource(s.ctx(), "sf", "sf", "roads")
	if s.NoError(err) {
		s.Equal(attrs, r.Attributes)
	}
}
