// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package catalogtest

import (
	"github.com/diffeo/go-geocatalog/blob"
	"github.com/diffeo/go-geocatalog/catalog"
)

// TestStoreLifecycle does basic store create, list, and update.
func (s *Suite) TestStoreLifecycle() {
	s.workspace("sf")
	st := s.dataStore("sf", "sf", "data/sf")
	s.Equal("sf", st.Name)
	s.Equal(catalog.DataStore, st.Kind)
	s.Equal("sf", st.Workspace.Name)
	s.True(st.Default, "first data store is the default")

	cov, err := s.Catalog.CreateStore(s.ctx(), "sf", &catalog.Store{
		Name:       "dem",
		Kind:       catalog.CoverageStore,
		Connection: map[string]string{"url": "file:data/dem.tif"},
	})
	if s.NoError(err) {
		s.False(cov.Default)
	}

	list, err := s.Catalog.Stores(s.ctx(), "sf", "")
	if s.NoError(err) && s.Len(list, 2) {
		s.Equal("sf", list[0].Name)
		s.Equal("dem", list[1].Name)
	}
	list, err = s.Catalog.Stores(s.ctx(), "sf", catalog.CoverageStore)
	if s.NoError(err) && s.Len(list, 1) {
		s.Equal("dem", list[0].Name)
	}

	_, err = s.Catalog.Store(s.ctx(), "sf", catalog.WMSStore, "dem")
	s.NotFound(err, "kind must match")

	_, err = s.Catalog.CreateStore(s.ctx(), "sf", &catalog.Store{
		Name:       "sf",
		Kind:       catalog.DataStore,
		Connection: map[string]string{"dbtype": "postgis"},
	})
	s.Kind(catalog.DuplicateName, err)

	desc := "San Francisco"
	st, err = s.Catalog.UpdateStore(s.ctx(), "sf", "sf", catalog.StorePatch{Description: &desc})
	if s.NoError(err) {
		s.Equal(desc, st.Description)
		s.True(st.Enabled, "untouched field is unchanged")
		s.Equal("file:data/sf", st.Connection["url"])
	}
}

// TestStoreConnection checks connection parameter validation.
func (s *Suite) TestStoreConnection() {
	s.workspace("sf")
	_, err := s.Catalog.CreateStore(s.ctx(), "sf", &catalog.Store{
		Name:       "bad",
		Kind:       catalog.WMSStore,
		Connection: map[string]string{"capabilitiesURL": "nope"},
	})
	s.Kind(catalog.ValidationFailed, err)

	_, err = s.Catalog.CreateStore(s.ctx(), "sf", &catalog.Store{
		Name:       "bad",
		Kind:       catalog.DataStore,
		Connection: map[string]string{"port": "many", "dbtype": "postgis"},
	})
	s.Kind(catalog.ValidationFailed, err)

	_, err = s.Catalog.CreateStore(s.ctx(), "sf", &catalog.Store{Name: "bad", Kind: "ftpStore"})
	s.Kind(catalog.ValidationFailed, err)

	wms, err := s.Catalog.CreateStore(s.ctx(), "sf", &catalog.Store{
		Name:       "remote",
		Kind:       catalog.WMSStore,
		Connection: map[string]string{"capabilitiesURL": "http://example.com/wms?request=GetCapabilities", "maxConnections": "6"},
	})
	if s.NoError(err) {
		s.False(wms.Default, "only data stores are defaults")
	}

	conn := map[string]string{"capabilitiesURL": "http://example.com/wms", "readTimeout": "soon"}
	_, err = s.Catalog.UpdateStore(s.ctx(), "sf", "remote", catalog.StorePatch{Connection: &conn})
	s.Kind(catalog.ValidationFailed, err)
}

// TestStoreMoveForbidden checks that a store cannot change workspace
// or kind through an update.
func (s *Suite) TestStoreMoveForbidden() {
	s.workspace("sf")
	s.workspace("other")
	s.dataStore("sf", "sf", "data/sf")

	_, err := s.Catalog.UpdateStore(s.ctx(), "sf", "sf", catalog.StorePatch{
		Workspace: &catalog.Ref{Name: "other"},
	})
	s.Kind(catalog.Forbidden, err)

	kind := catalog.CoverageStore
	_, err = s.Catalog.UpdateStore(s.ctx(), "sf", "sf", catalog.StorePatch{Kind: &kind})
	s.Kind(catalog.Forbidden, err)

	// Naming the current workspace is not a move.
	enabled := false
	st, err := s.Catalog.UpdateStore(s.ctx(), "sf", "sf", catalog.StorePatch{
		Workspace: &catalog.Ref{Name: "sf"},
		Enabled:   &enabled,
	})
	if s.NoError(err) {
		s.False(st.Enabled)
	}

	_, err = s.Catalog.CreateStore(s.ctx(), "sf", &catalog.Store{
		Name:       "x",
		Kind:       catalog.DataStore,
		Workspace:  catalog.Ref{Name: "other"},
		Connection: map[string]string{"dbtype": "postgis"},
	})
	s.Kind(catalog.Forbidden, err)
}

// TestDeleteStoreRecurse is Scenario C.
func (s *Suite) TestDeleteStoreRecurse() {
	s.workspace("sf")
	s.dataStore("sf", "pds", "data/pds")
	s.featureType("sf", "pds", "pdsa")
	s.featureType("sf", "pds", "pdsb")

	err := s.Catalog.DeleteStore(s.ctx(), "sf", "pds", catalog.DeleteOptions{})
	s.Kind(catalog.Conflict, err)
	for _, name := range []string{"pdsa", "pdsb"} {
		_, err = s.Catalog.Resource(s.ctx(), "sf", "pds", name)
		s.NoError(err)
		_, err = s.Catalog.Layer(s.ctx(), "sf", name)
		s.NoError(err)
	}

	s.NoError(s.Catalog.DeleteStore(s.ctx(), "sf", "pds", catalog.DeleteOptions{Recurse: true}))
	_, err = s.Catalog.Store(s.ctx(), "sf", "", "pds")
	s.NotFound(err)
	for _, name := range []string{"pdsa", "pdsb"} {
		_, err = s.Catalog.Resource(s.ctx(), "sf", "", name)
		s.NotFound(err)
		_, err = s.Catalog.Layer(s.ctx(), "sf", name)
		s.NotFound(err)
	}
}

// TestDefaultStore checks that resources can be created without a
// store, and default store promotion.
func (s *Suite) TestDefaultStore() {
	s.workspace("sf")
	_, err := s.Catalog.CreateResource(s.ctx(), "sf", "", &catalog.Resource{Name: "nowhere"})
	s.NotFound(err, "no default store yet")

	s.dataStore("sf", "first", "data/first")
	s.dataStore("sf", "second", "data/second")

	r, err := s.Catalog.CreateResource(s.ctx(), "sf", "", &catalog.Resource{Name: "roads"})
	if s.NoError(err) {
		s.Equal("first", r.Store.Name)
		s.Equal(catalog.FeatureType, r.Kind)
	}

	s.NoError(s.Catalog.DeleteStore(s.ctx(), "sf", "first", catalog.DeleteOptions{Recurse: true}))
	st, err := s.Catalog.Store(s.ctx(), "sf", "", "second")
	if s.NoError(err) {
		s.True(st.Default)
	}
	r, err = s.Catalog.CreateResource(s.ctx(), "sf", "", &catalog.Resource{Name: "roads"})
	if s.NoError(err) {
		s.Equal("second", r.Store.Name)
	}
}

// TestDeleteStorePurge checks the three purge modes on a coverage
// store.
func (s *Suite) TestDeleteStorePurge() {
	s.requireBlobs()
	s.workspace("sf")
	files := []string{"data.tif", "data.prj", "data.aux", "sample_image", "other.tif"}
	for _, mode := range []catalog.PurgeMode{catalog.PurgeNone, catalog.PurgeMetadata, catalog.PurgeAll} {
		loc := "purge/" + string(mode)
		for _, f := range files {
			_, err := blob.PutBytes(s.ctx(), s.Blobs, loc+"/"+f, []byte(f), "")
			s.Require().NoError(err)
		}
		name := "store-" + string(mode)
		_, err := s.Catalog.CreateStore(s.ctx(), "sf", &catalog.Store{
			Name:       name,
			Kind:       catalog.CoverageStore,
			Connection: map[string]string{"url": "file:" + loc},
		})
		s.Require().NoError(err)
		s.NoError(s.Catalog.DeleteStore(s.ctx(), "sf", name, catalog.DeleteOptions{Purge: mode}))

		infos, err := s.Blobs.List(s.ctx(), loc+"/")
		s.Require().NoError(err)
		var left []string
		for _, info := range infos {
			left = append(left, info.Key)
		}
		switch mode {
		case catalog.PurgeNone:
			s.Len(left, len(files), "purge none")
		case catalog.PurgeMetadata:
			s.Equal([]string{loc + "/data.tif", loc + "/other.tif"}, left)
		case catalog.PurgeAll:
			s.Empty(left)
		}
	}
}

// TestDeleteDataStorePurgeMetadata checks that a metadata purge of a
// data store keeps its data, property files included, and drops only
// spatial indexes.
func (s *Suite) TestDeleteDataStorePurgeMetadata() {
	s.requireBlobs()
	s.workspace("sf")
	for _, f := range []string{"roads.properties", "streets.shp", "streets.dbf", "streets.qix"} {
		_, err := blob.PutBytes(s.ctx(), s.Blobs, "vector/"+f, []byte(f), "")
		s.Require().NoError(err)
	}
	s.dataStore("sf", "vector", "vector")
	s.NoError(s.Catalog.DeleteStore(s.ctx(), "sf", "vector", catalog.DeleteOptions{Purge: catalog.PurgeMetadata}))

	infos, err := s.Blobs.List(s.ctx(), "vector/")
	s.Require().NoError(err)
	var left []string
	for _, info := range infos {
		left = append(left, info.Key)
	}
	s.Equal([]string{"vector/roads.properties", "vector/streets.dbf", "vector/streets.shp"}, left)
}
