// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	err := Errorf(Conflict, "store %q has resources", "pds")
	assert.Equal(t, Conflict, KindOf(err))
	assert.True(t, IsKind(err, Conflict))
	assert.False(t, IsKind(err, NotFound))

	wrapped := fmt.Errorf("deleting: %w", err)
	assert.Equal(t, Conflict, KindOf(wrapped))
	assert.Equal(t, ErrorKind(0), KindOf(assert.AnError))
	assert.False(t, IsKind(nil, NotFound))

	for k := NotFound; k <= IOFailure; k++ {
		assert.Equal(t, k, ParseErrorKind(k.String()))
	}
	assert.Equal(t, ErrorKind(0), ParseErrorKind("bogus"))
}

func TestQuietNotFound(t *testing.T) {
	ctx := context.Background()
	assert.False(t, NotFoundf(ctx, "no such thing").Quiet)
	quiet := NotFoundf(WithQuietNotFound(ctx), "no such thing")
	assert.True(t, quiet.Quiet)
	assert.Equal(t, NotFound, quiet.Kind)
}

func TestParsePurgeMode(t *testing.T) {
	tests := []struct {
		in   string
		mode PurgeMode
	}{
		{"", PurgeNone},
		{"none", PurgeNone},
		{"metadata", PurgeMetadata},
		{"all", PurgeAll},
		{"true", PurgeAll},
	}
	for _, test := range tests {
		mode, err := ParsePurgeMode(test.in)
		if assert.NoError(t, err, test.in) {
			assert.Equal(t, test.mode, mode, test.in)
		}
	}
	_, err := ParsePurgeMode("some")
	assert.True(t, IsKind(err, ValidationFailed))
}

func TestParseRecalculate(t *testing.T) {
	r, err := ParseRecalculate("nativebbox,,latlonbbox")
	if assert.NoError(t, err) {
		assert.Equal(t, []Recalculation{RecalculateNativeBBox, RecalculateLatLonBBox}, r)
	}
	r, err = ParseRecalculate("")
	assert.NoError(t, err)
	assert.Empty(t, r)
	_, err = ParseRecalculate("attributes,bogus")
	assert.True(t, IsKind(err, ValidationFailed))
}

func TestParseConnection(t *testing.T) {
	params, err := ParseConnection(DataStore, map[string]string{
		"url":                  "file:data/sf",
		"create spatial index": "true",
		"port":                 "5432",
		"custom":               "anything",
	})
	if assert.NoError(t, err) {
		assert.Equal(t, URLVariant, params["url"].Kind)
		assert.Equal(t, "file", params["url"].URL.Scheme)
		assert.True(t, params["create spatial index"].Bool)
		assert.Equal(t, int64(5432), params["port"].Int)
		assert.Equal(t, "anything", params["custom"].String)
	}

	_, err = ParseConnection(DataStore, map[string]string{"port": "x", "dbtype": "postgis"})
	assert.True(t, IsKind(err, ValidationFailed))

	_, err = ParseConnection(DataStore, map[string]string{"charset": "UTF-8"})
	assert.True(t, IsKind(err, ValidationFailed), "needs url, directory, or dbtype")

	_, err = ParseConnection(WMSStore, map[string]string{})
	assert.True(t, IsKind(err, ValidationFailed))

	_, err = ParseConnection(WMSStore, map[string]string{"capabilitiesURL": "not a url"})
	assert.True(t, IsKind(err, ValidationFailed))

	_, err = ParseConnection(StoreKind("ftpStore"), nil)
	assert.True(t, IsKind(err, ValidationFailed))
}

func TestStoreSettings(t *testing.T) {
	st := &Store{Connection: map[string]string{
		"url":     "file:///data/sf/",
		"charset": "UTF-8",
		"dbtype":  "shapefile",
	}}
	fs, err := st.Settings()
	if assert.NoError(t, err) {
		assert.Equal(t, "data/sf", fs.Location())
		assert.Equal(t, "UTF-8", fs.Charset)
	}

	st.Connection = map[string]string{"directory": "file:data/shapes"}
	fs, err = st.Settings()
	if assert.NoError(t, err) {
		assert.Equal(t, "data/shapes", fs.Location())
	}

	st.Connection = map[string]string{"dbtype": "postgis"}
	fs, err = st.Settings()
	if assert.NoError(t, err) {
		assert.Equal(t, "", fs.Location())
	}
}

// TestResourcePatchNonDestructive checks that applying a patch
// changes exactly the supplied fields.
func TestResourcePatchNonDestructive(t *testing.T) {
	r := &Resource{
		Name:               "roads",
		NativeName:         "roads",
		Title:              "Roads",
		Abstract:           "All the roads",
		Keywords:           []string{"b", "a", "c"},
		InternationalTitle: map[string]string{"en": "Roads", "it": "Strade"},
		NativeBBox:         &BBox{MinX: 1, MinY: 2, MaxX: 3, MaxY: 4, CRS: "EPSG:26713"},
		LatLonBBox:         &BBox{MinX: -1, MinY: -2, MaxX: 1, MaxY: 2, CRS: "EPSG:4326"},
		Enabled:            true,
	}
	before := r.Clone()

	title := "Streets"
	ResourcePatch{Title: &title}.Apply(r)
	expected := before.Clone()
	expected.Title = "Streets"
	assert.Equal(t, expected, r)

	// An empty bounding box clears just that box.
	ResourcePatch{LatLonBBox: &BBox{}}.Apply(r)
	expected.LatLonBBox = nil
	assert.Equal(t, expected, r)

	// Patches do not alias their input.
	keywords := []string{"x"}
	ResourcePatch{Keywords: &keywords}.Apply(r)
	keywords[0] = "y"
	assert.Equal(t, []string{"x"}, r.Keywords)
}

func TestAttributionPatchMerges(t *testing.T) {
	lg := &LayerGroup{Attribution: &Attribution{Title: "Provider", LogoHeight: 20}}
	width := 101
	LayerGroupPatch{Attribution: &AttributionPatch{LogoWidth: &width}}.Apply(lg)
	assert.Equal(t, &Attribution{Title: "Provider", LogoWidth: 101, LogoHeight: 20}, lg.Attribution)

	lg = &LayerGroup{}
	LayerGroupPatch{Attribution: &AttributionPatch{LogoWidth: &width}}.Apply(lg)
	assert.Equal(t, &Attribution{LogoWidth: 101}, lg.Attribution)
}

func TestCloneIsDeep(t *testing.T) {
	lg := &LayerGroup{
		Info:   Info{Metadata: map[string][]string{"k": {"v"}}},
		Layers: []PublishedRef{{Type: PublishedLayer, Ref: Ref{Name: "a"}}},
		Styles: []*Ref{{Name: "s"}, nil},
	}
	c := lg.Clone()
	c.Metadata["k"][0] = "changed"
	c.Styles[0].Name = "changed"
	c.Layers[0].Name = "changed"
	assert.Equal(t, "v", lg.Metadata["k"][0])
	assert.Equal(t, "s", lg.Styles[0].Name)
	assert.Equal(t, "a", lg.Layers[0].Name)
	assert.Nil(t, c.Styles[1])
}

func TestKindMappings(t *testing.T) {
	for _, sk := range StoreKinds {
		assert.True(t, sk.Valid())
		assert.Equal(t, sk, sk.ResourceKind().StoreKind())
		assert.NotEmpty(t, LayerType(sk.ResourceKind()))
	}
	assert.False(t, StoreKind("x").Valid())
	assert.False(t, ResourceKind("x").Valid())
	for _, kind := range []Kind{KindWorkspace, KindNamespace, KindStore, KindResource, KindLayer, KindLayerGroup, KindStyle} {
		obj := NewObject(kind)
		if assert.NotNil(t, obj) {
			assert.Equal(t, kind, obj.ObjectKind())
			assert.Equal(t, obj, CloneObject(obj))
		}
	}
}
