// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"context"
	"errors"
	"fmt"

	"github.com/diffeo/go-geocatalog/blob"
	"github.com/diffeo/go-geocatalog/catalog"
)

const sldContentType = "application/vnd.ogc.sld+xml"

var styleContentTypes = map[string]string{
	"sld":     sldContentType,
	"css":     "application/vnd.geoserver.geocss+css",
	"ysld":    "application/vnd.geoserver.ysld+yaml",
	"mbstyle": "application/vnd.geoserver.mbstyle+json",
}

func styleContentType(format string) string {
	if ct, ok := styleContentTypes[format]; ok {
		return ct
	}
	return "application/octet-stream"
}

// styleKey is the blob key of a style document.
func styleKey(ws *catalog.Ref, filename string) string {
	if ws == nil {
		return "styles/" + filename
	}
	return "workspaces/" + ws.ID + "/styles/" + filename
}

func fileExists(ctx context.Context, blobs blob.Store, key string) (bool, error) {
	ok, err := blob.Exists(ctx, blobs, key)
	if err != nil {
		return false, catalog.WrapError(catalog.IOFailure, err, "checking %s", key)
	}
	return ok, nil
}

var builtinSymbolizers = map[string]string{
	catalog.StylePoint: `<PointSymbolizer><Graphic><Mark><WellKnownName>square</WellKnownName>` +
		`<Fill><CssParameter name="fill">#FF0000</CssParameter></Fill></Mark><Size>6</Size></Graphic></PointSymbolizer>`,
	catalog.StyleLine: `<LineSymbolizer><Stroke><CssParameter name="stroke">#0000FF</CssParameter>` +
		`<CssParameter name="stroke-width">1</CssParameter></Stroke></LineSymbolizer>`,
	catalog.StylePolygon: `<PolygonSymbolizer><Fill><CssParameter name="fill">#AAAAAA</CssParameter></Fill>` +
		`<Stroke><CssParameter name="stroke">#000000</CssParameter></Stroke></PolygonSymbolizer>`,
	catalog.StyleRaster: `<RasterSymbolizer><Opacity>1.0</Opacity></RasterSymbolizer>`,
}

// builtinSLD renders the document of a built-in style.  The generic
// style draws any geometry.
func builtinSLD(name string) []byte {
	symbolizer, ok := builtinSymbolizers[name]
	if !ok {
		symbolizer = builtinSymbolizers[catalog.StylePolygon] +
			builtinSymbolizers[catalog.StyleLine] +
			builtinSymbolizers[catalog.StylePoint]
	}
	return []byte(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<StyledLayerDescriptor version="1.0.0" xmlns="http://www.opengis.net/sld" xmlns:ogc="http://www.opengis.net/ogc">
  <NamedLayer>
    <Name>%s</Name>
    <UserStyle>
      <Title>Default %s style</Title>
      <FeatureTypeStyle><Rule>%s</Rule></FeatureTypeStyle>
    </UserStyle>
  </NamedLayer>
</StyledLayerDescriptor>
`, name, name, symbolizer))
}

// Styles lists the styles in one scope.
func (c *Catalog) Styles(ctx context.Context, workspace string) ([]*catalog.Style, error) {
	var result []*catalog.Style
	err := c.read(ctx, func(ctx context.Context, s *state) error {
		ws, err := s.groupScope(ctx, workspace)
		if err != nil {
			return err
		}
		for _, st := range s.styles.list(func(st *catalog.Style) bool {
			return refScope(st.Workspace) == wsID(ws)
		}) {
			result = append(result, s.fillStyle(st))
		}
		return nil
	})
	return result, err
}

// Style retrieves a style.
func (c *Catalog) Style(ctx context.Context, workspace, name string) (*catalog.Style, error) {
	var result *catalog.Style
	err := c.read(ctx, func(ctx context.Context, s *state) error {
		ws, err := s.groupScope(ctx, workspace)
		if err != nil {
			return err
		}
		st, err := s.style(ctx, ws, name)
		if err != nil {
			return err
		}
		result = s.fillStyle(st)
		return nil
	})
	return result, err
}

// StyleBody returns a style document.  The read happens under the
// catalog lock, so it never sees a document half replaced by a
// concurrent update.
func (c *Catalog) StyleBody(ctx context.Context, workspace, name string) ([]byte, error) {
	var body []byte
	err := c.read(ctx, func(ctx context.Context, s *state) error {
		ws, err := s.groupScope(ctx, workspace)
		if err != nil {
			return err
		}
		st, err := s.style(ctx, ws, name)
		if err != nil {
			return err
		}
		key := styleKey(st.Workspace, st.Filename)
		body, err = blob.ReadAll(ctx, c.blobs, key)
		if errors.Is(err, blob.ErrNotFound) {
			return catalog.NotFoundf(ctx, "style %q has no document", name)
		}
		if err != nil {
			return catalog.WrapError(catalog.IOFailure, err, "reading %s", key)
		}
		return nil
	})
	return body, err
}

// CreateStyle adds a style, writing its document if body is non-nil.
func (c *Catalog) CreateStyle(ctx context.Context, workspace string, in *catalog.Style, body []byte) (*catalog.Style, error) {
	var result *catalog.Style
	err := c.write(ctx, "CreateStyle", func(ctx context.Context, t *tx) error {
		ws, err := t.s.groupScope(ctx, workspace)
		if err != nil {
			return err
		}
		if err := sameWorkspace("style", in.Workspace, ws); err != nil {
			return err
		}
		if err := checkNewName(catalog.KindStyle, in.Name); err != nil {
			return err
		}
		if err := t.s.checkStyleName(ws, in.Name, ""); err != nil {
			return err
		}
		st := in.Clone()
		st.Info = catalog.Info{Metadata: st.Metadata}
		st.Builtin = false
		st.Workspace = nil
		if ws != nil {
			st.Workspace = &catalog.Ref{ID: ws.ID}
		}
		if st.Filename == "" {
			st.Filename = st.Name + ".sld"
		}
		if st.Format == "" {
			st.Format = "sld"
		}
		if st.FormatVersion == "" && st.Format == "sld" {
			st.FormatVersion = "1.0.0"
		}
		if err := t.s.checkStyleFilename(ws, st.Filename, ""); err != nil {
			return err
		}
		if body != nil {
			if err := t.putFile(ctx, styleKey(st.Workspace, st.Filename), body, styleContentType(st.Format)); err != nil {
				return err
			}
		}
		t.create(st)
		result = t.s.fillStyle(st)
		return nil
	})
	return result, err
}

// UpdateStyle applies a partial update to a style, replacing its
// document if body is non-nil.  A new filename moves the existing
// document.
func (c *Catalog) UpdateStyle(ctx context.Context, workspace, name string, patch catalog.StylePatch, body []byte) (*catalog.Style, error) {
	var result *catalog.Style
	err := c.write(ctx, "UpdateStyle", func(ctx context.Context, t *tx) error {
		ws, err := t.s.groupScope(ctx, workspace)
		if err != nil {
			return err
		}
		old, err := t.s.style(ctx, ws, name)
		if err != nil {
			return err
		}
		if err := sameWorkspace("style", patch.Workspace, ws); err != nil {
			return err
		}
		st := old.Clone()
		if patch.Name != nil && *patch.Name != old.Name {
			if old.Builtin {
				return catalog.Errorf(catalog.Forbidden, "cannot rename built-in style %q", old.Name)
			}
			if err := checkRename(catalog.KindStyle, *patch.Name); err != nil {
				return err
			}
			if err := t.s.checkStyleName(ws, *patch.Name, old.ID); err != nil {
				return err
			}
			st.Name = *patch.Name
		}
		patch.Apply(st)

		oldKey := styleKey(old.Workspace, old.Filename)
		if patch.Filename != nil && *patch.Filename != old.Filename {
			if old.Builtin {
				return catalog.Errorf(catalog.Forbidden, "cannot change the file of built-in style %q", old.Name)
			}
			if err := t.s.checkStyleFilename(ws, *patch.Filename, old.ID); err != nil {
				return err
			}
			st.Filename = *patch.Filename
			if body == nil {
				data, err := blob.ReadAll(ctx, c.blobs, oldKey)
				switch {
				case err == nil:
					if err := t.putFile(ctx, styleKey(st.Workspace, st.Filename), data, styleContentType(st.Format)); err != nil {
						return err
					}
				case !errors.Is(err, blob.ErrNotFound):
					return catalog.WrapError(catalog.IOFailure, err, "reading %s", oldKey)
				}
			}
			t.deleteFile(oldKey)
		}
		if body != nil {
			if err := t.putFile(ctx, styleKey(st.Workspace, st.Filename), body, styleContentType(st.Format)); err != nil {
				return err
			}
		}
		t.update(st)
		result = t.s.fillStyle(st)
		return nil
	})
	return result, err
}

// DeleteStyle removes a style.
func (c *Catalog) DeleteStyle(ctx context.Context, workspace, name string, opts catalog.DeleteOptions) error {
	return c.write(ctx, "DeleteStyle", func(ctx context.Context, t *tx) error {
		ws, err := t.s.groupScope(ctx, workspace)
		if err != nil {
			return err
		}
		st, err := t.s.style(ctx, ws, name)
		if err != nil {
			return err
		}
		return t.remove(ctx, st, opts)
	})
}
