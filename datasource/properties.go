// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package datasource reads the data behind file-based stores well
// enough to describe it: attribute lists, geometry type, and bounds.
//
// The only vector format understood is the property file format,
// one "<name>.properties" file per feature type in the store's
// directory:
//
//	_=id:Integer,name:String,the_geom:Point:srid=4326
//	roads.1=1|Main Street|POINT(10 20)
//
// Other store kinds are described as having nothing derivable.
package datasource

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"path"
	"strconv"
	"strings"

	"github.com/diffeo/go-geocatalog/blob"
	"github.com/diffeo/go-geocatalog/catalog"
)

// Properties is a catalog.DataSource over property files in a blob
// store.
type Properties struct {
	Blobs blob.Store
}

// New creates a property file data source.
func New(blobs blob.Store) *Properties {
	return &Properties{Blobs: blobs}
}

var geometryTypes = map[string]bool{
	"Geometry":           true,
	"Point":              true,
	"MultiPoint":         true,
	"LineString":         true,
	"MultiLineString":    true,
	"Polygon":            true,
	"MultiPolygon":       true,
	"GeometryCollection": true,
}

// Describe implements catalog.DataSource.
func (p *Properties) Describe(ctx context.Context, store *catalog.Store, nativeName string) (*catalog.Description, error) {
	if store.Kind != catalog.DataStore {
		return &catalog.Description{}, nil
	}
	settings, err := store.Settings()
	if err != nil {
		return nil, catalog.WrapError(catalog.ValidationFailed, err, "store %q", store.Name)
	}
	dir := settings.Location()
	if dir == "" {
		return nil, catalog.NotFoundf(ctx, "store %q has no file location", store.Name)
	}
	key := path.Join(dir, nativeName+".properties")
	data, err := blob.ReadAll(ctx, p.Blobs, key)
	if errors.Is(err, blob.ErrNotFound) {
		return nil, catalog.NotFoundf(ctx, "no dataset %q in store %q", nativeName, store.Name)
	}
	if err != nil {
		return nil, catalog.WrapError(catalog.IOFailure, err, "reading %s", key)
	}
	desc, err := parse(data)
	if err != nil {
		return nil, catalog.WrapError(catalog.ValidationFailed, err, "parsing %s", key)
	}
	return desc, nil
}

type column struct {
	name     string
	binding  string
	geometry bool
}

// parse reads a whole property file.
func parse(data []byte) (*catalog.Description, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	var (
		columns []column
		desc    = &catalog.Description{}
		geomCol = -1
		bounds  *catalog.BBox
	)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			return nil, errors.New("line without '='")
		}
		key, value := line[:eq], line[eq+1:]
		if columns == nil {
			if key != "_" {
				return nil, errors.New("missing type header")
			}
			var err error
			columns, desc.SRS, err = parseHeader(value)
			if err != nil {
				return nil, err
			}
			for i, col := range columns {
				desc.Attributes = append(desc.Attributes, catalog.Attribute{
					Name:      col.name,
					Binding:   col.binding,
					Nillable:  true,
					MinOccurs: 0,
					MaxOccurs: 1,
				})
				if col.geometry && geomCol < 0 {
					geomCol = i
					desc.GeometryType = col.binding
				}
			}
			continue
		}
		if geomCol < 0 {
			continue
		}
		values := strings.Split(value, "|")
		if geomCol < len(values) {
			bounds = extend(bounds, values[geomCol])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if columns == nil {
		return nil, errors.New("empty property file")
	}
	if bounds != nil {
		bounds.CRS = desc.SRS
		desc.NativeBBox = bounds
		if desc.SRS == "EPSG:4326" {
			latlon := *bounds
			desc.LatLonBBox = &latlon
		}
	}
	return desc, nil
}

// parseHeader reads "name:Type[:srid=N],..." returning the columns and
// the SRS of the first geometry column.
func parseHeader(header string) ([]column, string, error) {
	var (
		columns []column
		srs     string
	)
	for _, spec := range strings.Split(header, ",") {
		parts := strings.Split(strings.TrimSpace(spec), ":")
		if len(parts) < 2 || parts[0] == "" {
			return nil, "", errors.New("bad attribute spec " + strconv.Quote(spec))
		}
		col := column{name: parts[0], binding: parts[1], geometry: geometryTypes[parts[1]]}
		if col.geometry && srs == "" {
			srs = "EPSG:4326"
			for _, opt := range parts[2:] {
				if strings.HasPrefix(opt, "srid=") {
					srs = "EPSG:" + strings.TrimPrefix(opt, "srid=")
				}
			}
		}
		columns = append(columns, col)
	}
	return columns, srs, nil
}

func isNumberRune(r rune) bool {
	return (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '+' || r == 'e' || r == 'E'
}

// extend grows bounds to cover every coordinate pair in a WKT value.
func extend(bounds *catalog.BBox, wkt string) *catalog.BBox {
	var coords []float64
	for _, token := range strings.FieldsFunc(wkt, func(r rune) bool { return !isNumberRune(r) }) {
		if f, err := strconv.ParseFloat(token, 64); err == nil {
			coords = append(coords, f)
		}
	}
	for i := 0; i+1 < len(coords); i += 2 {
		x, y := coords[i], coords[i+1]
		if bounds == nil {
			bounds = &catalog.BBox{MinX: x, MinY: y, MaxX: x, MaxY: y}
			continue
		}
		if x < bounds.MinX {
			bounds.MinX = x
		}
		if x > bounds.MaxX {
			bounds.MaxX = x
		}
		if y < bounds.MinY {
			bounds.MinY = y
		}
		if y > bounds.MaxY {
			bounds.MaxY = y
		}
	}
	return bounds
}
