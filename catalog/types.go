// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package catalog

import "time"

// Kind identifies the type of a catalog object.
type Kind string

// The kinds of catalog objects.
const (
	KindWorkspace  Kind = "workspace"
	KindNamespace  Kind = "namespace"
	KindStore      Kind = "store"
	KindResource   Kind = "resource"
	KindLayer      Kind = "layer"
	KindLayerGroup Kind = "layerGroup"
	KindStyle      Kind = "style"
)

// Object is implemented by every catalog entity type.
type Object interface {
	// ObjectInfo returns the common bookkeeping fields.
	ObjectInfo() *Info

	// ObjectKind returns the kind of this object.
	ObjectKind() Kind

	// ObjectName returns the name of this object (the prefix,
	// for a namespace).
	ObjectName() string
}

// Info holds the fields every catalog object has.  The catalog
// assigns ID and Created when the object is created; Modified is
// stamped when any transaction touching the object commits.
type Info struct {
	ID       string              `json:"id,omitempty"`
	Created  time.Time           `json:"created"`
	Modified time.Time           `json:"modified"`
	Metadata map[string][]string `json:"metadata,omitempty"`
}

// ObjectInfo returns info itself.
func (info *Info) ObjectInfo() *Info {
	return info
}

// Ref refers to another catalog object.  When ID is set it is
// authoritative; otherwise the object is found by Workspace (empty
// for global objects) and Name.  The catalog fills in all three
// fields on objects it returns.
type Ref struct {
	ID        string `json:"id,omitempty"`
	Workspace string `json:"workspace,omitempty"`
	Name      string `json:"name"`
}

// IsZero reports whether r refers to nothing.
func (r Ref) IsZero() bool {
	return r.ID == "" && r.Workspace == "" && r.Name == ""
}

// String renders r as a qualified name, "ws:name" or "name".
func (r Ref) String() string {
	if r.Workspace == "" {
		return r.Name
	}
	return r.Workspace + ":" + r.Name
}

// Workspace is a named container for stores, layer groups, and
// styles.  It is paired one-to-one with a Namespace.
type Workspace struct {
	Info
	Name     string `json:"name"`
	Isolated bool   `json:"isolated"`

	// Default is true for the single default workspace.  It is
	// ignored on input; use SetDefaultWorkspace.
	Default bool `json:"default"`
}

// ObjectKind returns KindWorkspace.
func (ws *Workspace) ObjectKind() Kind { return KindWorkspace }

// ObjectName returns the workspace name.
func (ws *Workspace) ObjectName() string { return ws.Name }

// Namespace is the URI-identified twin of a workspace.  Its prefix
// is always its workspace's name.
type Namespace struct {
	Info
	Prefix   string `json:"prefix"`
	URI      string `json:"uri"`
	Isolated bool   `json:"isolated"`
	Default  bool   `json:"default"`

	// Workspace is the paired workspace.  It is ignored on input.
	Workspace Ref `json:"workspace"`
}

// ObjectKind returns KindNamespace.
func (ns *Namespace) ObjectKind() Kind { return KindNamespace }

// ObjectName returns the namespace prefix.
func (ns *Namespace) ObjectName() string { return ns.Prefix }

// StoreKind discriminates the store variants.
type StoreKind string

// The store variants.
const (
	DataStore     StoreKind = "dataStore"
	CoverageStore StoreKind = "coverageStore"
	WMSStore      StoreKind = "wmsStore"
	WMTSStore     StoreKind = "wmtsStore"
)

// StoreKinds lists every store kind.
var StoreKinds = []StoreKind{DataStore, CoverageStore, WMSStore, WMTSStore}

// ResourceKind returns the kind of resource a store of kind k
// serves, or "" if k is not a store kind.
func (k StoreKind) ResourceKind() ResourceKind {
	switch k {
	case DataStore:
		return FeatureType
	case CoverageStore:
		return Coverage
	case WMSStore:
		return WMSLayer
	case WMTSStore:
		return WMTSLayer
	}
	return ""
}

// Valid reports whether k is one of the store kinds.
func (k StoreKind) Valid() bool {
	return k.ResourceKind() != ""
}

// Store is a configured connection to some external data.
type Store struct {
	Info
	Name        string    `json:"name"`
	Kind        StoreKind `json:"kind"`
	Workspace   Ref       `json:"workspace"`
	Type        string    `json:"type,omitempty"`
	Description string    `json:"description,omitempty"`
	Enabled     bool      `json:"enabled"`

	// Default is true for the default data store of its
	// workspace.  It is ignored on input.
	Default bool `json:"default"`

	// Connection holds the connection parameters as strings.  Use
	// ParseConnection to get typed values.
	Connection map[string]string `json:"connectionParameters,omitempty"`
}

// ObjectKind returns KindStore.
func (st *Store) ObjectKind() Kind { return KindStore }

// ObjectName returns the store name.
func (st *Store) ObjectName() string { return st.Name }

// ResourceKind discriminates the resource variants.
type ResourceKind string

// The resource variants.
const (
	FeatureType ResourceKind = "featureType"
	Coverage    ResourceKind = "coverage"
	WMSLayer    ResourceKind = "wmsLayer"
	WMTSLayer   ResourceKind = "wmtsLayer"
)

// StoreKind returns the kind of store that serves resources of kind
// k, or "" if k is not a resource kind.
func (k ResourceKind) StoreKind() StoreKind {
	for _, sk := range StoreKinds {
		if sk.ResourceKind() == k {
			return sk
		}
	}
	return ""
}

// Valid reports whether k is one of the resource kinds.
func (k ResourceKind) Valid() bool {
	return k.StoreKind() != ""
}

// BBox is a bounding box in some coordinate reference system.
type BBox struct {
	MinX float64 `json:"minx"`
	MinY float64 `json:"miny"`
	MaxX float64 `json:"maxx"`
	MaxY float64 `json:"maxy"`
	CRS  string  `json:"crs,omitempty"`
}

// IsEmpty reports whether b carries no data at all.  An empty
// bounding box in a patch clears the field.
func (b *BBox) IsEmpty() bool {
	return b == nil || *b == BBox{}
}

// Attribute describes one attribute of a feature type.
type Attribute struct {
	Name      string `json:"name"`
	Binding   string `json:"binding,omitempty"`
	Nillable  bool   `json:"nillable"`
	MinOccurs int    `json:"minOccurs"`
	MaxOccurs int    `json:"maxOccurs"`
}

// Resource is a named dataset served from a store.
type Resource struct {
	Info
	Name       string       `json:"name"`
	NativeName string       `json:"nativeName"`
	Kind       ResourceKind `json:"kind"`

	// Store is the owning store.  It is filled in by the
	// catalog.
	Store Ref `json:"store"`

	// Namespace is derived from the store's workspace.  It is
	// ignored on input.
	Namespace Ref `json:"namespace"`

	Title              string            `json:"title,omitempty"`
	Abstract           string            `json:"abstract,omitempty"`
	InternationalTitle map[string]string `json:"internationalTitle,omitempty"`
	Keywords           []string          `json:"keywords,omitempty"`
	SRS                string            `json:"srs,omitempty"`
	NativeBBox         *BBox             `json:"nativeBoundingBox,omitempty"`
	LatLonBBox         *BBox             `json:"latLonBoundingBox,omitempty"`
	Enabled            bool              `json:"enabled"`
	Advertised         bool              `json:"advertised"`

	// Attributes is the configured attribute list.  If none is
	// configured, the catalog describes the underlying data
	// lazily and caches the result until Reset.
	Attributes []Attribute `json:"attributes,omitempty"`
}

// ObjectKind returns KindResource.
func (r *Resource) ObjectKind() Kind { return KindResource }

// ObjectName returns the resource name.
func (r *Resource) ObjectName() string { return r.Name }

// Interpolation is a WMS interpolation method.
type Interpolation string

// The interpolation methods.
const (
	NearestNeighbor Interpolation = "Nearest"
	Bilinear        Interpolation = "Bilinear"
	Bicubic         Interpolation = "Bicubic"
)

// Valid reports whether i is empty or a known method.
func (i Interpolation) Valid() bool {
	switch i {
	case "", NearestNeighbor, Bilinear, Bicubic:
		return true
	}
	return false
}

// Layer publishes exactly one resource.  Its name and workspace are
// always those of the resource.
type Layer struct {
	Info
	Name     string `json:"name"`
	Type     string `json:"type"`
	Resource Ref    `json:"resource"`

	DefaultStyle         *Ref          `json:"defaultStyle,omitempty"`
	Styles               []Ref         `json:"styles,omitempty"`
	Path                 string        `json:"path,omitempty"`
	Enabled              bool          `json:"enabled"`
	Advertised           bool          `json:"advertised"`
	Opaque               bool          `json:"opaque"`
	Queryable            bool          `json:"queryable"`
	DefaultInterpolation Interpolation `json:"defaultWMSInterpolationMethod,omitempty"`
}

// ObjectKind returns KindLayer.
func (l *Layer) ObjectKind() Kind { return KindLayer }

// ObjectName returns the layer name.
func (l *Layer) ObjectName() string { return l.Name }

// LayerType returns the layer type string for a resource kind.
func LayerType(kind ResourceKind) string {
	switch kind {
	case FeatureType:
		return "VECTOR"
	case Coverage:
		return "RASTER"
	case WMSLayer:
		return "WMS"
	case WMTSLayer:
		return "WMTS"
	}
	return ""
}

// LayerGroupMode says how a layer group is published.
type LayerGroupMode string

// The layer group modes.
const (
	ModeSingle    LayerGroupMode = "SINGLE"
	ModeNamed     LayerGroupMode = "NAMED"
	ModeContainer LayerGroupMode = "CONTAINER"
	ModeEO        LayerGroupMode = "EO"
)

// Valid reports whether m is one of the modes.
func (m LayerGroupMode) Valid() bool {
	switch m {
	case ModeSingle, ModeNamed, ModeContainer, ModeEO:
		return true
	}
	return false
}

// PublishedType discriminates layer group entries.
type PublishedType string

// The layer group entry types.
const (
	PublishedLayer      PublishedType = "layer"
	PublishedLayerGroup PublishedType = "layerGroup"

	// PublishedStyleGroup entries have no published object; the
	// matching style carries the content.
	PublishedStyleGroup PublishedType = "styleGroup"
)

// PublishedRef is one entry of a layer group.
type PublishedRef struct {
	Type PublishedType `json:"type"`
	Ref
}

// Attribution describes the data provider of a layer group.
type Attribution struct {
	Title      string `json:"title,omitempty"`
	Href       string `json:"href,omitempty"`
	LogoURL    string `json:"logoURL,omitempty"`
	LogoType   string `json:"logoType,omitempty"`
	LogoWidth  int    `json:"logoWidth"`
	LogoHeight int    `json:"logoHeight"`
}

// MetadataLink points at external metadata.
type MetadataLink struct {
	Type         string `json:"type,omitempty"`
	About        string `json:"about,omitempty"`
	MetadataType string `json:"metadataType,omitempty"`
	Content      string `json:"content"`
}

// LayerGroup is an ordered composite of layers and layer groups.
// Layers and Styles are parallel lists; a nil style means the
// default style of the entry.
type LayerGroup struct {
	Info
	Name      string         `json:"name"`
	Workspace *Ref           `json:"workspace,omitempty"`
	Mode      LayerGroupMode `json:"mode"`
	Title     string         `json:"title,omitempty"`
	Abstract  string         `json:"abstract,omitempty"`

	Layers         []PublishedRef `json:"publishables"`
	Styles         []*Ref         `json:"styles"`
	RootLayer      *Ref           `json:"rootLayer,omitempty"`
	RootLayerStyle *Ref           `json:"rootLayerStyle,omitempty"`

	Bounds        *BBox          `json:"bounds,omitempty"`
	Attribution   *Attribution   `json:"attribution,omitempty"`
	MetadataLinks []MetadataLink `json:"metadataLinks,omitempty"`
	Keywords      []string       `json:"keywords,omitempty"`
	Enabled       bool           `json:"enabled"`
	Advertised    bool           `json:"advertised"`
}

// ObjectKind returns KindLayerGroup.
func (lg *LayerGroup) ObjectKind() Kind { return KindLayerGroup }

// ObjectName returns the layer group name.
func (lg *LayerGroup) ObjectName() string { return lg.Name }

// Style is a named styling document, global or scoped to a
// workspace.
type Style struct {
	Info
	Name          string `json:"name"`
	Workspace     *Ref   `json:"workspace,omitempty"`
	Filename      string `json:"filename"`
	Format        string `json:"format"`
	FormatVersion string `json:"languageVersion,omitempty"`

	// Builtin marks the default styles that always exist.  It is
	// ignored on input.
	Builtin bool `json:"builtin"`
}

// ObjectKind returns KindStyle.
func (st *Style) ObjectKind() Kind { return KindStyle }

// ObjectName returns the style name.
func (st *Style) ObjectName() string { return st.Name }

// The built-in style names.
const (
	StyleGeneric = "generic"
	StylePoint   = "point"
	StyleLine    = "line"
	StylePolygon = "polygon"
	StyleRaster  = "raster"
)

// BuiltinStyles lists the styles every catalog starts with.
var BuiltinStyles = []string{StyleGeneric, StylePoint, StyleLine, StylePolygon, StyleRaster}

// IsBuiltinStyle reports whether name is one of BuiltinStyles.
func IsBuiltinStyle(name string) bool {
	for _, n := range BuiltinStyles {
		if n == name {
			return true
		}
	}
	return false
}
