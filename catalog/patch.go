// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package catalog

// Patches carry partial updates.  A nil field is left untouched;
// a non-nil field replaces the current value, even if what it points
// at is empty.  The one exception is bounding boxes: a non-nil empty
// box clears the field.
//
// The Apply methods copy plain fields only.  Fields that refer to
// other objects (workspaces, stores, styles, published entries) need
// the catalog to resolve them, and the catalog implementation deals
// with those itself.  Name changes are also left to the catalog,
// since they are subject to uniqueness rules.

// WorkspacePatch is a partial update to a Workspace.
type WorkspacePatch struct {
	Name     *string              `json:"name"`
	Isolated *bool                `json:"isolated"`
	Metadata *map[string][]string `json:"metadata"`
}

// Apply copies the plain fields of p into ws.
func (p WorkspacePatch) Apply(ws *Workspace) {
	if p.Isolated != nil {
		ws.Isolated = *p.Isolated
	}
	if p.Metadata != nil {
		ws.Metadata = cloneMetadata(*p.Metadata)
	}
}

// NamespacePatch is a partial update to a Namespace.
type NamespacePatch struct {
	Prefix   *string              `json:"prefix"`
	URI      *string              `json:"uri"`
	Isolated *bool                `json:"isolated"`
	Metadata *map[string][]string `json:"metadata"`
}

// Apply copies the plain fields of p into ns.
func (p NamespacePatch) Apply(ns *Namespace) {
	if p.URI != nil {
		ns.URI = *p.URI
	}
	if p.Isolated != nil {
		ns.Isolated = *p.Isolated
	}
	if p.Metadata != nil {
		ns.Metadata = cloneMetadata(*p.Metadata)
	}
}

// StorePatch is a partial update to a Store.
type StorePatch struct {
	Name        *string              `json:"name"`
	Kind        *StoreKind           `json:"kind"`
	Workspace   *Ref                 `json:"workspace"`
	Type        *string              `json:"type"`
	Description *string              `json:"description"`
	Enabled     *bool                `json:"enabled"`
	Connection  *map[string]string   `json:"connectionParameters"`
	Metadata    *map[string][]string `json:"metadata"`
}

// Apply copies the plain fields of p into st.
func (p StorePatch) Apply(st *Store) {
	if p.Type != nil {
		st.Type = *p.Type
	}
	if p.Description != nil {
		st.Description = *p.Description
	}
	if p.Enabled != nil {
		st.Enabled = *p.Enabled
	}
	if p.Connection != nil {
		st.Connection = cloneStrings(*p.Connection)
	}
	if p.Metadata != nil {
		st.Metadata = cloneMetadata(*p.Metadata)
	}
}

// ResourcePatch is a partial update to a Resource.
type ResourcePatch struct {
	Name               *string              `json:"name"`
	NativeName         *string              `json:"nativeName"`
	Kind               *ResourceKind        `json:"kind"`
	Store              *Ref                 `json:"store"`
	Namespace          *Ref                 `json:"namespace"`
	Title              *string              `json:"title"`
	Abstract           *string              `json:"abstract"`
	InternationalTitle *map[string]string   `json:"internationalTitle"`
	Keywords           *[]string            `json:"keywords"`
	SRS                *string              `json:"srs"`
	NativeBBox         *BBox                `json:"nativeBoundingBox"`
	LatLonBBox         *BBox                `json:"latLonBoundingBox"`
	Enabled            *bool                `json:"enabled"`
	Advertised         *bool                `json:"advertised"`
	Attributes         *[]Attribute         `json:"attributes"`
	Metadata           *map[string][]string `json:"metadata"`
}

func applyBBox(dst **BBox, src *BBox) {
	if src == nil {
		return
	}
	if src.IsEmpty() {
		*dst = nil
		return
	}
	*dst = cloneBBox(src)
}

// Apply copies the plain fields of p into r.
func (p ResourcePatch) Apply(r *Resource) {
	if p.NativeName != nil {
		r.NativeName = *p.NativeName
	}
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Abstract != nil {
		r.Abstract = *p.Abstract
	}
	if p.InternationalTitle != nil {
		r.InternationalTitle = cloneStrings(*p.InternationalTitle)
	}
	if p.Keywords != nil {
		r.Keywords = append([]string(nil), (*p.Keywords)...)
	}
	if p.SRS != nil {
		r.SRS = *p.SRS
	}
	applyBBox(&r.NativeBBox, p.NativeBBox)
	applyBBox(&r.LatLonBBox, p.LatLonBBox)
	if p.Enabled != nil {
		r.Enabled = *p.Enabled
	}
	if p.Advertised != nil {
		r.Advertised = *p.Advertised
	}
	if p.Attributes != nil {
		r.Attributes = append([]Attribute(nil), (*p.Attributes)...)
	}
	if p.Metadata != nil {
		r.Metadata = cloneMetadata(*p.Metadata)
	}
}

// LayerPatch is a partial update to a Layer.
type LayerPatch struct {
	Name                 *string              `json:"name"`
	Resource             *Ref                 `json:"resource"`
	DefaultStyle         *Ref                 `json:"defaultStyle"`
	Styles               *[]Ref               `json:"styles"`
	Path                 *string              `json:"path"`
	Enabled              *bool                `json:"enabled"`
	Advertised           *bool                `json:"advertised"`
	Opaque               *bool                `json:"opaque"`
	Queryable            *bool                `json:"queryable"`
	DefaultInterpolation *Interpolation       `json:"defaultWMSInterpolationMethod"`
	Metadata             *map[string][]string `json:"metadata"`
}

// Apply copies the plain fields of p into l.
func (p LayerPatch) Apply(l *Layer) {
	if p.Path != nil {
		l.Path = *p.Path
	}
	if p.Enabled != nil {
		l.Enabled = *p.Enabled
	}
	if p.Advertised != nil {
		l.Advertised = *p.Advertised
	}
	if p.Opaque != nil {
		l.Opaque = *p.Opaque
	}
	if p.Queryable != nil {
		l.Queryable = *p.Queryable
	}
	if p.DefaultInterpolation != nil {
		l.DefaultInterpolation = *p.DefaultInterpolation
	}
	if p.Metadata != nil {
		l.Metadata = cloneMetadata(*p.Metadata)
	}
}

// AttributionPatch is a partial update to an Attribution.
type AttributionPatch struct {
	Title      *string `json:"title"`
	Href       *string `json:"href"`
	LogoURL    *string `json:"logoURL"`
	LogoType   *string `json:"logoType"`
	LogoWidth  *int    `json:"logoWidth"`
	LogoHeight *int    `json:"logoHeight"`
}

// Apply merges p into a, creating a if needed.
func (p AttributionPatch) Apply(a **Attribution) {
	if *a == nil {
		*a = &Attribution{}
	}
	if p.Title != nil {
		(*a).Title = *p.Title
	}
	if p.Href != nil {
		(*a).Href = *p.Href
	}
	if p.LogoURL != nil {
		(*a).LogoURL = *p.LogoURL
	}
	if p.LogoType != nil {
		(*a).LogoType = *p.LogoType
	}
	if p.LogoWidth != nil {
		(*a).LogoWidth = *p.LogoWidth
	}
	if p.LogoHeight != nil {
		(*a).LogoHeight = *p.LogoHeight
	}
}

// LayerGroupPatch is a partial update to a LayerGroup.
type LayerGroupPatch struct {
	Name           *string              `json:"name"`
	Workspace      *Ref                 `json:"workspace"`
	Mode           *LayerGroupMode      `json:"mode"`
	Title          *string              `json:"title"`
	Abstract       *string              `json:"abstract"`
	Layers         *[]PublishedRef      `json:"publishables"`
	Styles         *[]*Ref              `json:"styles"`
	RootLayer      *Ref                 `json:"rootLayer"`
	RootLayerStyle *Ref                 `json:"rootLayerStyle"`
	Bounds         *BBox                `json:"bounds"`
	Attribution    *AttributionPatch    `json:"attribution"`
	MetadataLinks  *[]MetadataLink      `json:"metadataLinks"`
	Keywords       *[]string            `json:"keywords"`
	Enabled        *bool                `json:"enabled"`
	Advertised     *bool                `json:"advertised"`
	Metadata       *map[string][]string `json:"metadata"`
}

// Apply copies the plain fields of p into lg.
func (p LayerGroupPatch) Apply(lg *LayerGroup) {
	if p.Mode != nil {
		lg.Mode = *p.Mode
	}
	if p.Title != nil {
		lg.Title = *p.Title
	}
	if p.Abstract != nil {
		lg.Abstract = *p.Abstract
	}
	applyBBox(&lg.Bounds, p.Bounds)
	if p.Attribution != nil {
		p.Attribution.Apply(&lg.Attribution)
	}
	if p.MetadataLinks != nil {
		lg.MetadataLinks = append([]MetadataLink(nil), (*p.MetadataLinks)...)
	}
	if p.Keywords != nil {
		lg.Keywords = append([]string(nil), (*p.Keywords)...)
	}
	if p.Enabled != nil {
		lg.Enabled = *p.Enabled
	}
	if p.Advertised != nil {
		lg.Advertised = *p.Advertised
	}
	if p.Metadata != nil {
		lg.Metadata = cloneMetadata(*p.Metadata)
	}
}

// StylePatch is a partial update to a Style.
type StylePatch struct {
	Name          *string              `json:"name"`
	Workspace     *Ref                 `json:"workspace"`
	Filename      *string              `json:"filename"`
	Format        *string              `json:"format"`
	FormatVersion *string              `json:"languageVersion"`
	Metadata      *map[string][]string `json:"metadata"`
}

// Apply copies the plain fields of p into st.  The filename is left
// to the catalog, since it names a backing file.
func (p StylePatch) Apply(st *Style) {
	if p.Format != nil {
		st.Format = *p.Format
	}
	if p.FormatVersion != nil {
		st.FormatVersion = *p.FormatVersion
	}
	if p.Metadata != nil {
		st.Metadata = cloneMetadata(*p.Metadata)
	}
}
