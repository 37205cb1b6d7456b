// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package catalog

// Each Clone method returns a deep copy.  Catalog implementations
// hand out clones so that callers never share state with the
// catalog.

func cloneMetadata(m map[string][]string) map[string][]string {
	if m == nil {
		return nil
	}
	result := make(map[string][]string, len(m))
	for k, v := range m {
		result[k] = append([]string(nil), v...)
	}
	return result
}

func cloneStrings(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	result := make(map[string]string, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}

func cloneRef(r *Ref) *Ref {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

func cloneBBox(b *BBox) *BBox {
	if b == nil {
		return nil
	}
	c := *b
	return &c
}

func (info Info) clone() Info {
	info.Metadata = cloneMetadata(info.Metadata)
	return info
}

// Clone returns a deep copy of ws.
func (ws *Workspace) Clone() *Workspace {
	c := *ws
	c.Info = ws.Info.clone()
	return &c
}

// Clone returns a deep copy of ns.
func (ns *Namespace) Clone() *Namespace {
	c := *ns
	c.Info = ns.Info.clone()
	return &c
}

// Clone returns a deep copy of st.
func (st *Store) Clone() *Store {
	c := *st
	c.Info = st.Info.clone()
	c.Connection = cloneStrings(st.Connection)
	return &c
}

// Clone returns a deep copy of r.
func (r *Resource) Clone() *Resource {
	c := *r
	c.Info = r.Info.clone()
	c.InternationalTitle = cloneStrings(r.InternationalTitle)
	if r.Keywords != nil {
		c.Keywords = append([]string{}, r.Keywords...)
	}
	c.NativeBBox = cloneBBox(r.NativeBBox)
	c.LatLonBBox = cloneBBox(r.LatLonBBox)
	if r.Attributes != nil {
		c.Attributes = append([]Attribute{}, r.Attributes...)
	}
	return &c
}

// Clone returns a deep copy of l.
func (l *Layer) Clone() *Layer {
	c := *l
	c.Info = l.Info.clone()
	c.DefaultStyle = cloneRef(l.DefaultStyle)
	if l.Styles != nil {
		c.Styles = append([]Ref{}, l.Styles...)
	}
	return &c
}

// Clone returns a deep copy of lg.
func (lg *LayerGroup) Clone() *LayerGroup {
	c := *lg
	c.Info = lg.Info.clone()
	c.Workspace = cloneRef(lg.Workspace)
	if lg.Layers != nil {
		c.Layers = append([]PublishedRef{}, lg.Layers...)
	}
	if lg.Styles != nil {
		c.Styles = make([]*Ref, len(lg.Styles))
		for i, s := range lg.Styles {
			c.Styles[i] = cloneRef(s)
		}
	}
	c.RootLayer = cloneRef(lg.RootLayer)
	c.RootLayerStyle = cloneRef(lg.RootLayerStyle)
	c.Bounds = cloneBBox(lg.Bounds)
	if lg.Attribution != nil {
		a := *lg.Attribution
		c.Attribution = &a
	}
	if lg.MetadataLinks != nil {
		c.MetadataLinks = append([]MetadataLink{}, lg.MetadataLinks...)
	}
	if lg.Keywords != nil {
		c.Keywords = append([]string{}, lg.Keywords...)
	}
	return &c
}

// Clone returns a deep copy of st.
func (st *Style) Clone() *Style {
	c := *st
	c.Info = st.Info.clone()
	c.Workspace = cloneRef(st.Workspace)
	return &c
}

// CloneObject returns a deep copy of any catalog object.
func CloneObject(obj Object) Object {
	switch o := obj.(type) {
	case *Workspace:
		return o.Clone()
	case *Namespace:
		return o.Clone()
	case *Store:
		return o.Clone()
	case *Resource:
		return o.Clone()
	case *Layer:
		return o.Clone()
	case *LayerGroup:
		return o.Clone()
	case *Style:
		return o.Clone()
	}
	panic("catalog: unknown object type")
}

// NewObject returns a new zero object of kind, or nil if kind is
// unknown.  Decoders use this to pick a concrete type.
func NewObject(kind Kind) Object {
	switch kind {
	case KindWorkspace:
		return &Workspace{}
	case KindNamespace:
		return &Namespace{}
	case KindStore:
		return &Store{}
	case KindResource:
		return &Resource{}
	case KindLayer:
		return &Layer{}
	case KindLayerGroup:
		return &LayerGroup{}
	case KindStyle:
		return &Style{}
	}
	return nil
}
