// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package catalog

import "context"

// Description is what a DataSource knows about one dataset.
type Description struct {
	Attributes []Attribute
	NativeBBox *BBox
	LatLonBBox *BBox
	SRS        string

	// GeometryType is the type of the default geometry, such as
	// "Point" or "MultiPolygon", or "" if there is none.
	GeometryType string
}

// DataSource reads the underlying data a store points at.  The
// catalog uses it to fill in derived resource fields; it never
// modifies the data.
type DataSource interface {
	// Describe returns a description of the dataset nativeName in
	// store.  A dataset that does not exist is a NotFound error.
	Describe(ctx context.Context, store *Store, nativeName string) (*Description, error)
}

// Change is one object-level change in a committed transaction.
// Object is nil when the object was removed.
type Change struct {
	Kind   Kind
	ID     string
	Object Object
}

// Snapshot is the full persisted state of a catalog.
type Snapshot struct {
	// Objects holds every object in creation order.
	Objects []Object

	// Defaults maps default slots to object IDs: "workspace" to
	// the default workspace, and "store:<workspace id>" to the
	// default data store of that workspace.
	Defaults map[string]string
}

// Persister durably records committed catalog state.  A catalog
// calls Save inside the commit of every transaction; if Save fails
// the transaction rolls back.
type Persister interface {
	// Load returns the persisted state, or an empty snapshot if
	// nothing has been saved yet.
	Load(ctx context.Context) (*Snapshot, error)

	// Save records changes and the complete set of defaults
	// atomically.
	Save(ctx context.Context, changes []Change, defaults map[string]string) error
}
