// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package catalog defines an abstract API to a geospatial
// configuration catalog.
//
// The catalog holds a hierarchy of mutually referencing
// configuration objects: workspaces and their paired namespaces,
// stores inside workspaces, resources served from stores, layers
// publishing resources, layer groups composing layers, and styles.
// Implementations of Catalog provide a specific backend, such as the
// in-process engine in the "memory" package or the HTTP client in
// the "restclient" package.
//
// Objects returned from a Catalog are copies.  Changing them has no
// effect on the catalog; to change an object, pass a patch to the
// matching Update method.  Cross-object references are carried as
// Ref values, where the ID is authoritative and the names are
// refreshed from the current catalog state on every read.
//
// Workspace scope strings follow one convention throughout: an
// empty string means "global" (no workspace), and for workspace and
// namespace lookups the reserved name "default" resolves to the
// current default workspace.
package catalog

import "context"

// Catalog is the principal interface to the configuration catalog.
//
// Every mutating method runs as a single atomic transaction: on
// error, the catalog is unchanged.  Errors are *Error values whose
// Kind says what went wrong.
type Catalog interface {
	// Workspaces returns all workspaces in creation order.
	Workspaces(ctx context.Context) ([]*Workspace, error)

	// Workspace retrieves a workspace by name.  The name
	// "default" returns the default workspace.
	Workspace(ctx context.Context, name string) (*Workspace, error)

	// CreateWorkspace creates a workspace and its namespace.  The
	// first workspace created becomes the default.
	CreateWorkspace(ctx context.Context, ws *Workspace) (*Workspace, error)

	// UpdateWorkspace applies a partial update to a workspace.
	// Renaming a workspace renames its namespace too.
	UpdateWorkspace(ctx context.Context, name string, patch WorkspacePatch) (*Workspace, error)

	// DeleteWorkspace removes a workspace and its namespace.  A
	// workspace with content fails with Conflict unless
	// opts.Recurse is set.
	DeleteWorkspace(ctx context.Context, name string, opts DeleteOptions) error

	// SetDefaultWorkspace makes the named workspace the default.
	SetDefaultWorkspace(ctx context.Context, name string) error

	// Namespaces returns all namespaces in creation order.
	Namespaces(ctx context.Context) ([]*Namespace, error)

	// Namespace retrieves a namespace by prefix.
	Namespace(ctx context.Context, prefix string) (*Namespace, error)

	// CreateNamespace creates a namespace and its workspace.
	CreateNamespace(ctx context.Context, ns *Namespace) (*Namespace, error)

	// UpdateNamespace applies a partial update to a namespace.
	// The prefix cannot be changed here; rename the workspace.
	UpdateNamespace(ctx context.Context, prefix string, patch NamespacePatch) (*Namespace, error)

	// DeleteNamespace removes a namespace and its workspace, with
	// the same rules as DeleteWorkspace.
	DeleteNamespace(ctx context.Context, prefix string, opts DeleteOptions) error

	// Stores lists the stores in a workspace.  If kind is empty,
	// stores of every kind are returned.
	Stores(ctx context.Context, workspace string, kind StoreKind) ([]*Store, error)

	// Store retrieves a store by name.  If kind is non-empty, a
	// store of a different kind is reported as NotFound.
	Store(ctx context.Context, workspace string, kind StoreKind, name string) (*Store, error)

	// CreateStore adds a store to a workspace.
	CreateStore(ctx context.Context, workspace string, st *Store) (*Store, error)

	// UpdateStore applies a partial update to a store.  Its
	// workspace and kind cannot change.
	UpdateStore(ctx context.Context, workspace, name string, patch StorePatch) (*Store, error)

	// DeleteStore removes a store.  A store with resources fails
	// with Conflict unless opts.Recurse is set; opts.Purge says
	// what happens to its backing files.
	DeleteStore(ctx context.Context, workspace, name string, opts DeleteOptions) error

	// Resources lists resources.  If store is empty, every
	// resource in the workspace is returned.
	Resources(ctx context.Context, workspace, store string, kind ResourceKind) ([]*Resource, error)

	// Resource retrieves a resource by name.  If store is empty,
	// the resource is found anywhere in the workspace.
	Resource(ctx context.Context, workspace, store, name string) (*Resource, error)

	// CreateResource adds a resource to a store and publishes a
	// layer for it.  If store is empty, the workspace's default
	// data store is used.
	CreateResource(ctx context.Context, workspace, store string, r *Resource) (*Resource, error)

	// UpdateResource applies a partial update to a resource, and
	// then recalculates any derived fields opts asks for.
	UpdateResource(ctx context.Context, workspace, store, name string, patch ResourcePatch, opts UpdateOptions) (*Resource, error)

	// DeleteResource removes a resource.  A resource with layers
	// fails with Conflict unless opts.Recurse is set.
	DeleteResource(ctx context.Context, workspace, store, name string, opts DeleteOptions) error

	// Layers lists layers.  If workspace is empty, every layer is
	// returned.
	Layers(ctx context.Context, workspace string) ([]*Layer, error)

	// Layer retrieves a layer by name.  If workspace is empty,
	// the default workspace is searched first, then every other
	// workspace in creation order.
	Layer(ctx context.Context, workspace, name string) (*Layer, error)

	// UpdateLayer applies a partial update to a layer.
	UpdateLayer(ctx context.Context, workspace, name string, patch LayerPatch) (*Layer, error)

	// DeleteLayer removes a layer but not its resource.  A layer
	// contained in layer groups fails with Conflict unless
	// opts.Recurse is set.
	DeleteLayer(ctx context.Context, workspace, name string, opts DeleteOptions) error

	// LayerGroups lists the layer groups in a workspace, or the
	// global ones if workspace is empty.
	LayerGroups(ctx context.Context, workspace string) ([]*LayerGroup, error)

	// LayerGroup retrieves a layer group by name.
	LayerGroup(ctx context.Context, workspace, name string) (*LayerGroup, error)

	// CreateLayerGroup adds a layer group.
	CreateLayerGroup(ctx context.Context, workspace string, lg *LayerGroup) (*LayerGroup, error)

	// UpdateLayerGroup applies a partial update to a layer group.
	UpdateLayerGroup(ctx context.Context, workspace, name string, patch LayerGroupPatch) (*LayerGroup, error)

	// DeleteLayerGroup removes a layer group.
	DeleteLayerGroup(ctx context.Context, workspace, name string, opts DeleteOptions) error

	// Styles lists the styles in a workspace, or the global ones
	// if workspace is empty.  The two scopes never mix.
	Styles(ctx context.Context, workspace string) ([]*Style, error)

	// Style retrieves a style by name within exactly one scope.
	Style(ctx context.Context, workspace, name string) (*Style, error)

	// StyleBody returns the style document.
	StyleBody(ctx context.Context, workspace, name string) ([]byte, error)

	// CreateStyle adds a style.  If body is non-nil, it is
	// written as the style document in the same transaction.
	CreateStyle(ctx context.Context, workspace string, st *Style, body []byte) (*Style, error)

	// UpdateStyle applies a partial update to a style, and
	// replaces its document if body is non-nil.
	UpdateStyle(ctx context.Context, workspace, name string, patch StylePatch, body []byte) (*Style, error)

	// DeleteStyle removes a style.  A style in use fails with
	// Conflict unless opts.Recurse is set, in which case every
	// user is switched away from it.  Any purge mode other than
	// PurgeNone deletes the style document too.  A style deleted
	// along with its workspace keeps its document unless the purge
	// is PurgeAll.
	DeleteStyle(ctx context.Context, workspace, name string, opts DeleteOptions) error

	// Reset drops all lazily computed resource descriptions, so
	// that they are read again from the underlying data.
	Reset(ctx context.Context) error
}

// Notifier is implemented by catalogs that can report committed
// changes.
type Notifier interface {
	// Subscribe registers f to be called once per committed
	// change.  f runs while the catalog is still locked and must
	// not block or call back into the catalog.  The returned
	// function removes the subscription.
	Subscribe(f func(Event)) (cancel func())
}

// PurgeMode says what happens to a store's backing files when the
// store is deleted.
type PurgeMode string

const (
	// PurgeNone leaves all backing files in place.
	PurgeNone PurgeMode = "none"

	// PurgeMetadata deletes index and metadata files but leaves
	// data files.  For a data store only spatial indexes count as
	// metadata.
	PurgeMetadata PurgeMode = "metadata"

	// PurgeAll deletes every backing file.
	PurgeAll PurgeMode = "all"
)

// ParsePurgeMode converts a string to a PurgeMode.  The empty
// string is PurgeNone; "true" is accepted as a synonym for PurgeAll.
func ParsePurgeMode(s string) (PurgeMode, error) {
	switch s {
	case "", "none", "false":
		return PurgeNone, nil
	case "metadata":
		return PurgeMetadata, nil
	case "all", "true":
		return PurgeAll, nil
	}
	return "", Errorf(ValidationFailed, "invalid purge mode %q", s)
}

// DeleteOptions control deletion.
type DeleteOptions struct {
	// Recurse authorizes removing everything that depends on the
	// deleted object.
	Recurse bool

	// Purge controls backing file removal for stores.  The zero
	// value means PurgeNone.
	Purge PurgeMode
}

// Recalculation names a derived resource field that can be
// recomputed from the underlying data.
type Recalculation string

const (
	// RecalculateNativeBBox recomputes the native bounding box.
	RecalculateNativeBBox Recalculation = "nativebbox"

	// RecalculateLatLonBBox recomputes the lat/lon bounding box.
	RecalculateLatLonBBox Recalculation = "latlonbbox"

	// RecalculateAttributes reloads the attribute list.
	RecalculateAttributes Recalculation = "attributes"
)

// UpdateOptions control updates of resources.
type UpdateOptions struct {
	// Recalculate lists derived fields to recompute after the
	// patch is applied.
	Recalculate []Recalculation
}

// ParseRecalculate splits a comma-separated recalculate parameter.
// Empty items are ignored.
func ParseRecalculate(s string) ([]Recalculation, error) {
	var result []Recalculation
	start := 0
	for i := 0; i <= len(s); i++ {
		if i < len(s) && s[i] != ',' {
			continue
		}
		item := s[start:i]
		start = i + 1
		switch Recalculation(item) {
		case "":
			continue
		case RecalculateNativeBBox, RecalculateLatLonBBox, RecalculateAttributes:
			result = append(result, Recalculation(item))
		default:
			return nil, Errorf(ValidationFailed, "cannot recalculate %q", item)
		}
	}
	return result, nil
}
