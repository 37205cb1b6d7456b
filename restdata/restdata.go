// Copyright 2015-2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restdata defines common data structures shared between the
// restserver and restclient packages.  Generally JSON encodings of
// these and of the catalog package types are passed across the wire
// as the application/vnd.diffeo.geocatalog.v1+json MIME type.
//
// API Usage
//
// HTTP GET the root document at its specified URL.  This will return
// a JSON serialization of the RootData object, a set of RFC 6570 URI
// templates.  Fill in the template values and follow the links to get
// to other resources.  For instance, if the system is rooted at /, a
// JSON serialization of RootData will include
//
//     {
//         "workspaces_url": "/workspaces",
//         "workspace_url": "/workspaces/{workspace}",
//         "store_url": "/workspaces/{workspace}/{storeType}/{store}"
//     }
//
// While the URL structure is predictable and formulaic, it is not
// actually part of the API contract.  The only specific guarantee is
// that retrieving the root resource will return a serialization of
// RootData.
//
// Collection segments name the kind of object they hold.  Stores live
// under "datastores", "coveragestores", "wmsstores", or "wmtsstores",
// or "stores" for every kind at once; resources likewise live under
// "featuretypes", "coverages", "wmslayers", "wmtslayers", or
// "resources".  A resource path may skip the store, in which case the
// workspace's default data store is used for creation and every store
// is searched otherwise.
//
// Encoding Considerations
//
// A name that appears in a URL string must be made of ASCII
// characters that can be represented unescaped.  Other names are
// escaped by encoding their byte representations using the base64
// URL-safe encoding with no padding, and prepending a hyphen to the
// name.  Names that would be otherwise safe and begin with hyphens
// are also encoded.  The empty name is "-", which is how a global
// scope is written where a workspace is expected.
//
// Timestamps are represented in JSON as RFC 3339 strings,
// "2012-03-04T05:06:07.890Z".
//
// HTTP Considerations
//
// Collections support GET to list and POST to create; POST returns
// 201 Created with a Location header.  Single objects support GET,
// PUT with a patch, and DELETE; POST to a single object is 405 Method
// Not Allowed.  Any resource that supports GET also supports HEAD.
//
// When a patch is PUT, any non-null field is updated.  Fields that
// are null or absent in the uploaded data remain unchanged.
//
// DELETE honors "recurse=true" to remove dependent objects and
// "purge=none|metadata|all" to remove a store's backing files (or,
// for styles, "purge=true" to remove the style document).  PUT on a
// resource honors "recalculate=nativebbox,latlonbbox,attributes".
// Any request honors "quietOnNotFound=true", which keeps the 404
// status but sends no error body.
//
// Errors
//
// Most errors are returned as encodings of the ErrorResponse type,
// whose Error field is the name of the catalog error kind.  Each kind
// has exactly one HTTP status; see StatusOf.
//
// If Go server code panics, this should be captured and returned as
// an ErrorResponse with error code "panic".
package restdata

import "github.com/diffeo/go-geocatalog/catalog"

// V1JSONMediaType is the preferred, most specific MIME type for the
// JSON representation of this content.
const V1JSONMediaType = "application/vnd.diffeo.geocatalog.v1+json"

// JSONMediaType requests the most recent version of the JSON
// representation of this content.
const JSONMediaType = "application/vnd.diffeo.geocatalog+json"

// SLDMediaType is the MIME type of SLD style documents.
const SLDMediaType = "application/vnd.ogc.sld+xml"

// StyleMediaType returns the MIME type of a style document in format.
func StyleMediaType(format string) string {
	switch format {
	case "", "sld":
		return SLDMediaType
	case "css":
		return "application/vnd.geoserver.geocss+css"
	case "ysld":
		return "application/vnd.geoserver.ysld+yaml"
	case "mbstyle":
		return "application/vnd.geoserver.mbstyle+json"
	}
	return "application/octet-stream"
}

// RootData is returned by the root path.  Every field but URL is a
// URI template; the parameter names are the ones shown in each
// comment.
type RootData struct {
	// URL points at the root document itself.
	URL string `json:"url"`

	// WorkspacesURL lists workspaces (GET) and creates them
	// (POST a catalog.Workspace).
	WorkspacesURL string `json:"workspaces_url"`

	// WorkspaceURL points at one workspace: {workspace}.  GET
	// returns a catalog.Workspace, PUT takes a
	// catalog.WorkspacePatch.
	WorkspaceURL string `json:"workspace_url"`

	// DefaultWorkspaceURL makes {workspace} the default
	// workspace on PUT.
	DefaultWorkspaceURL string `json:"default_workspace_url"`

	// NamespacesURL lists and creates namespaces.
	NamespacesURL string `json:"namespaces_url"`

	// NamespaceURL points at one namespace: {namespace}.
	NamespaceURL string `json:"namespace_url"`

	// StoresURL lists and creates stores: {workspace},
	// {storeType}.
	StoresURL string `json:"stores_url"`

	// StoreURL points at one store: {workspace}, {storeType},
	// {store}.
	StoreURL string `json:"store_url"`

	// ResourcesURL lists and creates resources of one store:
	// {workspace}, {storeType}, {store}, {resourceType}.
	ResourcesURL string `json:"resources_url"`

	// ResourceURL points at one resource of one store.
	ResourceURL string `json:"resource_url"`

	// WorkspaceResourcesURL lists the resources of a whole
	// workspace and creates resources in its default data store:
	// {workspace}, {resourceType}.
	WorkspaceResourcesURL string `json:"workspace_resources_url"`

	// WorkspaceResourceURL points at one resource of a
	// workspace: {workspace}, {resourceType}, {resource}.
	WorkspaceResourceURL string `json:"workspace_resource_url"`

	// LayersURL lists every layer.
	LayersURL string `json:"layers_url"`

	// LayerURL points at one layer found by unqualified name:
	// {layer}.
	LayerURL string `json:"layer_url"`

	// WorkspaceLayersURL lists the layers of {workspace}.
	WorkspaceLayersURL string `json:"workspace_layers_url"`

	// WorkspaceLayerURL points at one layer: {workspace},
	// {layer}.
	WorkspaceLayerURL string `json:"workspace_layer_url"`

	// LayerGroupsURL lists and creates global layer groups.
	LayerGroupsURL string `json:"layer_groups_url"`

	// LayerGroupURL points at one global layer group: {group}.
	LayerGroupURL string `json:"layer_group_url"`

	// WorkspaceLayerGroupsURL lists and creates the layer groups
	// of {workspace}.
	WorkspaceLayerGroupsURL string `json:"workspace_layer_groups_url"`

	// WorkspaceLayerGroupURL points at one layer group:
	// {workspace}, {group}.
	WorkspaceLayerGroupURL string `json:"workspace_layer_group_url"`

	// StylesURL lists global styles (GET) and creates them
	// (POST a StyleUpload).
	StylesURL string `json:"styles_url"`

	// StyleURL points at one global style: {style}.  PUT takes
	// a StyleUpdate.
	StyleURL string `json:"style_url"`

	// StyleBodyURL is the raw document of a global style:
	// {style}.
	StyleBodyURL string `json:"style_body_url"`

	// WorkspaceStylesURL lists and creates the styles of
	// {workspace}.
	WorkspaceStylesURL string `json:"workspace_styles_url"`

	// WorkspaceStyleURL points at one style: {workspace},
	// {style}.
	WorkspaceStyleURL string `json:"workspace_style_url"`

	// WorkspaceStyleBodyURL is the raw document of a workspace
	// style: {workspace}, {style}.
	WorkspaceStyleBodyURL string `json:"workspace_style_body_url"`

	// ResetURL drops cached resource descriptions on POST.
	ResetURL string `json:"reset_url"`

	// EventsURL is a websocket endpoint streaming catalog.Event
	// values as JSON text messages.
	EventsURL string `json:"events_url"`
}

// StyleUpload is the body of a style creation request.
type StyleUpload struct {
	Style *catalog.Style `json:"style"`

	// Body, if present, is the style document.
	Body []byte `json:"body,omitempty"`
}

// StyleUpdate is the body of a style update request.
type StyleUpdate struct {
	Patch catalog.StylePatch `json:"style"`

	// Body, if present, replaces the style document.
	Body []byte `json:"body,omitempty"`
}

// AllStores is the collection segment for stores of every kind.
const AllStores = "stores"

// AllResources is the collection segment for resources of every kind.
const AllResources = "resources"

var storeSegments = map[catalog.StoreKind]string{
	catalog.DataStore:     "datastores",
	catalog.CoverageStore: "coveragestores",
	catalog.WMSStore:      "wmsstores",
	catalog.WMTSStore:     "wmtsstores",
}

var resourceSegments = map[catalog.ResourceKind]string{
	catalog.FeatureType: "featuretypes",
	catalog.Coverage:    "coverages",
	catalog.WMSLayer:    "wmslayers",
	catalog.WMTSLayer:   "wmtslayers",
}

// StoreSegment returns the collection segment for stores of kind.
// The empty kind is AllStores.
func StoreSegment(kind catalog.StoreKind) string {
	if seg, ok := storeSegments[kind]; ok {
		return seg
	}
	return AllStores
}

// ParseStoreSegment is the inverse of StoreSegment.  It returns
// false if seg is not a store collection.
func ParseStoreSegment(seg string) (catalog.StoreKind, bool) {
	if seg == AllStores {
		return "", true
	}
	for kind, s := range storeSegments {
		if s == seg {
			return kind, true
		}
	}
	return "", false
}

// ResourceSegment returns the collection segment for resources of
// kind.  The empty kind is AllResources.
func ResourceSegment(kind catalog.ResourceKind) string {
	if seg, ok := resourceSegments[kind]; ok {
		return seg
	}
	return AllResources
}

// ParseResourceSegment is the inverse of ResourceSegment.  It returns
// false if seg is not a resource collection.
func ParseResourceSegment(seg string) (catalog.ResourceKind, bool) {
	if seg == AllResources {
		return "", true
	}
	for kind, s := range resourceSegments {
		if s == seg {
			return kind, true
		}
	}
	return "", false
}
