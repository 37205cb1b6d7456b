// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restserver publishes a catalog.Catalog as a REST service.
// The restclient package is a matching client.
//
// The complete REST API is defined in the restdata package.  In
// particular, note that the URLs described here are not actually part
// of the API.
//
// HTTP Considerations
//
// Clients should use the standard HTTP Accept: header to request a
// specific format.  See "MIME Types" below.  Style documents are the
// exception: they are sent and received as raw documents.
//
// This interface does not (currently) support HTTP caching or
// authentication headers.
//
// MIME Types
//
// This interface understands MIME types as follows:
//
//     application/vnd.diffeo.geocatalog.v1+json
//
// JSON representation of version 1 of this interface.
//
//     application/vnd.diffeo.geocatalog+json
//     application/json
//     text/json
//
// JSON representation of latest version of this interface.
//
// URL Scheme
//
// Catalog objects follow their natural hierarchy and are addressed by
// name.  If the name is not URL-safe printable ASCII, it must be
// base64 encoded using the URL-safe alphabet (RFC 4648 section 5),
// with no padding, and adding an additional - at the front of the
// name.  A single - means "empty".
//
// The following URLs are defined:
//
//     /
//     /workspaces
//     /workspaces/{workspace}
//     /workspaces/{workspace}/default
//     /workspaces/{workspace}/{storeType}
//     /workspaces/{workspace}/{storeType}/{store}
//     /workspaces/{workspace}/{storeType}/{store}/{resourceType}
//     /workspaces/{workspace}/{storeType}/{store}/{resourceType}/{resource}
//     /workspaces/{workspace}/{resourceType}
//     /workspaces/{workspace}/{resourceType}/{resource}
//     /workspaces/{workspace}/layers
//     /workspaces/{workspace}/layers/{layer}
//     /workspaces/{workspace}/layergroups
//     /workspaces/{workspace}/layergroups/{group}
//     /workspaces/{workspace}/styles
//     /workspaces/{workspace}/styles/{style}
//     /workspaces/{workspace}/styles/{style}/body
//     /namespaces
//     /namespaces/{namespace}
//     /layers
//     /layers/{layer}
//     /layergroups
//     /layergroups/{group}
//     /styles
//     /styles/{style}
//     /styles/{style}/body
//     /reset
//     /events
package restserver
