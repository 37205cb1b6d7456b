// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/diffeo/go-geocatalog/catalog"
	"github.com/diffeo/go-geocatalog/restdata"
)

// NewRouter creates a new HTTP handler that processes all catalog
// requests.  All catalog resources are under the URL path root,
// e.g. /workspaces/sf.  For more control over this setup, create a
// mux.Router and call PopulateRouter instead.  A nil log means the
// logrus standard logger.
func NewRouter(c catalog.Catalog, log logrus.FieldLogger) http.Handler {
	r := mux.NewRouter()
	PopulateRouter(r, c, log)
	return r
}

// PopulateRouter adds catalog routes to an existing
// github.com/gorilla/mux router object.  This can be used, for
// instance, to place the catalog under a subpath:
//
//     r := mux.NewRouter()
//     s := r.PathPrefix("/rest").Subrouter()
//     PopulateRouter(s, memory.New(), nil)
func PopulateRouter(r *mux.Router, c catalog.Catalog, log logrus.FieldLogger) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	api := &restAPI{Catalog: c, Router: r, Log: log}
	api.PopulateRouter(r)
}

// restAPI holds the persistent state for the catalog REST API.
type restAPI struct {
	Catalog  catalog.Catalog
	Router   *mux.Router
	Log      logrus.FieldLogger
	Upgrader websocket.Upgrader
}

func segmentPattern(name string, segments []string) string {
	return "{" + name + ":" + strings.Join(segments, "|") + "}"
}

// PopulateRouter adds all catalog URL paths to a router.
func (api *restAPI) PopulateRouter(r *mux.Router) {
	var storeSegs, resourceSegs []string
	for _, kind := range catalog.StoreKinds {
		storeSegs = append(storeSegs, restdata.StoreSegment(kind))
		resourceSegs = append(resourceSegs, restdata.ResourceSegment(kind.ResourceKind()))
	}
	storeType := segmentPattern("storeType", append(storeSegs, restdata.AllStores))
	resourceType := segmentPattern("resourceType", append(resourceSegs, restdata.AllResources))

	api.route(r, "/workspaces", "workspaces", &resourceHandler{
		Representation: catalog.Workspace{},
		Get:            api.WorkspaceList,
		Post:           api.WorkspacePost,
	})
	api.route(r, "/workspaces/{workspace}", "workspace", &resourceHandler{
		Representation: catalog.WorkspacePatch{},
		Get:            api.WorkspaceGet,
		Put:            api.WorkspacePut,
		Delete:         api.WorkspaceDelete,
	})
	api.route(r, "/workspaces/{workspace}/default", "defaultWorkspace", &resourceHandler{
		Put: api.DefaultWorkspacePut,
	})
	api.route(r, "/namespaces", "namespaces", &resourceHandler{
		Representation: catalog.Namespace{},
		Get:            api.NamespaceList,
		Post:           api.NamespacePost,
	})
	api.route(r, "/namespaces/{namespace}", "namespace", &resourceHandler{
		Representation: catalog.NamespacePatch{},
		Get:            api.NamespaceGet,
		Put:            api.NamespacePut,
		Delete:         api.NamespaceDelete,
	})

	ws := "/workspaces/{workspace}/"
	api.route(r, ws+storeType, "stores", &resourceHandler{
		Representation: catalog.Store{},
		Get:            api.StoreList,
		Post:           api.StorePost,
	})
	api.route(r, ws+storeType+"/{store}", "store", &resourceHandler{
		Representation: catalog.StorePatch{},
		Get:            api.StoreGet,
		Put:            api.StorePut,
		Delete:         api.StoreDelete,
	})
	for _, path := range []struct{ collection, item string }{
		{ws + storeType + "/{store}/" + resourceType, "resources"},
		{ws + resourceType, "workspaceResources"},
	} {
		api.route(r, path.collection, path.item, &resourceHandler{
			Representation: catalog.Resource{},
			Get:            api.ResourceList,
			Post:           api.ResourcePost,
		})
	}
	for _, path := range []struct{ item, name string }{
		{ws + storeType + "/{store}/" + resourceType + "/{resource}", "resource"},
		{ws + resourceType + "/{resource}", "workspaceResource"},
	} {
		api.route(r, path.item, path.name, &resourceHandler{
			Representation: catalog.ResourcePatch{},
			Get:            api.ResourceGet,
			Put:            api.ResourcePut,
			Delete:         api.ResourceDelete,
		})
	}

	// Layers, layer groups, and styles exist both globally and in
	// workspaces; the handlers treat a missing {workspace} as
	// global.
	for _, prefix := range []struct{ path, name string }{
		{"/", ""},
		{ws, "workspace"},
	} {
		name := func(s string) string {
			if prefix.name == "" {
				return s
			}
			return prefix.name + strings.ToUpper(s[:1]) + s[1:]
		}
		api.route(r, prefix.path+"layers", name("layers"), &resourceHandler{
			Get: api.LayerList,
		})
		api.route(r, prefix.path+"layers/{layer}", name("layer"), &resourceHandler{
			Representation: catalog.LayerPatch{},
			Get:            api.LayerGet,
			Put:            api.LayerPut,
			Delete:         api.LayerDelete,
		})
		api.route(r, prefix.path+"layergroups", name("layerGroups"), &resourceHandler{
			Representation: catalog.LayerGroup{},
			Get:            api.LayerGroupList,
			Post:           api.LayerGroupPost,
		})
		api.route(r, prefix.path+"layergroups/{group}", name("layerGroup"), &resourceHandler{
			Representation: catalog.LayerGroupPatch{},
			Get:            api.LayerGroupGet,
			Put:            api.LayerGroupPut,
			Delete:         api.LayerGroupDelete,
		})
		api.route(r, prefix.path+"styles", name("styles"), &resourceHandler{
			Representation: restdata.StyleUpload{},
			Get:            api.StyleList,
			Post:           api.StylePost,
		})
		api.route(r, prefix.path+"styles/{style}", name("style"), &resourceHandler{
			Representation: restdata.StyleUpdate{},
			Get:            api.StyleGet,
			Put:            api.StylePut,
			Delete:         api.StyleDelete,
		})
		r.Path(prefix.path + "styles/{style}/body").Name(name("styleBody")).
			Handler(&styleBodyHandler{api: api})
	}

	api.route(r, "/reset", "reset", &resourceHandler{
		Post: api.ResetPost,
		Put:  api.ResetPost,
	})
	r.Path("/events").Name("events").HandlerFunc(api.Events)
	api.route(r, "/", "root", &resourceHandler{
		Get: api.RootDocument,
	})
}

// route adds one resource to the router.
func (api *restAPI) route(r *mux.Router, path, name string, h *resourceHandler) {
	h.Context = api.Context
	h.Log = api.Log
	r.Path(path).Name(name).Handler(h)
}

func (api *restAPI) RootDocument(ctx *requestContext) (interface{}, error) {
	resp := restdata.RootData{}
	err := buildURLs(api.Router).
		URL(&resp.URL, "root").
		Template(&resp.WorkspacesURL, "workspaces").
		Template(&resp.WorkspaceURL, "workspace").
		Template(&resp.DefaultWorkspaceURL, "defaultWorkspace").
		Template(&resp.NamespacesURL, "namespaces").
		Template(&resp.NamespaceURL, "namespace").
		Template(&resp.StoresURL, "stores").
		Template(&resp.StoreURL, "store").
		Template(&resp.ResourcesURL, "resources").
		Template(&resp.ResourceURL, "resource").
		Template(&resp.WorkspaceResourcesURL, "workspaceResources").
		Template(&resp.WorkspaceResourceURL, "workspaceResource").
		Template(&resp.LayersURL, "layers").
		Template(&resp.LayerURL, "layer").
		Template(&resp.WorkspaceLayersURL, "workspaceLayers").
		Template(&resp.WorkspaceLayerURL, "workspaceLayer").
		Template(&resp.LayerGroupsURL, "layerGroups").
		Template(&resp.LayerGroupURL, "layerGroup").
		Template(&resp.WorkspaceLayerGroupsURL, "workspaceLayerGroups").
		Template(&resp.WorkspaceLayerGroupURL, "workspaceLayerGroup").
		Template(&resp.StylesURL, "styles").
		Template(&resp.StyleURL, "style").
		Template(&resp.StyleBodyURL, "styleBody").
		Template(&resp.WorkspaceStylesURL, "workspaceStyles").
		Template(&resp.WorkspaceStyleURL, "workspaceStyle").
		Template(&resp.WorkspaceStyleBodyURL, "workspaceStyleBody").
		Template(&resp.ResetURL, "reset").
		Template(&resp.EventsURL, "events").
		Error
	return resp, err
}

func (api *restAPI) ResetPost(ctx *requestContext, in interface{}) (interface{}, error) {
	return nil, api.Catalog.Reset(ctx.Ctx)
}
