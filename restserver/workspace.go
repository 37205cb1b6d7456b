// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"github.com/diffeo/go-geocatalog/catalog"
)

func (api *restAPI) WorkspaceList(ctx *requestContext) (interface{}, error) {
	return api.Catalog.Workspaces(ctx.Ctx)
}

func (api *restAPI) WorkspacePost(ctx *requestContext, in interface{}) (interface{}, error) {
	req, valid := in.(catalog.Workspace)
	if !valid {
		return nil, errUnmarshal
	}
	ws, err := api.Catalog.CreateWorkspace(ctx.Ctx, &req)
	if err != nil {
		return nil, err
	}
	resp := responseCreated{Body: ws}
	err = buildURLs(api.Router, "workspace", ws.Name).
		URL(&resp.Location, "workspace").
		Error
	return resp, err
}

func (api *restAPI) WorkspaceGet(ctx *requestContext) (interface{}, error) {
	return api.Catalog.Workspace(ctx.Ctx, ctx.Workspace)
}

func (api *restAPI) WorkspacePut(ctx *requestContext, in interface{}) (interface{}, error) {
	patch, valid := in.(catalog.WorkspacePatch)
	if !valid {
		return nil, errUnmarshal
	}
	return api.Catalog.UpdateWorkspace(ctx.Ctx, ctx.Workspace, patch)
}

func (api *restAPI) WorkspaceDelete(ctx *requestContext) (interface{}, error) {
	opts, err := ctx.DeleteOptions()
	if err == nil {
		err = api.Catalog.DeleteWorkspace(ctx.Ctx, ctx.Workspace, opts)
	}
	return nil, err
}

func (api *restAPI) DefaultWorkspacePut(ctx *requestContext, in interface{}) (interface{}, error) {
	err := api.Catalog.SetDefaultWorkspace(ctx.Ctx, ctx.Workspace)
	return nil, err
}

func (api *restAPI) NamespaceList(ctx *requestContext) (interface{}, error) {
	return api.Catalog.Namespaces(ctx.Ctx)
}

func (api *restAPI) NamespacePost(ctx *requestContext, in interface{}) (interface{}, error) {
	req, valid := in.(catalog.Namespace)
	if !valid {
		return nil, errUnmarshal
	}
	ns, err := api.Catalog.CreateNamespace(ctx.Ctx, &req)
	if err != nil {
		return nil, err
	}
	resp := responseCreated{Body: ns}
	err = buildURLs(api.Router, "namespace", ns.Prefix).
		URL(&resp.Location, "namespace").
		Error
	return resp, err
}

func (api *restAPI) NamespaceGet(ctx *requestContext) (interface{}, error) {
	return api.Catalog.Namespace(ctx.Ctx, ctx.Namespace)
}

func (api *restAPI) NamespacePut(ctx *requestContext, in interface{}) (interface{}, error) {
	patch, valid := in.(catalog.NamespacePatch)
	if !valid {
		return nil, errUnmarshal
	}
	return api.Catalog.UpdateNamespace(ctx.Ctx, ctx.Namespace, patch)
}

func (api *restAPI) NamespaceDelete(ctx *requestContext) (interface{}, error) {
	opts, err := ctx.DeleteOptions()
	if err == nil {
		err = api.Catalog.DeleteNamespace(ctx.Ctx, ctx.Namespace, opts)
	}
	return nil, err
}
