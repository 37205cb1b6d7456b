// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"github.com/diffeo/go-geocatalog/catalog"
)

// Layers are created along with their resources, so there is no
// LayerPost.

func (api *restAPI) LayerList(ctx *requestContext) (interface{}, error) {
	return api.Catalog.Layers(ctx.Ctx, ctx.Workspace)
}

func (api *restAPI) LayerGet(ctx *requestContext) (interface{}, error) {
	return api.Catalog.Layer(ctx.Ctx, ctx.Workspace, ctx.Layer)
}

func (api *restAPI) LayerPut(ctx *requestContext, in interface{}) (interface{}, error) {
	patch, valid := in.(catalog.LayerPatch)
	if !valid {
		return nil, errUnmarshal
	}
	return api.Catalog.UpdateLayer(ctx.Ctx, ctx.Workspace, ctx.Layer, patch)
}

func (api *restAPI) LayerDelete(ctx *requestContext) (interface{}, error) {
	opts, err := ctx.DeleteOptions()
	if err == nil {
		err = api.Catalog.DeleteLayer(ctx.Ctx, ctx.Workspace, ctx.Layer, opts)
	}
	return nil, err
}

// groupURL fills in the URL of a layer group in its own scope.
func (api *restAPI) groupURL(lg *catalog.LayerGroup, out *string) error {
	if lg.Workspace == nil {
		return buildURLs(api.Router, "group", lg.Name).
			URL(out, "layerGroup").Error
	}
	return buildURLs(api.Router, "workspace", lg.Workspace.Name, "group", lg.Name).
		URL(out, "workspaceLayerGroup").Error
}

func (api *restAPI) LayerGroupList(ctx *requestContext) (interface{}, error) {
	return api.Catalog.LayerGroups(ctx.Ctx, ctx.Workspace)
}

func (api *restAPI) LayerGroupPost(ctx *requestContext, in interface{}) (interface{}, error) {
	req, valid := in.(catalog.LayerGroup)
	if !valid {
		return nil, errUnmarshal
	}
	lg, err := api.Catalog.CreateLayerGroup(ctx.Ctx, ctx.Workspace, &req)
	if err != nil {
		return nil, err
	}
	resp := responseCreated{Body: lg}
	err = api.groupURL(lg, &resp.Location)
	return resp, err
}

func (api *restAPI) LayerGroupGet(ctx *requestContext) (interface{}, error) {
	return api.Catalog.LayerGroup(ctx.Ctx, ctx.Workspace, ctx.Group)
}

func (api *restAPI) LayerGroupPut(ctx *requestContext, in interface{}) (interface{}, error) {
	patch, valid := in.(catalog.LayerGroupPatch)
	if !valid {
		return nil, errUnmarshal
	}
	return api.Catalog.UpdateLayerGroup(ctx.Ctx, ctx.Workspace, ctx.Group, patch)
}

func (api *restAPI) LayerGroupDelete(ctx *requestContext) (interface{}, error) {
	opts, err := ctx.DeleteOptions()
	if err == nil {
		err = api.Catalog.DeleteLayerGroup(ctx.Ctx, ctx.Workspace, ctx.Group, opts)
	}
	return nil, err
}
