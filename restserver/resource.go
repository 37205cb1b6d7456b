// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"github.com/diffeo/go-geocatalog/catalog"
	"github.com/diffeo/go-geocatalog/restdata"
)

func (api *restAPI) ResourceList(ctx *requestContext) (interface{}, error) {
	if err := ctx.CheckStore(api.Catalog); err != nil {
		return nil, err
	}
	return api.Catalog.Resources(ctx.Ctx, ctx.Workspace, ctx.Store, ctx.ResourceKind)
}

// ResourcePost creates a resource.  Without a store in the URL the
// workspace's default data store receives it.
func (api *restAPI) ResourcePost(ctx *requestContext, in interface{}) (interface{}, error) {
	req, valid := in.(catalog.Resource)
	if !valid {
		return nil, errUnmarshal
	}
	if req.Kind == "" {
		req.Kind = ctx.ResourceKind
	}
	if err := kindMismatch(ctx.ResourceType, string(ctx.ResourceKind), string(req.Kind)); err != nil {
		return nil, err
	}
	if err := ctx.CheckStore(api.Catalog); err != nil {
		return nil, err
	}
	r, err := api.Catalog.CreateResource(ctx.Ctx, ctx.Workspace, ctx.Store, &req)
	if err != nil {
		return nil, err
	}
	resp := responseCreated{Body: r}
	err = buildURLs(api.Router,
		"workspace", r.Store.Workspace,
		"storeType", restdata.AllStores,
		"store", r.Store.Name,
		"resourceType", restdata.ResourceSegment(r.Kind),
		"resource", r.Name,
	).URL(&resp.Location, "resource").Error
	return resp, err
}

// resource fetches the resource the URL names, checking the store and
// resource kinds the URL implies.
func (api *restAPI) resource(ctx *requestContext) (*catalog.Resource, error) {
	if err := ctx.CheckStore(api.Catalog); err != nil {
		return nil, err
	}
	r, err := api.Catalog.Resource(ctx.Ctx, ctx.Workspace, ctx.Store, ctx.Resource)
	if err != nil {
		return nil, err
	}
	if err := ctx.CheckResource(r); err != nil {
		return nil, err
	}
	return r, nil
}

func (api *restAPI) ResourceGet(ctx *requestContext) (interface{}, error) {
	return api.resource(ctx)
}

func (api *restAPI) ResourcePut(ctx *requestContext, in interface{}) (interface{}, error) {
	patch, valid := in.(catalog.ResourcePatch)
	if !valid {
		return nil, errUnmarshal
	}
	opts, err := ctx.UpdateOptions()
	if err != nil {
		return nil, err
	}
	var r *catalog.Resource
	err = ctx.Atomically(api.Catalog, func() error {
		if ctx.StoreKind != "" || ctx.ResourceKind != "" {
			if _, err := api.resource(ctx); err != nil {
				return err
			}
		}
		var err error
		r, err = api.Catalog.UpdateResource(ctx.Ctx, ctx.Workspace, ctx.Store, ctx.Resource, patch, opts)
		return err
	})
	return r, err
}

func (api *restAPI) ResourceDelete(ctx *requestContext) (interface{}, error) {
	opts, err := ctx.DeleteOptions()
	if err != nil {
		return nil, err
	}
	return nil, ctx.Atomically(api.Catalog, func() error {
		if ctx.StoreKind != "" || ctx.ResourceKind != "" {
			if _, err := api.resource(ctx); err != nil {
				return err
			}
		}
		return api.Catalog.DeleteResource(ctx.Ctx, ctx.Workspace, ctx.Store, ctx.Resource, opts)
	})
}
