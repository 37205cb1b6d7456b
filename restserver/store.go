// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"github.com/diffeo/go-geocatalog/catalog"
	"github.com/diffeo/go-geocatalog/restdata"
)

func (api *restAPI) StoreList(ctx *requestContext) (interface{}, error) {
	return api.Catalog.Stores(ctx.Ctx, ctx.Workspace, ctx.StoreKind)
}

func (api *restAPI) StorePost(ctx *requestContext, in interface{}) (interface{}, error) {
	req, valid := in.(catalog.Store)
	if !valid {
		return nil, errUnmarshal
	}
	if req.Kind == "" {
		req.Kind = ctx.StoreKind
	}
	if err := kindMismatch(ctx.StoreType, string(ctx.StoreKind), string(req.Kind)); err != nil {
		return nil, err
	}
	st, err := api.Catalog.CreateStore(ctx.Ctx, ctx.Workspace, &req)
	if err != nil {
		return nil, err
	}
	resp := responseCreated{Body: st}
	err = buildURLs(api.Router,
		"workspace", st.Workspace.Name,
		"storeType", restdata.StoreSegment(st.Kind),
		"store", st.Name,
	).URL(&resp.Location, "store").Error
	return resp, err
}

func (api *restAPI) StoreGet(ctx *requestContext) (interface{}, error) {
	return api.Catalog.Store(ctx.Ctx, ctx.Workspace, ctx.StoreKind, ctx.Store)
}

func (api *restAPI) StorePut(ctx *requestContext, in interface{}) (interface{}, error) {
	patch, valid := in.(catalog.StorePatch)
	if !valid {
		return nil, errUnmarshal
	}
	var st *catalog.Store
	err := ctx.Atomically(api.Catalog, func() error {
		if err := ctx.CheckStore(api.Catalog); err != nil {
			return err
		}
		var err error
		st, err = api.Catalog.UpdateStore(ctx.Ctx, ctx.Workspace, ctx.Store, patch)
		return err
	})
	return st, err
}

func (api *restAPI) StoreDelete(ctx *requestContext) (interface{}, error) {
	opts, err := ctx.DeleteOptions()
	if err == nil {
		err = ctx.Atomically(api.Catalog, func() error {
			if err := ctx.CheckStore(api.Catalog); err != nil {
				return err
			}
			return api.Catalog.DeleteStore(ctx.Ctx, ctx.Workspace, ctx.Store, opts)
		})
	}
	return nil, err
}
