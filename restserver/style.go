// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/diffeo/go-geocatalog/catalog"
	"github.com/diffeo/go-geocatalog/restdata"
)

// maxStyleBody bounds the size of an uploaded style document.
const maxStyleBody = 16 << 20

func (api *restAPI) styleURL(st *catalog.Style, out *string) error {
	if st.Workspace == nil {
		return buildURLs(api.Router, "style", st.Name).
			URL(out, "style").Error
	}
	return buildURLs(api.Router, "workspace", st.Workspace.Name, "style", st.Name).
		URL(out, "workspaceStyle").Error
}

func (api *restAPI) StyleList(ctx *requestContext) (interface{}, error) {
	return api.Catalog.Styles(ctx.Ctx, ctx.Workspace)
}

func (api *restAPI) StylePost(ctx *requestContext, in interface{}) (interface{}, error) {
	req, valid := in.(restdata.StyleUpload)
	if !valid || req.Style == nil {
		return nil, errUnmarshal
	}
	st, err := api.Catalog.CreateStyle(ctx.Ctx, ctx.Workspace, req.Style, req.Body)
	if err != nil {
		return nil, err
	}
	resp := responseCreated{Body: st}
	err = api.styleURL(st, &resp.Location)
	return resp, err
}

func (api *restAPI) StyleGet(ctx *requestContext) (interface{}, error) {
	return api.Catalog.Style(ctx.Ctx, ctx.Workspace, ctx.Style)
}

func (api *restAPI) StylePut(ctx *requestContext, in interface{}) (interface{}, error) {
	req, valid := in.(restdata.StyleUpdate)
	if !valid {
		return nil, errUnmarshal
	}
	return api.Catalog.UpdateStyle(ctx.Ctx, ctx.Workspace, ctx.Style, req.Patch, req.Body)
}

func (api *restAPI) StyleDelete(ctx *requestContext) (interface{}, error) {
	opts, err := ctx.DeleteOptions()
	if err == nil {
		err = api.Catalog.DeleteStyle(ctx.Ctx, ctx.Workspace, ctx.Style, opts)
	}
	return nil, err
}

// styleBodyHandler serves style documents as themselves rather than
// wrapped in JSON.  GET returns the document; PUT replaces it.
type styleBodyHandler struct {
	api *restAPI
}

func (h *styleBodyHandler) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	ctx, err := h.api.Context(req)
	if err != nil {
		writeError(h.api.Log, req, resp, err)
		return
	}
	switch req.Method {
	case http.MethodGet, http.MethodHead:
		var st *catalog.Style
		var body []byte
		st, err = h.api.Catalog.Style(ctx.Ctx, ctx.Workspace, ctx.Style)
		if err == nil {
			body, err = h.api.Catalog.StyleBody(ctx.Ctx, ctx.Workspace, ctx.Style)
		}
		if err != nil {
			writeError(h.api.Log, req, resp, err)
			return
		}
		resp.Header().Set("Content-Type", restdata.StyleMediaType(st.Format))
		resp.WriteHeader(http.StatusOK)
		if req.Method == http.MethodGet {
			if _, err := resp.Write(body); err != nil {
				h.api.Log.WithFields(logrus.Fields{
					"method": req.Method,
					"path":   req.URL.Path,
					"err":    err,
				}).Warn("could not write response body")
			}
		}
	case http.MethodPut:
		body, err := io.ReadAll(io.LimitReader(req.Body, maxStyleBody))
		if err != nil {
			writeError(h.api.Log, req, resp, restdata.ErrBadRequest{Err: err})
			return
		}
		if body == nil {
			body = []byte{}
		}
		_, err = h.api.Catalog.UpdateStyle(ctx.Ctx, ctx.Workspace, ctx.Style, catalog.StylePatch{}, body)
		if err != nil {
			writeError(h.api.Log, req, resp, err)
			return
		}
		resp.WriteHeader(http.StatusNoContent)
	default:
		writeError(h.api.Log, req, resp, errMethodNotAllowed{Method: req.Method})
	}
}
