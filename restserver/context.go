// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"github.com/diffeo/go-geocatalog/catalog"
	"github.com/diffeo/go-geocatalog/restdata"
)

// errUnmarshal is returned if the put/post contract is violated and
// a handler function is passed the wrong type.
var errUnmarshal = restdata.ErrBadRequest{
	Err: errors.New("Invalid input format"),
}

// requestContext holds all of the information that can be extracted
// from URL parameters.  Names are decoded; an absent name is "".
type requestContext struct {
	Ctx          context.Context
	Workspace    string
	Namespace    string
	StoreType    string
	StoreKind    catalog.StoreKind
	Store        string
	ResourceType string
	ResourceKind catalog.ResourceKind
	Resource     string
	Layer        string
	Group        string
	Style        string
	QueryParams  url.Values
}

func (api *restAPI) Context(req *http.Request) (ctx *requestContext, err error) {
	ctx = &requestContext{
		Ctx:         req.Context(),
		QueryParams: req.URL.Query(),
	}
	if ctx.BoolParam("quietOnNotFound", false) {
		ctx.Ctx = catalog.WithQuietNotFound(ctx.Ctx)
	}
	vars := mux.Vars(req)
	for _, v := range []struct {
		name string
		out  *string
	}{
		{"workspace", &ctx.Workspace},
		{"namespace", &ctx.Namespace},
		{"store", &ctx.Store},
		{"resource", &ctx.Resource},
		{"layer", &ctx.Layer},
		{"group", &ctx.Group},
		{"style", &ctx.Style},
	} {
		if raw, present := vars[v.name]; present && err == nil {
			*v.out, err = restdata.MaybeDecodeName(raw)
		}
	}
	if err != nil {
		return nil, err
	}

	// The route patterns only admit known segments.
	ctx.StoreType = vars["storeType"]
	ctx.StoreKind, _ = restdata.ParseStoreSegment(ctx.StoreType)
	ctx.ResourceType = vars["resourceType"]
	ctx.ResourceKind, _ = restdata.ParseResourceSegment(ctx.ResourceType)
	return ctx, nil
}

// BoolParam looks at ctx.QueryParams for a parameter named name.  If
// it has a normally-truthy value (1, on, false, no, ...) then return
// that value.  Otherwise (empty string, foo, ...) return def.
func (ctx *requestContext) BoolParam(name string, def bool) bool {
	switch strings.ToLower(ctx.QueryParams.Get(name)) {
	case "0", "f", "n", "false", "off", "no":
		return false
	case "1", "t", "y", "true", "on", "yes":
		return true
	default:
		return def
	}
}

// DeleteOptions builds deletion options from the "recurse" and
// "purge" query parameters.
func (ctx *requestContext) DeleteOptions() (catalog.DeleteOptions, error) {
	opts := catalog.DeleteOptions{Recurse: ctx.BoolParam("recurse", false)}
	var err error
	opts.Purge, err = catalog.ParsePurgeMode(strings.ToLower(ctx.QueryParams.Get("purge")))
	return opts, err
}

// UpdateOptions builds update options from the "recalculate" query
// parameter.
func (ctx *requestContext) UpdateOptions() (catalog.UpdateOptions, error) {
	var opts catalog.UpdateOptions
	var err error
	opts.Recalculate, err = catalog.ParseRecalculate(strings.ToLower(ctx.QueryParams.Get("recalculate")))
	return opts, err
}

// CheckStore makes sure that, if the URL named a specific kind of
// store, the named store is of that kind.
func (ctx *requestContext) CheckStore(c catalog.Catalog) error {
	if ctx.Store == "" || ctx.StoreKind == "" {
		return nil
	}
	_, err := c.Store(ctx.Ctx, ctx.Workspace, ctx.StoreKind, ctx.Store)
	return err
}

// CheckResource makes sure a resource is of the kind the URL names.
func (ctx *requestContext) CheckResource(r *catalog.Resource) error {
	if ctx.ResourceKind != "" && r.Kind != ctx.ResourceKind {
		return catalog.NotFoundf(ctx.Ctx, "%s %q is a %s", ctx.ResourceKind, r.Name, r.Kind)
	}
	return nil
}

// transactor is a catalog that can run several calls as one atomic
// change.
type transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Atomically runs fn so that the kind checks it makes and the change
// it makes see the same catalog.  If c cannot run transactions, fn
// just runs.
func (ctx *requestContext) Atomically(c catalog.Catalog, fn func() error) error {
	t, ok := c.(transactor)
	if !ok {
		return fn()
	}
	outer := ctx.Ctx
	defer func() { ctx.Ctx = outer }()
	return t.Transaction(outer, func(inner context.Context) error {
		ctx.Ctx = inner
		return fn()
	})
}

// kindMismatch reports a body whose kind disagrees with the kind
// implied by the collection it was sent to.
func kindMismatch(collection, inURL, inBody string) error {
	if inBody == "" || inURL == "" || inBody == inURL {
		return nil
	}
	return catalog.Errorf(catalog.ValidationFailed, "cannot create a %s in %s", inBody, collection)
}
