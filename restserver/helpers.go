// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

// This file contains various HTTP-related helpers.

import (
	"fmt"
	"strings"

	"github.com/gorilla/mux"

	"github.com/diffeo/go-geocatalog/restdata"
)

type urlBuilder struct {
	Router *mux.Router
	Params []string
	Error  error
}

func buildURLs(router *mux.Router, params ...string) *urlBuilder {
	// Encode all of the values in params
	for i, value := range params {
		if i%2 == 1 {
			params[i] = restdata.MaybeEncodeName(value)
		}
	}
	return &urlBuilder{Router: router, Params: params}
}

func (u *urlBuilder) Route(route string) *mux.Route {
	if u.Error != nil {
		return nil
	}
	r := u.Router.Get(route)
	if r == nil {
		u.Error = fmt.Errorf("No such route %q", route)
	}
	return r
}

// URL fills in a concrete URL for route from the builder's
// parameters.
func (u *urlBuilder) URL(out *string, route string) *urlBuilder {
	r := u.Route(route)
	if u.Error == nil {
		url, err := r.URL(u.Params...)
		if err != nil {
			u.Error = err
		} else {
			*out = url.String()
		}
	}
	return u
}

// Template fills in an RFC 6570 URI template for route.  Every route
// variable becomes a simple {name} expression; any pattern the route
// places on it is dropped.
func (u *urlBuilder) Template(out *string, route string) *urlBuilder {
	r := u.Route(route)
	if u.Error == nil {
		tmpl, err := r.GetPathTemplate()
		if err != nil {
			u.Error = err
		} else {
			*out = stripPatterns(tmpl)
		}
	}
	return u
}

// stripPatterns turns "/a/{b:x|y}/{c}" into "/a/{b}/{c}".
func stripPatterns(tmpl string) string {
	var sb strings.Builder
	depth := 0
	skipping := false
	for _, c := range tmpl {
		switch {
		case c == '{':
			depth++
			if depth == 1 {
				skipping = false
				sb.WriteRune(c)
				continue
			}
		case c == '}':
			depth--
			if depth == 0 {
				sb.WriteRune(c)
				continue
			}
		case c == ':' && depth == 1:
			skipping = true
			continue
		}
		if !skipping || depth == 0 {
			sb.WriteRune(c)
		}
	}
	return sb.String()
}
