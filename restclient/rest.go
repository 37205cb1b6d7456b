// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

// This file provides generic REST client code.

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/jtacoma/uritemplates"

	"github.com/diffeo/go-geocatalog/catalog"
	"github.com/diffeo/go-geocatalog/restdata"
)

// resource is any object that has a URL.
type resource struct {
	URL    *url.URL
	Client *http.Client
}

// Template expands a URI template relative to the resource's URL.
// String values in vars are escaped with restdata.MaybeEncodeName
// first.  query, if non-empty, is added as the query string.
func (r *resource) Template(template string, vars map[string]interface{}, query url.Values) (*url.URL, error) {
	// Build the template object
	tmpl, err := uritemplates.Parse(template)
	if err != nil {
		return nil, err
	}

	// Encode all of the values if required
	encoded := make(map[string]interface{}, len(vars))
	for k, v := range vars {
		if s, isString := v.(string); isString {
			v = restdata.MaybeEncodeName(s)
		}
		encoded[k] = v
	}

	// Expand the template to produce a string
	expanded, err := tmpl.Expand(encoded)
	if err != nil {
		return nil, err
	}

	// Return the parsed URL of the result, relative to ourselves
	u, err := r.URL.Parse(expanded)
	if err != nil {
		return nil, err
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u, nil
}

// send performs an HTTP request and checks its status.  On success
// the caller must close the response body.
func (r *resource) send(ctx context.Context, req *http.Request) (*http.Response, error) {
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	if err = checkHTTPStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

// Do performs some HTTP action.  If in is non-nil, the request data is
// serialized and sent as the body of, for instance, a POST request.
// If out is non-nil, the response data (if any) is deserialized into
// this object, which must be of pointer type.
func (r *resource) Do(ctx context.Context, method string, u *url.URL, in, out interface{}) (err error) {
	if catalog.IsQuietNotFound(ctx) {
		q := u.Query()
		q.Set("quietOnNotFound", "true")
		u.RawQuery = q.Encode()
	}

	// Set up the body as serialized JSON, if there is one
	var body io.Reader
	if in != nil {
		b, err := restdata.EncodeBytes(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	// Create the request and set headers
	req, err := http.NewRequest(method, u.String(), body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", restdata.V1JSONMediaType)
	}
	req.Header.Set("Accept", restdata.V1JSONMediaType)

	resp, err := r.send(ctx, req)
	if err != nil {
		return err
	}
	defer func() {
		err = firstError(err, resp.Body.Close())
	}()

	// If there is both a body and a requested output,
	// decode it
	if out != nil && resp.StatusCode != http.StatusNoContent {
		contentType := resp.Header.Get("Content-Type")
		err = restdata.Decode(contentType, resp.Body, out)
	}
	return err
}

// Raw performs an HTTP action with an unencoded body, returning the
// unencoded response body.
func (r *resource) Raw(ctx context.Context, method string, u *url.URL, contentType string, in []byte) ([]byte, error) {
	var body io.Reader
	if in != nil {
		body = bytes.NewReader(in)
	}
	req, err := http.NewRequest(method, u.String(), body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := r.send(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// GetFrom retrieves a resource from some other URL.  template is
// interpreted as a URI template, modified by vars, and the result
// taken relative to the resource's URL.  The result is stored in
// out, which must be of pointer type.
func (r *resource) GetFrom(ctx context.Context, template string, vars map[string]interface{}, out interface{}) error {
	u, err := r.Template(template, vars, nil)
	if err == nil {
		err = r.Do(ctx, http.MethodGet, u, nil, out)
	}
	return err
}

// PutTo updates a resource at some other URL.  The server response is
// stored in out, which must be of pointer type.
func (r *resource) PutTo(ctx context.Context, template string, vars map[string]interface{}, in, out interface{}) error {
	u, err := r.Template(template, vars, nil)
	if err == nil {
		err = r.Do(ctx, http.MethodPut, u, in, out)
	}
	return err
}

// PostTo submits data to a service at some other URL.  The server
// response is stored in out, which must be of pointer type.
func (r *resource) PostTo(ctx context.Context, template string, vars map[string]interface{}, in, out interface{}) error {
	u, err := r.Template(template, vars, nil)
	if err == nil {
		err = r.Do(ctx, http.MethodPost, u, in, out)
	}
	return err
}

// DeleteAt deletes the resource at some other URL, passing deletion
// options as query parameters.
func (r *resource) DeleteAt(ctx context.Context, template string, vars map[string]interface{}, opts catalog.DeleteOptions) error {
	query := url.Values{}
	if opts.Recurse {
		query.Set("recurse", "true")
	}
	if opts.Purge != "" && opts.Purge != catalog.PurgeNone {
		query.Set("purge", string(opts.Purge))
	}
	u, err := r.Template(template, vars, query)
	if err == nil {
		err = r.Do(ctx, http.MethodDelete, u, nil, nil)
	}
	return err
}

// ErrorHTTP is a catch-all error for non-successes returned from the
// REST endpoint.
type ErrorHTTP struct {
	// Response holds a pointer to the failing HTTP response.
	Response *http.Response

	// Body holds the contents of the message body, presumed to
	// be text.
	Body string
}

func (e ErrorHTTP) Error() string {
	return e.Response.Status
}

// checkHTTPStatus examines an HTTP response and returns an error if
// it is not successful.
func checkHTTPStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// Always collect the entire body; we will need it as a fallback
	// and can only parse it once.
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	// A 404 with nothing else is the answer to quietOnNotFound.
	if resp.StatusCode == http.StatusNotFound && len(body) == 0 {
		return &catalog.Error{Kind: catalog.NotFound, Message: resp.Status, Quiet: true}
	}

	// Take a shot at decoding it as a better error
	var errResp restdata.ErrorResponse
	contentType := resp.Header.Get("Content-Type")
	if restdata.Decode(contentType, bytes.NewReader(body), &errResp) == nil && errResp.Error != "" {
		// Given that we decoded that successfully, return the
		// server-provided error
		return errResp.ToError()
	}

	return ErrorHTTP{Response: resp, Body: string(body)}
}

func firstError(e1, e2 error) error {
	if e1 != nil {
		return e1
	}
	return e2
}
