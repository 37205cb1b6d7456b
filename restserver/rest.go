// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

// This file contains a REST skeleton framework.
//
// The bulk of this is dealing with HTTP content type negotiation, and
// providing a standard way to deal with input and output values.
// This could probably be made more generic: the major variables are
// the type canonicalization map, the context builder, and specific
// codecs.  In turn our specific choice of MIME type implies an intent
// to support different JSON variants to produce the same underlying
// structure, which this fails badly at.
//
// Another more generic solution out there is
// https://github.com/jchannon/negotiator.  This only deals with
// output type negotiation, forces all JSON-ish output to report
// itself as "application/json", and doesn't deal well with other HTTP
// status codes.

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/diffeo/go-geocatalog/catalog"
	"github.com/diffeo/go-geocatalog/restdata"
)

var typeMap = map[string]string{
	"text/json":              restdata.V1JSONMediaType,
	"application/json":       restdata.V1JSONMediaType,
	restdata.JSONMediaType:   restdata.V1JSONMediaType,
	restdata.V1JSONMediaType: restdata.V1JSONMediaType,
}

// errBadAccept is returned from negotiateResponse() if the Accept:
// header is malformed (and no more specific error applies).
var errBadAccept = errors.New("Invalid Accept: header")

// errNotAcceptable is returned from negotiateResponse() if the Accept:
// header does not mention any media types we can actually return.
type errNotAcceptable struct{}

func (e errNotAcceptable) Error() string {
	return "No acceptable representation for response"
}

func (e errNotAcceptable) HTTPStatus() int {
	return http.StatusNotAcceptable
}

// errNotImplemented is returned from an arbitrary handler function if
// the actual function is not implemented.
type errNotImplemented struct {
	Text string
}

func (e errNotImplemented) Error() string {
	if e.Text == "" {
		return "Not implemented"
	}
	return e.Text
}

func (e errNotImplemented) HTTPStatus() int {
	return http.StatusNotImplemented
}

// errMethodNotAllowed is used within the resourceHandler implementation
// to flag an error if a particular HTTP method is not allowed.  This
// corresponds exactly to the 405 Method Not Allowed HTTP status code.
// POST to a single object, rather than a collection, lands here.
type errMethodNotAllowed struct {
	Method string
}

func (e errMethodNotAllowed) Error() string {
	return fmt.Sprintf("Method %v not allowed", e.Method)
}

func (e errMethodNotAllowed) HTTPStatus() int {
	return http.StatusMethodNotAllowed
}

// responseCreated is returned as a value response from handler
// functions that want to indicate that a new resource was created.
type responseCreated struct {
	// Location holds the canonical URL to the newly created resource.
	Location string

	// Body contains the object sent in the body of the response.
	Body interface{}
}

type resourceHandler struct {
	// Representation is the type of the request body for PUT and
	// POST.  A new zero value of this type is decoded and passed
	// to handler functions.  If nil, the request body is ignored.
	Representation interface{}

	// Context reads an HTTP request and produces a context object.
	Context func(req *http.Request) (*requestContext, error)

	// Log receives server-side failures.
	Log logrus.FieldLogger

	// Get, if non-nil, returns a representation of the object.
	Get func(*requestContext) (interface{}, error)

	// Put, if non-nil, updates the object.  The interface
	// parameter is guaranteed to be the same type as
	// Representation.  The return can be any useful return value.
	Put func(*requestContext, interface{}) (interface{}, error)

	// Post, if non-nil, takes some arbitrary action, usually
	// creating an object in a collection.  The return can be any
	// useful return value, including responseCreated.
	Post func(*requestContext, interface{}) (interface{}, error)

	// Delete, if non-nil, deletes the object.  The return can be
	// any useful return value.
	Delete func(*requestContext) (interface{}, error)
}

// decodeBody reads the request body into a new value of the
// Representation type.
func (h *resourceHandler) decodeBody(req *http.Request) (interface{}, error) {
	if h.Representation == nil {
		return nil, nil
	}
	ptr := reflect.New(reflect.TypeOf(h.Representation))
	err := restdata.Decode(req.Header.Get("Content-Type"), req.Body, ptr.Interface())
	if err != nil {
		return nil, err
	}
	return ptr.Elem().Interface(), nil
}

func (h *resourceHandler) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	var (
		ctx          *requestContext
		in, out      interface{}
		err          error
		status       int
		responseType string
	)

	// Recover from panics by sending an HTTP error.
	defer func() {
		if recovered := recover(); recovered != nil {
			response := restdata.ErrorResponse{}
			response.FromPanic(recovered)
			h.Log.WithFields(logrus.Fields{
				"method": req.Method,
				"path":   req.URL.Path,
				"panic":  response.Message,
			}).Error("handler panicked")
			resp.Header().Set("Content-Type", restdata.V1JSONMediaType)
			resp.WriteHeader(http.StatusInternalServerError)
			encodeBody(h.Log, req, resp, response)
		}
	}()

	// Start by trying to come up with a response type, even before
	// trying to parse the input.  This determines what format an
	// error message could be sent back as.
	responseType, err = negotiateResponse(req)
	if err != nil {
		// Gotta pick something
		responseType = restdata.V1JSONMediaType
		if _, hasStatus := err.(restdata.ErrorStatus); !hasStatus {
			err = restdata.ErrBadRequest{Err: err}
		}
	}

	// Get bits from URL parameters
	if err == nil {
		ctx, err = h.Context(req)
	}

	// Read the body, if it's there
	if err == nil && (req.Method == http.MethodPut || req.Method == http.MethodPost) {
		in, err = h.decodeBody(req)
	}

	// Actually call the handler method
	if err == nil {
		// We will return this if the method is unexpected or
		// we don't have a handler for it
		err = errMethodNotAllowed{Method: req.Method}
		switch req.Method {
		case http.MethodGet, http.MethodHead:
			if h.Get != nil {
				out, err = h.Get(ctx)
			}
		case http.MethodPut:
			if h.Put != nil {
				out, err = h.Put(ctx, in)
			}
		case http.MethodPost:
			if h.Post != nil {
				out, err = h.Post(ctx, in)
			}
		case http.MethodDelete:
			if h.Delete != nil {
				out, err = h.Delete(ctx)
			}
		}
	}

	// Fix up the final result based on what we know.
	if err != nil {
		status = restdata.StatusOf(err)
		if status >= 500 {
			h.Log.WithFields(logrus.Fields{
				"method": req.Method,
				"path":   req.URL.Path,
				"err":    err,
			}).Error("request failed")
		}
		var ce *catalog.Error
		if errors.As(err, &ce) && ce.Quiet {
			// quietOnNotFound: the status alone answers
			resp.WriteHeader(status)
			return
		}
		response := restdata.ErrorResponse{}
		response.FromError(err)
		out = response
	} else if out == nil {
		status = http.StatusNoContent
	} else if created, isCreated := out.(responseCreated); isCreated {
		status = http.StatusCreated
		if created.Location != "" {
			resp.Header().Set("Location", created.Location)
		}
		out = created.Body
	} else {
		status = http.StatusOK
	}
	if req.Method == http.MethodHead {
		out = nil
	}

	// Actually send the response.
	if out != nil {
		resp.Header().Set("Content-Type", responseType)
	}
	resp.WriteHeader(status)
	if out != nil {
		encodeBody(h.Log, req, resp, out)
	}
}

// encodeBody writes out as the response body.  The status line has
// already been sent, so a failure can only be logged.
func encodeBody(log logrus.FieldLogger, req *http.Request, resp http.ResponseWriter, out interface{}) {
	if err := restdata.Encode(resp, out); err != nil {
		log.WithFields(logrus.Fields{
			"method": req.Method,
			"path":   req.URL.Path,
			"err":    err,
		}).Warn("could not write response body")
	}
}

// writeError sends an error response outside a resourceHandler.
func writeError(log logrus.FieldLogger, req *http.Request, resp http.ResponseWriter, err error) {
	status := restdata.StatusOf(err)
	var ce *catalog.Error
	if errors.As(err, &ce) && ce.Quiet {
		resp.WriteHeader(status)
		return
	}
	response := restdata.ErrorResponse{}
	response.FromError(err)
	resp.Header().Set("Content-Type", restdata.V1JSONMediaType)
	resp.WriteHeader(status)
	encodeBody(log, req, resp, response)
}

// negotiateResponse returns a supported MIME type for the response
// body, following the path laid out in RFC 7231 section 5.3.
func negotiateResponse(req *http.Request) (string, error) {
	accept := req.Header.Get("Accept")
	if accept == "" {
		accept = "*/*"
	}
	bestType := ""
	bestQ := 0.0
	mediaRanges := strings.Split(accept, ",")
	for _, mediaRange := range mediaRanges {
		mediaRange = strings.TrimSpace(mediaRange)
		mediaType, params, err := mime.ParseMediaType(mediaRange)
		if err != nil {
			return "", err
		}

		// What is the "q" ("quality") parameter for this type?
		// If it is less than the best known so far, skip it
		q := 1.0
		if qStr, haveQ := params["q"]; haveQ {
			q, err = strconv.ParseFloat(qStr, 64)
			if err != nil {
				return "", err
			}
			if q < 0.0 || q > 1.0 {
				return "", errBadAccept
			}
		}
		if q < bestQ {
			continue
		}

		// This is acceptable if it's listed in the type
		// map; or it's one of a couple of specific wildcards.
		// Also need to handle wildcard precedence.  So:
		if mediaType == "*/*" {
			// Doesn't override anything.
			if q > bestQ {
				bestType = mediaType
				bestQ = q
			}
		} else if mediaType == "text/*" || mediaType == "application/*" {
			// Only overrides "*/*".
			if q > bestQ || bestType == "*/*" {
				bestType = mediaType
				bestQ = q
			}
		} else if _, knownType := typeMap[mediaType]; knownType {
			// Overrides any wildcard.  We want the first one
			// at a given q to win.
			if q > bestQ || bestType == "*/*" || bestType == "text/*" || bestType == "application/*" {
				bestType = mediaType
				bestQ = q
			}
		}
		// Otherwise we don't recognize this type at all, so
		// just drop it.
		//
		// The RFC endorses honoring type parameters as being
		// "more specific" but we don't really deal with that.
	}
	// If this failed to win, return an error
	if bestQ == 0.0 {
		return "", errNotAcceptable{}
	}
	switch bestType {
	case "*/*":
		return restdata.V1JSONMediaType, nil
	case "application/*":
		return restdata.V1JSONMediaType, nil
	case "text/*":
		return "text/json", nil
	default:
		return bestType, nil
	}
}
