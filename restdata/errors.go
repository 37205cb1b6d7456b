// Copyright 2015-2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"

	"github.com/diffeo/go-geocatalog/catalog"
)

// ErrorResponse is the body of every failing response that has one.
type ErrorResponse struct {
	// Error is a short code: the name of a catalog error kind,
	// "panic", or "error" for anything else.
	Error string `json:"error"`

	// Message is human-readable detail.
	Message string `json:"message,omitempty"`

	// Value carries the offending input for errors that have one,
	// such as the media type of an unsupported request.
	Value string `json:"value,omitempty"`

	// Files lists backing files already removed when an
	// IOFailure rolled back the catalog.
	Files []string `json:"files,omitempty"`

	// Stack is the server's stack trace, for panics.
	Stack string `json:"stack,omitempty"`
}

// ErrorStatus describes errors that correspond to specific HTTP status
// codes.
type ErrorStatus interface {
	// HTTPStatus returns the HTTP status code for this error.
	HTTPStatus() int
}

// ErrUnsupportedMediaType is returned from Decode() if the provided
// Content-Type: is unrecognized.  This translates directly into the
// equivalent HTTP 415 error.
type ErrUnsupportedMediaType struct {
	Type string
}

func (e ErrUnsupportedMediaType) Error() string {
	return fmt.Sprintf("Unsupported media type %q", e.Type)
}

// HTTPStatus returns a fixed 415 Unsupported Media Type error code.
func (e ErrUnsupportedMediaType) HTTPStatus() int {
	return http.StatusUnsupportedMediaType
}

// ErrBadRequest is returned as an error when there is an error decoding
// HTTP headers or the request body.  It reaches clients as a
// ValidationFailed error.
type ErrBadRequest struct {
	Err error
}

func (e ErrBadRequest) Error() string {
	return e.Err.Error()
}

func (e ErrBadRequest) Unwrap() error {
	return e.Err
}

// HTTPStatus returns a fixed 400 Bad Request HTTP status code.
func (e ErrBadRequest) HTTPStatus() int {
	return http.StatusBadRequest
}

var kindStatus = map[catalog.ErrorKind]int{
	catalog.NotFound:         http.StatusNotFound,
	catalog.DuplicateName:    http.StatusConflict,
	catalog.Conflict:         http.StatusForbidden,
	catalog.Forbidden:        http.StatusForbidden,
	catalog.ValidationFailed: http.StatusBadRequest,
	catalog.IOFailure:        http.StatusInternalServerError,
}

// StatusOf returns the HTTP status for an error: the status of its
// catalog error kind, or of an ErrorStatus in its chain, or 500.
func StatusOf(err error) int {
	if status, ok := kindStatus[catalog.KindOf(err)]; ok {
		return status
	}
	var es ErrorStatus
	if errors.As(err, &es) {
		return es.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// FromError populates an ErrorResponse to fill in its fields based
// on an error value.  Catalog errors keep their kind in e.Error.
func (e *ErrorResponse) FromError(err error) {
	e.Error = "error"
	e.Message = err.Error()
	var ce *catalog.Error
	var ebr ErrBadRequest
	var emt ErrUnsupportedMediaType
	switch {
	case errors.As(err, &ce):
		e.Error = ce.Kind.String()
		e.Files = append([]string(nil), ce.Files...)
		if ce.Quiet {
			e.Message = ""
		}
	case errors.As(err, &ebr):
		e.Error = catalog.ValidationFailed.String()
	case errors.As(err, &emt):
		e.Error = "UnsupportedMediaType"
		e.Value = emt.Type
	}
}

// ToError converts e back to a catalog error, if that is possible.
// If not, returns a plain error with e.Message text.
func (e *ErrorResponse) ToError() error {
	if kind := catalog.ParseErrorKind(e.Error); kind != 0 {
		return &catalog.Error{
			Kind:    kind,
			Message: e.Message,
			Quiet:   kind == catalog.NotFound && e.Message == "",
			Files:   e.Files,
		}
	}
	if e.Error == "UnsupportedMediaType" {
		return ErrUnsupportedMediaType{Type: e.Value}
	}
	if e.Message == "" {
		return errors.New(e.Error)
	}
	return errors.New(e.Message)
}

// FromPanic populates an error response based on a panic.  Typical use
// is:
//
//     defer func() {
//         if obj := recover(); obj != nil {
//             resp := restdata.ErrorResponse{}
//             resp.FromPanic(obj)
//             // write resp out as makes sense
//         }
//     }()
func (e *ErrorResponse) FromPanic(obj interface{}) {
	e.Error = "panic"
	if recoveredError, isError := obj.(error); isError {
		e.Message = recoveredError.Error()
	} else {
		e.Message = fmt.Sprintf("%+v", obj)
	}
	var stack [4096]byte
	n := runtime.Stack(stack[:], false)
	e.Stack = string(stack[:n])
}
