// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package catalog

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies catalog errors.  The REST layer maps each kind
// to exactly one HTTP status.
type ErrorKind int

const (
	// NotFound means the entity does not exist at the requested
	// scope.
	NotFound ErrorKind = iota + 1

	// DuplicateName means a create or rename collides with an
	// existing name in the same scope.
	DuplicateName

	// Conflict means a deletion would orphan dependents and
	// recursion was not requested.
	Conflict

	// Forbidden means a structural invariant would be violated,
	// such as moving a store between workspaces or emptying a
	// required name.
	Forbidden

	// ValidationFailed means the input is malformed: a missing
	// required field or a reference to something that does not
	// exist.
	ValidationFailed

	// IOFailure means a backing file operation failed after
	// validation passed.
	IOFailure
)

var kindNames = map[ErrorKind]string{
	NotFound:         "NotFound",
	DuplicateName:    "DuplicateName",
	Conflict:         "Conflict",
	Forbidden:        "Forbidden",
	ValidationFailed: "ValidationFailed",
	IOFailure:        "IOFailure",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// ParseErrorKind is the inverse of ErrorKind.String.  It returns
// zero for unknown names.
func ParseErrorKind(name string) ErrorKind {
	for k, n := range kindNames {
		if n == name {
			return k
		}
	}
	return 0
}

// Error is the error type returned by every Catalog implementation.
type Error struct {
	Kind    ErrorKind
	Message string

	// Quiet is set on NotFound errors produced for a caller that
	// asked for them not to be described.
	Quiet bool

	// Files lists backing files that were already removed when
	// an IOFailure rolled back the catalog.  These removals could
	// not be undone.
	Files []string

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf creates a new *Error with a formatted message.
func Errorf(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError creates a new *Error around an underlying cause.
func WrapError(kind ErrorKind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or
// zero if there is none.
func KindOf(err error) ErrorKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}

// IsKind reports whether err is a catalog error of kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

type quietKey struct{}

// WithQuietNotFound returns a context under which catalog lookups
// produce NotFound errors marked Quiet.  The error kind is
// unchanged; only the presentation differs.
func WithQuietNotFound(ctx context.Context) context.Context {
	return context.WithValue(ctx, quietKey{}, true)
}

// NotFoundf creates a NotFound error, marked Quiet if ctx asks for
// that.
func NotFoundf(ctx context.Context, format string, args ...interface{}) *Error {
	err := Errorf(NotFound, format, args...)
	err.Quiet = IsQuietNotFound(ctx)
	return err
}

// IsQuietNotFound reports whether ctx came from WithQuietNotFound.
func IsQuietNotFound(ctx context.Context) bool {
	quiet, _ := ctx.Value(quietKey{}).(bool)
	return quiet
}
