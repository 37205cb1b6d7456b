// Copyright 2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diffeo/go-geocatalog/catalog"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{catalog.Errorf(catalog.NotFound, "x"), http.StatusNotFound},
		{catalog.Errorf(catalog.DuplicateName, "x"), http.StatusConflict},
		{catalog.Errorf(catalog.Conflict, "x"), http.StatusForbidden},
		{catalog.Errorf(catalog.Forbidden, "x"), http.StatusForbidden},
		{catalog.Errorf(catalog.ValidationFailed, "x"), http.StatusBadRequest},
		{catalog.Errorf(catalog.IOFailure, "x"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", catalog.Errorf(catalog.NotFound, "x")), http.StatusNotFound},
		{ErrUnsupportedMediaType{Type: "text/plain"}, http.StatusUnsupportedMediaType},
		{ErrBadRequest{Err: errors.New("x")}, http.StatusBadRequest},
		{errors.New("x"), http.StatusInternalServerError},
	}
	for _, test := range tests {
		assert.Equal(t, test.status, StatusOf(test.err), "%v", test.err)
	}
}

// TestErrorRoundTrip checks that every catalog error kind survives
// a trip through an encoded ErrorResponse.
func TestErrorRoundTrip(t *testing.T) {
	kinds := []catalog.ErrorKind{
		catalog.NotFound, catalog.DuplicateName, catalog.Conflict,
		catalog.Forbidden, catalog.ValidationFailed, catalog.IOFailure,
	}
	for _, kind := range kinds {
		in := catalog.Errorf(kind, "something about %v", kind)
		var resp ErrorResponse
		resp.FromError(in)
		b, err := EncodeBytes(resp)
		require.NoError(t, err)

		var back ErrorResponse
		require.NoError(t, Decode(V1JSONMediaType, bytes.NewReader(b), &back))
		out := back.ToError()
		assert.True(t, catalog.IsKind(out, kind), "%v", kind)
		assert.Equal(t, in.Error(), out.Error())
	}
}

func TestErrorFiles(t *testing.T) {
	in := &catalog.Error{Kind: catalog.IOFailure, Message: "purge", Files: []string{"a", "b"}}
	var resp ErrorResponse
	resp.FromError(in)
	var ce *catalog.Error
	require.True(t, errors.As(resp.ToError(), &ce))
	assert.Equal(t, []string{"a", "b"}, ce.Files)
}

func TestQuietNotFound(t *testing.T) {
	in := &catalog.Error{Kind: catalog.NotFound, Message: "no such thing", Quiet: true}
	var resp ErrorResponse
	resp.FromError(in)
	assert.Equal(t, "NotFound", resp.Error)
	assert.Empty(t, resp.Message)

	var ce *catalog.Error
	require.True(t, errors.As(resp.ToError(), &ce))
	assert.True(t, ce.Quiet)
}

func TestBadRequestIsValidation(t *testing.T) {
	var resp ErrorResponse
	resp.FromError(ErrBadRequest{Err: errors.New("bad JSON")})
	assert.True(t, catalog.IsKind(resp.ToError(), catalog.ValidationFailed))
}

func TestDecodeMediaType(t *testing.T) {
	var v map[string]interface{}
	err := Decode("text/plain", bytes.NewReader([]byte("{}")), &v)
	assert.Equal(t, http.StatusUnsupportedMediaType, StatusOf(err))

	err = Decode("application/json; charset=utf-8", bytes.NewReader([]byte(`{"a":1}`)), &v)
	if assert.NoError(t, err) {
		assert.Contains(t, v, "a")
	}

	err = Decode(V1JSONMediaType, bytes.NewReader([]byte(`{"a":`)), &v)
	assert.Equal(t, http.StatusBadRequest, StatusOf(err))
}

func TestSegments(t *testing.T) {
	for _, kind := range catalog.StoreKinds {
		seg := StoreSegment(kind)
		back, ok := ParseStoreSegment(seg)
		assert.True(t, ok)
		assert.Equal(t, kind, back)

		rseg := ResourceSegment(kind.ResourceKind())
		rback, ok := ParseResourceSegment(rseg)
		assert.True(t, ok)
		assert.Equal(t, kind.ResourceKind(), rback)
	}
	assert.Equal(t, AllStores, StoreSegment(""))
	kind, ok := ParseStoreSegment(AllStores)
	assert.True(t, ok)
	assert.Equal(t, catalog.StoreKind(""), kind)
	_, ok = ParseStoreSegment("featuretypes")
	assert.False(t, ok)
	_, ok = ParseResourceSegment("datastores")
	assert.False(t, ok)
}
