// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"io"
	"mime"

	"github.com/ugorji/go/codec"
)

// jsonHandle is shared by every encoder and decoder; codec handles
// are safe for concurrent use once configured.
var jsonHandle = &codec.JsonHandle{}

// IsJSON reports whether mediaType is one of the JSON types this
// package understands.
func IsJSON(mediaType string) bool {
	switch mediaType {
	case "text/json", "application/json", JSONMediaType, V1JSONMediaType:
		return true
	}
	return false
}

// Decode tries to decode a restdata object from a reader, such as an
// HTTP request or response.  out must be a pointer type.
func Decode(contentType string, r io.Reader, out interface{}) error {
	if contentType == "" {
		// RFC 7231 section 3.1.1.5
		contentType = "application/octet-stream"
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ErrBadRequest{Err: err}
	}
	if !IsJSON(mediaType) {
		return ErrUnsupportedMediaType{Type: mediaType}
	}

	decoder := codec.NewDecoder(r, jsonHandle)
	if err := decoder.Decode(out); err != nil {
		return ErrBadRequest{Err: err}
	}
	return nil
}

// Encode writes the JSON representation of in to w.
func Encode(w io.Writer, in interface{}) error {
	return codec.NewEncoder(w, jsonHandle).Encode(in)
}

// EncodeBytes returns the JSON representation of in.
func EncodeBytes(in interface{}) ([]byte, error) {
	var out []byte
	err := codec.NewEncoderBytes(&out, jsonHandle).Encode(in)
	return out, err
}

// DecodeBytes decodes a JSON representation into out, which must be
// of pointer type.
func DecodeBytes(in []byte, out interface{}) error {
	return codec.NewDecoderBytes(in, jsonHandle).Decode(out)
}
