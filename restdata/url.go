// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"encoding/base64"
	"strings"
)

// urlSafe reports whether c is "unreserved" in RFC 3986 section 2.3,
// or a colon, which appears in qualified names.
func urlSafe(c rune) bool {
	switch {
	case c == '-', c == '.', c == '_', c == ':', c == '~':
		return true
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return false
}

// MaybeEncodeName examines a name, and if it cannot be directly
// inserted into a URL as-is, base64 encodes it.  More specifically,
// the encoded name begins with - and uses the URL-safe base64
// alphabet with no padding.
func MaybeEncodeName(name string) string {
	// The empty name and names starting with "-" are ambiguous
	// otherwise.
	if name != "" && name[0] != '-' && strings.IndexFunc(name, func(c rune) bool { return !urlSafe(c) }) < 0 {
		return name
	}
	return "-" + base64.RawURLEncoding.EncodeToString([]byte(name))
}

// MaybeDecodeName examines a name, and if it appears to be base64
// encoded, decodes it.  This function is the dual of
// MaybeEncodeName().  Returns an error if the string begins with -
// and the remainder of the string isn't actually base64 encoded.
func MaybeDecodeName(name string) (string, error) {
	if !strings.HasPrefix(name, "-") {
		return name, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(name[1:])
	if err != nil {
		return "", ErrBadRequest{Err: err}
	}
	return string(b), nil
}
