// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecode(t *testing.T) {
	tests := []struct{ plain, encoded string }{
		{"foo", "foo"},
		{"sf:roads", "sf:roads"},
		{"", "-"},
		{"-", "-LQ"},
		{"\u0000", "-AA"},
		{"a b", "-YSBi"},
	}
	for _, test := range tests {
		assert.Equal(t, test.encoded, MaybeEncodeName(test.plain),
			"MaybeEncodeName(%q)", test.plain)
		dec, err := MaybeDecodeName(test.encoded)
		if assert.NoError(t, err, "MaybeDecodeName(%q)", test.encoded) {
			assert.Equal(t, test.plain, dec)
		}
	}
}

func TestDecodeBadName(t *testing.T) {
	_, err := MaybeDecodeName("-!!")
	assert.Error(t, err)
	assert.Equal(t, 400, StatusOf(err))
}
