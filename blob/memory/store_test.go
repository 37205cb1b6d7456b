// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"testing"

	"github.com/diffeo/go-geocatalog/blob/blobtest"
)

func TestStore(t *testing.T) {
	blobtest.Run(t, New())
}
