// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory_test

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	blobmemory "github.com/diffeo/go-geocatalog/blob/memory"
	"github.com/diffeo/go-geocatalog/catalog/catalogtest"
	"github.com/diffeo/go-geocatalog/memory"
)

// Suite runs the generic catalog tests against the in-memory engine.
type Suite struct {
	catalogtest.Suite
}

// SetupTest creates a fresh catalog for each test.
func (s *Suite) SetupTest() {
	log := logrus.New()
	log.Out = io.Discard
	blobs := blobmemory.New()
	c, err := memory.Open(context.Background(), memory.Options{
		Clock:  s.Clock,
		Logger: log,
		Blobs:  blobs,
	})
	s.Require().NoError(err)
	s.Catalog = c
	s.Blobs = blobs
}

// TestCatalog runs the Catalog generic tests.
func TestCatalog(t *testing.T) {
	suite.Run(t, &Suite{})
}
