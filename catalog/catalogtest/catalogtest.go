// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package catalogtest provides generic functional tests for the
// Catalog interface.  A typical backend test module needs to wrap
// Suite to create its backend:
//
//	package mybackend
//
//	import (
//	        "testing"
//	        "github.com/diffeo/go-geocatalog/catalog/catalogtest"
//	        "github.com/stretchr/testify/suite"
//	)
//
//	// Suite is the per-backend generic test suite.
//	type Suite struct{
//	        catalogtest.Suite
//	}
//
//	// SetupTest creates a fresh catalog for each test.
//	func (s *Suite) SetupTest() {
//	        s.Catalog = NewWithClock(s.Clock)
//	}
//
//	// TestCatalog runs the Catalog generic tests.
//	func TestCatalog(t *testing.T) {
//	        suite.Run(t, &Suite{})
//	}
//
// Every test expects an empty catalog apart from the built-in styles.
package catalogtest

import (
	"context"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/suite"

	"github.com/diffeo/go-geocatalog/blob"
	"github.com/diffeo/go-geocatalog/catalog"
)

// Suite is the generic Catalog backend test suite.
type Suite struct {
	suite.Suite

	// Clock contains the alternate time source to be used in tests.
	// It is pre-initialized to a mock clock.
	Clock *clock.Mock

	// Catalog contains the top-level interface to the backend
	// under test.  It is set by importing packages, usually in
	// SetupTest.
	Catalog catalog.Catalog

	// Blobs, if set, is the backing file store the catalog
	// reads data files and style documents from.  Tests that need
	// to plant data files are skipped if it is nil.
	Blobs blob.Store
}

// SetupSuite does one-time initialization for the test suite.
func (s *Suite) SetupSuite() {
	s.Clock = clock.NewMock()
}

func (s *Suite) ctx() context.Context {
	return context.Background()
}

// requireBlobs skips the current test if the backend does not expose
// its backing files.
func (s *Suite) requireBlobs() {
	if s.Blobs == nil {
		s.T().Skip("backend does not expose backing files")
	}
}

// putData plants a property file dataset for a store rooted at
// location.
func (s *Suite) putData(location, name, content string) {
	s.requireBlobs()
	_, err := blob.PutBytes(s.ctx(), s.Blobs, location+"/"+name+".properties", []byte(content), "text/plain")
	s.Require().NoError(err)
}

// workspace creates a workspace or fails the test.
func (s *Suite) workspace(name string) *catalog.Workspace {
	ws, err := s.Catalog.CreateWorkspace(s.ctx(), &catalog.Workspace{Name: name})
	s.Require().NoError(err)
	return ws
}

// dataStore creates a file-based data store or fails the test.
func (s *Suite) dataStore(ws, name, location string) *catalog.Store {
	st, err := s.Catalog.CreateStore(s.ctx(), ws, &catalog.Store{
		Name:       name,
		Kind:       catalog.DataStore,
		Enabled:    true,
		Connection: map[string]string{"url": "file:" + location},
	})
	s.Require().NoError(err)
	return st
}

// featureType creates a feature type or fails the test.
func (s *Suite) featureType(ws, store, name string) *catalog.Resource {
	r, err := s.Catalog.CreateResource(s.ctx(), ws, store, &catalog.Resource{
		Name:    name,
		Kind:    catalog.FeatureType,
		Title:   name,
		Enabled: true,
	})
	s.Require().NoError(err)
	return r
}

// sf builds the usual fixture: workspace "sf", data store "sf" at
// "data/sf", and the feature types named.
func (s *Suite) sf(names ...string) {
	s.workspace("sf")
	s.dataStore("sf", "sf", "data/sf")
	for _, name := range names {
		s.featureType("sf", "sf", name)
	}
}

// Kind asserts that err is a catalog error of kind.
func (s *Suite) Kind(kind catalog.ErrorKind, err error, msgAndArgs ...interface{}) bool {
	if !s.Error(err, msgAndArgs...) {
		return false
	}
	return s.Equal(kind.String(), catalog.KindOf(err).String(), msgAndArgs...)
}

// NotFound asserts that err is a NotFound error.
func (s *Suite) NotFound(err error, msgAndArgs ...interface{}) bool {
	return s.Kind(catalog.NotFound, err, msgAndArgs...)
}
