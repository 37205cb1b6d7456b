// Copyright 2015-2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient_test

import (
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	blobmemory "github.com/diffeo/go-geocatalog/blob/memory"
	"github.com/diffeo/go-geocatalog/catalog"
	"github.com/diffeo/go-geocatalog/catalog/catalogtest"
	"github.com/diffeo/go-geocatalog/memory"
	"github.com/diffeo/go-geocatalog/restclient"
	"github.com/diffeo/go-geocatalog/restserver"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.Out = io.Discard
	return log
}

// Suite runs the generic catalog tests through the REST client,
// against the REST server, against an in-memory catalog.
type Suite struct {
	catalogtest.Suite
	server *httptest.Server
}

// SetupTest creates a fresh catalog and server for each test.
func (s *Suite) SetupTest() {
	log := quietLogger()
	blobs := blobmemory.New()
	mem, err := memory.Open(context.Background(), memory.Options{
		Clock:  s.Clock,
		Logger: log,
		Blobs:  blobs,
	})
	s.Require().NoError(err)
	s.server = httptest.NewServer(restserver.NewRouter(mem, log))
	client, err := restclient.New(s.server.URL)
	s.Require().NoError(err)
	s.Catalog = client
	s.Blobs = blobs
}

// TearDownTest shuts down the test server.
func (s *Suite) TearDownTest() {
	s.server.Close()
}

// TestCatalog runs the Catalog generic tests.
func TestCatalog(t *testing.T) {
	suite.Run(t, &Suite{})
}

// newClient starts a REST stack over a fresh in-memory catalog.
func newClient(t *testing.T) (*restclient.Client, *memory.Catalog) {
	mem, err := memory.Open(context.Background(), memory.Options{Logger: quietLogger()})
	require.NoError(t, err)
	server := httptest.NewServer(restserver.NewRouter(mem, quietLogger()))
	t.Cleanup(server.Close)
	client, err := restclient.New(server.URL)
	require.NoError(t, err)
	return client, mem
}

func TestEmptyURL(t *testing.T) {
	_, err := restclient.New("")
	assert.Error(t, err)
}

func TestQuietNotFound(t *testing.T) {
	client, _ := newClient(t)

	_, err := client.Workspace(context.Background(), "nope")
	if assert.True(t, catalog.IsKind(err, catalog.NotFound)) {
		assert.Contains(t, err.Error(), "nope")
	}

	ctx := catalog.WithQuietNotFound(context.Background())
	_, err = client.Workspace(ctx, "nope")
	assert.True(t, catalog.IsKind(err, catalog.NotFound))
	var cerr *catalog.Error
	if assert.ErrorAs(t, err, &cerr) {
		assert.True(t, cerr.Quiet)
	}
}

func TestNameEncoding(t *testing.T) {
	client, mem := newClient(t)
	ctx := context.Background()

	// Names that need escaping in a URL still reach the catalog
	// unchanged.
	_, err := client.CreateWorkspace(ctx, &catalog.Workspace{Name: "a b"})
	require.NoError(t, err)
	ws, err := mem.Workspace(ctx, "a b")
	if assert.NoError(t, err) {
		assert.Equal(t, "a b", ws.Name)
	}
	ws, err = client.Workspace(ctx, "a b")
	if assert.NoError(t, err) {
		assert.Equal(t, "a b", ws.Name)
	}
}

func TestWatch(t *testing.T) {
	client, _ := newClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan catalog.Event, 100)
	watchErr := make(chan error, 1)
	go func() {
		watchErr <- client.Watch(ctx, func(ev catalog.Event) {
			events <- ev
		})
	}()

	// The subscription starts some time after the connection, so
	// keep making changes until one is reported.
	var got *catalog.Event
	for i := 0; i < 50 && got == nil; i++ {
		_, err := client.CreateWorkspace(ctx, &catalog.Workspace{Name: fmt.Sprintf("w%d", i)})
		require.NoError(t, err)
		select {
		case ev := <-events:
			got = &ev
		case <-time.After(100 * time.Millisecond):
		}
	}
	if assert.NotNil(t, got, "no event received") {
		assert.Equal(t, catalog.Added, got.Type)
		assert.NotEmpty(t, got.ID)
	}

	cancel()
	select {
	case err := <-watchErr:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Error("Watch did not return after cancel")
	}
}
