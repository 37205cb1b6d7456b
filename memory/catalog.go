// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package memory provides the authoritative in-process implementation
// of catalog.Catalog.
//
// The whole catalog lives in memory as a single immutable state
// value.  Readers share the committed state under a read lock;
// writers take the lock exclusively, work on a private copy, and
// swap it in on commit, so no reader ever sees a half-applied change.
// Durability is delegated to an optional catalog.Persister, which is
// called inside every commit; backing files go through a blob.Store.
//
// The lock is reentrant through the context: a catalog method called
// with a context handed to a Transaction callback (or to a nested
// operation) joins the running transaction instead of deadlocking.
// A failed nested operation is rolled back to the point where it
// began, and the enclosing transaction may continue.
package memory

import (
	"context"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/diffeo/go-geocatalog/blob"
	blobmemory "github.com/diffeo/go-geocatalog/blob/memory"
	"github.com/diffeo/go-geocatalog/cache"
	"github.com/diffeo/go-geocatalog/catalog"
	"github.com/diffeo/go-geocatalog/datasource"
)

// defaultName is the reserved workspace name that resolves to the
// current default workspace.
const defaultName = "default"

// DefaultNamespaceURIPrefix is prepended to a workspace name to make
// the URI of its namespace when none is given.
const DefaultNamespaceURIPrefix = "http://"

// Options configure a Catalog.  Every field is optional.
type Options struct {
	// Clock stamps created and modified times.
	Clock clock.Clock

	// Logger receives transaction logs.  Defaults to the logrus
	// standard logger.
	Logger logrus.FieldLogger

	// Blobs holds style documents and store data files.
	// Defaults to an empty in-memory store.
	Blobs blob.Store

	// Persister records every commit.  If nil, the catalog is
	// not durable.
	Persister catalog.Persister

	// DataSource describes the data behind resources.  Defaults
	// to reading property files from Blobs.
	DataSource catalog.DataSource

	// Registerer receives the catalog metrics.  If nil, metrics
	// are collected but not registered.
	Registerer prometheus.Registerer

	// NamespaceURIPrefix is used to make namespace URIs for new
	// workspaces.  Defaults to DefaultNamespaceURIPrefix.
	NamespaceURIPrefix string

	// DescriptionCacheSize bounds the number of cached resource
	// descriptions.
	DescriptionCacheSize int
}

// Catalog is the in-memory catalog.
type Catalog struct {
	clock        clock.Clock
	log          logrus.FieldLogger
	blobs        blob.Store
	persister    catalog.Persister
	uriPrefix    string
	descriptions *cache.Descriptions
	metrics      *metrics

	lock Lock

	// committed is the current state.  It is read under lock's
	// read side and replaced under its write side.
	committed *state

	subMu   sync.Mutex
	subs    map[int]func(catalog.Event)
	nextSub int
}

// New creates a new, empty, non-durable catalog with in-memory
// backing files.
func New() *Catalog {
	return NewWithClock(clock.New())
}

// NewWithClock creates a new in-memory catalog with a specified time
// source, usually a mock clock for tests.
func NewWithClock(clk clock.Clock) *Catalog {
	c, err := Open(context.Background(), Options{Clock: clk})
	if err != nil {
		// Only a persister or a real blob store can fail.
		panic(err)
	}
	return c
}

// Open creates a catalog, loading any persisted state and creating
// the built-in styles if they are missing.
func Open(ctx context.Context, opts Options) (*Catalog, error) {
	c := &Catalog{
		clock:     opts.Clock,
		log:       opts.Logger,
		blobs:     opts.Blobs,
		persister: opts.Persister,
		uriPrefix: opts.NamespaceURIPrefix,
		metrics:   newMetrics(opts.Registerer),
		committed: newState(),
		subs:      make(map[int]func(catalog.Event)),
	}
	if c.clock == nil {
		c.clock = clock.New()
	}
	if c.log == nil {
		c.log = logrus.StandardLogger()
	}
	if c.blobs == nil {
		c.blobs = blobmemory.New()
	}
	if c.uriPrefix == "" {
		c.uriPrefix = DefaultNamespaceURIPrefix
	}
	source := opts.DataSource
	if source == nil {
		source = datasource.New(c.blobs)
	}
	c.descriptions = cache.NewDescriptions(source, opts.DescriptionCacheSize)
	c.lock.observe = c.metrics.observeLock

	if c.persister != nil {
		snap, err := c.persister.Load(ctx)
		if err != nil {
			return nil, err
		}
		s, err := loadSnapshot(snap)
		if err != nil {
			return nil, err
		}
		c.committed = s
	}
	if err := c.bootstrap(ctx); err != nil {
		return nil, err
	}
	c.metrics.count(c.committed)
	return c, nil
}

// Blobs returns the backing file store.
func (c *Catalog) Blobs() blob.Store {
	return c.blobs
}

// Subscribe implements catalog.Notifier.
func (c *Catalog) Subscribe(f func(catalog.Event)) func() {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = f
	return func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		delete(c.subs, id)
	}
}

func (c *Catalog) notify(events []catalog.Event) {
	if len(events) == 0 {
		return
	}
	c.subMu.Lock()
	subs := make([]func(catalog.Event), 0, len(c.subs))
	for _, f := range c.subs {
		subs = append(subs, f)
	}
	c.subMu.Unlock()
	for _, ev := range events {
		for _, f := range subs {
			f(ev)
		}
	}
}

// Transaction runs fn as one atomic change to the catalog.  Catalog
// methods called with the context passed to fn join the transaction;
// if fn returns an error, every change it made is discarded.
func (c *Catalog) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return c.write(ctx, "Transaction", func(ctx context.Context, _ *tx) error {
		return fn(ctx)
	})
}

// Reset drops all cached resource descriptions.
func (c *Catalog) Reset(ctx context.Context) error {
	return c.write(ctx, "Reset", func(context.Context, *tx) error {
		c.descriptions.Reset()
		return nil
	})
}

// Dependents returns everything that would be removed along with
// the object of kind and id by a recursive delete, in the order it
// would be removed.  Style referrers are not included; they are
// changed, not removed.
func (c *Catalog) Dependents(ctx context.Context, kind catalog.Kind, id string) ([]catalog.Object, error) {
	var result []catalog.Object
	err := c.read(ctx, func(ctx context.Context, s *state) error {
		if _, ok := s.object(kind, id); !ok {
			return catalog.NotFoundf(ctx, "no %s with id %q", kind, id)
		}
		plan := s.closure(node{kind, id})
		for _, n := range plan[:len(plan)-1] {
			obj, _ := s.object(n.kind, n.id)
			result = append(result, s.fill(obj))
		}
		return nil
	})
	return result, err
}
