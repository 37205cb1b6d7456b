// Copyright 2015-2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package backend provides a standard way to construct a catalog
// based on command-line flags.
package backend

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/diffeo/go-geocatalog/memory"
	"github.com/diffeo/go-geocatalog/sqlstore"
)

// Backend describes user-visible parameters to store catalog data.
// This implements the flag.Value interface, and so a typical use is
//
//     func main() {
//         backend := backend.Backend{"memory", ""}
//         flag.Var(&backend, "backend", "impl:address of catalog storage")
//         flag.Parse()
//         catalog, closer, err := backend.Catalog(ctx, memory.Options{})
//     }
//
// The catalog itself always lives in memory; the other
// implementations name a SQL database that every commit is written
// to and that is loaded at startup.
type Backend struct {
	// Implementation holds the name of the implementation: one
	// of "memory", "postgres", "pgx", or "sqlite".
	Implementation string

	// Address holds some backend-specific address, such as a
	// database connect string.
	Address string
}

var implementations = map[string]bool{
	"memory":   true,
	"postgres": true,
	"pgx":      true,
	"sqlite":   true,
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Catalog creates a new catalog.  This generally should be only
// called once.  opts is passed through to memory.Open, with its
// Persister replaced by the database the backend names, if any.  The
// returned closer releases that database.
//
// In particular, if b.Implementation is "memory", multiple calls to
// this will create multiple independent catalogs.
func (b *Backend) Catalog(ctx context.Context, opts memory.Options) (*memory.Catalog, io.Closer, error) {
	var closer io.Closer = nopCloser{}
	switch b.Implementation {
	case "memory":
		opts.Persister = nil
	case "postgres", "pgx", "sqlite":
		store, err := sqlstore.Open(ctx, b.Implementation, b.Address)
		if err != nil {
			return nil, nil, err
		}
		if opts.Logger != nil {
			store.SetLogger(opts.Logger)
		}
		opts.Persister = store
		closer = store
	default:
		return nil, nil, errors.New("unknown catalog backend " + b.Implementation)
	}
	c, err := memory.Open(ctx, opts)
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}
	return c, closer, nil
}

// String renders a backend description as a string.
func (b *Backend) String() string {
	if b.Address == "" {
		return b.Implementation
	}
	return b.Implementation + ":" + b.Address
}

// Set parses a string into an existing backend description.  The
// string should be of the form "implementation:address", where
// address can be any string.  Set checks to see if the provided
// implementation is any of the known implementations, and returns an
// appropriate error if not.
//
// This is part of the flag.Value interface.  Note that neither
// function attempts to validate the b.Address part of the string or
// attempts to actually make a connection.
func (b *Backend) Set(param string) error {
	parts := strings.SplitN(param, ":", 2)
	if parts[0] == "" {
		return errors.New("must specify a backend type")
	}
	if !implementations[parts[0]] {
		return errors.New("unknown catalog backend " + parts[0])
	}
	b.Implementation = parts[0]
	b.Address = ""
	if len(parts) == 2 {
		b.Address = parts[1]
	}
	if b.Implementation != "memory" && b.Address == "" {
		return errors.New(b.Implementation + " backend requires an address")
	}
	return nil
}
