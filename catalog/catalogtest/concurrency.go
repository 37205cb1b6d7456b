// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package catalogtest

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/diffeo/go-geocatalog/catalog"
)

// TestConcurrentSameName is Scenario D: several clients create and
// delete the same resource at once.  Each call either works or fails
// cleanly, and since every client finishes with a delete, nothing is
// left.
func (s *Suite) TestConcurrentSameName() {
	s.sf()
	const clients, iterations = 5, 5

	g, ctx := errgroup.WithContext(s.ctx())
	for i := 0; i < clients; i++ {
		g.Go(func() error {
			for j := 0; j < iterations; j++ {
				_, err := s.Catalog.CreateResource(ctx, "sf", "sf", &catalog.Resource{
					Name:  "shared",
					Kind:  catalog.FeatureType,
					Title: "shared",
				})
				if err != nil && !catalog.IsKind(err, catalog.DuplicateName) {
					return fmt.Errorf("create: %w", err)
				}
				err = s.Catalog.DeleteResource(ctx, "sf", "sf", "shared", catalog.DeleteOptions{Recurse: true})
				if err != nil && !catalog.IsKind(err, catalog.NotFound) {
					return fmt.Errorf("delete: %w", err)
				}
			}
			return nil
		})
	}
	s.Require().NoError(g.Wait())

	_, err := s.Catalog.Resource(s.ctx(), "sf", "sf", "shared")
	s.NotFound(err)
	_, err = s.Catalog.Layer(s.ctx(), "sf", "shared")
	s.NotFound(err)
}

// TestConcurrentDistinctNames checks that concurrent changes to
// different names serialize: readers only ever see whole objects,
// and the end state has exactly the survivors.
func (s *Suite) TestConcurrentDistinctNames() {
	s.sf()
	const clients = 5

	g, ctx := errgroup.WithContext(s.ctx())
	done := make(chan struct{})
	for i := 0; i < clients; i++ {
		i := i
		g.Go(func() error {
			for j := 0; j < 4; j++ {
				name := fmt.Sprintf("r%d_%d", i, j)
				if _, err := s.Catalog.CreateResource(ctx, "sf", "sf", &catalog.Resource{
					Name:     name,
					Kind:     catalog.FeatureType,
					Title:    name,
					Keywords: []string{name},
				}); err != nil {
					return err
				}
				// Keep the even ones.
				if j%2 == 1 {
					if err := s.Catalog.DeleteResource(ctx, "sf", "sf", name, catalog.DeleteOptions{Recurse: true}); err != nil {
						return err
					}
				}
			}
			return nil
		})
	}
	reader := make(chan error, 1)
	go func() {
		reader <- s.readWhole(s.ctx(), done)
	}()
	err := g.Wait()
	close(done)
	s.Require().NoError(err)
	s.Require().NoError(<-reader)

	resources, err := s.Catalog.Resources(s.ctx(), "sf", "sf", "")
	s.Require().NoError(err)
	var names []string
	for _, r := range resources {
		names = append(names, r.Name)
	}
	var expected []string
	for i := 0; i < clients; i++ {
		expected = append(expected, fmt.Sprintf("r%d_0", i), fmt.Sprintf("r%d_2", i))
	}
	s.ElementsMatch(expected, names)

	layers, err := s.Catalog.Layers(s.ctx(), "sf")
	s.Require().NoError(err)
	s.Len(layers, len(expected))
}

// readWhole lists resources until done is closed, checking that
// every resource seen is complete.
func (s *Suite) readWhole(ctx context.Context, done <-chan struct{}) error {
	for {
		select {
		case <-done:
			return nil
		default:
		}
		resources, err := s.Catalog.Resources(ctx, "sf", "sf", "")
		if err != nil {
			return err
		}
		for _, r := range resources {
			if r.Title != r.Name || len(r.Keywords) != 1 || r.Keywords[0] != r.Name ||
				r.Store.Name != "sf" || r.Namespace.Name != "sf" {
				return fmt.Errorf("partial resource %+v", r)
			}
		}
	}
}
