// Copyright 2016-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package catalogbench provides a load-generation tool for the
// catalog.  It runs concurrent creates and deletes against either a
// remote server or a local backend and reports what happened.
package main

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	uuid "github.com/satori/go.uuid"
	"github.com/urfave/cli"

	"github.com/diffeo/go-geocatalog/backend"
	"github.com/diffeo/go-geocatalog/catalog"
	"github.com/diffeo/go-geocatalog/memory"
	"github.com/diffeo/go-geocatalog/restclient"
)

type benchWork struct {
	Catalog     catalog.Catalog
	Workspace   string
	Store       string
	Concurrency int

	ok     int64
	failed map[string]int
	mu     sync.Mutex
}

func (bench *benchWork) Run(runner func()) {
	start := time.Now()
	wg := sync.WaitGroup{}
	wg.Add(bench.Concurrency)
	for i := 0; i < bench.Concurrency; i++ {
		go func() {
			defer wg.Done()
			runner()
		}()
	}
	wg.Wait()
	fmt.Printf("%d succeeded in %v\n", atomic.LoadInt64(&bench.ok), time.Since(start))
	for kind, n := range bench.failed {
		fmt.Printf("%d failed: %s\n", n, kind)
	}
}

// record counts the outcome of one operation by error kind.
func (bench *benchWork) record(err error) {
	if err == nil {
		atomic.AddInt64(&bench.ok, 1)
		return
	}
	kind := catalog.KindOf(err).String()
	if catalog.KindOf(err) == 0 {
		kind = err.Error()
	}
	bench.mu.Lock()
	defer bench.mu.Unlock()
	if bench.failed == nil {
		bench.failed = make(map[string]int)
	}
	bench.failed[kind]++
}

var bench benchWork

var addResources = cli.Command{
	Name:  "add",
	Usage: "create many feature types",
	Flags: []cli.Flag{
		cli.IntFlag{
			Name:  "count",
			Value: 100,
			Usage: "number of feature types to create",
		},
	},
	Action: func(c *cli.Context) {
		count := c.Int("count")
		numbers := make(chan int)
		go func() {
			for i := 1; i <= count; i++ {
				numbers <- i
			}
			close(numbers)
		}()
		ctx := context.Background()
		bench.Run(func() {
			for <-numbers != 0 {
				name := uuid.NewV4().String()
				_, err := bench.Catalog.CreateResource(ctx, bench.Workspace, bench.Store, &catalog.Resource{
					Name:    name,
					Kind:    catalog.FeatureType,
					Enabled: true,
				})
				bench.record(err)
			}
		})
	},
}

var churn = cli.Command{
	Name:  "churn",
	Usage: "create and delete the same feature type from every worker",
	Flags: []cli.Flag{
		cli.IntFlag{
			Name:  "rounds",
			Value: 100,
			Usage: "create/delete pairs per worker",
		},
		cli.StringFlag{
			Name:  "name",
			Value: "churn",
			Usage: "feature type name to fight over",
		},
	},
	Action: func(c *cli.Context) {
		rounds := c.Int("rounds")
		name := c.String("name")
		ctx := context.Background()
		bench.Run(func() {
			for i := 0; i < rounds; i++ {
				_, err := bench.Catalog.CreateResource(ctx, bench.Workspace, bench.Store, &catalog.Resource{
					Name:    name,
					Kind:    catalog.FeatureType,
					Enabled: true,
				})
				bench.record(err)
				err = bench.Catalog.DeleteResource(ctx, bench.Workspace, bench.Store, name,
					catalog.DeleteOptions{Recurse: true})
				bench.record(err)
			}
		})
	},
}

var clear = cli.Command{
	Name:  "clear",
	Usage: "delete the benchmark workspace and everything in it",
	Action: func(c *cli.Context) error {
		return bench.Catalog.DeleteWorkspace(context.Background(), bench.Workspace,
			catalog.DeleteOptions{Recurse: true})
	},
}

// setup makes sure the workspace and its data store exist.
func (bench *benchWork) setup(ctx context.Context) error {
	_, err := bench.Catalog.CreateWorkspace(ctx, &catalog.Workspace{Name: bench.Workspace})
	if err != nil && !catalog.IsKind(err, catalog.DuplicateName) {
		return err
	}
	_, err = bench.Catalog.CreateStore(ctx, bench.Workspace, &catalog.Store{
		Name:       bench.Store,
		Kind:       catalog.DataStore,
		Enabled:    true,
		Connection: map[string]string{"url": "file:data/" + bench.Store},
	})
	if err != nil && !catalog.IsKind(err, catalog.DuplicateName) {
		return err
	}
	return nil
}

func main() {
	backend := backend.Backend{Implementation: "memory"}
	app := cli.NewApp()
	app.Usage = "benchmark the geospatial catalog"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "url",
			Usage: "base URL of a catalog REST server; overrides --backend",
		},
		cli.GenericFlag{
			Name:  "backend",
			Value: &backend,
			Usage: "impl:[address] of a local catalog backend",
		},
		cli.StringFlag{
			Name:  "workspace",
			Value: "bench",
			Usage: "workspace to work in",
		},
		cli.StringFlag{
			Name:  "store",
			Value: "bench",
			Usage: "data store to create feature types in",
		},
		cli.IntFlag{
			Name:  "concurrency",
			Value: runtime.NumCPU(),
			Usage: "run this many jobs in parallel",
		},
	}
	app.Commands = []cli.Command{
		addResources,
		churn,
		clear,
	}
	app.Before = func(c *cli.Context) (err error) {
		ctx := context.Background()
		if url := c.String("url"); url != "" {
			bench.Catalog, err = restclient.New(url)
		} else {
			bench.Catalog, _, err = backend.Catalog(ctx, memory.Options{})
		}
		if err != nil {
			return
		}
		bench.Workspace = c.String("workspace")
		bench.Store = c.String("store")
		bench.Concurrency = c.Int("concurrency")
		return bench.setup(ctx)
	}
	app.RunAndExitOnError()
}
