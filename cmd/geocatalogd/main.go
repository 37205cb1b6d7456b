// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package geocatalogd serves a geospatial catalog over HTTP.  The
// catalog lives in memory, optionally persisted to a SQL database,
// with style documents and store data in a blob store.
//
// Configuration comes from a YAML file, overridden by environment
// variables (which may be set in a .env file), overridden in turn by
// command-line flags.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/diffeo/go-geocatalog/backend"
	"github.com/diffeo/go-geocatalog/memory"
)

func main() {
	// A missing .env file is normal.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Fatal("Could not load .env file")
	}

	app := cli.NewApp()
	app.Name = "geocatalogd"
	app.Usage = "serve a geospatial catalog over HTTP"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "config",
			Usage:  "YAML configuration file",
			EnvVar: "GEOCATALOG_CONFIG",
		},
		cli.StringFlag{
			Name:   "http",
			Usage:  "[ip]:port for HTTP REST interface",
			EnvVar: "GEOCATALOG_HTTP",
		},
		cli.StringFlag{
			Name:   "backend",
			Usage:  "impl[:address] of the persistence backend",
			EnvVar: "GEOCATALOG_BACKEND",
		},
		cli.StringFlag{
			Name:   "blob-driver",
			Usage:  "backing file store: fs, memory, or s3",
			EnvVar: "GEOCATALOG_BLOB_DRIVER",
		},
		cli.StringFlag{
			Name:   "blob-root",
			Usage:  "directory for the fs backing file store",
			EnvVar: "GEOCATALOG_BLOB_ROOT",
		},
		cli.StringFlag{
			Name:   "blob-bucket",
			Usage:  "bucket for the s3 backing file store",
			EnvVar: "GEOCATALOG_BLOB_BUCKET",
		},
		cli.StringFlag{
			Name:   "namespace-uri-prefix",
			Usage:  "prefix of generated namespace URIs",
			EnvVar: "GEOCATALOG_NAMESPACE_URI_PREFIX",
		},
		cli.StringFlag{
			Name:   "log-level",
			Usage:  "minimum level to log",
			EnvVar: "GEOCATALOG_LOG_LEVEL",
		},
		cli.BoolFlag{
			Name:   "log-requests",
			Usage:  "log all requests",
			EnvVar: "GEOCATALOG_LOG_REQUESTS",
		},
	}
	app.Action = run
	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("geocatalogd failed")
	}
}

// applyFlags overrides cfg with whatever was set on the command line
// or in the environment.
func applyFlags(c *cli.Context, cfg *Config) {
	for _, s := range []struct {
		flag string
		out  *string
	}{
		{"http", &cfg.HTTP},
		{"backend", &cfg.Backend},
		{"blob-driver", &cfg.Blob.Driver},
		{"blob-root", &cfg.Blob.Root},
		{"blob-bucket", &cfg.Blob.Bucket},
		{"namespace-uri-prefix", &cfg.NamespaceURIPrefix},
		{"log-level", &cfg.LogLevel},
	} {
		if c.IsSet(s.flag) {
			*s.out = c.String(s.flag)
		}
	}
	if c.IsSet("log-requests") {
		cfg.LogRequests = c.Bool("log-requests")
	}
}

func run(c *cli.Context) error {
	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return err
	}
	applyFlags(c, &cfg)
	log, err := cfg.logger()
	if err != nil {
		return err
	}

	var be backend.Backend
	if err = be.Set(cfg.Backend); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	blobs, err := cfg.Blob.openBlobs(ctx)
	if err != nil {
		return err
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	cat, closer, err := be.Catalog(ctx, memory.Options{
		Logger:             log,
		Blobs:              blobs,
		Registerer:         registry,
		NamespaceURIPrefix: cfg.NamespaceURIPrefix,
	})
	if err != nil {
		return err
	}
	defer closer.Close()

	server := &http.Server{
		Addr:    cfg.HTTP,
		Handler: newHandler(cat, log, registry, cfg.LogRequests),
	}
	errs := make(chan error, 1)
	go func() {
		errs <- server.ListenAndServe()
	}()
	log.WithFields(logrus.Fields{
		"http":    cfg.HTTP,
		"backend": be.String(),
		"blobs":   blobs.Driver(),
	}).Info("serving catalog")

	select {
	case err = <-errs:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
