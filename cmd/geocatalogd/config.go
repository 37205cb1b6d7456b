// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/diffeo/go-geocatalog/blob"
	blobfs "github.com/diffeo/go-geocatalog/blob/fs"
	blobmemory "github.com/diffeo/go-geocatalog/blob/memory"
	blobs3 "github.com/diffeo/go-geocatalog/blob/s3"
)

// Config is the daemon configuration, as read from the YAML file.
// Command-line flags and their environment variables override it.
type Config struct {
	HTTP               string     `yaml:"http"`
	Backend            string     `yaml:"backend"`
	Blob               BlobConfig `yaml:"blob"`
	NamespaceURIPrefix string     `yaml:"namespace_uri_prefix"`
	LogLevel           string     `yaml:"log_level"`
	LogRequests        bool       `yaml:"log_requests"`
}

// BlobConfig selects where style documents and store data live.
type BlobConfig struct {
	// Driver is "fs", "memory", or "s3".
	Driver string `yaml:"driver"`

	// Root is the directory of the "fs" driver.
	Root string `yaml:"root"`

	blobs3.Config `yaml:",inline"`
}

func defaultConfig() Config {
	return Config{
		HTTP:     ":5980",
		Backend:  "memory",
		Blob:     BlobConfig{Driver: "fs", Root: "data"},
		LogLevel: "info",
	}
}

// loadConfig reads a YAML file over the defaults.  An empty filename
// returns the defaults.
func loadConfig(filename string) (Config, error) {
	cfg := defaultConfig()
	if filename == "" {
		return cfg, nil
	}
	bytes, err := os.ReadFile(filename)
	if err == nil {
		err = yaml.UnmarshalStrict(bytes, &cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", filename, err)
	}
	return cfg, nil
}

// openBlobs creates the configured blob store.
func (c BlobConfig) openBlobs(ctx context.Context) (blob.Store, error) {
	switch c.Driver {
	case "", "fs":
		return blobfs.New(c.Root)
	case "memory":
		return blobmemory.New(), nil
	case "s3":
		return blobs3.New(ctx, c.Config)
	default:
		return nil, fmt.Errorf("unknown blob driver %q", c.Driver)
	}
}

// logger builds the daemon logger at the configured level.
func (c Config) logger() (*logrus.Logger, error) {
	log := logrus.New()
	log.Out = os.Stderr
	if c.LogLevel != "" {
		level, err := logrus.ParseLevel(c.LogLevel)
		if err != nil {
			return nil, err
		}
		log.SetLevel(level)
	}
	return log, nil
}
