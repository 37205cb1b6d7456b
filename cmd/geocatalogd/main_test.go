// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diffeo/go-geocatalog/blob"
	"github.com/diffeo/go-geocatalog/memory"
)

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)

	filename := filepath.Join(t.TempDir(), "geocatalog.yaml")
	require.NoError(t, os.WriteFile(filename, []byte(`
http: ":8080"
backend: "sqlite:catalog.db"
blob:
  driver: s3
  bucket: styles
  region: eu-west-1
log_requests: true
`), 0o644))
	cfg, err = loadConfig(filename)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP)
	assert.Equal(t, "sqlite:catalog.db", cfg.Backend)
	assert.Equal(t, "s3", cfg.Blob.Driver)
	assert.Equal(t, "styles", cfg.Blob.Bucket)
	assert.Equal(t, "eu-west-1", cfg.Blob.Region)
	assert.Equal(t, "info", cfg.LogLevel, "unset keys keep defaults")
	assert.True(t, cfg.LogRequests)

	require.NoError(t, os.WriteFile(filename, []byte("htpp: \":8080\"\n"), 0o644))
	_, err = loadConfig(filename)
	assert.Error(t, err, "unknown keys are rejected")
}

func TestOpenBlobs(t *testing.T) {
	store, err := BlobConfig{Driver: "memory"}.openBlobs(context.Background())
	if assert.NoError(t, err) {
		assert.Equal(t, blob.DriverMemory, store.Driver())
	}
	store, err = BlobConfig{Driver: "fs", Root: t.TempDir()}.openBlobs(context.Background())
	if assert.NoError(t, err) {
		assert.Equal(t, blob.DriverFilesystem, store.Driver())
	}
	_, err = BlobConfig{Driver: "ftp"}.openBlobs(context.Background())
	assert.Error(t, err)
}

func TestHandler(t *testing.T) {
	log := logrus.New()
	log.Out = io.Discard
	registry := prometheus.NewRegistry()
	c, err := memory.Open(context.Background(), memory.Options{Logger: log, Registerer: registry})
	require.NoError(t, err)
	server := httptest.NewServer(newHandler(c, log, registry, true))
	defer server.Close()

	resp, err := http.Get(server.URL + "/styles")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "geocatalog_")
}
