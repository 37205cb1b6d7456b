// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package blob defines storage for the files behind catalog objects:
// style documents and the data directories of file-based stores.
// Keys are slash-separated relative paths.  Backends live in the
// subpackages fs, memory, and s3.
package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"
)

// Driver identifies a blob backend.
type Driver string

// The blob backends.
const (
	DriverFilesystem Driver = "fs"
	DriverMemory     Driver = "memory"
	DriverS3         Driver = "s3"
)

// ErrNotFound is returned (possibly wrapped) when a key does not
// exist.
var ErrNotFound = errors.New("blob not found")

// PutOptions are optional parameters to Put.
type PutOptions struct {
	ContentType string
}

// Info describes one stored blob.
type Info struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"contentType,omitempty"`
	LastModified time.Time `json:"lastModified"`
}

// Store is a flat key/value file store.  Put replaces any existing
// blob with the same key.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	Head(ctx context.Context, key string) (Info, error)

	// Delete removes a blob, returning whether it existed.
	Delete(ctx context.Context, key string) (bool, error)

	// List returns every blob whose key starts with prefix,
	// sorted by key.
	List(ctx context.Context, prefix string) ([]Info, error)

	Driver() Driver
}

// ReadAll returns the full content of a blob.
func ReadAll(ctx context.Context, s Store, key string) ([]byte, error) {
	_, rc, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// PutBytes stores data under key.
func PutBytes(ctx context.Context, s Store, key string, data []byte, contentType string) (Info, error) {
	return s.Put(ctx, key, bytes.NewReader(data), PutOptions{ContentType: contentType})
}

// Exists reports whether key exists.
func Exists(ctx context.Context, s Store, key string) (bool, error) {
	_, err := s.Head(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// metadataSuffixes are extensions of index and metadata files that
// sit beside data files and can be regenerated from them.
var metadataSuffixes = []string{
	".properties", ".shp", ".shx", ".dbf", ".prj", ".qix", ".fix",
	".cpg", ".xml", ".db", ".sqlite", ".ncx", ".ncx2", ".ncx3", ".aux",
}

// IsMetadata reports whether a key names an index or metadata file
// of a raster mosaic rather than a granule.
func IsMetadata(key string) bool {
	base := path.Base(key)
	if strings.HasPrefix(base, "sample_image") {
		return true
	}
	lower := strings.ToLower(base)
	for _, suffix := range metadataSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// vectorIndexSuffixes are extensions of spatial index files that
// vector readers build beside their data.
var vectorIndexSuffixes = []string{".qix", ".fix"}

// IsVectorIndex reports whether a key names a spatial index file
// beside vector data.  Everything else in a vector data directory,
// including .properties and shapefile sidecars, is data.
func IsVectorIndex(key string) bool {
	lower := strings.ToLower(path.Base(key))
	for _, suffix := range vectorIndexSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// ListLocation lists the blobs making up a store location.  A
// location with a file extension names a single file, and matches
// every sibling with the same base name (foo.shp, foo.dbf, ...); any
// other location names a directory.
func ListLocation(ctx context.Context, s Store, location string) ([]Info, error) {
	if location == "" {
		return nil, nil
	}
	ext := path.Ext(location)
	if ext == "" {
		return s.List(ctx, location+"/")
	}
	stem := strings.TrimSuffix(location, ext)
	infos, err := s.List(ctx, stem)
	if err != nil {
		return nil, err
	}
	var result []Info
	for _, info := range infos {
		rest := strings.TrimPrefix(info.Key, stem)
		if strings.HasPrefix(rest, ".") && !strings.Contains(rest, "/") {
			result = append(result, info)
		}
	}
	return result, nil
}
