// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package fs implements a blob.Store over a local directory.  Keys
// map directly onto relative file paths, so a data directory can be
// shared with other tools that read the files in place.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/diffeo/go-geocatalog/blob"
)

// Store is a blob.Store rooted at a directory.
type Store struct {
	root string
}

// New returns a filesystem blob store rooted at root, creating the
// directory if needed.
func New(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("blob root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Store{root: root}, nil
}

// Driver returns blob.DriverFilesystem.
func (s *Store) Driver() blob.Driver { return blob.DriverFilesystem }

// Root returns the root directory.
func (s *Store) Root() string { return s.root }

// sanitizeKey rejects keys that would escape the root.
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", errors.New("empty key")
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid absolute key %q", key)
	}
	clean := filepath.ToSlash(filepath.Clean(key))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return clean, nil
}

func (s *Store) pathFor(key string) (string, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(k)), nil
}

func (s *Store) info(key string, fi os.FileInfo) blob.Info {
	return blob.Info{
		Key:          key,
		Size:         fi.Size(),
		ContentType:  mime.TypeByExtension(filepath.Ext(key)),
		LastModified: fi.ModTime().UTC(),
	}
}

func notFound(key string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", blob.ErrNotFound, key)
	}
	return err
}

// Put writes a blob through a temporary file and renames it into
// place, replacing any existing file.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, opts blob.PutOptions) (blob.Info, error) {
	if err := ctx.Err(); err != nil {
		return blob.Info{}, err
	}
	path, err := s.pathFor(key)
	if err != nil {
		return blob.Info{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return blob.Info{}, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return blob.Info{}, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return blob.Info{}, err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return blob.Info{}, err
	}
	if err := tmp.Close(); err != nil {
		return blob.Info{}, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return blob.Info{}, err
	}
	fi, err := os.Stat(path)
	if err != nil {
		return blob.Info{}, err
	}
	info := s.info(key, fi)
	if opts.ContentType != "" {
		info.ContentType = opts.ContentType
	}
	return info, nil
}

// Get opens a blob for reading.
func (s *Store) Get(_ context.Context, key string) (blob.Info, io.ReadCloser, error) {
	path, err := s.pathFor(key)
	if err != nil {
		return blob.Info{}, nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return blob.Info{}, nil, notFound(key, err)
	}
	fi, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return blob.Info{}, nil, err
	}
	return s.info(key, fi), file, nil
}

// Head returns a blob's metadata.
func (s *Store) Head(_ context.Context, key string) (blob.Info, error) {
	path, err := s.pathFor(key)
	if err != nil {
		return blob.Info{}, err
	}
	fi, err := os.Stat(path)
	if err != nil {
		return blob.Info{}, notFound(key, err)
	}
	if fi.IsDir() {
		return blob.Info{}, fmt.Errorf("%w: %s is a directory", blob.ErrNotFound, key)
	}
	return s.info(key, fi), nil
}

// Delete removes a blob, returning whether it existed.  Directories
// left empty are not removed.
func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	path, err := s.pathFor(key)
	if err != nil {
		return false, err
	}
	err = os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// List walks the root and returns every file whose key starts with
// prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]blob.Info, error) {
	var infos []blob.Info
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(filepath.Base(key), ".tmp-") || !strings.HasPrefix(key, prefix) {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		infos = append(infos, s.info(key, fi))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}
