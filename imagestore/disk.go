// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package imagestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
)

// URLPrefix is where the router serves disk-stored images
const URLPrefix = "/images/"

// DiskStore writes images into a local directory
type DiskStore struct {
	dir     string
	baseURL string
}

func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image dir: %w", err)
	}
	return &DiskStore{dir: dir, baseURL: baseURL}, nil
}

func (s *DiskStore) Put(ctx context.Context, name, contentType string, body io.Reader) (Object, error) {
	key := newKey(name)

	f, err := os.OpenFile(filepath.Join(s.dir, key), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return Object{}, fmt.Errorf("failed to create image file: %w", err)
	}

	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(f.Name())
		return Object{}, fmt.Errorf("failed to write image: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return Object{}, fmt.Errorf("failed to write image: %w", err)
	}

	return Object{Key: key, URL: s.baseURL + URLPrefix + key}, nil
}

// Delete removes the image; a missing file is not an error
func (s *DiskStore) Delete(ctx context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.dir, key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// Handler serves stored images under URLPrefix
func (s *DiskStore) Handler() http.Handler {
	return http.StripPrefix(URLPrefix, http.FileServer(http.Dir(s.dir)))
}
