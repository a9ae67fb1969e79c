// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package imagestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/danielhkuo/votedesk/auth"
	"github.com/danielhkuo/votedesk/cliparse"
)

var ErrInvalidKey = errors.New("invalid image key")

// Object is a stored image
type Object struct {
	Key string // used to release the object later
	URL string // public location served to clients
}

// Store keeps candidate images outside the database
type Store interface {
	Put(ctx context.Context, name, contentType string, body io.Reader) (Object, error)
	Delete(ctx context.Context, key string) error
}

// New builds the store selected by cfg.ImageStore
func New(cfg cliparse.Config) (Store, error) {
	switch cfg.ImageStore {
	case "disk", "":
		return NewDiskStore(cfg.ImageDir, cfg.ImageBaseURL)
	case "s3":
		return NewS3Store(cfg.S3, cfg.ImageBaseURL), nil
	}
	return nil, fmt.Errorf("unsupported image store %q", cfg.ImageStore)
}

// newKey returns a random object key keeping the upload's extension
func newKey(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if len(ext) > 8 || strings.ContainsAny(ext, `/\`) {
		ext = ""
	}
	return auth.GenerateID() + ext
}

// validKey rejects anything that is not a bare file name
func validKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
