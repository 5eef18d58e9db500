// Package storage is the blob store behind uploaded documents.
//
// Two drivers are available:
//   - "local" for the local filesystem (default)
//   - "s3" for S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//
// Keys are slash-separated and relative; a key that could escape the driver
// root is rejected with ErrInvalidKey.
package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when no blob exists under a key.
	ErrNotFound = errors.New("storage: not found")
	// ErrInvalidKey is returned for empty, absolute or traversing keys.
	ErrInvalidKey = errors.New("storage: invalid key")
)

// Meta describes a blob being written.
type Meta struct {
	ContentType string
	Size        int64
}

// Object is an open blob. Callers must close Body.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
	ModTime     time.Time
}

// Disk is the driver interface every backend implements.
type Disk interface {
	// Put writes r under key, replacing any existing blob.
	Put(ctx context.Context, key string, r io.Reader, meta Meta) error
	// Open returns the blob under key or ErrNotFound.
	Open(ctx context.Context, key string) (*Object, error)
	// Exists reports whether a blob exists under key.
	Exists(ctx context.Context, key string) (bool, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// ValidKey reports whether key is a safe relative object key.
func ValidKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return false
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}
	return true
}
