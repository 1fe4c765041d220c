// Package storage holds the document content backends: S3-compatible object
// stores (MinIO, AWS S3) and a local directory, all behind Storage.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrNotFound is returned when an object does not exist.
	ErrNotFound = errors.New("object not found")
	// ErrInvalidKey is returned for empty or unsafe object keys.
	ErrInvalidKey = errors.New("invalid object key")
	// ErrWrite wraps failures while storing content.
	ErrWrite = errors.New("storage write failed")
	// ErrDelete wraps failures while removing content.
	ErrDelete = errors.New("storage delete failed")
	// ErrSign wraps failures while producing an access URL.
	ErrSign = errors.New("storage sign failed")
)

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known, or -1 when unknown.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is a key/value object store driver.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Stat returns object info, or ErrNotFound.
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a URL that can be used to download the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	// Location returns the durable, unsigned URL of key.
	Location(key string) string
}
