// Package storage abstracts blob storage for post media and avatars.
package storage

import (
	"context"
	"io"
)

// Bucket is the blob storage surface the services depend on. The production
// implementation is S3-compatible object storage; tests use the in-memory
// store.
type Bucket interface {
	// Upload stores an object and returns its public URL.
	Upload(ctx context.Context, key string, contentType string, r io.Reader, size int64) (string, error)
	// PublicURL returns the URL an object would be served from.
	PublicURL(key string) string
	// List returns the object keys under a prefix.
	List(ctx context.Context, prefix string) ([]string, error)
	// Remove deletes an object. Removing a missing object is not an error.
	Remove(ctx context.Context, key string) error
}
