package storage

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// MemoryBucket is an in-memory Bucket used in tests.
type MemoryBucket struct {
	mu      sync.RWMutex
	objects map[string][]byte
	types   map[string]string

	// FailKeys forces Upload to fail for the listed keys, for testing the
	// abort-on-first-failure path. FailAll fails every upload.
	FailKeys map[string]bool
	FailAll  bool
}

// NewMemoryBucket creates an empty in-memory bucket.
func NewMemoryBucket() *MemoryBucket {
	return &MemoryBucket{
		objects:  make(map[string][]byte),
		types:    make(map[string]string),
		FailKeys: make(map[string]bool),
	}
}

// Upload stores the object in memory.
func (b *MemoryBucket) Upload(_ context.Context, key string, contentType string, r io.Reader, _ int64) (string, error) {
	if b.FailAll || b.FailKeys[key] {
		return "", fmt.Errorf("simulated upload failure for %q", key)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	b.types[key] = contentType
	return b.PublicURL(key), nil
}

// PublicURL returns a deterministic fake URL.
func (b *MemoryBucket) PublicURL(key string) string {
	return "https://storage.test/" + key
}

// List returns sorted keys under a prefix.
func (b *MemoryBucket) List(_ context.Context, prefix string) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var keys []string
	for k := range b.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Remove deletes an object if present.
func (b *MemoryBucket) Remove(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	delete(b.types, key)
	return nil
}

// Object returns a stored object's bytes and content type for assertions.
func (b *MemoryBucket) Object(key string) ([]byte, string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.objects[key]
	return data, b.types[key], ok
}

// Len returns the number of stored objects.
func (b *MemoryBucket) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.objects)
}
