package media

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// PreviewRegistry hands out short-lived preview handles for staged
// attachments. Handles must be released exactly once, either when the
// attachment is removed, when the draft is discarded, or after a successful
// submit. A leak check in tests keeps the three paths honest.
type PreviewRegistry struct {
	mu      sync.Mutex
	handles map[string][]byte
}

// NewPreviewRegistry creates an empty registry.
func NewPreviewRegistry() *PreviewRegistry {
	return &PreviewRegistry{handles: make(map[string][]byte)}
}

// Acquire registers the staged bytes and returns an opaque handle.
func (r *PreviewRegistry) Acquire(data []byte) string {
	handle := uuid.NewString()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles[handle] = data
	return handle
}

// Get returns the staged bytes for a handle.
func (r *PreviewRegistry) Get(handle string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.handles[handle]
	if !ok {
		return nil, fmt.Errorf("unknown preview handle %q", handle)
	}
	return data, nil
}

// Release frees a handle. Releasing an already-released handle is a no-op.
func (r *PreviewRegistry) Release(handle string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handles, handle)
}

// Live returns the number of outstanding handles.
func (r *PreviewRegistry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}
