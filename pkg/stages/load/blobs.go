package load

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/user/storyreel/pkg/storyboard"
)

// BlobRegistry holds session-only media under blob: handles.
// Handles do not survive the process; persisted copies degrade to the expired sentinel.
type BlobRegistry struct {
	mu    sync.RWMutex
	blobs map[string]blob
}

type blob struct {
	data     []byte
	mimeType string
}

// NewBlobRegistry creates an empty registry.
func NewBlobRegistry() *BlobRegistry {
	return &BlobRegistry{blobs: make(map[string]blob)}
}

// Register stores data and returns its handle.
func (r *BlobRegistry) Register(data []byte, mimeType string) string {
	handle := storyboard.BlobScheme + uuid.NewString()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blobs[handle] = blob{data: data, mimeType: mimeType}
	return handle
}

// Get returns the data behind handle.
func (r *BlobRegistry) Get(handle string) ([]byte, string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.blobs[handle]
	return b.data, b.mimeType, ok
}

// Revoke forgets handle.
func (r *BlobRegistry) Revoke(handle string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.blobs, handle)
}

// Len returns the number of registered blobs.
func (r *BlobRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.blobs)
}

// IsBlob reports whether locator is a blob handle.
func IsBlob(locator string) bool {
	return strings.HasPrefix(locator, storyboard.BlobScheme)
}
