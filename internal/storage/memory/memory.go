// internal/storage/memory/memory.go
package memory

import (
	"sync"
	"time"

	"github.com/waymark-app/waymark/internal/model"
)

// Backend keeps the last fetched route list in memory. It is the default
// cache and the one tests use.
type Backend struct {
	mu        sync.RWMutex
	routes    []model.Route
	fetchedAt time.Time
}

// New creates a new memory backend.
func New() *Backend {
	return &Backend{}
}

// Init initializes the backend.
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources.
func (b *Backend) Close() error {
	return nil
}

// SaveSnapshot replaces the cached route list.
func (b *Backend) SaveSnapshot(routes []model.Route) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	copied := make([]model.Route, 0, len(routes))
	for _, r := range routes {
		copied = append(copied, r.Clone())
	}
	b.routes = copied
	b.fetchedAt = time.Now()
	return nil
}

// LoadSnapshot returns a copy of the cached route list, or nil when no
// snapshot has been saved.
func (b *Backend) LoadSnapshot() ([]model.Route, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.routes == nil {
		return nil, nil
	}
	copied := make([]model.Route, 0, len(b.routes))
	for _, r := range b.routes {
		copied = append(copied, r.Clone())
	}
	return copied, nil
}

// FetchedAt returns when the current snapshot was saved.
func (b *Backend) FetchedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.fetchedAt
}
