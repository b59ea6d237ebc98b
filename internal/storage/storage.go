// internal/storage/storage.go
package storage

import "github.com/waymark-app/waymark/internal/model"

// Backend is the interface all snapshot cache implementations must satisfy.
// A snapshot is the last successfully fetched route list; it is read back as
// an offline fallback when the backend is unreachable. Only persisted routes
// are ever written; drafts never reach the cache.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// SaveSnapshot replaces the cached route list wholesale.
	SaveSnapshot(routes []model.Route) error

	// LoadSnapshot returns the cached route list and when it was fetched.
	// A nil slice means no snapshot has been saved yet.
	LoadSnapshot() ([]model.Route, error)
}
