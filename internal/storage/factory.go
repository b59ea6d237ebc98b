// internal/storage/factory.go
package storage

import (
	"fmt"

	"github.com/waymark-app/waymark/internal/config"
	"github.com/waymark-app/waymark/internal/storage/memory"
	sqlitestorage "github.com/waymark-app/waymark/internal/storage/sqlite"

	"github.com/rs/zerolog"
)

// NewBackend creates a snapshot cache backend based on configuration.
func NewBackend(storageType string, log zerolog.Logger) (Backend, error) {
	switch storageType {
	case "memory":
		return memory.New(), nil
	case "sqlite":
		return sqlitestorage.New(config.Sqlite(), log)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", storageType)
	}
}
