// Package sqlitestorage implements the storage.Backend interface on a local
// SQLite file, so the last fetched route list survives restarts.
package sqlitestorage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/waymark-app/waymark/internal/config"
	"github.com/waymark-app/waymark/internal/database"
	"github.com/waymark-app/waymark/internal/model"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RouteRecord is one cached route. Points are stored as a JSON document
// rather than a relational table; the cache is read back wholesale, never
// queried per point.
type RouteRecord struct {
	ID          int64 `gorm:"primaryKey;autoIncrement:false"`
	Position    int
	Name        string
	Description string
	Points      datatypes.JSON
	FetchedAt   time.Time
}

// Backend persists route snapshots to a SQLite file.
type Backend struct {
	db  *gorm.DB
	log zerolog.Logger
}

// New creates a new SQLite snapshot backend.
func New(cfg config.SqliteConfig, log zerolog.Logger) (*Backend, error) {
	db, err := database.OpenSqlite(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite snapshot DB: %w", err)
	}
	return &Backend{db: db, log: log}, nil
}

// Init migrates the snapshot schema.
func (b *Backend) Init() error {
	if err := b.db.AutoMigrate(&RouteRecord{}); err != nil {
		return fmt.Errorf("failed to migrate snapshot schema: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (b *Backend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveSnapshot replaces the cached route list in one transaction. Draft
// routes are skipped, a draft has no stable numeric key to store under.
func (b *Backend) SaveSnapshot(routes []model.Route) error {
	now := time.Now()

	records := make([]RouteRecord, 0, len(routes))
	for i, r := range routes {
		if !r.ID.IsSaved() {
			continue
		}
		points, err := json.Marshal(r.Points)
		if err != nil {
			return fmt.Errorf("failed to encode points for route %s: %w", r.ID, err)
		}
		records = append(records, RouteRecord{
			ID:          r.ID.Num(),
			Position:    i,
			Name:        r.Name,
			Description: r.Description,
			Points:      datatypes.JSON(points),
			FetchedAt:   now,
		})
	}

	start := time.Now()
	err := b.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&RouteRecord{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.Create(&records).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	b.log.Debug().
		Int("routes", len(records)).
		Dur("duration", time.Since(start)).
		Msg("Saved route snapshot")
	return nil
}

// LoadSnapshot reads the cached route list back in its original order.
func (b *Backend) LoadSnapshot() ([]model.Route, error) {
	var records []RouteRecord
	if err := b.db.Order("position asc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	routes := make([]model.Route, 0, len(records))
	for _, rec := range records {
		var points []model.Point
		if err := json.Unmarshal(rec.Points, &points); err != nil {
			return nil, fmt.Errorf("failed to decode points for route %d: %w", rec.ID, err)
		}
		if points == nil {
			points = []model.Point{}
		}
		routes = append(routes, model.Route{
			ID:          model.SavedID(rec.ID),
			Name:        rec.Name,
			Description: rec.Description,
			Points:      points,
		})
	}
	return routes, nil
}
