// internal/storage/sqlite/sqlite_test.go
package sqlitestorage

import (
	"path/filepath"
	"testing"

	"github.com/waymark-app/waymark/internal/config"
	"github.com/waymark-app/waymark/internal/model"

	"github.com/rs/zerolog"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	cfg := config.SqliteConfig{Path: filepath.Join(t.TempDir(), "snapshot.db")}
	b, err := New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := b.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func TestSaveAndLoadSnapshot(t *testing.T) {
	b := newTestBackend(t)

	routes := []model.Route{
		{ID: model.SavedID(2), Name: "Hills", Description: "long walk", Points: []model.Point{}},
		{ID: model.SavedID(1), Name: "Old Town", Points: []model.Point{
			{ID: model.SavedID(10), Name: "Cafe", Lat: "55.751244", Lon: "37.618423",
				Images: []model.Image{model.PersistedImage("http://localhost:8000/media/a.jpg")}},
		}},
	}
	if err := b.SaveSnapshot(routes); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	loaded, err := b.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(loaded))
	}
	// insertion order, not primary key order
	if loaded[0].Name != "Hills" || loaded[1].Name != "Old Town" {
		t.Errorf("route order not preserved: %s, %s", loaded[0].Name, loaded[1].Name)
	}
	p := loaded[1].Points[0]
	if !p.ID.Equal(model.SavedID(10)) || p.Lat != "55.751244" {
		t.Errorf("point not round-tripped: %+v", p)
	}
	if len(p.Images) != 1 || p.Images[0].Kind != model.ImagePersisted {
		t.Errorf("image not round-tripped: %+v", p.Images)
	}
}

func TestSaveSnapshot_ReplacesPrevious(t *testing.T) {
	b := newTestBackend(t)

	first := []model.Route{
		{ID: model.SavedID(1), Name: "A", Points: []model.Point{}},
		{ID: model.SavedID(2), Name: "B", Points: []model.Point{}},
	}
	if err := b.SaveSnapshot(first); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	second := []model.Route{
		{ID: model.SavedID(3), Name: "C", Points: []model.Point{}},
	}
	if err := b.SaveSnapshot(second); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	loaded, err := b.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Name != "C" {
		t.Errorf("snapshot not replaced wholesale: %+v", loaded)
	}
}

func TestSaveSnapshot_SkipsDrafts(t *testing.T) {
	b := newTestBackend(t)

	routes := []model.Route{
		{ID: model.SavedID(1), Name: "Saved", Points: []model.Point{}},
		{ID: model.DraftID("temp_1724245"), Name: "Draft", Points: []model.Point{}},
	}
	if err := b.SaveSnapshot(routes); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	loaded, err := b.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Name != "Saved" {
		t.Errorf("draft route leaked into the snapshot: %+v", loaded)
	}
}

func TestLoadSnapshot_EmptyDatabase(t *testing.T) {
	b := newTestBackend(t)

	loaded, err := b.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if loaded != nil {
		t.Errorf("expected nil before first save, got %+v", loaded)
	}
}
