package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/julianstephens/famtrack/internal/storage"
)

func setupStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "famtrack.db")
	s := NewStore(path)
	if err := s.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestStoreRoundTrip(t *testing.T) {
	s, _ := setupStore(t)

	if _, err := s.Get("user"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get on fresh store error = %v, want ErrNotFound", err)
	}
	if err := s.Set("lastEventColor", "#3843FF"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set("lastEventColor", "#FF0000"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, err := s.Get("lastEventColor")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "#FF0000" {
		t.Errorf("Get = %q, want #FF0000", got)
	}
	if err := s.Delete("lastEventColor"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get("lastEventColor"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get after delete error = %v", err)
	}
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	s, path := setupStore(t)
	if err := s.Set("theme", "dark"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := NewStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer reopened.Close()

	if got := storage.GetOr(reopened, "theme", "light"); got != "dark" {
		t.Errorf("theme = %q, want dark", got)
	}
	if reopened.GetConfigPath() != path {
		t.Errorf("GetConfigPath = %q", reopened.GetConfigPath())
	}
}

func TestStoreNotLoaded(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "x.db"))
	if err := s.Set("k", "v"); err == nil {
		t.Error("Set before Load should fail")
	}
}

func TestSchemaStatus(t *testing.T) {
	s, _ := setupStore(t)

	current, latest, err := s.SchemaStatus(context.Background())
	if err != nil {
		t.Fatalf("SchemaStatus: %v", err)
	}
	if latest == 0 {
		t.Fatal("latest version should be at least 1")
	}
	if current != latest {
		t.Errorf("current = %d, latest = %d, want equal after Init", current, latest)
	}
}
