package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func setupTestSQLiteStore(t *testing.T) (*SQLiteStore, func()) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deeply.db")
	store := NewSQLiteStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	return store, func() { store.Close() }
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store, cleanup := setupTestSQLiteStore(t)
	defer cleanup()
	ctx := context.Background()
	want := setupTestDocument(t)

	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if mustJSON(t, got) != mustJSON(t, want) {
		t.Errorf("round trip mismatch:\n got %s\nwant %s", mustJSON(t, got), mustJSON(t, want))
	}

	// Replace with a shorter document
	want.Todos = want.Todos[1:]
	want.Sessions = want.Sessions[:0]
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	got, err = store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if len(got.Todos) != 1 || len(got.Sessions) != 0 {
		t.Errorf("expected 1 todo and 0 sessions, got %d and %d", len(got.Todos), len(got.Sessions))
	}
}

func TestSQLiteStoreMissingFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.db")
	store := NewSQLiteStore(path)
	defer store.Close()

	doc, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if len(doc.Todos) != 0 || len(doc.Sessions) != 0 {
		t.Errorf("expected empty document")
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Error("Load() must not create the database")
	}
}

func TestSQLiteStoreSchemaStatus(t *testing.T) {
	store, cleanup := setupTestSQLiteStore(t)
	defer cleanup()

	current, latest, err := SchemaStatus(store)
	if err != nil {
		t.Fatalf("SchemaStatus() failed: %v", err)
	}
	if current != latest || latest < 1 {
		t.Errorf("SchemaStatus() = %d/%d, want matching versions >= 1", current, latest)
	}

	if _, _, err := SchemaStatus(NewJSONStore("x.json")); err == nil {
		t.Error("expected error for JSON store")
	}
}

func TestSQLiteStoreInitTwice(t *testing.T) {
	store, cleanup := setupTestSQLiteStore(t)
	defer cleanup()

	again := NewSQLiteStore(store.GetConfigPath())
	if err := again.Init(); !errors.Is(err, ErrAlreadyInitialized) {
		t.Errorf("Init() error = %v, want ErrAlreadyInitialized", err)
	}
}
