package storage

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/julianstephens/deeply/internal/models"
)

func setupTestAccessor(t *testing.T) *Accessor {
	t.Helper()
	return NewAccessor(NewJSONStore(filepath.Join(t.TempDir(), "sessions.json")))
}

func TestAccessorUpdateSavesOnSuccess(t *testing.T) {
	a := setupTestAccessor(t)
	ctx := context.Background()

	err := a.Update(ctx, func(doc *Document) error {
		doc.Todos = append(doc.Todos, models.Todo{ID: 1, Name: "one"})
		return nil
	})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	var count int
	if err := a.View(ctx, func(doc *Document) error {
		count = len(doc.Todos)
		return nil
	}); err != nil {
		t.Fatalf("View() failed: %v", err)
	}
	if count != 1 {
		t.Errorf("todo count = %d, want 1", count)
	}
}

func TestAccessorUpdateSkipsSaveOnError(t *testing.T) {
	a := setupTestAccessor(t)
	ctx := context.Background()
	sentinel := errors.New("abort")

	err := a.Update(ctx, func(doc *Document) error {
		doc.Todos = append(doc.Todos, models.Todo{ID: 1, Name: "one"})
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("Update() error = %v, want sentinel", err)
	}

	_ = a.View(ctx, func(doc *Document) error {
		if len(doc.Todos) != 0 {
			t.Errorf("todo persisted despite error")
		}
		return nil
	})
}

func TestAccessorViewDiscardsChanges(t *testing.T) {
	a := setupTestAccessor(t)
	ctx := context.Background()

	_ = a.View(ctx, func(doc *Document) error {
		doc.Todos = append(doc.Todos, models.Todo{ID: 1, Name: "one"})
		return nil
	})
	_ = a.View(ctx, func(doc *Document) error {
		if len(doc.Todos) != 0 {
			t.Errorf("View() changes were persisted")
		}
		return nil
	})
}

func TestAccessorConcurrentUpdates(t *testing.T) {
	a := setupTestAccessor(t)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := a.Update(ctx, func(doc *Document) error {
				doc.Todos = append(doc.Todos, models.Todo{ID: int64(i), Name: "t"})
				return nil
			})
			if err != nil {
				t.Errorf("Update() failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	_ = a.View(ctx, func(doc *Document) error {
		if len(doc.Todos) != n {
			t.Errorf("todo count = %d, want %d", len(doc.Todos), n)
		}
		return nil
	})
}
