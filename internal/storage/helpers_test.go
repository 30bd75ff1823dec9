package storage

import (
	"encoding/json"
	"testing"

	"github.com/julianstephens/deeply/internal/models"
)

// setupTestDocument returns a document with records carrying extra fields
func setupTestDocument(t *testing.T) *Document {
	t.Helper()

	var todo models.Todo
	if err := json.Unmarshal([]byte(`{"id":1700000000000,"name":"Read paper","estimated_minutes":30,"completed":false,"created_at":"2024-01-02T09:00:00+00:00","category":"university","tags":["a","b"]}`), &todo); err != nil {
		t.Fatalf("failed to build todo: %v", err)
	}
	var second models.Todo
	if err := json.Unmarshal([]byte(`{"id":1700000000001,"name":"Apply","completed":true,"created_at":"2024-01-02T10:00:00+00:00"}`), &second); err != nil {
		t.Fatalf("failed to build todo: %v", err)
	}
	var session models.Session
	if err := json.Unmarshal([]byte(`{"mode":"deep","task":"Read paper","work_minutes":50,"completed_at":"2024-01-02T11:00:00+00:00","date":"2024-01-02","note":{"k":1}}`), &session); err != nil {
		t.Fatalf("failed to build session: %v", err)
	}

	return &Document{
		Todos:    []models.Todo{todo, second},
		Sessions: []models.Session{session},
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}
	return string(data)
}
