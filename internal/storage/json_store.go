package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

type JSONStore struct {
	path string
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{
		path: path,
	}
}

func (s *JSONStore) Init() error {
	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("%w at %s", ErrAlreadyInitialized, s.path)
	}
	return s.Save(context.Background(), NewDocument())
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) Load(ctx context.Context) (*Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewDocument(), nil
		}
		return nil, fmt.Errorf("%w: failed to read %s: %v", ErrReadFailure, s.path, err)
	}

	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrReadFailure, s.path, err)
	}
	doc.normalize()

	return doc, nil
}

// Save writes the document to a temp file in the same directory and renames
// it over the target, so readers never observe a partial write.
func (s *JSONStore) Save(ctx context.Context, doc *Document) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		// no-op after a successful rename
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync storage: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0600); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace storage: %w", err)
	}

	return nil
}

func (s *JSONStore) Kind() Kind {
	return KindJSON
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}
