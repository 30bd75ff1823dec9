package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/deeply/internal/logger"
	"github.com/julianstephens/deeply/internal/migration"
	"github.com/julianstephens/deeply/migrations"
)

type SQLiteStore struct {
	path string
	db   *sql.DB
	doc  sqlDocument
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{
		path: path,
		doc:  sqlDocument{placeholder: func(int) string { return "?" }},
	}
}

func (s *SQLiteStore) Init() error {
	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("%w at %s", ErrAlreadyInitialized, s.path)
	}
	return s.open()
}

// open creates the database file if needed and applies pending migrations
func (s *SQLiteStore) open() error {
	if s.db != nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// modernc sqlite serializes writers anyway; a single connection avoids
	// SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return fmt.Errorf("failed to configure database: %w", err)
	}

	if err := runMigrations(db, "sqlite"); err != nil {
		db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) (*Document, error) {
	if s.db == nil {
		if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
			return NewDocument(), nil
		}
		if err := s.open(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrReadFailure, err)
		}
	}
	return s.doc.load(ctx, s.db)
}

func (s *SQLiteStore) Save(ctx context.Context, doc *Document) error {
	if err := s.open(); err != nil {
		return err
	}
	return s.doc.save(ctx, s.db, doc)
}

// GetDB returns the underlying database connection, or nil before first use
func (s *SQLiteStore) GetDB() *sql.DB {
	return s.db
}

func (s *SQLiteStore) Kind() Kind {
	return KindSQLite
}

func (s *SQLiteStore) GetConfigPath() string {
	return s.path
}

func runMigrations(db *sql.DB, dialect string) error {
	subFS, err := fs.Sub(migrations.FS, dialect)
	if err != nil {
		return fmt.Errorf("failed to access %s migrations: %w", dialect, err)
	}

	runner := migration.NewRunner(db, subFS)
	if _, err := runner.ApplyMigrations(func(msg string) {
		logger.Info(msg, "dialect", dialect)
	}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// SchemaStatus reports the current and latest schema versions of an SQL store
func SchemaStatus(p Provider) (current, latest int, err error) {
	var db *sql.DB
	var dialect string
	switch store := p.(type) {
	case *SQLiteStore:
		db, dialect = store.GetDB(), "sqlite"
	case *PostgresStore:
		db, dialect = store.GetDB(), "postgres"
	default:
		return 0, 0, fmt.Errorf("%s storage has no schema", p.Kind())
	}
	if db == nil {
		return 0, 0, fmt.Errorf("database connection is not open")
	}

	subFS, err := fs.Sub(migrations.FS, dialect)
	if err != nil {
		return 0, 0, err
	}
	runner := migration.NewRunner(db, subFS)
	if current, err = runner.GetCurrentVersion(); err != nil {
		return 0, 0, err
	}
	if latest, err = runner.GetLatestVersion(); err != nil {
		return 0, 0, err
	}
	return current, latest, nil
}
