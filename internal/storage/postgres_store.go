package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/lib/pq"
)

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

type PostgresStore struct {
	connStr string
	db      *sql.DB
	doc     sqlDocument
}

func NewPostgresStore(connStr string) *PostgresStore {
	return &PostgresStore{
		connStr: connStr,
		doc:     sqlDocument{placeholder: func(n int) string { return fmt.Sprintf("$%d", n) }},
	}
}

func (s *PostgresStore) Init() error {
	return s.open()
}

func (s *PostgresStore) open() error {
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := runMigrations(db, "postgres"); err != nil {
		db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) (*Document, error) {
	if err := s.open(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFailure, err)
	}
	return s.doc.load(ctx, s.db)
}

func (s *PostgresStore) Save(ctx context.Context, doc *Document) error {
	if err := s.open(); err != nil {
		return err
	}
	return s.doc.save(ctx, s.db, doc)
}

// GetDB returns the underlying database connection, or nil before first use
func (s *PostgresStore) GetDB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Kind() Kind {
	return KindPostgres
}

// GetConfigPath returns the connection string with any password redacted
func (s *PostgresStore) GetConfigPath() string {
	if u, err := url.Parse(s.connStr); err == nil && u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), "xxxxx")
			return u.String()
		}
	}
	return s.connStr
}

// IsPostgresURL reports whether target looks like a PostgreSQL URL
func IsPostgresURL(target string) bool {
	return strings.HasPrefix(target, "postgres://") || strings.HasPrefix(target, "postgresql://")
}

// HasEmbeddedCredentials reports whether the connection string carries a
// password, either as URL userinfo or as a DSN password= pair.
func HasEmbeddedCredentials(connStr string) bool {
	if IsPostgresURL(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			return false
		}
		if u.User != nil {
			if _, ok := u.User.Password(); ok {
				return true
			}
		}
		return u.Query().Get("password") != ""
	}

	for _, part := range strings.Fields(connStr) {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) == 2 && strings.EqualFold(kv[0], "password") {
			return true
		}
	}
	return false
}
