package storage

import (
	"context"
	"errors"

	"github.com/julianstephens/deeply/internal/models"
)

var (
	// ErrReadFailure wraps any stored content that cannot be parsed
	ErrReadFailure = errors.New("storage read failure")
	// ErrAlreadyInitialized is returned by Init when data already exists
	ErrAlreadyInitialized = errors.New("storage already initialized")
)

// Kind identifies a storage backend
type Kind string

const (
	KindJSON     Kind = "json"
	KindSQLite   Kind = "sqlite"
	KindPostgres Kind = "postgres"
)

// Document is the whole persisted state
type Document struct {
	Todos    []models.Todo    `json:"todos"`
	Sessions []models.Session `json:"sessions"`
}

// NewDocument returns an empty document
func NewDocument() *Document {
	return &Document{
		Todos:    []models.Todo{},
		Sessions: []models.Session{},
	}
}

func (d *Document) normalize() {
	if d.Todos == nil {
		d.Todos = []models.Todo{}
	}
	if d.Sessions == nil {
		d.Sessions = []models.Session{}
	}
}

// Provider reads and replaces the whole document. Implementations are not
// safe for concurrent use; go through an Accessor.
type Provider interface {
	// Lifecycle
	Init() error
	Close() error

	// Load returns the full document. Missing data yields an empty document.
	Load(ctx context.Context) (*Document, error)
	// Save replaces the full document.
	Save(ctx context.Context, doc *Document) error

	// Utils
	Kind() Kind
	GetConfigPath() string
}
