package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/julianstephens/deeply/internal/constants"
	"github.com/julianstephens/deeply/internal/keyring"
)

// Open selects a provider for target:
//
//	postgres://... or postgresql://...  PostgreSQL (no embedded password)
//	keyring:                            PostgreSQL, connection string from the OS keyring
//	*.db or *.sqlite                    SQLite file
//	anything else                       JSON file
func Open(target string) (Provider, error) {
	switch {
	case target == "":
		return nil, fmt.Errorf("no storage target configured")

	case IsPostgresURL(target):
		if HasEmbeddedCredentials(target) {
			return nil, fmt.Errorf("%w; store it with 'deeply keyring set' and use --data %s",
				ErrEmbeddedCredentials, constants.KeyringPrefix)
		}
		return NewPostgresStore(target), nil

	case strings.HasPrefix(target, constants.KeyringPrefix):
		connStr, err := keyring.GetConnectionString()
		if err != nil {
			return nil, fmt.Errorf("failed to read connection string: %w", err)
		}
		if !IsPostgresURL(connStr) && !strings.Contains(connStr, "=") {
			return nil, ErrInvalidConnectionString
		}
		return NewPostgresStore(connStr), nil
	}

	switch strings.ToLower(filepath.Ext(target)) {
	case ".db", ".sqlite":
		return NewSQLiteStore(target), nil
	default:
		return NewJSONStore(target), nil
	}
}

// IsFileBacked reports whether the provider stores its data in a local file
func IsFileBacked(p Provider) bool {
	return p.Kind() == KindJSON || p.Kind() == KindSQLite
}
