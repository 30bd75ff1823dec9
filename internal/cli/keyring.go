package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/deeply/internal/constants"
	"github.com/julianstephens/deeply/internal/keyring"
	"github.com/julianstephens/deeply/internal/storage"
)

type KeyringSetCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string, password included."`
}

func (c *KeyringSetCmd) Validate() error {
	if !storage.IsPostgresURL(c.ConnectionString) && !strings.Contains(c.ConnectionString, "=") {
		return storage.ErrInvalidConnectionString
	}
	return nil
}

func (c *KeyringSetCmd) Run(ctx *Context) error {
	if err := keyring.SetConnectionString(c.ConnectionString); err != nil {
		return err
	}
	ctx.println("✓ Connection string stored in the OS keyring")
	ctx.printf("Use it with: deeply --data %s\n", constants.KeyringPrefix)
	return nil
}

type KeyringDeleteCmd struct{}

func (c *KeyringDeleteCmd) Run(ctx *Context) error {
	if err := keyring.DeleteConnectionString(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			ctx.println("No connection string stored")
			return nil
		}
		return fmt.Errorf("failed to delete connection string: %w", err)
	}
	ctx.println("✓ Connection string removed from the OS keyring")
	return nil
}
