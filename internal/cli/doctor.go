package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/deeply/internal/backup"
	"github.com/julianstephens/deeply/internal/lockfile"
	"github.com/julianstephens/deeply/internal/storage"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	ctx.println("Running diagnostics...")
	ctx.println()

	hasError := false
	var doc *storage.Document

	// Check 1: storage reachable and parseable
	if d, err := checkStorageReadable(ctx); err != nil {
		ctx.printf("❌ Storage readable: FAIL\n")
		ctx.printf("   Error: %v\n", err)
		hasError = true
	} else {
		ctx.printf("✓ Storage readable: OK (%s)\n", ctx.Store.Kind())
		doc = d
	}

	// Check 2: schema up to date (SQL backends only)
	if err := checkSchema(ctx); err != nil {
		ctx.printf("❌ Schema version: FAIL\n")
		ctx.printf("   Error: %v\n", err)
		hasError = true
	} else if ctx.Store.Kind() != storage.KindJSON {
		ctx.printf("✓ Schema version: OK\n")
	}

	// Check 3: data validation
	if doc != nil {
		if err := checkDocument(doc); err != nil {
			ctx.printf("❌ Data validation: FAIL\n")
			ctx.printf("   Error: %v\n", err)
			hasError = true
		} else {
			ctx.printf("✓ Data validation: OK (%d todos, %d sessions)\n", len(doc.Todos), len(doc.Sessions))
		}
	} else {
		ctx.printf("⊘ Data validation: SKIPPED (storage not readable)\n")
	}

	// Check 4: backups present (warning only)
	if err := checkBackupsPresent(ctx); err != nil {
		ctx.printf("⚠ Backups present: WARNING\n")
		ctx.printf("   %v\n", err)
	} else {
		ctx.printf("✓ Backups present: OK\n")
	}

	// Check 5: lockfile
	if owner := lockfile.Active(lockfile.Path(ctx.Config.DataDir())); owner != nil {
		ctx.printf("✓ Server: running (pid %d on %s)\n", owner.PID, owner.Addr)
	} else {
		ctx.printf("✓ Server: not running\n")
	}

	// Check 6: clock/timezone sanity
	if err := checkClockTimezone(ctx); err != nil {
		ctx.printf("❌ Clock/timezone: FAIL\n")
		ctx.printf("   Error: %v\n", err)
		hasError = true
	} else {
		ctx.printf("✓ Clock/timezone: OK\n")
	}

	ctx.println()
	if hasError {
		ctx.println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.println("All diagnostics passed!")
	return nil
}

func checkStorageReadable(ctx *Context) (*storage.Document, error) {
	doc, err := ctx.Store.Load(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", ctx.Store.GetConfigPath(), err)
	}
	return doc, nil
}

func checkSchema(ctx *Context) error {
	if ctx.Store.Kind() == storage.KindJSON {
		return nil
	}
	if sqlite, ok := ctx.Store.(*storage.SQLiteStore); ok && sqlite.GetDB() == nil {
		// Nothing on disk yet, so nothing to migrate
		return nil
	}

	current, latest, err := storage.SchemaStatus(ctx.Store)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func checkDocument(doc *storage.Document) error {
	ids := make(map[int64]bool, len(doc.Todos))
	for _, t := range doc.Todos {
		if ids[t.ID] {
			return fmt.Errorf("duplicate todo ID found: %d", t.ID)
		}
		ids[t.ID] = true
		if t.CreatedAt == "" {
			return fmt.Errorf("todo %d has no created_at", t.ID)
		}
	}

	for i, s := range doc.Sessions {
		if s.Date == "" || s.CompletedAt == "" {
			return fmt.Errorf("session %d is missing date or completed_at", i)
		}
	}
	return nil
}

func checkBackupsPresent(ctx *Context) error {
	if !storage.IsFileBacked(ctx.Store) {
		return fmt.Errorf("backups are not managed for %s storage", ctx.Store.Kind())
	}

	backups, err := backup.NewManager(ctx.Store.GetConfigPath()).ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'deeply backup create'")
	}
	return nil
}

func checkClockTimezone(ctx *Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}

	if _, offset := now.Zone(); offset == 0 && now.Location() == time.UTC {
		ctx.printf("   Note: timezone is UTC; daily stats roll over at UTC midnight\n")
	}
	return nil
}
