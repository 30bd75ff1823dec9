package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/julianstephens/deeply/internal/backup"
	"github.com/julianstephens/deeply/internal/config"
	"github.com/julianstephens/deeply/internal/lockfile"
	"github.com/julianstephens/deeply/internal/logger"
	"github.com/julianstephens/deeply/internal/service"
	"github.com/julianstephens/deeply/internal/storage"
)

// Context is passed to every command's Run method
type Context struct {
	Config  *config.Config
	Store   storage.Provider
	Service *service.Service
	Out     io.Writer
}

// NewContext opens the configured storage target
func NewContext(cfg *config.Config) (*Context, error) {
	store, err := storage.Open(cfg.Data)
	if err != nil {
		return nil, err
	}
	return &Context{
		Config:  cfg,
		Store:   store,
		Service: service.New(storage.NewAccessor(store)),
		Out:     os.Stdout,
	}, nil
}

func (c *Context) Close() error {
	return c.Store.Close()
}

func (c *Context) printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) println(args ...any) {
	fmt.Fprintln(c.Out, args...)
}

// PerformAutomaticBackup backs up file-backed storage, logging failures
func (c *Context) PerformAutomaticBackup() {
	if !storage.IsFileBacked(c.Store) {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if !mgr.DataExists() {
		return
	}
	if _, err := mgr.CreateBackup(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// warnIfServing logs a warning when a server owns the data directory. One-shot
// commands still run; the server reads fresh data on every request.
func (c *Context) warnIfServing() {
	if owner := lockfile.Active(lockfile.Path(c.Config.DataDir())); owner != nil {
		logger.Warn("a server is running on this data", "pid", owner.PID, "addr", owner.Addr)
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid todo id %q", s)
	}
	return id, nil
}
