package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/julianstephens/deeply/internal/config"
	"github.com/julianstephens/deeply/internal/lockfile"
	"github.com/julianstephens/deeply/internal/logger"
	"github.com/julianstephens/deeply/internal/server"
	"github.com/julianstephens/deeply/internal/storage"
)

type ServeCmd struct {
	Addr string `help:"Listen address, overriding DEEPLY_ADDR and the config file."`
}

func (c *ServeCmd) Run(ctx *Context) error {
	addr := ctx.Config.Addr
	if c.Addr != "" {
		addr = c.Addr
	}

	lock, err := lockfile.Acquire(ctx.Config.DataDir(), addr)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("failed to release lockfile", "error", err)
		}
	}()

	// Fail fast on unreadable data rather than on the first request
	if _, err := ctx.Service.ListTodos(context.Background()); err != nil {
		return fmt.Errorf("failed to load %s storage at %s: %w", ctx.Store.Kind(), ctx.Store.GetConfigPath(), err)
	}
	ctx.PerformAutomaticBackup()

	srv, err := server.New(ctx.Service)
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting server", "addr", addr, "storage", ctx.Store.Kind(), "target", ctx.Store.GetConfigPath())
	ctx.printf("deeply listening on http://%s (%s storage)\n", addr, ctx.Store.Kind())
	return srv.ListenAndServe(runCtx, addr)
}

type InitCmd struct{}

func (c *InitCmd) Run(ctx *Context) error {
	if err := ctx.Store.Init(); err != nil {
		if !errors.Is(err, storage.ErrAlreadyInitialized) {
			return err
		}
		ctx.printf("Storage already initialized at: %s\n", ctx.Store.GetConfigPath())
	} else {
		ctx.printf("Initialized %s storage at: %s\n", ctx.Store.Kind(), ctx.Store.GetConfigPath())
	}

	written, err := config.WriteDefault(ctx.Config)
	if err != nil {
		return err
	}
	if written {
		ctx.printf("Wrote config file: %s\n", ctx.Config.Path)
	}
	return nil
}
