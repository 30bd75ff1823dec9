package cli

import (
	"context"
	"fmt"

	"github.com/julianstephens/deeply/internal/constants"
)

type DebugPathCmd struct{}

func (cmd *DebugPathCmd) Run(ctx *Context) error {
	return printJSON(ctx, map[string]string{
		"storage":  string(ctx.Store.Kind()),
		"target":   ctx.Store.GetConfigPath(),
		"config":   ctx.Config.Path,
		"log_dir":  ctx.Config.LogDir,
		"data_dir": ctx.Config.DataDir(),
		"version":  constants.Version,
	})
}

type DebugDumpTodoCmd struct {
	ID string `arg:"" help:"ID of the todo to dump."`
}

func (cmd *DebugDumpTodoCmd) Run(ctx *Context) error {
	id, err := parseID(cmd.ID)
	if err != nil {
		return err
	}

	todo, err := ctx.Service.GetTodo(context.Background(), id)
	if err != nil {
		return fmt.Errorf("failed to get todo %d: %w", id, err)
	}
	return printJSON(ctx, todo)
}
