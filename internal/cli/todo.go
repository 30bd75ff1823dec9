package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/deeply/internal/models"
)

type TodoListCmd struct {
	Pending bool `help:"Show only todos that are not completed."`
	JSON    bool `help:"Print todos as JSON."`
}

func (c *TodoListCmd) Run(ctx *Context) error {
	ctx.warnIfServing()

	todos, err := ctx.Service.ListTodos(context.Background())
	if err != nil {
		return err
	}

	if c.Pending {
		pending := todos[:0:0]
		for _, t := range todos {
			if !t.Completed {
				pending = append(pending, t)
			}
		}
		todos = pending
	}

	if c.JSON {
		return printJSON(ctx, todos)
	}

	if len(todos) == 0 {
		ctx.println("No todos found")
		return nil
	}

	ctx.println("Todos:")
	for _, t := range todos {
		ctx.printf("  %s\n", formatTodo(t))
	}
	return nil
}

type TodoAddCmd struct {
	Name     string  `arg:"" help:"Todo name."`
	Minutes  float64 `short:"m" help:"Estimated minutes."`
	Category string  `short:"c" help:"Category (university, career or other)." enum:",university,career,other" default:""`
}

func (c *TodoAddCmd) Run(ctx *Context) error {
	ctx.warnIfServing()

	fields := map[string]json.RawMessage{}
	if err := setField(fields, "name", c.Name); err != nil {
		return err
	}
	if c.Minutes > 0 {
		if err := setField(fields, "estimated_minutes", c.Minutes); err != nil {
			return err
		}
	}
	if c.Category != "" {
		if err := setField(fields, "category", c.Category); err != nil {
			return err
		}
	}

	todo, err := ctx.Service.CreateTodo(context.Background(), fields)
	if err != nil {
		return err
	}
	ctx.printf("✓ Added todo %d: %s\n", todo.ID, todo.Name)
	return nil
}

type TodoDoneCmd struct {
	ID string `arg:"" help:"ID of the todo to complete."`
}

func (c *TodoDoneCmd) Run(ctx *Context) error {
	return setCompleted(ctx, c.ID, true)
}

type TodoUndoneCmd struct {
	ID string `arg:"" help:"ID of the todo to reopen."`
}

func (c *TodoUndoneCmd) Run(ctx *Context) error {
	return setCompleted(ctx, c.ID, false)
}

func setCompleted(ctx *Context, rawID string, done bool) error {
	ctx.warnIfServing()

	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	todo, err := ctx.Service.SetCompleted(context.Background(), id, done)
	if err != nil {
		return err
	}
	ctx.printf("✓ %s\n", formatTodo(todo))
	return nil
}

type TodoDeleteCmd struct {
	ID string `arg:"" help:"ID of the todo to delete."`
}

func (c *TodoDeleteCmd) Run(ctx *Context) error {
	ctx.warnIfServing()

	id, err := parseID(c.ID)
	if err != nil {
		return err
	}
	if err := ctx.Service.DeleteTodo(context.Background(), id); err != nil {
		return err
	}
	ctx.printf("✓ Deleted todo %d\n", id)
	return nil
}

type TodoPruneCmd struct {
	Age time.Duration `help:"Remove todos completed longer ago than this." default:"168h"`
}

func (c *TodoPruneCmd) Run(ctx *Context) error {
	ctx.warnIfServing()

	pruned, err := ctx.Service.PruneCompleted(context.Background(), c.Age)
	if err != nil {
		return err
	}
	if len(pruned) == 0 {
		ctx.println("Nothing to prune")
		return nil
	}
	for _, t := range pruned {
		ctx.printf("  removed %d: %s\n", t.ID, t.Name)
	}
	ctx.printf("✓ Pruned %d completed todo(s)\n", len(pruned))
	return nil
}

func formatTodo(t models.Todo) string {
	box := "[ ]"
	if t.Completed {
		box = "[x]"
	}

	var details []string
	if t.EstimatedMinutes != nil {
		details = append(details, fmt.Sprintf("%gm", *t.EstimatedMinutes))
	}
	if cat := t.Category(); cat != "" {
		details = append(details, cat)
	}

	line := fmt.Sprintf("%s %d %s", box, t.ID, t.Name)
	if len(details) > 0 {
		line += " (" + strings.Join(details, ", ") + ")"
	}
	return line
}

func setField(fields map[string]json.RawMessage, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	fields[key] = raw
	return nil
}

func printJSON(ctx *Context, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.println(string(data))
	return nil
}
