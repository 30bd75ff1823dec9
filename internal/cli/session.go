package cli

import (
	"context"
	"encoding/json"

	"github.com/julianstephens/deeply/internal/constants"
)

type SessionLogCmd struct {
	Mode    string  `short:"m" help:"Work mode (light, medium or deep)." enum:"light,medium,deep" default:"light"`
	Task    string  `short:"t" help:"Name of the todo worked on."`
	Minutes float64 `short:"n" help:"Minutes of focused work (defaults to the mode's work length)."`
}

func (c *SessionLogCmd) Run(ctx *Context) error {
	ctx.warnIfServing()

	minutes := c.Minutes
	if minutes <= 0 {
		minutes = float64(constants.ModeConfigs[constants.Mode(c.Mode)].Work)
	}

	fields := map[string]json.RawMessage{}
	if err := setField(fields, "mode", c.Mode); err != nil {
		return err
	}
	if err := setField(fields, "work_minutes", minutes); err != nil {
		return err
	}
	if c.Task != "" {
		if err := setField(fields, "task", c.Task); err != nil {
			return err
		}
	}

	session, err := ctx.Service.LogSession(context.Background(), fields)
	if err != nil {
		return err
	}

	task := session.Task
	if task == "" {
		task = constants.NoTaskSelected
	}
	ctx.printf("✓ Logged %g minute %s session (%s) on %s\n", session.Minutes(), session.Mode, task, session.Date)
	return nil
}

type ModesCmd struct{}

func (c *ModesCmd) Run(ctx *Context) error {
	for _, m := range ctx.Service.Modes() {
		ctx.printf("  %-7s %d min work / %d min break\n", m.Name, m.Work, m.Break)
	}
	return nil
}
