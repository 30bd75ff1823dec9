package cli

import (
	"context"
	"sort"

	"github.com/julianstephens/deeply/internal/constants"
	"github.com/julianstephens/deeply/internal/models"
)

type StatsCmd struct {
	Date string `help:"Date to report (YYYY-MM-DD, default today)."`
	JSON bool   `help:"Print stats as JSON."`
}

func (c *StatsCmd) Run(ctx *Context) error {
	ctx.warnIfServing()

	var (
		stats models.DailyStats
		err   error
		date  = "Today"
	)
	if c.Date != "" {
		stats, err = ctx.Service.StatsFor(context.Background(), c.Date)
		date = c.Date
	} else {
		stats, err = ctx.Service.TodayStats(context.Background())
	}
	if err != nil {
		return err
	}

	if c.JSON {
		return printJSON(ctx, stats)
	}

	ctx.printf("%s: %d pomodoro(s), %g focus minute(s)\n", date, stats.TotalPomodoros, stats.TotalMinutes)
	for _, s := range stats.Sessions {
		task := s.Task
		if task == "" {
			task = constants.NoTaskSelected
		}
		ctx.printf("  %s  %-6s %5gm  %s\n", s.CompletedAt, s.Mode, s.Minutes(), task)
	}
	return nil
}

type InsightsCmd struct {
	WeekOffset int  `help:"Weeks back from the current week (0 or negative)." default:"0"`
	JSON       bool `help:"Print insights as JSON."`
}

func (c *InsightsCmd) Run(ctx *Context) error {
	ctx.warnIfServing()

	in, err := ctx.Service.WeeklyInsights(context.Background(), c.WeekOffset)
	if err != nil {
		return err
	}

	if c.JSON {
		return printJSON(ctx, in)
	}

	ctx.printf("Week %s to %s\n\n", in.WeekStart, in.WeekEnd)
	ctx.printf("  Focus time:      %gm over %d session(s)\n", in.FocusMinutes, in.Sessions)

	modes := make([]string, 0, len(in.Modes))
	for m := range in.Modes {
		modes = append(modes, m)
	}
	sort.Strings(modes)
	for _, m := range modes {
		ctx.printf("    %-8s %d\n", m, in.Modes[m])
	}

	ctx.printf("  Tasks completed: %d\n", in.TasksCompleted)
	if in.CompletionRate != nil {
		ctx.printf("  Completion rate: %d%% (%d of %d created)\n", *in.CompletionRate, in.CreatedAndCompleted, in.TasksCreated)
	} else {
		ctx.printf("  Completion rate: -\n")
	}

	ctx.printf("  Allocation:\n")
	for _, cat := range []string{constants.CategoryUniversity, constants.CategoryCareer, constants.CategoryOther} {
		ctx.printf("    %-10s %gm\n", cat, in.Allocation[cat])
	}
	return nil
}
