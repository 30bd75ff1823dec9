package service

import (
	"context"
	"math"
	"time"

	"github.com/julianstephens/deeply/internal/constants"
	"github.com/julianstephens/deeply/internal/models"
	"github.com/julianstephens/deeply/internal/storage"
)

// WeekRange returns local Monday 00:00 and Sunday 23:59:59.999 of the week
// containing now, shifted by offset weeks.
func WeekRange(now time.Time, offset int) (time.Time, time.Time) {
	daysSinceMonday := (int(now.Weekday()) + 6) % 7
	start := time.Date(now.Year(), now.Month(), now.Day()-daysSinceMonday+offset*7, 0, 0, 0, 0, now.Location())
	end := time.Date(start.Year(), start.Month(), start.Day()+6, 23, 59, 59, int(999*time.Millisecond), now.Location())
	return start, end
}

// WeeklyInsights summarizes focus time and todo throughput for one week.
// offset 0 is the current week, -1 the previous one; future weeks are rejected.
func (s *Service) WeeklyInsights(ctx context.Context, offset int) (models.WeeklyInsights, error) {
	if offset > 0 {
		return models.WeeklyInsights{}, invalid("week_offset", "must not be positive")
	}

	start, end := WeekRange(s.now(), offset)
	firstDay := start.Format(constants.DateFormat)
	lastDay := end.Format(constants.DateFormat)

	inWeek := func(stamp string) bool {
		t, ok := parseTimestamp(stamp)
		return ok && !t.Before(start) && !t.After(end)
	}

	out := models.WeeklyInsights{
		WeekStart: firstDay,
		WeekEnd:   lastDay,
		Modes:     map[string]int{},
		Allocation: map[string]float64{
			constants.CategoryUniversity: 0,
			constants.CategoryCareer:     0,
			constants.CategoryOther:      0,
		},
	}

	err := s.store.View(ctx, func(doc *storage.Document) error {
		byName := make(map[string]models.Todo, len(doc.Todos))
		for _, t := range doc.Todos {
			if _, seen := byName[t.Name]; !seen {
				byName[t.Name] = t
			}
		}

		for _, session := range doc.Sessions {
			if session.Date < firstDay || session.Date > lastDay {
				continue
			}
			out.Sessions++
			out.FocusMinutes += session.Minutes()
			if session.Mode != "" {
				out.Modes[session.Mode]++
			}

			if session.Task == "" || session.Task == constants.NoTaskSelected {
				continue
			}
			out.Allocation[allocationBucket(byName, session.Task)] += session.Minutes()
		}

		for _, t := range doc.Todos {
			if t.Completed && inWeek(t.CompletedAt()) {
				out.TasksCompleted++
			}
			if inWeek(t.CreatedAt) {
				out.TasksCreated++
				if t.Completed {
					out.CreatedAndCompleted++
				}
			}
		}
		return nil
	})
	if err != nil {
		return models.WeeklyInsights{}, err
	}

	if out.TasksCreated > 0 {
		rate := int(math.Round(float64(out.CreatedAndCompleted) / float64(out.TasksCreated) * 100))
		out.CompletionRate = &rate
	}
	return out, nil
}

// allocationBucket maps a session task to the category of the todo with that
// name. Unknown todos and categories fall into "other".
func allocationBucket(byName map[string]models.Todo, task string) string {
	todo, ok := byName[task]
	if !ok {
		return constants.CategoryOther
	}
	switch cat := todo.Category(); cat {
	case constants.CategoryUniversity, constants.CategoryCareer:
		return cat
	default:
		return constants.CategoryOther
	}
}
