package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/julianstephens/deeply/internal/constants"
	"github.com/julianstephens/deeply/internal/logger"
	"github.com/julianstephens/deeply/internal/models"
	"github.com/julianstephens/deeply/internal/storage"
)

// LogSession appends a session built from a request body, stamped with the
// current time and local date.
func (s *Service) LogSession(ctx context.Context, fields map[string]json.RawMessage) (models.Session, error) {
	session, err := models.NewSession(fields)
	if err != nil {
		return models.Session{}, err
	}

	err = s.store.Update(ctx, func(doc *storage.Document) error {
		session.CompletedAt = s.timestamp()
		session.Date = s.today()
		doc.Sessions = append(doc.Sessions, session)
		return nil
	})
	if err != nil {
		return models.Session{}, err
	}

	logger.Debug("logged session", "mode", session.Mode, "task", session.Task, "minutes", session.Minutes())
	return session, nil
}

// TodayStats aggregates the sessions logged on the current local date
func (s *Service) TodayStats(ctx context.Context) (models.DailyStats, error) {
	return s.StatsFor(ctx, s.today())
}

// StatsFor aggregates the sessions whose stored date equals date (YYYY-MM-DD)
func (s *Service) StatsFor(ctx context.Context, date string) (models.DailyStats, error) {
	if _, err := time.Parse(constants.DateFormat, date); err != nil {
		return models.DailyStats{}, invalid("date", "must be YYYY-MM-DD")
	}

	stats := models.DailyStats{Sessions: []models.Session{}}
	err := s.store.View(ctx, func(doc *storage.Document) error {
		for _, session := range doc.Sessions {
			if session.Date != date {
				continue
			}
			stats.Sessions = append(stats.Sessions, session)
			stats.TotalPomodoros++
			stats.TotalMinutes += session.Minutes()
		}
		return nil
	})
	if err != nil {
		return models.DailyStats{}, err
	}
	return stats, nil
}
