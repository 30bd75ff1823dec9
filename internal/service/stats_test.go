package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/deeply/internal/models"
)

func TestLogSessionStampsServerFields(t *testing.T) {
	svc, _, _ := setupTestService(t)

	session, err := svc.LogSession(context.Background(), body(t, `{"mode":"work","task":"Write report","work_minutes":25,"date":"1999-01-01","completed_at":"never"}`))
	if err != nil {
		t.Fatalf("LogSession() failed: %v", err)
	}
	if session.Date != "2024-03-13" {
		t.Errorf("date = %q, want 2024-03-13", session.Date)
	}
	if session.CompletedAt != "2024-03-13T10:00:00Z" {
		t.Errorf("completed_at = %q", session.CompletedAt)
	}
}

func TestLogSessionValidation(t *testing.T) {
	svc, _, _ := setupTestService(t)

	if _, err := svc.LogSession(context.Background(), body(t, `{}`)); err != nil {
		t.Errorf("LogSession({}) error = %v, want nil", err)
	}

	_, err := svc.LogSession(context.Background(), body(t, `{"work_minutes":"lots"}`))
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("LogSession() error = %v, want ValidationError", err)
	}
}

func TestTodayStats(t *testing.T) {
	svc, clock, _ := setupTestService(t)
	ctx := context.Background()

	// Logged the day before and excluded no matter when stats are requested
	clock.t = clock.t.Add(-24 * time.Hour)
	if _, err := svc.LogSession(ctx, body(t, `{"mode":"deep","work_minutes":50}`)); err != nil {
		t.Fatalf("LogSession() failed: %v", err)
	}
	clock.t = clock.t.Add(24 * time.Hour)

	if _, err := svc.LogSession(ctx, body(t, `{"mode":"light","task":"A","work_minutes":25}`)); err != nil {
		t.Fatalf("LogSession() failed: %v", err)
	}
	if _, err := svc.LogSession(ctx, body(t, `{"mode":"light","task":"B"}`)); err != nil {
		t.Fatalf("LogSession() failed: %v", err)
	}

	stats, err := svc.TodayStats(ctx)
	if err != nil {
		t.Fatalf("TodayStats() failed: %v", err)
	}
	if stats.TotalPomodoros != 2 {
		t.Errorf("total_pomodoros = %d, want 2", stats.TotalPomodoros)
	}
	if stats.TotalMinutes != 25 {
		t.Errorf("total_minutes = %v, want 25", stats.TotalMinutes)
	}
	if len(stats.Sessions) != 2 || stats.Sessions[0].Task != "A" || stats.Sessions[1].Task != "B" {
		t.Errorf("sessions = %+v", stats.Sessions)
	}

	yesterday, err := svc.StatsFor(ctx, "2024-03-12")
	if err != nil {
		t.Fatalf("StatsFor() failed: %v", err)
	}
	if yesterday.TotalPomodoros != 1 || yesterday.TotalMinutes != 50 {
		t.Errorf("yesterday = %+v", yesterday)
	}
}

func TestStatsEmptyDay(t *testing.T) {
	svc, _, _ := setupTestService(t)

	stats, err := svc.TodayStats(context.Background())
	if err != nil {
		t.Fatalf("TodayStats() failed: %v", err)
	}
	if stats.TotalPomodoros != 0 || stats.TotalMinutes != 0 || stats.Sessions == nil {
		t.Errorf("stats = %+v, want zero values with empty sessions", stats)
	}

	if _, err := svc.StatsFor(context.Background(), "13/03/2024"); err == nil {
		t.Error("expected error for malformed date")
	}
}
