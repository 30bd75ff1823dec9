// Package service implements the todo, session and statistics operations
// shared by the HTTP server, the CLI and the TUI.
package service

import (
	"errors"
	"time"

	"github.com/julianstephens/deeply/internal/constants"
	"github.com/julianstephens/deeply/internal/models"
	"github.com/julianstephens/deeply/internal/storage"
)

// ErrTodoNotFound is returned when an update addresses an unknown todo id
var ErrTodoNotFound = errors.New("Todo not found")

type Service struct {
	store *storage.Accessor
	now   func() time.Time
}

func New(store *storage.Accessor) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

// WithClock replaces the time source
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Store returns the underlying accessor
func (s *Service) Store() *storage.Accessor {
	return s.store
}

// Modes returns the work mode presets in display order
func (s *Service) Modes() []ModeInfo {
	modes := make([]ModeInfo, 0, len(constants.Modes))
	for _, m := range constants.Modes {
		cfg := constants.ModeConfigs[m]
		modes = append(modes, ModeInfo{Name: string(m), Work: cfg.Work, Break: cfg.Break})
	}
	return modes
}

// ModeInfo is one entry of the mode table
type ModeInfo struct {
	Name  string `json:"name"`
	Work  int    `json:"work"`
	Break int    `json:"break"`
}

func (s *Service) timestamp() string {
	return s.now().Format(constants.TimestampFormat)
}

func (s *Service) today() string {
	return s.now().Format(constants.DateFormat)
}

func parseTimestamp(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func invalid(field, msg string) error {
	return &models.ValidationError{Field: field, Message: msg}
}
