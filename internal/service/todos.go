package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/julianstephens/deeply/internal/constants"
	"github.com/julianstephens/deeply/internal/logger"
	"github.com/julianstephens/deeply/internal/models"
	"github.com/julianstephens/deeply/internal/storage"
)

// ListTodos returns every todo in insertion order
func (s *Service) ListTodos(ctx context.Context) ([]models.Todo, error) {
	var todos []models.Todo
	err := s.store.View(ctx, func(doc *storage.Document) error {
		todos = doc.Todos
		return nil
	})
	if err != nil {
		return nil, err
	}
	return todos, nil
}

// GetTodo returns the todo with the given id
func (s *Service) GetTodo(ctx context.Context, id int64) (models.Todo, error) {
	var todo models.Todo
	err := s.store.View(ctx, func(doc *storage.Document) error {
		i := indexOf(doc.Todos, id)
		if i < 0 {
			return ErrTodoNotFound
		}
		todo = doc.Todos[i]
		return nil
	})
	return todo, err
}

// CreateTodo appends a todo built from a request body. The server assigns id,
// completed=false and created_at, overwriting any supplied values.
func (s *Service) CreateTodo(ctx context.Context, fields map[string]json.RawMessage) (models.Todo, error) {
	todo, err := models.NewTodo(fields)
	if err != nil {
		return models.Todo{}, err
	}

	err = s.store.Update(ctx, func(doc *storage.Document) error {
		now := s.now()
		todo.ID = nextTodoID(doc.Todos, now)
		todo.Completed = false
		todo.CreatedAt = now.Format(constants.TimestampFormat)
		doc.Todos = append(doc.Todos, todo)
		return nil
	})
	if err != nil {
		return models.Todo{}, err
	}

	logger.Debug("created todo", "id", todo.ID, "name", todo.Name)
	return todo, nil
}

// UpdateTodo shallow-merges patch into the todo with the given id. Nothing is
// written when the id is unknown or the patch is invalid.
func (s *Service) UpdateTodo(ctx context.Context, id int64, patch map[string]json.RawMessage) (models.Todo, error) {
	var updated models.Todo
	err := s.store.Update(ctx, func(doc *storage.Document) error {
		i := indexOf(doc.Todos, id)
		if i < 0 {
			return ErrTodoNotFound
		}
		if err := doc.Todos[i].Apply(patch); err != nil {
			return err
		}
		updated = doc.Todos[i]
		return nil
	})
	if err != nil {
		return models.Todo{}, err
	}

	logger.Debug("updated todo", "id", id, "fields", len(patch))
	return updated, nil
}

// SetCompleted marks a todo done or not done and maintains its completed_at stamp
func (s *Service) SetCompleted(ctx context.Context, id int64, done bool) (models.Todo, error) {
	stamp := json.RawMessage("null")
	if done {
		raw, err := json.Marshal(s.timestamp())
		if err != nil {
			return models.Todo{}, err
		}
		stamp = raw
	}
	completed, _ := json.Marshal(done)

	return s.UpdateTodo(ctx, id, map[string]json.RawMessage{
		"completed":    completed,
		"completed_at": stamp,
	})
}

// DeleteTodo removes the todo with the given id. Deleting an unknown id is
// not an error and performs no write.
func (s *Service) DeleteTodo(ctx context.Context, id int64) error {
	var removed bool
	err := s.store.Update(ctx, func(doc *storage.Document) error {
		kept := doc.Todos[:0]
		for _, t := range doc.Todos {
			if t.ID == id {
				removed = true
				continue
			}
			kept = append(kept, t)
		}
		if !removed {
			return errNoChange
		}
		doc.Todos = kept
		return nil
	})
	if errors.Is(err, errNoChange) {
		return nil
	}
	if err != nil {
		return err
	}

	logger.Debug("deleted todo", "id", id)
	return nil
}

// PruneCompleted removes completed todos whose completed_at is older than
// age. Todos without a parseable completed_at are kept. It returns the
// removed todos.
func (s *Service) PruneCompleted(ctx context.Context, age time.Duration) ([]models.Todo, error) {
	if age < 0 {
		return nil, invalid("age", "must not be negative")
	}

	cutoff := s.now().Add(-age)
	var pruned []models.Todo
	err := s.store.Update(ctx, func(doc *storage.Document) error {
		kept := make([]models.Todo, 0, len(doc.Todos))
		for _, t := range doc.Todos {
			if at, ok := parseTimestamp(t.CompletedAt()); t.Completed && ok && at.Before(cutoff) {
				pruned = append(pruned, t)
				continue
			}
			kept = append(kept, t)
		}
		if len(pruned) == 0 {
			return errNoChange
		}
		doc.Todos = kept
		return nil
	})
	if errors.Is(err, errNoChange) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	logger.Info("pruned completed todos", "count", len(pruned), "cutoff", cutoff.Format(time.RFC3339))
	return pruned, nil
}

// errNoChange aborts an Update without saving
var errNoChange = errors.New("no change")

// nextTodoID returns an id near the current Unix millisecond that is larger
// than every existing id.
func nextTodoID(todos []models.Todo, now time.Time) int64 {
	id := now.UnixMilli()
	for _, t := range todos {
		if t.ID >= id {
			id = t.ID + 1
		}
	}
	return id
}

func indexOf(todos []models.Todo, id int64) int {
	for i, t := range todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}
