package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/julianstephens/deeply/internal/models"
)

// sqlDocument maps the document onto the todos/sessions tables shared by the
// SQLite and PostgreSQL backends. Each record is stored as JSON text next to
// its position so order and unknown fields survive.
type sqlDocument struct {
	// placeholder renders the n-th (1-based) bind parameter
	placeholder func(n int) string
}

func (q sqlDocument) load(ctx context.Context, db *sql.DB) (*Document, error) {
	doc := NewDocument()

	rows, err := db.QueryContext(ctx, "SELECT body FROM todos ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query todos: %v", ErrReadFailure, err)
	}
	defer rows.Close()
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("%w: failed to scan todo: %v", ErrReadFailure, err)
		}
		var todo models.Todo
		if err := json.Unmarshal([]byte(body), &todo); err != nil {
			return nil, fmt.Errorf("%w: failed to parse todo: %v", ErrReadFailure, err)
		}
		doc.Todos = append(doc.Todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate todos: %v", ErrReadFailure, err)
	}

	srows, err := db.QueryContext(ctx, "SELECT body FROM sessions ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query sessions: %v", ErrReadFailure, err)
	}
	defer srows.Close()
	for srows.Next() {
		var body string
		if err := srows.Scan(&body); err != nil {
			return nil, fmt.Errorf("%w: failed to scan session: %v", ErrReadFailure, err)
		}
		var session models.Session
		if err := json.Unmarshal([]byte(body), &session); err != nil {
			return nil, fmt.Errorf("%w: failed to parse session: %v", ErrReadFailure, err)
		}
		doc.Sessions = append(doc.Sessions, session)
	}
	if err := srows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate sessions: %v", ErrReadFailure, err)
	}

	return doc, nil
}

func (q sqlDocument) save(ctx context.Context, db *sql.DB, doc *Document) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM todos"); err != nil {
		return fmt.Errorf("failed to clear todos: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM sessions"); err != nil {
		return fmt.Errorf("failed to clear sessions: %w", err)
	}

	insertTodo := fmt.Sprintf("INSERT INTO todos (position, id, body) VALUES (%s, %s, %s)",
		q.placeholder(1), q.placeholder(2), q.placeholder(3))
	for i, todo := range doc.Todos {
		body, err := json.Marshal(todo)
		if err != nil {
			return fmt.Errorf("failed to serialize todo %d: %w", todo.ID, err)
		}
		if _, err := tx.ExecContext(ctx, insertTodo, i, todo.ID, string(body)); err != nil {
			return fmt.Errorf("failed to insert todo %d: %w", todo.ID, err)
		}
	}

	insertSession := fmt.Sprintf("INSERT INTO sessions (position, date, body) VALUES (%s, %s, %s)",
		q.placeholder(1), q.placeholder(2), q.placeholder(3))
	for i, session := range doc.Sessions {
		body, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("failed to serialize session: %w", err)
		}
		if _, err := tx.ExecContext(ctx, insertSession, i, session.Date, string(body)); err != nil {
			return fmt.Errorf("failed to insert session: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
