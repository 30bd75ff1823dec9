package models

import (
	"encoding/json"
	"strings"
)

const (
	fieldID               = "id"
	fieldName             = "name"
	fieldEstimatedMinutes = "estimated_minutes"
	fieldCompleted        = "completed"
	fieldCreatedAt        = "created_at"
)

// Todo is a tracked task. Fields the server does not know about are kept in
// Extra and written back unchanged, as is the caller's estimated_minutes
// text.
type Todo struct {
	ID               int64
	Name             string
	EstimatedMinutes *float64
	Completed        bool
	CreatedAt        string // RFC3339, immutable
	Extra            Extra

	raw Extra
}

func (t *Todo) setEstimate(raw json.RawMessage) error {
	est, err := decodeNumber(fieldEstimatedMinutes, raw)
	if err != nil {
		return err
	}
	t.EstimatedMinutes = est
	t.raw = Extra{}
	t.raw.verbatim(fieldEstimatedMinutes, raw)
	return nil
}

// NewTodo builds a todo from a create request body. Server-owned fields
// (id, completed, created_at) are dropped; the caller stamps them.
func NewTodo(fields map[string]json.RawMessage) (Todo, error) {
	var t Todo
	t.Extra = Extra{}
	for k, raw := range fields {
		switch k {
		case fieldID, fieldCompleted, fieldCreatedAt:
			continue
		case fieldName:
			name, err := decodeString(k, raw)
			if err != nil {
				return Todo{}, err
			}
			t.Name = name
		case fieldEstimatedMinutes:
			if err := t.setEstimate(raw); err != nil {
				return Todo{}, err
			}
		default:
			t.Extra[k] = raw
		}
	}
	if strings.TrimSpace(t.Name) == "" {
		return Todo{}, &ValidationError{Field: fieldName, Message: "is required"}
	}
	return t, nil
}

// Apply shallow-merges a partial update into the todo. Supplied keys replace
// existing values, absent keys are left alone. id and created_at are
// immutable and silently ignored. The todo is untouched when an error is
// returned.
func (t *Todo) Apply(patch map[string]json.RawMessage) error {
	next := *t
	next.Extra = make(Extra, len(t.Extra)+len(patch))
	for k, v := range t.Extra {
		next.Extra[k] = v
	}

	for k, raw := range patch {
		switch k {
		case fieldID, fieldCreatedAt:
			continue
		case fieldName:
			name, err := decodeString(k, raw)
			if err != nil {
				return err
			}
			if strings.TrimSpace(name) == "" {
				return &ValidationError{Field: k, Message: "must not be blank"}
			}
			next.Name = name
		case fieldEstimatedMinutes:
			if err := next.setEstimate(raw); err != nil {
				return err
			}
		case fieldCompleted:
			done, err := decodeBool(k, raw)
			if err != nil {
				return err
			}
			next.Completed = done
		default:
			next.Extra[k] = raw
		}
	}

	*t = next
	return nil
}

// CompletedAt returns the caller-supplied completion stamp, if any
func (t Todo) CompletedAt() string {
	return t.Extra.String("completed_at")
}

// Category returns the caller-supplied category, if any
func (t Todo) Category() string {
	return t.Extra.String("category")
}

func (t Todo) MarshalJSON() ([]byte, error) {
	known := map[string]any{
		fieldID:        t.ID,
		fieldName:      t.Name,
		fieldCompleted: t.Completed,
		fieldCreatedAt: t.CreatedAt,
	}
	if t.EstimatedMinutes != nil {
		known[fieldEstimatedMinutes] = *t.EstimatedMinutes
	}
	if raw, ok := t.raw[fieldEstimatedMinutes]; ok {
		known[fieldEstimatedMinutes] = raw
	}
	return marshalRecord(t.Extra, known)
}

// UnmarshalJSON reads a stored todo. Unlike NewTodo it trusts the
// server-owned fields.
func (t *Todo) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	out := Todo{Extra: Extra{}}
	for k, raw := range fields {
		var err error
		switch k {
		case fieldID:
			out.ID, err = decodeInt(k, raw)
		case fieldName:
			out.Name, err = decodeString(k, raw)
		case fieldEstimatedMinutes:
			err = out.setEstimate(raw)
		case fieldCompleted:
			if !isNull(raw) {
				out.Completed, err = decodeBool(k, raw)
			}
		case fieldCreatedAt:
			out.CreatedAt, err = decodeString(k, raw)
		default:
			out.Extra[k] = raw
		}
		if err != nil {
			return err
		}
	}

	*t = out
	return nil
}
