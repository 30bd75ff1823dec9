package models

import "encoding/json"

const (
	fieldMode        = "mode"
	fieldTask        = "task"
	fieldWorkMinutes = "work_minutes"
	fieldDate        = "date"
	fieldSessionDone = "completed_at"
)

// Session is an immutable record of one completed focus interval. Mode,
// Task and WorkMinutes are typed views of the caller's values; the caller's
// JSON for those keys is kept so it is written back unchanged, whatever its
// type.
type Session struct {
	Mode        string // "" unless the caller sent a string
	Task        string // "" unless the caller sent a string
	WorkMinutes *float64
	CompletedAt string // RFC3339, set by the server
	Date        string // YYYY-MM-DD server-local, set by the server
	Extra       Extra

	raw Extra
}

// NewSession builds a session from a log request body. No field is
// required and only work_minutes is type checked; date and completed_at are
// always overwritten by the caller.
func NewSession(fields map[string]json.RawMessage) (Session, error) {
	s := Session{Extra: Extra{}, raw: Extra{}}
	for k, raw := range fields {
		switch k {
		case fieldDate, fieldSessionDone:
			continue
		case fieldMode, fieldTask, fieldWorkMinutes:
			if err := s.setTyped(k, raw); err != nil {
				return Session{}, err
			}
		default:
			s.Extra[k] = raw
		}
	}
	return s, nil
}

func (s *Session) setTyped(k string, raw json.RawMessage) error {
	switch k {
	case fieldMode:
		s.Mode = stringValue(raw)
	case fieldTask:
		s.Task = stringValue(raw)
	case fieldWorkMinutes:
		minutes, err := decodeNumber(k, raw)
		if err != nil {
			return err
		}
		s.WorkMinutes = minutes
	}
	s.raw.verbatim(k, raw)
	return nil
}

// Minutes returns work_minutes, treating a missing value as zero
func (s Session) Minutes() float64 {
	if s.WorkMinutes == nil {
		return 0
	}
	return *s.WorkMinutes
}

func (s Session) MarshalJSON() ([]byte, error) {
	known := map[string]any{
		fieldSessionDone: s.CompletedAt,
		fieldDate:        s.Date,
	}
	if s.Mode != "" {
		known[fieldMode] = s.Mode
	}
	if s.Task != "" {
		known[fieldTask] = s.Task
	}
	if s.WorkMinutes != nil {
		known[fieldWorkMinutes] = *s.WorkMinutes
	}
	for k, raw := range s.raw {
		known[k] = raw
	}
	return marshalRecord(s.Extra, known)
}

func (s *Session) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	out := Session{Extra: Extra{}, raw: Extra{}}
	for k, raw := range fields {
		var err error
		switch k {
		case fieldMode, fieldTask, fieldWorkMinutes:
			err = out.setTyped(k, raw)
		case fieldSessionDone:
			out.CompletedAt, err = decodeString(k, raw)
		case fieldDate:
			out.Date, err = decodeString(k, raw)
		default:
			out.Extra[k] = raw
		}
		if err != nil {
			return err
		}
	}

	*s = out
	return nil
}
