package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Extra holds caller-supplied fields that have no typed counterpart.
// Values are kept as raw JSON so they round-trip verbatim.
type Extra map[string]json.RawMessage

// ValidationError reports a request field with the wrong shape
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// DecodeObject parses data as a JSON object. Anything else (arrays, scalars,
// invalid JSON) is a ValidationError.
func DecodeObject(data []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil, &ValidationError{Message: "request body must be a JSON object"}
	}
	return fields, nil
}

// String returns the extra field as a string, or "" when absent or not a string
func (e Extra) String(key string) string {
	raw, ok := e[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func decodeString(field string, raw json.RawMessage) (string, error) {
	var s string
	if isNull(raw) {
		return "", nil
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", &ValidationError{Field: field, Message: "must be a string"}
	}
	return s, nil
}

// stringValue returns raw as a Go string. Null and non-string values give "".
func stringValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// verbatim records the caller's text for a typed key so it is written back
// unchanged
func (e Extra) verbatim(key string, raw json.RawMessage) {
	e[key] = append(json.RawMessage(nil), raw...)
}

func decodeNumber(field string, raw json.RawMessage) (*float64, error) {
	if isNull(raw) {
		return nil, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, &ValidationError{Field: field, Message: "must be a number"}
	}
	return &f, nil
}

func decodeBool(field string, raw json.RawMessage) (bool, error) {
	var b bool
	if isNull(raw) {
		return false, &ValidationError{Field: field, Message: "must be a boolean"}
	}
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, &ValidationError{Field: field, Message: "must be a boolean"}
	}
	return b, nil
}

func decodeInt(field string, raw json.RawMessage) (int64, error) {
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, &ValidationError{Field: field, Message: "must be an integer"}
	}
	return n, nil
}

// marshalRecord merges the typed fields over the extras and encodes the
// result. encoding/json sorts map keys, so output is deterministic.
func marshalRecord(extra Extra, known map[string]any) ([]byte, error) {
	out := make(map[string]json.RawMessage, len(extra)+len(known))
	for k, v := range extra {
		out[k] = v
	}
	for k, v := range known {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", k, err)
		}
		out[k] = raw
	}
	return json.Marshal(out)
}
