package chat

import (
	"database/sql"
	"encoding/json"
	"time"
)

// NullString is sql.NullString with flat JSON: a plain string when set,
// null when not. The UI and event payloads never see the Valid wrapper.
type NullString struct {
	sql.NullString
}

func NewNullString(value string) NullString {
	if value == "" {
		return NullString{}
	}
	return NullString{sql.NullString{String: value, Valid: true}}
}

func (s NullString) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.String)
}

func (s *NullString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = NullString{}
		return nil
	}
	if err := json.Unmarshal(data, &s.String); err != nil {
		return err
	}
	s.Valid = true
	return nil
}

// NullTime is sql.NullTime with flat JSON: RFC3339 when set, null when not.
type NullTime struct {
	sql.NullTime
}

func NewNullTime(t time.Time) NullTime {
	return NullTime{sql.NullTime{Time: t, Valid: true}}
}

func (t NullTime) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time)
}

func (t *NullTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = NullTime{}
		return nil
	}
	if err := json.Unmarshal(data, &t.Time); err != nil {
		return err
	}
	t.Valid = true
	return nil
}
