package chat

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMessageJSONHasFlatOptionals(t *testing.T) {
	msg := Message{
		ID:       uuid.New(),
		TicketID: uuid.New(),
		Seq:      3,
		FromType: ParticipantClient,
		FromID:   "client-1",
		ToType:   ParticipantAgent,
		ToID:     "agent-1",
		Kind:     KindText,
		Body:     NewNullString("olá"),
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := string(raw)

	if !strings.Contains(got, `"body":"olá"`) {
		t.Errorf("body not flat: %s", got)
	}
	if !strings.Contains(got, `"file_url":null`) {
		t.Errorf("unset file_url not null: %s", got)
	}
	if strings.Contains(got, `"Valid"`) {
		t.Errorf("sql wrapper leaked into JSON: %s", got)
	}
}

func TestTicketJSONHasFlatOptionals(t *testing.T) {
	unassigned := Ticket{ID: uuid.New(), ClientID: "client-1", Status: StatusQueued}

	raw, err := json.Marshal(unassigned)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := string(raw)
	if !strings.Contains(got, `"agent_id":null`) {
		t.Errorf("unassigned agent_id not null: %s", got)
	}
	if strings.Contains(got, `"Valid"`) {
		t.Errorf("sql wrapper leaked into JSON: %s", got)
	}

	until := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	assigned := Ticket{
		ID:              uuid.New(),
		ClientID:        "client-1",
		AgentID:         NewNullString("agent-9"),
		AIDisabledUntil: NewNullTime(until),
	}
	raw, err = json.Marshal(assigned)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got = string(raw)
	if !strings.Contains(got, `"agent_id":"agent-9"`) {
		t.Errorf("agent_id not flat: %s", got)
	}
	if !strings.Contains(got, `"ai_disabled_until":"2026-03-01T12:00:00Z"`) {
		t.Errorf("ai_disabled_until not RFC3339: %s", got)
	}
}

func TestNullTypesRoundTrip(t *testing.T) {
	var s NullString
	if err := json.Unmarshal([]byte(`"hello"`), &s); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if !s.Valid || s.String != "hello" {
		t.Fatalf("got %+v", s)
	}

	if err := json.Unmarshal([]byte("null"), &s); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if s.Valid {
		t.Fatalf("null should clear Valid, got %+v", s)
	}

	var ts NullTime
	if err := json.Unmarshal([]byte(`"2026-03-01T12:00:00Z"`), &ts); err != nil {
		t.Fatalf("unmarshal time: %v", err)
	}
	if !ts.Valid || !ts.Time.Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("got %+v", ts)
	}
}
