package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"atendezap/internal/domain/chat"
	apperrors "atendezap/pkg/errors"
)

func TestAssign(t *testing.T) {
	repo := newMemTicketRepo()
	svc := NewTicketService(repo, true)
	ticket := seedTicket(t, repo, chat.Ticket{ClientID: "client-1", Status: chat.StatusQueued})

	assigned, err := svc.Assign(context.Background(), ticket.ID, "agent-1")
	if err != nil {
		t.Fatal(err)
	}
	if assigned.Status != chat.StatusActive || assigned.AgentID.String != "agent-1" {
		t.Fatalf("after assign: %+v", assigned)
	}

	// Same agent again is a no-op.
	again, err := svc.Assign(context.Background(), ticket.ID, "agent-1")
	if err != nil {
		t.Fatal(err)
	}
	if again.AgentID.String != "agent-1" {
		t.Fatalf("idempotent assign changed agent: %+v", again)
	}

	// A different agent takes over, last write wins.
	taken, err := svc.Assign(context.Background(), ticket.ID, "agent-2")
	if err != nil {
		t.Fatal(err)
	}
	if taken.AgentID.String != "agent-2" {
		t.Fatalf("takeover agent = %s", taken.AgentID.String)
	}

	if _, err := svc.Assign(context.Background(), ticket.ID, ""); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("empty agent accepted: %v", err)
	}
}

func TestSetStatusRejectsIllegalTransition(t *testing.T) {
	repo := newMemTicketRepo()
	svc := NewTicketService(repo, true)
	ticket := seedTicket(t, repo, chat.Ticket{ClientID: "client-1", Status: chat.StatusFinished})

	if _, err := svc.SetStatus(context.Background(), ticket.ID, chat.StatusActive); !errors.Is(err, apperrors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	reopened, err := svc.SetStatus(context.Background(), ticket.ID, chat.StatusQueued)
	if err != nil {
		t.Fatal(err)
	}
	if reopened.Status != chat.StatusQueued {
		t.Fatalf("status = %s", reopened.Status)
	}
}

func TestToggleAI(t *testing.T) {
	repo := newMemTicketRepo()
	svc := NewTicketService(repo, true)
	ticket := seedTicket(t, repo, chat.Ticket{ClientID: "client-1", Status: chat.StatusActive})

	until := time.Now().Add(2 * time.Hour)
	updated, err := svc.ToggleAI(context.Background(), ticket.ID, chat.AIDisabled, &until)
	if err != nil {
		t.Fatal(err)
	}
	if updated.AIMode != chat.AIDisabled || !updated.AIDisabledUntil.Valid {
		t.Fatalf("after disable: %+v", updated)
	}

	active, err := svc.AIActive(context.Background(), ticket.ID)
	if err != nil {
		t.Fatal(err)
	}
	if active {
		t.Fatal("AI active while disabled")
	}

	// Switching back to inherit clears the expiry.
	updated, err = svc.ToggleAI(context.Background(), ticket.ID, chat.AIInherit, nil)
	if err != nil {
		t.Fatal(err)
	}
	if updated.AIDisabledUntil.Valid {
		t.Fatal("inherit kept stale disabled_until")
	}
	if active, _ = svc.AIActive(context.Background(), ticket.ID); !active {
		t.Fatal("inherit should follow the global default (on)")
	}

	if _, err := svc.ToggleAI(context.Background(), ticket.ID, chat.AIMode("off"), nil); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("bad mode accepted: %v", err)
	}
}

func TestListByStatusValidatesStatus(t *testing.T) {
	repo := newMemTicketRepo()
	svc := NewTicketService(repo, true)
	seedTicket(t, repo, chat.Ticket{ClientID: "c1", Status: chat.StatusQueued, Origin: chat.OriginSupport})
	seedTicket(t, repo, chat.Ticket{ClientID: "c2", Status: chat.StatusQueued, Origin: chat.OriginStarter})
	seedTicket(t, repo, chat.Ticket{ClientID: "c3", Status: chat.StatusActive, Origin: chat.OriginSupport})

	queued, total, err := svc.ListByStatus(context.Background(), chat.StatusQueued, "", 1, 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(queued) != 2 || total != 2 {
		t.Fatalf("queued = %d (total %d), want 2", len(queued), total)
	}

	starter, _, err := svc.ListByStatus(context.Background(), chat.StatusQueued, chat.OriginStarter, 1, 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(starter) != 1 || starter[0].ClientID != "c2" {
		t.Fatalf("starter partition = %+v", starter)
	}

	if _, _, err := svc.ListByStatus(context.Background(), chat.TicketStatus("OPEN"), "", 1, 20); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("invalid status accepted: %v", err)
	}
}

type mapPresence map[string]bool

func (m mapPresence) IsOnline(ctx context.Context, identityID string) (bool, error) {
	return m[identityID], nil
}

func TestRoundRobinPickerPrefersOnlineAgents(t *testing.T) {
	presence := mapPresence{"a2": true}
	picker := NewRoundRobinPicker([]string{"a1", "a2", "a3"}, presence, nil)

	agent, ok := picker.PickAgent(context.Background())
	if !ok || agent != "a2" {
		t.Fatalf("picked %q, want a2", agent)
	}
}

func TestRoundRobinPickerRotatesWithoutPresence(t *testing.T) {
	picker := NewRoundRobinPicker([]string{"a1", "a2"}, nil, nil)

	var got []string
	for i := 0; i < 4; i++ {
		agent, ok := picker.PickAgent(context.Background())
		if !ok {
			t.Fatal("picker returned no agent")
		}
		got = append(got, agent)
	}
	want := []string{"a1", "a2", "a1", "a2"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rotation = %v, want %v", got, want)
		}
	}
}

func TestRoundRobinPickerEmpty(t *testing.T) {
	picker := NewRoundRobinPicker(nil, nil, nil)
	if _, ok := picker.PickAgent(context.Background()); ok {
		t.Fatal("empty picker returned an agent")
	}
}
