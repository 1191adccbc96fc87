package chat

import (
	"time"

	apperrors "atendezap/pkg/errors"

	"github.com/google/uuid"
)

// TicketStatus is the ticket lifecycle state. Exactly one holds at a time.
type TicketStatus string

const (
	StatusQueued   TicketStatus = "EM_ESPERA"
	StatusActive   TicketStatus = "ATENDENDO"
	StatusFinished TicketStatus = "FINALIZADAS"
)

// OriginChannel tags the intake surface that produced a ticket. It is set at
// creation, immutable, and used only for UI partitioning.
type OriginChannel string

const (
	OriginSupport OriginChannel = "wa_suporte"
	OriginStarter OriginChannel = "whatsapp_starter"
	OriginAI      OriginChannel = "ia"
)

// AIMode is the ticket-level AI override. Inherit defers to the global
// toggle; Enabled/Disabled pin it.
type AIMode string

const (
	AIInherit  AIMode = "inherit"
	AIEnabled  AIMode = "enabled"
	AIDisabled AIMode = "disabled"
)

// Ticket represents the tickets table. LastSeq feeds per-ticket message
// sequencing and is only mutated inside the append transaction.
type Ticket struct {
	ID              uuid.UUID     `json:"id"`
	ClientID        string        `json:"client_id"`
	AgentID         NullString    `json:"agent_id"`
	Status          TicketStatus  `json:"status"`
	Origin          OriginChannel `json:"origin"`
	AIMode          AIMode        `json:"ai_mode"`
	AIDisabledUntil NullTime      `json:"ai_disabled_until"`
	UnreadCount     int           `json:"unread_count"`
	LastSeq         int64         `json:"last_seq"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

func (Ticket) TableName() string {
	return "tickets"
}

// CanTransition reports whether moving from -> to is a legal lifecycle step.
// Same-state transitions are allowed so bundled status updates stay
// idempotent. FINALIZADAS -> EM_ESPERA is the reopen path driven by a new
// client message on the same ticket id.
func CanTransition(from, to TicketStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case StatusQueued:
		return to == StatusActive || to == StatusFinished
	case StatusActive:
		return to == StatusQueued || to == StatusFinished
	case StatusFinished:
		return to == StatusQueued
	}
	return false
}

// Transition applies a status change, rejecting illegal steps.
func (t *Ticket) Transition(to TicketStatus) error {
	if !CanTransition(t.Status, to) {
		return apperrors.ErrInvalidTransition
	}
	t.Status = to
	return nil
}

// AIActive resolves the tri-state override against the global default. An
// expired Disabled override falls back to the global default, matching the
// aiDisabledUntil semantics.
func (t Ticket) AIActive(globalDefault bool, now time.Time) bool {
	switch t.AIMode {
	case AIEnabled:
		return true
	case AIDisabled:
		if t.AIDisabledUntil.Valid && now.After(t.AIDisabledUntil.Time) {
			return globalDefault
		}
		return false
	}
	return globalDefault
}

// Participants returns the identity ids that should receive fan-out for this
// ticket: the client, and the assigned agent when present.
func (t Ticket) Participants() []string {
	ids := []string{t.ClientID}
	if t.AgentID.Valid && t.AgentID.String != "" {
		ids = append(ids, t.AgentID.String)
	}
	return ids
}
