package services

import (
	"context"
	"time"

	"atendezap/internal/domain/chat"
	"atendezap/internal/repository"
	apperrors "atendezap/pkg/errors"

	"github.com/google/uuid"
)

// TicketService owns the ticket lifecycle outside the message write path.
type TicketService struct {
	ticketRepo repository.TicketRepository
	aiDefault  bool
	clock      func() time.Time
}

func NewTicketService(ticketRepo repository.TicketRepository, aiDefault bool) *TicketService {
	return &TicketService{
		ticketRepo: ticketRepo,
		aiDefault:  aiDefault,
		clock:      time.Now,
	}
}

// Get returns the ticket by id.
func (s *TicketService) Get(ctx context.Context, ticketID uuid.UUID) (chat.Ticket, error) {
	return s.ticketRepo.GetByID(ctx, ticketID)
}

// Assign moves a queued ticket to an agent. Idempotent when the same agent
// re-assigns; a concurrent assign by another agent is last-write-wins (no
// optimistic locking, matching the product's current behavior).
func (s *TicketService) Assign(ctx context.Context, ticketID uuid.UUID, agentID string) (chat.Ticket, error) {
	if agentID == "" {
		return chat.Ticket{}, apperrors.ErrInvalidInput
	}
	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		return chat.Ticket{}, err
	}

	if ticket.AgentID.Valid && ticket.AgentID.String == agentID && ticket.Status == chat.StatusActive {
		return ticket, nil
	}

	if err := ticket.Transition(chat.StatusActive); err != nil {
		return chat.Ticket{}, err
	}
	ticket.AgentID = chat.NewNullString(agentID)
	ticket.UpdatedAt = s.clock()

	if err := s.ticketRepo.Update(ctx, ticket); err != nil {
		return chat.Ticket{}, err
	}
	return ticket, nil
}

// SetStatus applies a bare status transition (hold / finish without a
// bundled message).
func (s *TicketService) SetStatus(ctx context.Context, ticketID uuid.UUID, status chat.TicketStatus) (chat.Ticket, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		return chat.Ticket{}, err
	}
	if err := ticket.Transition(status); err != nil {
		return chat.Ticket{}, err
	}
	ticket.UpdatedAt = s.clock()
	if err := s.ticketRepo.Update(ctx, ticket); err != nil {
		return chat.Ticket{}, err
	}
	return ticket, nil
}

// ToggleAI sets the ticket-level AI override; Inherit clears it back to the
// global default. disabledUntil optionally expires a Disabled override.
func (s *TicketService) ToggleAI(ctx context.Context, ticketID uuid.UUID, mode chat.AIMode, disabledUntil *time.Time) (chat.Ticket, error) {
	switch mode {
	case chat.AIInherit, chat.AIEnabled, chat.AIDisabled:
	default:
		return chat.Ticket{}, apperrors.ErrInvalidInput
	}

	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		return chat.Ticket{}, err
	}

	ticket.AIMode = mode
	ticket.AIDisabledUntil = chat.NullTime{}
	if mode == chat.AIDisabled && disabledUntil != nil {
		ticket.AIDisabledUntil = chat.NewNullTime(*disabledUntil)
	}
	ticket.UpdatedAt = s.clock()

	if err := s.ticketRepo.Update(ctx, ticket); err != nil {
		return chat.Ticket{}, err
	}
	return ticket, nil
}

// AIActive resolves whether the AI should answer on this ticket right now.
func (s *TicketService) AIActive(ctx context.Context, ticketID uuid.UUID) (bool, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		return false, err
	}
	return ticket.AIActive(s.aiDefault, s.clock()), nil
}

// ListByStatus returns one UI partition: tickets in a lifecycle state,
// optionally narrowed to an origin channel.
func (s *TicketService) ListByStatus(ctx context.Context, status chat.TicketStatus, origin chat.OriginChannel, page, limit int) ([]chat.Ticket, int64, error) {
	switch status {
	case chat.StatusQueued, chat.StatusActive, chat.StatusFinished:
	default:
		return nil, 0, apperrors.ErrInvalidInput
	}
	return s.ticketRepo.ListByStatus(ctx, status, origin, page, limit)
}
