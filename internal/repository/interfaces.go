package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"atendezap/internal/domain/chat"
	"atendezap/internal/domain/connection"
)

type MessageRepository interface {
	Create(ctx context.Context, m *chat.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (chat.Message, error)
	ListByTicket(ctx context.Context, ticketID uuid.UUID, sinceSeq int64, limit int) ([]chat.Message, error)

	// MarkRead flips is_read on every message in the ticket sent by the
	// given side. Used when the opposite side opens the conversation.
	MarkRead(ctx context.Context, ticketID uuid.UUID, senderType chat.ParticipantType) error

	// MarkMediaExpired flags media messages older than the cutoff whose
	// payload has left the retention window. The record itself persists.
	MarkMediaExpired(ctx context.Context, olderThan time.Time) (int64, error)
}

type TicketRepository interface {
	Create(ctx context.Context, t *chat.Ticket) error
	GetByID(ctx context.Context, id uuid.UUID) (chat.Ticket, error)
	GetByClient(ctx context.Context, clientID string) (chat.Ticket, error)
	Update(ctx context.Context, t chat.Ticket) error
	ListByStatus(ctx context.Context, status chat.TicketStatus, origin chat.OriginChannel, page, limit int) ([]chat.Ticket, int64, error)
}

type ConnectionRepository interface {
	Upsert(ctx context.Context, c *connection.Connection) error
	GetBySessionName(ctx context.Context, sessionName string) (connection.Connection, error)
	Delete(ctx context.Context, sessionName string) error
	List(ctx context.Context) ([]connection.Connection, error)
}
