package services

import (
	"context"
	"time"

	"atendezap/internal/domain/chat"
	"atendezap/internal/events"
	"atendezap/internal/repository"
	apperrors "atendezap/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AgentPicker selects the agent a freshly created ticket is bound to.
type AgentPicker interface {
	PickAgent(ctx context.Context) (string, bool)
}

// MessageService is the single write point for messages. Every successful
// append publishes exactly one new_message event before returning: the
// WebSocket push is the only near-realtime channel, so skipping it would
// leave the other side showing nothing until a poll.
type MessageService struct {
	db          *gorm.DB
	messageRepo repository.MessageRepository
	ticketRepo  repository.TicketRepository
	publisher   events.Publisher
	picker      AgentPicker
	clock       func() time.Time
}

func NewMessageService(db *gorm.DB, messageRepo repository.MessageRepository, ticketRepo repository.TicketRepository, publisher events.Publisher, picker AgentPicker) *MessageService {
	return &MessageService{
		db:          db,
		messageRepo: messageRepo,
		ticketRepo:  ticketRepo,
		publisher:   publisher,
		picker:      picker,
		clock:       time.Now,
	}
}

// AppendInput carries the caller-supplied message fields. TicketID is nil
// for a client's first message; the store then opens (or reopens) the ticket
// before appending.
type AppendInput struct {
	TicketID        *uuid.UUID
	FromType        chat.ParticipantType
	FromID          string
	ToType          chat.ParticipantType
	ToID            string
	Kind            chat.MessageKind
	Body            string
	FileURL         string
	Origin          chat.OriginChannel
	ClientMessageID string
}

// NewMessagePayload is the new_message event body: the persisted message
// plus a ticket snapshot so the UI can update its partitions in one hop.
type NewMessagePayload struct {
	Message chat.Message `json:"message"`
	Ticket  chat.Ticket  `json:"ticket"`
}

// AppendMessage persists the message and fans it out to the ticket's
// participants. Returns the stored message with server-assigned id, sequence
// and timestamp.
func (s *MessageService) AppendMessage(ctx context.Context, in AppendInput) (chat.Message, error) {
	return s.append(ctx, in, "")
}

// AppendWithStatus bundles the append with a status transition; both succeed
// or the whole operation fails (send-and-wait, send-and-finish).
func (s *MessageService) AppendWithStatus(ctx context.Context, in AppendInput, status chat.TicketStatus) (chat.Message, error) {
	if status == "" {
		return chat.Message{}, apperrors.ErrInvalidInput
	}
	return s.append(ctx, in, status)
}

func (s *MessageService) append(ctx context.Context, in AppendInput, status chat.TicketStatus) (chat.Message, error) {
	msg := chat.Message{
		FromType:        in.FromType,
		FromID:          in.FromID,
		ToType:          in.ToType,
		ToID:            in.ToID,
		Kind:            in.Kind,
		Body:            nullString(in.Body),
		FileURL:         nullString(in.FileURL),
		ClientMessageID: nullString(in.ClientMessageID),
	}
	if err := msg.ValidatePayload(); err != nil {
		return chat.Message{}, err
	}

	var stored chat.Message
	var ticket chat.Ticket
	run := func(msgRepo repository.MessageRepository, ticketRepo repository.TicketRepository) error {
		var err error
		ticket, err = s.resolveTicket(ctx, ticketRepo, in)
		if err != nil {
			return err
		}

		if status != "" {
			if err := ticket.Transition(status); err != nil {
				return err
			}
		}

		ticket.LastSeq++
		msg.ID = uuid.New()
		msg.TicketID = ticket.ID
		msg.Seq = ticket.LastSeq
		msg.CreatedAt = s.clock()

		if in.FromType == chat.ParticipantClient {
			ticket.UnreadCount++
		}
		ticket.UpdatedAt = msg.CreatedAt

		if err := msgRepo.Create(ctx, &msg); err != nil {
			return err
		}
		if err := ticketRepo.Update(ctx, ticket); err != nil {
			return err
		}
		stored = msg
		return nil
	}

	var err error
	if s.db == nil {
		err = run(s.messageRepo, s.ticketRepo)
	} else {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return run(repository.NewMessageRepository(tx), repository.NewTicketRepository(tx))
		})
	}
	if err != nil {
		return chat.Message{}, err
	}

	// The push happens before the HTTP response; it is the core correctness
	// contract of the subsystem.
	event, err := events.New(events.EventNewMessage, ticket.Participants(), NewMessagePayload{
		Message: stored,
		Ticket:  ticket,
	})
	if err != nil {
		return chat.Message{}, err
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		return chat.Message{}, err
	}
	return stored, nil
}

// resolveTicket finds or creates the ticket the message belongs to. A client
// message addressed to a closed ticket reopens it on the same id.
func (s *MessageService) resolveTicket(ctx context.Context, ticketRepo repository.TicketRepository, in AppendInput) (chat.Ticket, error) {
	if in.TicketID != nil {
		ticket, err := ticketRepo.GetByID(ctx, *in.TicketID)
		if err != nil {
			return chat.Ticket{}, err
		}
		return s.maybeReopen(ticket, in), nil
	}

	if in.FromType != chat.ParticipantClient {
		// Only the client side may open a ticket implicitly.
		return chat.Ticket{}, apperrors.ErrTicketNotFound
	}

	ticket, err := ticketRepo.GetByClient(ctx, in.FromID)
	if err == nil {
		return s.maybeReopen(ticket, in), nil
	}
	if err != apperrors.ErrTicketNotFound {
		return chat.Ticket{}, err
	}

	origin := in.Origin
	if origin == "" {
		origin = chat.OriginSupport
	}
	now := s.clock()
	ticket = chat.Ticket{
		ID:        uuid.New(),
		ClientID:  in.FromID,
		Status:    chat.StatusQueued,
		Origin:    origin,
		AIMode:    chat.AIInherit,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if s.picker != nil {
		if agentID, ok := s.picker.PickAgent(ctx); ok {
			ticket.AgentID = nullString(agentID)
		}
	}
	if err := ticketRepo.Create(ctx, &ticket); err != nil {
		return chat.Ticket{}, err
	}
	return ticket, nil
}

func (s *MessageService) maybeReopen(ticket chat.Ticket, in AppendInput) chat.Ticket {
	if ticket.Status == chat.StatusFinished && in.FromType == chat.ParticipantClient {
		ticket.Status = chat.StatusQueued
	}
	return ticket
}

// ListMessages returns the ticket history in creation order. sinceSeq
// supports incremental catch-up after a reconnect; zero loads everything.
func (s *MessageService) ListMessages(ctx context.Context, ticketID uuid.UUID, sinceSeq int64, limit int) ([]chat.Message, error) {
	if _, err := s.ticketRepo.GetByID(ctx, ticketID); err != nil {
		return nil, err
	}
	return s.messageRepo.ListByTicket(ctx, ticketID, sinceSeq, limit)
}

// MarkRead zeroes the unread counter and flips is_read on the opposite
// side's messages.
func (s *MessageService) MarkRead(ctx context.Context, ticketID uuid.UUID, viewerType chat.ParticipantType) error {
	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		return err
	}

	senderType := chat.ParticipantClient
	if viewerType == chat.ParticipantClient {
		senderType = chat.ParticipantAgent
	}
	if err := s.messageRepo.MarkRead(ctx, ticketID, senderType); err != nil {
		return err
	}

	if viewerType != chat.ParticipantClient {
		ticket.UnreadCount = 0
		ticket.UpdatedAt = s.clock()
		return s.ticketRepo.Update(ctx, ticket)
	}
	return nil
}

func nullString(value string) chat.NullString {
	return chat.NewNullString(value)
}
