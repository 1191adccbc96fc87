package chat

import (
	"time"

	apperrors "atendezap/pkg/errors"

	"github.com/google/uuid"
)

// ParticipantType identifies which side of a ticket produced a message.
type ParticipantType string

const (
	ParticipantClient ParticipantType = "client"
	ParticipantAgent  ParticipantType = "agent"
	ParticipantAI     ParticipantType = "ai"
	ParticipantSystem ParticipantType = "system"
)

// MessageKind discriminates the message payload.
type MessageKind string

const (
	KindText                MessageKind = "text"
	KindImage               MessageKind = "image"
	KindVideo               MessageKind = "video"
	KindAudio               MessageKind = "audio"
	KindPix                 MessageKind = "pix"
	KindDepartmentSelection MessageKind = "department_selection"
)

// Message represents the messages table. Seq is assigned at the single write
// point from the owning ticket's counter; (created_at, seq) is the ordering
// key within a ticket.
type Message struct {
	ID              uuid.UUID       `json:"id"`
	TicketID        uuid.UUID       `json:"ticket_id"`
	Seq             int64           `json:"seq"`
	FromType        ParticipantType `json:"from_type"`
	FromID          string          `json:"from_id"`
	ToType          ParticipantType `json:"to_type"`
	ToID            string          `json:"to_id"`
	Kind            MessageKind     `json:"kind"`
	Body            NullString      `json:"body"`
	FileURL         NullString      `json:"file_url"`
	MediaExpired    bool            `json:"media_expired"`
	IsRead          bool            `json:"is_read"`
	ClientMessageID NullString      `json:"client_message_id"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}

// ValidatePayload checks that the active payload fields match the kind tag.
// Text-like kinds carry a body; media kinds carry a file URL.
func (m Message) ValidatePayload() error {
	switch m.Kind {
	case KindText, KindPix, KindDepartmentSelection:
		if !m.Body.Valid || m.Body.String == "" {
			return apperrors.ErrInvalidPayload
		}
	case KindImage, KindVideo, KindAudio:
		if !m.FileURL.Valid || m.FileURL.String == "" {
			return apperrors.ErrInvalidPayload
		}
	default:
		return apperrors.ErrInvalidPayload
	}
	return nil
}

// IsMedia reports whether the message carries an externally stored payload
// subject to the retention window.
func (m Message) IsMedia() bool {
	switch m.Kind {
	case KindImage, KindVideo, KindAudio:
		return true
	}
	return false
}
