package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType discriminates realtime frames pushed to the UI layer.
type EventType string

const (
	EventNewMessage         EventType = "new_message"
	EventCredentialsUpdated EventType = "credentials_updated"
	EventQRCodeUpdated      EventType = "qrcode_updated"
	EventConnectionUpdate   EventType = "connection_update"
	EventPing               EventType = "ping"
)

// Event is the fan-out envelope. TargetIdentityIDs is computed by the caller
// from the ticket's participants (or the session's owning admin); the hub
// never derives targets itself.
type Event struct {
	ID                uuid.UUID       `json:"id"`
	Type              EventType       `json:"type"`
	TargetIdentityIDs []string        `json:"target_identity_ids"`
	OccurredAt        time.Time       `json:"occurred_at"`
	Payload           json.RawMessage `json:"payload"`
}

// New builds an event with a fresh id, marshalling payload into the envelope.
func New(eventType EventType, targets []string, payload interface{}) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:                uuid.New(),
		Type:              eventType,
		TargetIdentityIDs: targets,
		OccurredAt:        time.Now().UTC(),
		Payload:           data,
	}, nil
}

// Publisher pushes one event towards every interested live connection.
// Delivery is best-effort per transport.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(ctx context.Context, event Event) error

func (f PublisherFunc) Publish(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Fanout publishes to several publishers in order, returning the first error
// after attempting all of them.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event Event) error {
	var firstErr error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
