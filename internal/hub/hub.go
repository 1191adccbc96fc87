package hub

import (
	"context"
	"encoding/json"
	"sync"

	"atendezap/internal/events"
	"atendezap/pkg/logger"
)

// frame is the wire shape pushed to the UI layer: a type discriminator plus
// the event payload. The event id rides along for consumer-side dedup.
type frame struct {
	ID      string          `json:"id"`
	Type    events.EventType `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub maintains the live identity -> transports map and delivers events to
// the subset named by each event's target set. It is the only component that
// mutates the map; eviction of dead transports happens on write failure.
// Registration is synchronous: once Subscribe returns, the transport sees
// every subsequent publish.
type Hub struct {
	mu sync.RWMutex

	// identities maps identity id to the set of its live clients
	identities map[string]map[*Client]struct{}

	log *logger.Logger
}

func New(log *logger.Logger) *Hub {
	return &Hub{
		identities: make(map[string]map[*Client]struct{}),
		log:        log,
	}
}

// Subscribe registers a transport under an identity. A fresh transport for
// an identity that already has one is always accepted; the old transport
// errors out and self-evicts on the next publish attempt.
func (h *Hub) Subscribe(client *Client) {
	h.addClient(client)
}

// Unsubscribe removes a transport.
func (h *Hub) Unsubscribe(client *Client) {
	h.removeClient(client)
}

// Publish delivers the event to every live transport of every target
// identity, and to no one else. Transports that fail the enqueue are dropped
// from the map. Delivery is best-effort; Publish never fails.
func (h *Hub) Publish(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(frame{
		ID:      event.ID.String(),
		Type:    event.Type,
		Payload: event.Payload,
	})
	if err != nil {
		return err
	}

	var dead []*Client
	h.mu.RLock()
	for _, identityID := range event.TargetIdentityIDs {
		for client := range h.identities[identityID] {
			if err := client.Enqueue(payload); err != nil {
				dead = append(dead, client)
			}
		}
	}
	h.mu.RUnlock()

	for _, client := range dead {
		if h.log != nil {
			h.log.Warnf("evicting dead transport %s for identity %s", client.ID, client.IdentityID)
		}
		h.removeClient(client)
	}
	return nil
}

// ClientCount returns the number of live transports across all identities.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	count := 0
	for _, set := range h.identities {
		count += len(set)
	}
	return count
}

// IdentityOnline reports whether at least one transport is live for the id.
func (h *Hub) IdentityOnline(identityID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.identities[identityID]) > 0
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.identities[client.IdentityID]
	if !ok {
		set = make(map[*Client]struct{})
		h.identities[client.IdentityID] = set
	}
	set[client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	set, ok := h.identities[client.IdentityID]
	if ok {
		if _, present := set[client]; !present {
			ok = false
		}
		delete(set, client)
		if len(set) == 0 {
			delete(h.identities, client.IdentityID)
		}
	}
	h.mu.Unlock()

	if ok {
		client.Close()
	}
}
