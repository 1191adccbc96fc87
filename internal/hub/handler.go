package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"atendezap/internal/events"
	"atendezap/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const readTimeout = 60 * time.Second

// Authorizer resolves a bearer token into the identity id used as the
// subscription key. The auth layer itself lives outside this core.
type Authorizer interface {
	IdentityFromToken(token string) (string, error)
}

// Presence mirrors transport attach/detach into the shared presence store.
// Satisfied by the redis presence store; nil disables presence tracking.
type Presence interface {
	Connected(ctx context.Context, identityID, clientID string) error
	Disconnected(ctx context.Context, identityID, clientID string) error
	Heartbeat(ctx context.Context, identityID string) error
}

// Handler upgrades HTTP requests into hub subscriptions.
type Handler struct {
	auth     Authorizer
	hub      *Hub
	presence Presence
}

func NewHandler(auth Authorizer, hub *Hub, presence Presence) *Handler {
	return &Handler{auth: auth, hub: hub, presence: presence}
}

// inboundFrame is what the UI sends us; only liveness pings today.
type inboundFrame struct {
	Type string `json:"type"`
}

func (h *Handler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	identityID, err := h.auth.IdentityFromToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := NewClient(conn, identityID, c.Query("session_token"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.hub.Subscribe(client)
	go client.WriteLoop(ctx)

	if h.presence != nil {
		_ = h.presence.Connected(c.Request.Context(), identityID, client.ID)
	}

	// The UI sends a ping frame every 30s; any inbound frame refreshes the
	// read deadline. Absence of transport errors is otherwise trusted.
	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

		var in inboundFrame
		if json.Unmarshal(raw, &in) == nil && in.Type == "ping" {
			pong, _ := json.Marshal(frame{Type: events.EventPing})
			_ = client.Enqueue(pong)
			if h.presence != nil {
				_ = h.presence.Heartbeat(c.Request.Context(), identityID)
			}
		}
	}

	h.hub.Unsubscribe(client)
	if h.presence != nil {
		_ = h.presence.Disconnected(context.Background(), identityID, client.ID)
	}
}
