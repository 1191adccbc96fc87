package hub

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var errTransportClosed = errors.New("transport closed")

const (
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
	sendBuffer   = 256
)

// Client represents one live transport for an identity. An identity may hold
// several concurrent clients (browser tabs); each receives every event.
// Once closed a client is never reused.
type Client struct {
	ID           string // Unique transport id
	IdentityID   string // Client or agent id this transport belongs to
	SessionToken string // Ephemeral token generated by the UI, survives reload
	Conn         *websocket.Conn
	Send         chan []byte

	mu     sync.Mutex
	closed bool
}

func NewClient(conn *websocket.Conn, identityID, sessionToken string) *Client {
	return &Client{
		ID:           uuid.New().String(),
		IdentityID:   identityID,
		SessionToken: sessionToken,
		Conn:         conn,
		Send:         make(chan []byte, sendBuffer),
	}
}

// Enqueue queues a frame for delivery. It fails instead of blocking: a full
// buffer or a closed transport reports an error so the hub can evict the
// client on the spot.
func (c *Client) Enqueue(frame []byte) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errTransportClosed
	}
	c.mu.Unlock()

	select {
	case c.Send <- frame:
		return nil
	default:
		return errTransportClosed
	}
}

// WriteLoop drains the Send channel onto the socket and keeps the transport
// alive with periodic pings. Any write error closes the transport; the read
// side then unregisters the client.
func (c *Client) WriteLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.Close()
			return
		case frame, ok := <-c.Send:
			if !ok {
				c.Close()
				return
			}
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.Conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.Close()
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				c.Close()
				return
			}
		}
	}
}

// Close shuts the underlying socket. Safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.Conn != nil {
		_ = c.Conn.Close()
	}
}

// Closed reports whether the transport has been shut down.
func (c *Client) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
