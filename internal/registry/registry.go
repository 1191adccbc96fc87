package registry

import (
	"context"
	"strings"
	"sync"
	"time"

	"atendezap/internal/bridge"
	"atendezap/internal/domain/connection"
	"atendezap/internal/events"
	"atendezap/internal/repository"
	apperrors "atendezap/pkg/errors"
	"atendezap/pkg/logger"
	"atendezap/pkg/retry"
)

// entry wraps a session with its own lock so bridge calls for one session
// are serialized (no racing token regeneration) while other sessions
// proceed.
type entry struct {
	mu   sync.Mutex
	conn connection.Connection
}

// Registry owns the in-memory session map, the single source of truth for
// bridge tokens. All bridge calls go through it; no other component talks to
// the bridge directly.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*entry

	bridge     bridge.Bridge
	repo       repository.ConnectionRepository
	publisher  events.Publisher
	tokenRetry *retry.Policy
	log        *logger.Logger
}

func New(b bridge.Bridge, repo repository.ConnectionRepository, publisher events.Publisher, log *logger.Logger) *Registry {
	return &Registry{
		sessions:   make(map[string]*entry),
		bridge:     b,
		repo:       repo,
		publisher:  publisher,
		tokenRetry: retry.TokenPolicy(),
		log:        log,
	}
}

// SessionEventPayload is pushed to the owning admin on every registry
// transition.
type SessionEventPayload struct {
	SessionName string            `json:"session_name"`
	Status      connection.Status `json:"status"`
	QRCode      string            `json:"qr_code,omitempty"`
	Error       string            `json:"error,omitempty"`
}

// StartSession ensures a token exists (generated with bounded backoff when
// absent) and requests a session start with waitQrCode. Returns the current
// status and, while pairing, the QR artifact.
func (r *Registry) StartSession(ctx context.Context, sessionName, ownerID string) (connection.Connection, error) {
	e := r.getOrCreate(sessionName, ownerID)
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.conn.Token == "" {
		var token string
		err := r.tokenRetry.Execute(ctx, func(ctx context.Context) error {
			var genErr error
			token, genErr = r.bridge.GenerateToken(ctx, sessionName)
			return genErr
		})
		if err != nil {
			return r.fail(ctx, e, err)
		}
		e.conn.Token = token
	}

	state, err := r.bridge.StartSession(ctx, sessionName, e.conn.Token)
	if err != nil {
		return r.fail(ctx, e, err)
	}

	e.conn.Status = mapStatus(state.Status)
	e.conn.QRCode = state.QRCode
	e.conn.LastError = ""
	r.persist(ctx, e)

	eventType := events.EventConnectionUpdate
	if e.conn.QRCode != "" {
		eventType = events.EventQRCodeUpdated
	}
	r.notify(ctx, e, eventType)
	return e.conn, nil
}

// RefreshQR re-polls the bridge for a fresh QR without restarting the
// session. The previous artifact is overwritten wholesale: the registry
// entry always reflects only the latest QR.
func (r *Registry) RefreshQR(ctx context.Context, sessionName string) (connection.Connection, error) {
	e, err := r.get(sessionName)
	if err != nil {
		return connection.Connection{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	state, err := r.bridge.QRCode(ctx, sessionName, e.conn.Token)
	if err != nil {
		return r.fail(ctx, e, err)
	}

	e.conn.QRCode = state.QRCode
	if e.conn.QRCode != "" {
		e.conn.Status = connection.StatusConnecting
	}
	r.persist(ctx, e)
	r.notify(ctx, e, events.EventQRCodeUpdated)
	return e.conn, nil
}

// CheckConnection polls the bridge; a positive answer transitions the entry
// to connected and drops the now-useless QR.
func (r *Registry) CheckConnection(ctx context.Context, sessionName string) (bool, error) {
	e, err := r.get(sessionName)
	if err != nil {
		return false, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	connected, err := r.bridge.CheckConnection(ctx, sessionName, e.conn.Token)
	if err != nil {
		_, _ = r.fail(ctx, e, err)
		return false, err
	}

	if connected && e.conn.Status != connection.StatusConnected {
		e.conn.Status = connection.StatusConnected
		e.conn.QRCode = ""
		e.conn.LastError = ""
		r.persist(ctx, e)
		r.notify(ctx, e, events.EventConnectionUpdate)
	}
	if !connected && e.conn.Status == connection.StatusConnected {
		e.conn.Status = connection.StatusDisconnected
		r.persist(ctx, e)
		r.notify(ctx, e, events.EventConnectionUpdate)
	}
	return connected, nil
}

// CloseSession closes the bridge session best-effort and removes the local
// entry regardless, so an unreachable bridge never leaks a stale open
// session. Calling it for an unknown session is a no-op.
func (r *Registry) CloseSession(ctx context.Context, sessionName string) error {
	r.mu.Lock()
	e, ok := r.sessions[sessionName]
	delete(r.sessions, sessionName)
	r.mu.Unlock()

	if !ok {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := r.bridge.CloseSession(ctx, sessionName, e.conn.Token); err != nil && r.log != nil {
		r.log.Warnf("close-session %s: bridge unreachable: %s", sessionName, err)
	}
	if r.repo != nil {
		if err := r.repo.Delete(ctx, sessionName); err != nil && r.log != nil {
			r.log.Warnf("close-session %s: delete snapshot: %s", sessionName, err)
		}
	}

	e.conn.Status = connection.StatusDisconnected
	e.conn.QRCode = ""
	r.notify(ctx, e, events.EventConnectionUpdate)
	return nil
}

// SendMessage relays an outbound message through the session's bridge
// credentials.
func (r *Registry) SendMessage(ctx context.Context, sessionName, phone, body string) error {
	e, err := r.get(sessionName)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return r.bridge.SendMessage(ctx, sessionName, e.conn.Token, phone, body)
}

// Get returns a snapshot of the session entry.
func (r *Registry) Get(sessionName string) (connection.Connection, error) {
	e, err := r.get(sessionName)
	if err != nil {
		return connection.Connection{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conn, nil
}

// Restore loads persisted session snapshots into the in-memory map, used at
// startup so admin state survives restarts.
func (r *Registry) Restore(ctx context.Context) error {
	if r.repo == nil {
		return nil
	}
	conns, err := r.repo.List(ctx)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range conns {
		c := c
		c.Status = connection.StatusDisconnected // liveness unknown until checked
		c.QRCode = ""
		r.sessions[c.SessionName] = &entry{conn: c}
	}
	return nil
}

func (r *Registry) getOrCreate(sessionName, ownerID string) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[sessionName]; ok {
		return e
	}
	e := &entry{conn: connection.Connection{
		SessionName: sessionName,
		OwnerID:     ownerID,
		Status:      connection.StatusInitializing,
		CreatedAt:   time.Now(),
	}}
	r.sessions[sessionName] = e
	return e
}

func (r *Registry) get(sessionName string) (*entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sessionName]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	return e, nil
}

// fail records a bridge failure without dropping the entry; the session
// stays addressable for retry.
func (r *Registry) fail(ctx context.Context, e *entry, err error) (connection.Connection, error) {
	e.conn.Status = connection.StatusError
	e.conn.LastError = err.Error()
	r.persist(ctx, e)
	r.notify(ctx, e, events.EventConnectionUpdate)
	return e.conn, err
}

func (r *Registry) persist(ctx context.Context, e *entry) {
	e.conn.UpdatedAt = time.Now()
	if r.repo == nil {
		return
	}
	snapshot := e.conn
	if err := r.repo.Upsert(ctx, &snapshot); err != nil && r.log != nil {
		r.log.Warnf("persist session %s: %s", e.conn.SessionName, err)
	}
}

func (r *Registry) notify(ctx context.Context, e *entry, eventType events.EventType) {
	if r.publisher == nil || e.conn.OwnerID == "" {
		return
	}
	event, err := events.New(eventType, []string{e.conn.OwnerID}, SessionEventPayload{
		SessionName: e.conn.SessionName,
		Status:      e.conn.Status,
		QRCode:      e.conn.QRCode,
		Error:       e.conn.LastError,
	})
	if err != nil {
		return
	}
	if err := r.publisher.Publish(ctx, event); err != nil && r.log != nil {
		r.log.Warnf("notify session %s: %s", e.conn.SessionName, err)
	}
}

func mapStatus(bridgeStatus string) connection.Status {
	switch strings.ToUpper(bridgeStatus) {
	case "CONNECTED", "ISLOGGED", "INCHAT":
		return connection.StatusConnected
	case "QRCODE", "NOTLOGGED":
		return connection.StatusConnecting
	case "CLOSED", "DISCONNECTED":
		return connection.StatusDisconnected
	case "", "INITIALIZING", "STARTING":
		return connection.StatusInitializing
	default:
		return connection.StatusConnecting
	}
}
