package handler

import (
	"context"
	"net/http"
	"sync"

	"atendezap/internal/domain/connection"
	"atendezap/internal/registry"
	"atendezap/internal/services"
	"atendezap/internal/supervisor"
	"atendezap/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// SessionHandler drives WhatsApp session pairing. Starting a session that
// comes back in a pairing state spawns a QR watcher for it; the watcher dies
// on connect, on close, or on server shutdown.
type SessionHandler struct {
	registry *registry.Registry
	watcher  *supervisor.QRWatcher
	baseCtx  context.Context

	mu       sync.Mutex
	watching map[string]*watchHandle
}

type watchHandle struct {
	cancel context.CancelFunc
}

func NewSessionHandler(baseCtx context.Context, reg *registry.Registry, watcher *supervisor.QRWatcher) *SessionHandler {
	return &SessionHandler{
		registry: reg,
		watcher:  watcher,
		baseCtx:  baseCtx,
		watching: make(map[string]*watchHandle),
	}
}

func (h *SessionHandler) Start(c *gin.Context) {
	var req httpdto.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SessionName == "" {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	ownerID, _ := services.IdentityFromContext(c.Request.Context())
	conn, err := h.registry.StartSession(c.Request.Context(), req.SessionName, ownerID)
	if err != nil {
		fail(c, err)
		return
	}

	if conn.Status == connection.StatusConnecting || conn.Status == connection.StatusInitializing {
		h.watch(req.SessionName)
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(sessionState(conn)))
}

func (h *SessionHandler) RefreshQR(c *gin.Context) {
	conn, err := h.registry.RefreshQR(c.Request.Context(), c.Param("sessionName"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(sessionState(conn)))
}

func (h *SessionHandler) Check(c *gin.Context) {
	connected, err := h.registry.CheckConnection(c.Request.Context(), c.Param("sessionName"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"connected": connected}))
}

func (h *SessionHandler) Get(c *gin.Context) {
	conn, err := h.registry.Get(c.Param("sessionName"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(sessionState(conn)))
}

func (h *SessionHandler) Close(c *gin.Context) {
	name := c.Param("sessionName")
	h.unwatch(name)
	if err := h.registry.CloseSession(c.Request.Context(), name); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

// Send relays an outbound message through the session's WhatsApp bridge.
func (h *SessionHandler) Send(c *gin.Context) {
	var req httpdto.BridgeSendRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SessionName == "" || req.Phone == "" {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	if err := h.registry.SendMessage(c.Request.Context(), req.SessionName, req.Phone, req.Body); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

// watch replaces any previous watcher for the session so only the latest
// pairing attempt is being babysat.
func (h *SessionHandler) watch(sessionName string) {
	ctx, cancel := context.WithCancel(h.baseCtx)
	handle := &watchHandle{cancel: cancel}

	h.mu.Lock()
	if prev, ok := h.watching[sessionName]; ok {
		prev.cancel()
	}
	h.watching[sessionName] = handle
	h.mu.Unlock()

	go func() {
		h.watcher.Watch(ctx, sessionName)
		h.mu.Lock()
		if h.watching[sessionName] == handle {
			delete(h.watching, sessionName)
		}
		h.mu.Unlock()
		cancel()
	}()
}

func (h *SessionHandler) unwatch(sessionName string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if handle, ok := h.watching[sessionName]; ok {
		handle.cancel()
		delete(h.watching, sessionName)
	}
}

func sessionState(conn connection.Connection) httpdto.SessionStateResponse {
	return httpdto.SessionStateResponse{
		SessionName: conn.SessionName,
		Status:      string(conn.Status),
		QRCode:      conn.QRCode,
	}
}
