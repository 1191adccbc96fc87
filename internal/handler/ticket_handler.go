package handler

import (
	"net/http"
	"time"

	"atendezap/internal/domain/chat"
	"atendezap/internal/services"
	"atendezap/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type TicketHandler struct {
	tickets  *services.TicketService
	messages *services.MessageService
}

func NewTicketHandler(tickets *services.TicketService, messages *services.MessageService) *TicketHandler {
	return &TicketHandler{tickets: tickets, messages: messages}
}

func (h *TicketHandler) ListByStatus(c *gin.Context) {
	status := chat.TicketStatus(c.Query("status"))
	origin := chat.OriginChannel(c.Query("origin"))

	page, err := parseInt(c.DefaultQuery("page", "1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid page", "INVALID_REQUEST"))
		return
	}
	limit, err := parseInt(c.DefaultQuery("limit", "20"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid limit", "INVALID_REQUEST"))
		return
	}

	tickets, total, err := h.tickets.ListByStatus(c.Request.Context(), status, origin, page, limit)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"tickets": tickets, "total": total}))
}

func (h *TicketHandler) Get(c *gin.Context) {
	ticketID, err := parseUUID(c.Param("ticketId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid ticket id", "INVALID_REQUEST"))
		return
	}

	ticket, err := h.tickets.Get(c.Request.Context(), ticketID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(ticket))
}

func (h *TicketHandler) Assign(c *gin.Context) {
	ticketID, err := parseUUID(c.Param("ticketId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid ticket id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.AssignTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	ticket, err := h.tickets.Assign(c.Request.Context(), ticketID, req.AgentID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(ticket))
}

// SetStatus changes the ticket state, optionally carrying a message that is
// appended in the same transaction (a closing note, a transfer notice).
func (h *TicketHandler) SetStatus(c *gin.Context) {
	ticketID, err := parseUUID(c.Param("ticketId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid ticket id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	status := chat.TicketStatus(req.Status)

	if req.Message != nil {
		in, convErr := appendInputFromRequest(*req.Message)
		if convErr != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid ticket_id", "INVALID_REQUEST"))
			return
		}
		in.TicketID = &ticketID
		msg, appendErr := h.messages.AppendWithStatus(c.Request.Context(), in, status)
		if appendErr != nil {
			fail(c, appendErr)
			return
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(msg))
		return
	}

	ticket, err := h.tickets.SetStatus(c.Request.Context(), ticketID, status)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(ticket))
}

func (h *TicketHandler) ToggleAI(c *gin.Context) {
	ticketID, err := parseUUID(c.Param("ticketId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid ticket id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.ToggleAIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	var disabledUntil *time.Time
	if req.DisabledUntil != "" {
		parsed, parseErr := time.Parse(time.RFC3339, req.DisabledUntil)
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid disabled_until", "INVALID_REQUEST"))
			return
		}
		disabledUntil = &parsed
	}

	ticket, err := h.tickets.ToggleAI(c.Request.Context(), ticketID, chat.AIMode(req.Mode), disabledUntil)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(ticket))
}
