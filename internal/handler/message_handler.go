package handler

import (
	"net/http"

	"atendezap/internal/domain/chat"
	"atendezap/internal/services"
	"atendezap/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MessageHandler struct {
	service *services.MessageService
}

func NewMessageHandler(service *services.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

func (h *MessageHandler) Send(c *gin.Context) {
	var req httpdto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	in, err := appendInputFromRequest(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid ticket_id", "INVALID_REQUEST"))
		return
	}

	msg, err := h.service.AppendMessage(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(msg))
}

func (h *MessageHandler) List(c *gin.Context) {
	ticketID, err := parseUUID(c.Param("ticketId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid ticket id", "INVALID_REQUEST"))
		return
	}

	sinceSeq, err := parseInt64(c.Query("since_seq"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid since_seq", "INVALID_REQUEST"))
		return
	}

	limit, err := parseInt(c.Query("limit"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid limit", "INVALID_REQUEST"))
		return
	}

	items, err := h.service.ListMessages(c.Request.Context(), ticketID, sinceSeq, limit)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"messages": items}))
}

func (h *MessageHandler) MarkRead(c *gin.Context) {
	ticketID, err := parseUUID(c.Param("ticketId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid ticket id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), ticketID, chat.ParticipantType(req.ViewerType)); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

func appendInputFromRequest(req httpdto.SendMessageRequest) (services.AppendInput, error) {
	in := services.AppendInput{
		FromType:        chat.ParticipantType(req.FromType),
		FromID:          req.FromID,
		ToType:          chat.ParticipantType(req.ToType),
		ToID:            req.ToID,
		Kind:            chat.MessageKind(req.Kind),
		Body:            req.Body,
		FileURL:         req.FileURL,
		Origin:          chat.OriginChannel(req.Origin),
		ClientMessageID: req.ClientMessageID,
	}
	if req.TicketID != "" {
		id, err := uuid.Parse(req.TicketID)
		if err != nil {
			return services.AppendInput{}, err
		}
		in.TicketID = &id
	}
	return in, nil
}
