package handler

import (
	"errors"
	"net/http"
	"strconv"

	apperrors "atendezap/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"atendezap/internal/transport/httpdto"
)

// fail maps sentinel errors onto HTTP statuses and the shared response
// envelope.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidPayload):
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse(err.Error(), "INVALID_PAYLOAD"))
	case errors.Is(err, apperrors.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse(err.Error(), "INVALID_REQUEST"))
	case errors.Is(err, apperrors.ErrInvalidTransition):
		c.JSON(http.StatusConflict, httpdto.NewErrorResponse(err.Error(), "INVALID_TRANSITION"))
	case errors.Is(err, apperrors.ErrTicketNotFound):
		c.JSON(http.StatusNotFound, httpdto.NewErrorResponse(err.Error(), "TICKET_NOT_FOUND"))
	case errors.Is(err, apperrors.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, httpdto.NewErrorResponse(err.Error(), "SESSION_NOT_FOUND"))
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, httpdto.NewErrorResponse(err.Error(), "NOT_FOUND"))
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse(err.Error(), "UNAUTHORIZED"))
	case errors.Is(err, apperrors.ErrBridgeUnavailable):
		c.JSON(http.StatusBadGateway, httpdto.NewErrorResponse(err.Error(), "BRIDGE_UNAVAILABLE"))
	default:
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse(err.Error(), "REQUEST_FAILED"))
	}
}

func parseUUID(value string) (uuid.UUID, error) {
	return uuid.Parse(value)
}

func parseInt64(value string) (int64, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.ParseInt(value, 10, 64)
}

func parseInt(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}
