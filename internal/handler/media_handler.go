package handler

import (
	"io"
	"net/http"

	"atendezap/internal/media"
	"atendezap/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// 16MB, matching what WhatsApp accepts for media
const maxUploadBytes = 16 << 20

type MediaHandler struct {
	store *media.Store
}

func NewMediaHandler(store *media.Store) *MediaHandler {
	return &MediaHandler{store: store}
}

// Upload stores the raw request body and returns a public URL suitable for
// a media message's file_url.
func (h *MediaHandler) Upload(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid body", "INVALID_REQUEST"))
		return
	}
	if len(payload) == 0 || len(payload) > maxUploadBytes {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("payload empty or too large", "INVALID_REQUEST"))
		return
	}

	url, err := h.store.Put(c.Request.Context(), c.ContentType(), payload)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"file_url": url}))
}
