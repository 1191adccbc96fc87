package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "atendezap/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Every sentinel the lower layers return has exactly one HTTP mapping.
func TestFailMapsSentinelsToStatuses(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err    error
		status int
		code   string
	}{
		{apperrors.ErrInvalidPayload, http.StatusBadRequest, "INVALID_PAYLOAD"},
		{apperrors.ErrInvalidInput, http.StatusBadRequest, "INVALID_REQUEST"},
		{apperrors.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION"},
		{apperrors.ErrTicketNotFound, http.StatusNotFound, "TICKET_NOT_FOUND"},
		{apperrors.ErrSessionNotFound, http.StatusNotFound, "SESSION_NOT_FOUND"},
		{apperrors.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{apperrors.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{apperrors.ErrBridgeUnavailable, http.StatusBadGateway, "BRIDGE_UNAVAILABLE"},
		{errors.New("something else"), http.StatusInternalServerError, "REQUEST_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			fail(c, tt.err)

			if w.Code != tt.status {
				t.Fatalf("%v mapped to %d, want %d", tt.err, w.Code, tt.status)
			}
			if !strings.Contains(w.Body.String(), tt.code) {
				t.Fatalf("response %q missing code %q", w.Body.String(), tt.code)
			}
		})
	}
}

func TestFailUnwrapsErrorChains(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	fail(c, fmt.Errorf("load ticket: %w", apperrors.ErrTicketNotFound))

	if w.Code != http.StatusNotFound {
		t.Fatalf("wrapped sentinel mapped to %d, want %d", w.Code, http.StatusNotFound)
	}
}
