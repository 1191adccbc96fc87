package middleware

import (
	"net/http"
	"strings"

	"atendezap/internal/services"
	"atendezap/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

func AuthMiddleware(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
			return
		}

		identityID, err := auth.IdentityFromToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
			return
		}

		c.Request = c.Request.WithContext(services.WithIdentity(c.Request.Context(), identityID))
		c.Next()
	}
}
