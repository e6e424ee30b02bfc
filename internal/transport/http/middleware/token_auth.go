package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"docqa/internal/app"
	"docqa/internal/transport/http/response"
)

// The API authenticates with a single opaque value in the Token header.
const TokenHeader = "Token"

const (
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"
	ContextEmailKey    = "email"
)

// TokenAuth validates the Token header against the credential store and
// stashes the resolved identity in the request context.
func TokenAuth(auth *app.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader(TokenHeader))
		if token == "" {
			response.Error(c, 401, response.CodeUnauthorized, "missing token header")
			c.Abort()
			return
		}

		user, err := auth.Validate(token)
		if err != nil {
			if errors.Is(err, app.ErrUnauthorized) {
				response.Error(c, 401, response.CodeUnauthorized, "invalid or expired token")
			} else {
				response.Error(c, 500, response.CodeInternalServer, "token validation failed")
			}
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, user.ID)
		c.Set(ContextUsernameKey, user.Username)
		c.Set(ContextEmailKey, user.Email)
		c.Next()
	}
}

// UserID pulls the authenticated user id set by TokenAuth.
func UserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(ContextUserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}
