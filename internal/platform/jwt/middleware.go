package jwtmw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"fitness_backend/internal/api"
)

// Context keys set by AuthRequired.
const (
	ContextUserID   = "userID"
	ContextUsername = "username"
)

// AccessTokenParser verifies an access token.
// Following Go convention: interfaces are defined by the consumer (middleware), not the provider.
type AccessTokenParser interface {
	ParseAccessToken(token string) (*Claims, error)
}

// AuthRequired returns a Gin middleware function that validates bearer
// access tokens and restricts access to authenticated users only.
// Rejected requests are aborted before any handler runs.
func AuthRequired(parser AccessTokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get Authorization header
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			api.AbortDetail(c, http.StatusUnauthorized, api.DetailNotAuthenticated)
			return
		}
		tokenStr := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

		// 2. Verify signature, expiry and token type
		claims, err := parser.ParseAccessToken(tokenStr)
		if err != nil {
			api.AbortDetail(c, http.StatusUnauthorized, api.DetailInvalidToken)
			return
		}

		// 3. Expose the identity to handlers
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Next()
	}
}

// UserID returns the authenticated user's ID set by AuthRequired.
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}
