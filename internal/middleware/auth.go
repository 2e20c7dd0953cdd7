package middleware

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/confcompanion/backend/pkg/response"
)

// ContextUserToken is the key under which the caller's registered token is
// stored in the gin context.
const ContextUserToken = "user_token"

// TokenStore checks whether a bearer token belongs to a registered user.
type TokenStore interface {
	Exists(ctx context.Context, token string) (bool, error)
}

// BearerToken extracts the bearer token from the Authorization header.
// Returns "" if the header is missing or malformed.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// UserAuth returns a middleware that requires a registered user token.
// Tokens are permanent: there is no expiry check, only existence.
func UserAuth(store TokenStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			response.Unauthorized(c, "missing or invalid authorization header")
			c.Abort()
			return
		}
		ok, err := store.Exists(c.Request.Context(), token)
		if err != nil {
			response.Internal(c, "token lookup failed")
			c.Abort()
			return
		}
		if !ok {
			response.Unauthorized(c, "unknown token")
			c.Abort()
			return
		}
		c.Set(ContextUserToken, token)
		c.Next()
	}
}

// AdminAuth returns a middleware that requires the shared admin secret as
// bearer token.
func AdminAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			response.Unauthorized(c, "admin secret required")
			c.Abort()
			return
		}
		c.Next()
	}
}
