package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/studio-atelier/site-backend/internal/auth"
	"github.com/studio-atelier/site-backend/internal/logging"
)

// APIKeyHeader is accepted as an alternative to a Bearer token.
const APIKeyHeader = "X-API-Key"

// APIKeyMiddleware guards the admin routes with a shared key. An empty key
// leaves the routes open, which config only permits outside production.
func APIKeyMiddleware(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Set(auth.CtxAdmin, true)
			c.Next()
			return
		}

		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "missing api key"})
			return
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(key)) != 1 {
			logging.NewLogger(c.Request.Context()).LogWarnf("auth.api_key", "rejected admin request from %s", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid api key"})
			return
		}

		c.Set(auth.CtxAdmin, true)
		c.Next()
	}
}

// extractToken reads the key from a Bearer Authorization header or X-API-Key.
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return strings.TrimSpace(bearerToken[7:])
	}
	return strings.TrimSpace(c.GetHeader(APIKeyHeader))
}
