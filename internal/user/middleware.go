package user

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"liveability/internal/token"
)

const (
	ctxUserIDKey = "user_id"
	ctxEmailKey  = "email"
)

// TokenAuthMiddleware verifies the bearer token and injects the subject
// identity into the Gin context. Verification is stateless; an aborted
// request never reaches the credential store.
func TokenAuthMiddleware(verifier *token.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization format"})
			return
		}

		claims, err := verifier.Verify(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(ctxUserIDKey, claims.UserID)
		c.Set(ctxEmailKey, claims.Email)

		c.Next()
	}
}

// AuthUserID extracts the authenticated user id set by TokenAuthMiddleware
func AuthUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(ctxUserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
