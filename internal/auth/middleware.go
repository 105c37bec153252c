package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// callerContextKey is the gin context key holding the authenticated caller
// identity.
const callerContextKey = "caller_id"

// Middleware resolves the Bearer token into the caller identity every ledger
// operation receives implicitly.
func Middleware(service *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		caller, err := service.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(callerContextKey, caller)
		c.Next()
	}
}

// CallerID returns the authenticated caller identity for a request.
func CallerID(c *gin.Context) string {
	return c.GetString(callerContextKey)
}
