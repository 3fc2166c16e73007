// middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"timeslice/models"
	"timeslice/utils"

	"github.com/gin-gonic/gin"
)

// JWTAuthMiddleware validates the bearer token and stores the caller's id and admin flag in the context.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := utils.ExtractClaims(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(utils.ContextUserID, claims.Subject)
		c.Set(utils.ContextIsAdmin, claims.Role == models.RoleAdmin)
		c.Next()
	}
}

// CallerID returns the authenticated user id, or "" when the request is anonymous.
func CallerID(c *gin.Context) string {
	return c.GetString(utils.ContextUserID)
}

// IsAdmin reports whether the authenticated caller has the admin role.
func IsAdmin(c *gin.Context) bool {
	return c.GetBool(utils.ContextIsAdmin)
}
