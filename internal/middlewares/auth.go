package middlewares

import (
	"bananaprep/internal/services"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	userContextKey  = "userID"
	emailContextKey = "email"
)

// UserID returns the authenticated user's ID from the request context.
// The second return is false in practice mode (no valid session).
func UserID(c *gin.Context) (int, bool) {
	v, ok := c.Get(userContextKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int)
	return id, ok
}

// AuthMiddleware enforces authentication. It validates the access token
// from the cookie and sets the userID in the context.
func AuthMiddleware(tokenService *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie("access_token")
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization token required"})
			c.Abort()
			return
		}

		claims, err := tokenService.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(userContextKey, claims.UserID)
		c.Set(emailContextKey, claims.Email)
		c.Next()
	}
}

// OptionalAuthMiddleware checks for authentication but doesn't enforce it.
// Requests without a valid token continue in practice mode: verification
// still runs, persistence is skipped.
func OptionalAuthMiddleware(tokenService *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie("access_token")
		if err != nil || strings.TrimSpace(tokenString) == "" {
			c.Next()
			return
		}

		claims, err := tokenService.ValidateToken(tokenString)
		if err == nil && claims != nil {
			c.Set(userContextKey, claims.UserID)
			c.Set(emailContextKey, claims.Email)
		}

		c.Next()
	}
}
