package middleware

import (
	"net/http"
	"strings"

	"bussen_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// JWT guards a route with a bearer session token. On success the player's
// id and name are stored in the gin context.
func JWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		if token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "bearer token required"})
			return
		}

		playerID, name, err := service.ParseJWT(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("player_id", playerID)
		c.Set("player_name", name)
		c.Next()
	}
}
