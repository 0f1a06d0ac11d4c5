package handlers

import (
	"net/http"
	"strings"

	"bussen_backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxNameLength = 32

type AuthRequest struct {
	Name string `json:"name"`
}

// Auth registers an anonymous player. There are no accounts; a display
// name is enough, and the returned token is the whole session.
func (h *Handler) Auth(c *gin.Context) {
	var req AuthRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}
	if len(name) > maxNameLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name too long"})
		return
	}

	playerID := uuid.NewString()
	token, err := service.GenerateJWT(playerID, name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"player": gin.H{
			"id":   playerID,
			"name": name,
		},
	})
}
