package handlers

import (
	"bussen_backend/internal/repository"
	"bussen_backend/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Handler struct {
	DB         *pgxpool.Pool
	Hub        *ws.Hub
	RecordRepo *repository.GameRecordRepository
}

func NewHandler(db *pgxpool.Pool, hub *ws.Hub) *Handler {
	h := &Handler{
		DB:  db,
		Hub: hub,
	}
	if db != nil {
		h.RecordRepo = repository.NewGameRecordRepository(db)
	}
	return h
}

// getPlayer pulls the identity stored by the JWT middleware.
func getPlayer(c *gin.Context) (id, name string, ok bool) {
	idVal, found := c.Get("player_id")
	if !found {
		return "", "", false
	}
	id, ok = idVal.(string)
	if !ok || id == "" {
		return "", "", false
	}
	if nameVal, found := c.Get("player_name"); found {
		name, _ = nameVal.(string)
	}
	return id, name, true
}
