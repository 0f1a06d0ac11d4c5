package handlers

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"bussen_backend/internal/ws"

	"github.com/gin-gonic/gin"
)

const maxRoomNameLength = 64

type CreateRoomRequest struct {
	Name string `json:"name"`
}

type JoinRoomRequest struct {
	Code string `json:"code"`
}

func (h *Handler) CreateRoom(c *gin.Context) {
	playerID, playerName, ok := getPlayer(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CreateRoomRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room name required"})
		return
	}
	if len(name) > maxRoomNameLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room name too long"})
		return
	}

	room, err := h.Hub.CreateRoom(name, playerID, playerName)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, room.Summary())
}

func (h *Handler) JoinRoom(c *gin.Context) {
	playerID, playerName, ok := getPlayer(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req JoinRoomRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room code required"})
		return
	}

	room, err := h.Hub.JoinRoom(req.Code, playerID, playerName)
	if err != nil {
		if errors.Is(err, ws.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, room.Summary())
}

func (h *Handler) LeaveRoom(c *gin.Context) {
	playerID, _, ok := getPlayer(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.Hub.LeaveRoom(playerID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "left"})
}

func (h *Handler) ListRooms(c *gin.Context) {
	rooms := h.Hub.RoomList()

	summaries := make([]ws.RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		s := r.Summary()
		// lobby only lists rooms that can still be joined
		if s.Playing {
			continue
		}
		summaries = append(summaries, s)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Code < summaries[j].Code })

	c.JSON(http.StatusOK, gin.H{"rooms": summaries})
}

// MyRoom returns the caller's room snapshot, the same one the websocket
// pushes, so a reloading client can catch up over plain HTTP.
func (h *Handler) MyRoom(c *gin.Context) {
	playerID, _, ok := getPlayer(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	room := h.Hub.RoomOf(playerID)
	if room == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not in a room"})
		return
	}

	c.JSON(http.StatusOK, room.StateFor(playerID))
}

func (h *Handler) MyGames(c *gin.Context) {
	playerID, _, ok := getPlayer(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if h.RecordRepo == nil {
		c.JSON(http.StatusOK, gin.H{"games": []any{}})
		return
	}

	records, err := h.RecordRepo.GetByPlayer(c.Request.Context(), playerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load games"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"games": records})
}
