package ws

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"bussen_backend/internal/repository"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrNotInRoom    = errors.New("player is not in a room")
)

type Hub struct {
	Rooms      map[string]*Room
	PlayerRoom map[string]string
	mu         sync.RWMutex

	StateRepo  *repository.GameStateRepository
	RecordRepo *repository.GameRecordRepository
}

func NewHub(stateRepo *repository.GameStateRepository, recordRepo *repository.GameRecordRepository) *Hub {
	return &Hub{
		Rooms:      make(map[string]*Room),
		PlayerRoom: make(map[string]string),
		StateRepo:  stateRepo,
		RecordRepo: recordRepo,
	}
}

// newRoomCode returns a short join code. Collisions are checked against
// live rooms under the hub lock.
func newRoomCode() string {
	return strings.ToUpper(uuid.NewString()[:6])
}

func (h *Hub) CreateRoom(name, ownerID, ownerName string) (*Room, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.PlayerRoom[ownerID]; ok {
		return nil, errors.New("already in a room")
	}

	code := newRoomCode()
	for h.Rooms[code] != nil {
		code = newRoomCode()
	}

	room := NewRoomWithRepo(code, name, ownerID, h.StateRepo, h.RecordRepo, h)
	h.Rooms[code] = room
	go room.Run()

	if err := room.AddPlayer(ownerID, ownerName); err != nil {
		delete(h.Rooms, code)
		close(room.stop)
		return nil, err
	}
	h.PlayerRoom[ownerID] = code

	log.Printf("Hub.CreateRoom: room=%s owner=%s", code, ownerID)
	return room, nil
}

func (h *Hub) JoinRoom(code, playerID, playerName string) (*Room, error) {
	code = strings.ToUpper(code)

	h.mu.Lock()
	if existing, ok := h.PlayerRoom[playerID]; ok && existing != code {
		h.mu.Unlock()
		return nil, errors.New("already in a room")
	}
	room := h.Rooms[code]
	h.mu.Unlock()

	if room == nil {
		var err error
		room, err = h.resumeRoom(code)
		if err != nil {
			return nil, err
		}
	}

	if err := room.AddPlayer(playerID, playerName); err != nil {
		return nil, err
	}

	h.mu.Lock()
	h.PlayerRoom[playerID] = code
	h.mu.Unlock()

	log.Printf("Hub.JoinRoom: room=%s player=%s", code, playerID)
	return room, nil
}

// resumeRoom brings a persisted room back into memory, so a server restart
// does not kill games in progress.
func (h *Hub) resumeRoom(code string) (*Room, error) {
	if h.StateRepo == nil {
		return nil, ErrRoomNotFound
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	state, err := h.StateRepo.Load(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrStateNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	room, err := restoreRoom(code, state, h.StateRepo, h.RecordRepo, h)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if existing := h.Rooms[code]; existing != nil {
		return existing, nil
	}
	h.Rooms[code] = room
	for _, p := range room.Players {
		h.PlayerRoom[p.ID] = code
	}
	go room.Run()

	log.Printf("Hub.resumeRoom: room=%s players=%d", code, len(room.Players))
	return room, nil
}

func (h *Hub) Room(code string) *Room {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.Rooms[strings.ToUpper(code)]
}

func (h *Hub) RoomOf(playerID string) *Room {
	h.mu.RLock()
	code, ok := h.PlayerRoom[playerID]
	if !ok {
		h.mu.RUnlock()
		return nil
	}
	room := h.Rooms[code]
	h.mu.RUnlock()
	return room
}

// RoomList is a shallow listing for the lobby screen.
func (h *Hub) RoomList() []*Room {
	h.mu.RLock()
	defer h.mu.RUnlock()
	rooms := make([]*Room, 0, len(h.Rooms))
	for _, r := range h.Rooms {
		rooms = append(rooms, r)
	}
	return rooms
}

// LeaveRoom removes the player from their room. Empty rooms are torn down.
func (h *Hub) LeaveRoom(playerID string) error {
	room := h.RoomOf(playerID)
	if room == nil {
		return ErrNotInRoom
	}

	empty := room.RemovePlayer(playerID)

	h.mu.Lock()
	delete(h.PlayerRoom, playerID)
	if empty {
		delete(h.Rooms, room.Code)
		close(room.stop)
	}
	h.mu.Unlock()

	if empty {
		room.clearState()
		log.Printf("Hub.LeaveRoom: room=%s closed (empty)", room.Code)
	}
	return nil
}

// Attach connects a websocket client to the room its player has joined.
// The room pointer is published before registration so messages arriving
// during the handoff dispatch directly instead of staying buffered.
func (h *Hub) Attach(c *Client) *Room {
	room := h.RoomOf(c.PlayerID)
	if room == nil {
		return nil
	}
	c.room.Store(room)
	room.Register <- c
	return room
}

func (h *Hub) OnDisconnect(c *Client) {
	if room := h.RoomOf(c.PlayerID); room != nil {
		room.Disconnect <- c
	}
}

func (h *Hub) StartCleanup() {
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			h.cleanupStaleRooms()
		}
	}()
}

// cleanupStaleRooms drops rooms that have been empty of connections for
// over an hour. Their persisted state stays, so they can be resumed.
func (h *Hub) cleanupStaleRooms() {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()

	for code, room := range h.Rooms {
		room.mu.RLock()
		clients := len(room.Clients)
		createdAt := room.createdAt
		room.mu.RUnlock()

		if clients == 0 && now.Sub(createdAt) > time.Hour {
			delete(h.Rooms, code)
			for pid, rc := range h.PlayerRoom {
				if rc == code {
					delete(h.PlayerRoom, pid)
				}
			}
			close(room.stop)
			log.Printf("cleaned up stale room: %s", code)
		}
	}
}
